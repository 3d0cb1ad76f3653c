package doses

import (
	"strings"
	"testing"
	"time"

	"medication-tracker/internal/domain/medications"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedEngine(loc *time.Location) *Engine {
	e := newTestEngine()
	e.loc = loc
	e.now = func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }
	return e
}

func TestExportRange_OneEventPerDose(t *testing.T) {
	end := day("2024-01-11")
	meds := []medications.Medication{
		{ID: "m1", Name: "Dipirona", Description: "após as refeições", StartDate: day("2024-01-10"), EndDate: &end, Times: []string{"08:00", "20:00"}},
		{ID: "m2", Name: "Vitamina D", StartDate: day("2024-01-11"), EndDate: &end, Times: []string{"12:00", "bad"}},
	}

	body, err := fixedEngine(time.UTC).ExportRange(meds, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 5)

	first := events[0]
	assert.Equal(t, "m1-20240110-0800@medication-tracker", first.Id())
	assert.Equal(t, "Take: Dipirona", first.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "após as refeições", first.GetProperty(ics.ComponentPropertyDescription).Value)

	start, err := first.GetStartAt()
	require.NoError(t, err)
	endAt, err := first.GetEndAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, DoseDuration, endAt.Sub(start))

	// el 11 se ordena por hora: 08:00, 12:00, 20:00
	uids := make([]string, 0, len(events))
	for _, ev := range events {
		uids = append(uids, ev.Id())
	}
	assert.Equal(t, []string{
		"m1-20240110-0800@medication-tracker",
		"m1-20240110-2000@medication-tracker",
		"m1-20240111-0800@medication-tracker",
		"m2-20240111-1200@medication-tracker",
		"m1-20240111-2000@medication-tracker",
	}, uids)

	// sin descripción no se emite la propiedad
	vit := events[3]
	assert.Equal(t, "Take: Vitamina D", vit.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Nil(t, vit.GetProperty(ics.ComponentPropertyDescription))
}

func TestExportRange_UsesConfiguredTimezone(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	meds := []medications.Medication{{ID: "m1", Name: "A", StartDate: day("2024-01-10"), Times: []string{"08:00"}}}

	body, err := fixedEngine(loc).ExportRange(meds, day("2024-01-10"), day("2024-01-10"))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)

	start, err := cal.Events()[0].GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2024, 1, 10, 11, 0, 0, 0, time.UTC)))
}

func TestExportRange_Deterministic(t *testing.T) {
	meds := []medications.Medication{{ID: "m1", Name: "A", StartDate: day("2024-01-10"), Times: []string{"08:00"}}}
	e := fixedEngine(time.UTC)

	a, err := e.ExportRange(meds, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	b, err := e.ExportRange(meds, day("2024-01-01"), day("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExportRange_InvalidRange(t *testing.T) {
	_, err := newTestEngine().ExportRange(nil, day("2024-02-01"), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestExportRange_RepeatedTimeYieldsUniqueUIDs(t *testing.T) {
	meds := []medications.Medication{{ID: "m1", Name: "A", StartDate: day("2024-01-10"), Times: []string{"08:00", "8:00"}}}

	body, err := fixedEngine(time.UTC).ExportRange(meds, day("2024-01-10"), day("2024-01-11"))
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, ev := range cal.Events() {
		assert.False(t, seen[ev.Id()], "duplicated UID %s", ev.Id())
		seen[ev.Id()] = true
	}
	assert.Len(t, seen, 2)
}
