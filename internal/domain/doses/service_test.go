package doses

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"medication-tracker/internal/domain/medications"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Fakes
// -------------------------

type fakeMeds struct {
	items []medications.Medication
	err   error
}

func (f *fakeMeds) ListOverlapping(ctx context.Context, from, to time.Time) ([]medications.Medication, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]medications.Medication, 0, len(f.items))
	for _, m := range f.items {
		if m.Archived || m.StartDate.After(to) {
			continue
		}
		if !m.IsRegular && m.EndDate != nil && m.EndDate.Before(from) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

type fakeRecords struct {
	mu    sync.Mutex
	byKey map[DoseKey]AdministrationRecord
	err   error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{byKey: map[DoseKey]AdministrationRecord{}}
}

func (f *fakeRecords) ListBetween(ctx context.Context, from, to time.Time) ([]AdministrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []AdministrationRecord
	for _, r := range f.byKey {
		if r.DoseDate.Before(from) || r.DoseDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRecords) Upsert(ctx context.Context, rec AdministrationRecord) (AdministrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return AdministrationRecord{}, f.err
	}
	if prev, ok := f.byKey[rec.Key()]; ok {
		rec.ID = prev.ID
	}
	f.byKey[rec.Key()] = rec
	return rec, nil
}

func (f *fakeRecords) Get(ctx context.Context, key DoseKey) (AdministrationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return AdministrationRecord{}, f.err
	}
	r, ok := f.byKey[key]
	if !ok {
		return AdministrationRecord{}, ErrNotFound
	}
	return r, nil
}

func newTestService(meds ...medications.Medication) (*Service, *fakeMeds, *fakeRecords) {
	fm := &fakeMeds{items: meds}
	fr := newFakeRecords()
	svc := NewService(fm, fr, fixedEngine(time.UTC))
	svc.now = func() time.Time { return time.Date(2024, 1, 12, 9, 0, 0, 0, time.UTC) }
	return svc, fm, fr
}

// -------------------------
// Tests
// -------------------------

func TestRecordAdministration_ToggleKeepsSingleRecord(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()

	first, err := svc.RecordAdministration(ctx, RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "08:00", Administered: true})
	require.NoError(t, err)
	require.NotNil(t, first.AdministeredAt)
	assert.True(t, first.AdministeredAt.Equal(svc.now()))

	second, err := svc.RecordAdministration(ctx, RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "8:00", Administered: false})
	require.NoError(t, err)
	assert.Nil(t, second.AdministeredAt)

	assert.Len(t, repo.byKey, 1)

	rec, err := svc.Status(ctx, "X", day("2024-01-10"), "08:00")
	require.NoError(t, err)
	assert.False(t, rec.Administered)
	assert.Equal(t, first.ID, rec.ID)
}

func TestStatus(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()

	// sin registro: no administrada
	rec, err := svc.Status(ctx, "X", day("2024-01-10"), "8:00")
	require.NoError(t, err)
	assert.Empty(t, rec.ID)
	assert.False(t, rec.Administered)
	assert.Equal(t, "X", rec.MedicationID)
	assert.Equal(t, "08:00", rec.DoseTime.String())

	_, err = svc.RecordAdministration(ctx, RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "08:00", Administered: true})
	require.NoError(t, err)

	rec, err = svc.Status(ctx, "X", day("2024-01-10"), "08:00")
	require.NoError(t, err)
	assert.True(t, rec.Administered)
	require.NotNil(t, rec.AdministeredAt)

	_, err = svc.Status(ctx, "", day("2024-01-10"), "08:00")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Status(ctx, "X", day("2024-01-10"), "25:00")
	assert.ErrorIs(t, err, ErrInvalidInput)

	repo.err = errors.New("db down")
	_, err = svc.Status(ctx, "Y", day("2024-01-10"), "08:00")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRecordAdministration_ReflectedInExpansion(t *testing.T) {
	med := medications.Medication{ID: "X", Name: "A", StartDate: day("2024-01-10"), Times: []string{"08:00", "20:00"}}
	svc, _, _ := newTestService(med)
	ctx := context.Background()

	_, err := svc.RecordAdministration(ctx, RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "08:00", Administered: true})
	require.NoError(t, err)

	sched, err := svc.Expand(ctx, day("2024-01-10"), day("2024-01-10"))
	require.NoError(t, err)

	doses := sched.On(day("2024-01-10"))
	require.Len(t, doses, 2)
	assert.True(t, doses[0].Administered)
	assert.False(t, doses[1].Administered)
}

func TestRecordAdministration_Concurrent(t *testing.T) {
	svc, _, repo := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.RecordAdministration(context.Background(), RecordInput{
				MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "08:00", Administered: i%2 == 0,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, repo.byKey, 1)
}

func TestRecordAdministration_InvalidInput(t *testing.T) {
	svc, _, repo := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		in   RecordInput
	}{
		{"missing id", RecordInput{MedicationID: " ", DoseDate: day("2024-01-10"), DoseTime: "08:00"}},
		{"missing date", RecordInput{MedicationID: "X", DoseTime: "08:00"}},
		{"bad time", RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "25:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordAdministration(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, repo.byKey)
}

func TestCalendar_BuildsGridWithDoses(t *testing.T) {
	end := day("2024-01-15")
	med := medications.Medication{ID: "X", Name: "A", StartDate: day("2024-01-10"), EndDate: &end, Times: []string{"08:00"}}
	svc, _, _ := newTestService(med)

	view, err := svc.Calendar(context.Background(), 2024, time.January)
	require.NoError(t, err)

	assert.Equal(t, 2024, view.Year)
	assert.Equal(t, time.January, view.Month)
	assert.Equal(t, MonthRef{2023, 12}, view.Prev)
	assert.Equal(t, MonthRef{2024, 2}, view.Next)

	var withDoses, today int
	for _, week := range view.Weeks {
		for _, d := range week {
			if len(d.Doses) > 0 {
				withDoses++
			}
			if d.IsToday {
				today++
				assert.Equal(t, day("2024-01-12"), d.Date)
			}
		}
	}
	assert.Equal(t, 6, withDoses)
	assert.Equal(t, 1, today)
}

func TestCalendar_StoreFailureReturnsEmptyGrid(t *testing.T) {
	svc, fm, _ := newTestService()
	fm.err = errors.New("db down")

	view, err := svc.Calendar(context.Background(), 2024, time.March)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRange)

	require.NotEmpty(t, view.Weeks)
	for _, week := range view.Weeks {
		for _, d := range week {
			assert.Empty(t, d.Doses)
		}
	}
}

func TestCalendar_InvalidMonth(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Calendar(context.Background(), 2024, 13)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestExport_IgnoresAdministrationStatus(t *testing.T) {
	med := medications.Medication{ID: "X", Name: "A", StartDate: day("2024-01-10"), Times: []string{"08:00", "20:00"}}
	svc, _, _ := newTestService(med)
	ctx := context.Background()

	before, err := svc.Export(ctx, 2024, time.January)
	require.NoError(t, err)

	_, err = svc.RecordAdministration(ctx, RecordInput{MedicationID: "X", DoseDate: day("2024-01-10"), DoseTime: "08:00", Administered: true})
	require.NoError(t, err)

	after, err := svc.Export(ctx, 2024, time.January)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	// sólo días del mes: 10..31 con dos tomas por día
	cal, err := ics.ParseCalendar(strings.NewReader(string(after)))
	require.NoError(t, err)
	assert.Len(t, cal.Events(), 22*2)
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "medicamentos-2024-03.ics", ExportFilename(2024, time.March))
}
