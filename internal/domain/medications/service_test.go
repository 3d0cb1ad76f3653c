package medications

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID  map[string]Medication
	order []string
	err   error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	cur, ok := r.byID[m.ID]
	if !ok || cur.Archived {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (r *testRepo) Archive(ctx context.Context, id string, at time.Time) error {
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.Archived = true
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *testRepo) ListActive(ctx context.Context, day time.Time) ([]Medication, error) {
	var out []Medication
	for i := len(r.order) - 1; i >= 0; i-- {
		m := r.byID[r.order[i]]
		if !m.Archived && stillRunning(m, day) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]Medication, error) {
	var out []Medication
	for _, id := range r.order {
		m := r.byID[id]
		if !m.Archived && !m.StartDate.After(to) && stillRunning(m, from) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListHistory(ctx context.Context) ([]Medication, error) {
	var out []Medication
	for _, m := range r.byID {
		if !m.IsRegular {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 1, 12, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

// -------------------------
// Tests
// -------------------------

func TestCreate_AppliesDefaults(t *testing.T) {
	svc, repo := newTestService()

	m, err := svc.Create(context.Background(), Input{
		Name:      "  Dipirona ",
		StartDate: time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC),
		Times:     []string{"8:00", " ", "20:00"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Dipirona", m.Name)
	assert.Equal(t, date("2024-01-10"), m.StartDate)
	assert.Equal(t, []string{"08:00", "20:00"}, m.Times)
	assert.Equal(t, DefaultQuantity, m.Quantity)
	assert.Equal(t, DefaultForm, m.Form)
	assert.Equal(t, DefaultUnit, m.Unit)
	assert.False(t, m.Archived)
	assert.Equal(t, svc.now(), m.CreatedAt)
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	stored, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, m, stored)
}

func TestCreate_ExplicitQuantityZero(t *testing.T) {
	svc, _ := newTestService()
	zero := 0.0

	m, err := svc.Create(context.Background(), Input{Name: "A", StartDate: date("2024-01-10"), Quantity: &zero, Form: "gotas", Unit: "ml"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Quantity)
	assert.Equal(t, "gotas", m.Form)
	assert.Equal(t, "ml", m.Unit)
}

func TestCreate_RejectsInvalidInput(t *testing.T) {
	end := date("2024-01-01")
	neg := -1.0

	tests := []struct {
		name string
		in   Input
	}{
		{"missing name", Input{Name: "  ", StartDate: date("2024-01-10")}},
		{"missing start", Input{Name: "A"}},
		{"bad time", Input{Name: "A", StartDate: date("2024-01-10"), Times: []string{"25:00"}}},
		{"end before start", Input{Name: "A", StartDate: date("2024-01-10"), EndDate: &end}},
		{"negative quantity", Input{Name: "A", StartDate: date("2024-01-10"), Quantity: &neg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			_, err := svc.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Empty(t, repo.byID)
		})
	}
}

func TestCreate_RegularAllowsEndBeforeStart(t *testing.T) {
	svc, _ := newTestService()
	end := date("2024-01-01")

	_, err := svc.Create(context.Background(), Input{Name: "A", StartDate: date("2024-01-10"), EndDate: &end, IsRegular: true})
	assert.NoError(t, err)
}

func TestUpdate_ReplacesFields(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	m, err := svc.Create(ctx, Input{Name: "A", StartDate: date("2024-01-10"), Times: []string{"08:00"}, Form: "gotas"})
	require.NoError(t, err)

	later := time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return later }

	upd, err := svc.Update(ctx, m.ID, Input{Name: "B", StartDate: date("2024-01-11")})
	require.NoError(t, err)

	assert.Equal(t, m.ID, upd.ID)
	assert.Equal(t, "B", upd.Name)
	assert.Empty(t, upd.Times)
	assert.Equal(t, DefaultForm, upd.Form)
	assert.Equal(t, m.CreatedAt, upd.CreatedAt)
	assert.Equal(t, later, upd.UpdatedAt)
}

func TestUpdate_ArchivedOrMissing(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Update(ctx, "nope", Input{Name: "A", StartDate: date("2024-01-10")})
	assert.ErrorIs(t, err, ErrNotFound)

	m, err := svc.Create(ctx, Input{Name: "A", StartDate: date("2024-01-10")})
	require.NoError(t, err)
	require.NoError(t, svc.Archive(ctx, m.ID))

	_, err = svc.Update(ctx, m.ID, Input{Name: "B", StartDate: date("2024-01-10")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_MovesOutOfActiveList(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, err := svc.Create(ctx, Input{Name: "A", StartDate: date("2024-01-10")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "B", StartDate: date("2024-01-10")})
	require.NoError(t, err)

	require.NoError(t, svc.Archive(ctx, a.ID))

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Name)

	history, err := svc.ListHistory(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	got, err := svc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)
}

func TestGetEditable(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	past := date("2024-01-11")

	running, err := svc.Create(ctx, Input{Name: "A", StartDate: date("2024-01-10")})
	require.NoError(t, err)
	finished, err := svc.Create(ctx, Input{Name: "B", StartDate: date("2024-01-01"), EndDate: &past})
	require.NoError(t, err)

	_, err = svc.GetEditable(ctx, running.ID)
	assert.NoError(t, err)

	_, err = svc.GetEditable(ctx, finished.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetEditable(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListOverlapping_RejectsInvertedRange(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ListOverlapping(context.Background(), date("2024-02-01"), date("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_DropsDuplicateTimes(t *testing.T) {
	svc, repo := newTestService()

	m, err := svc.Create(context.Background(), Input{
		Name:      "A",
		StartDate: date("2024-01-10"),
		Times:     []string{"20:00", "08:00", "8:00", " 20:00 "},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"20:00", "08:00"}, m.Times)

	updated, err := svc.Update(context.Background(), m.ID, Input{
		Name:      "A",
		StartDate: date("2024-01-10"),
		Times:     []string{"9:30", "09:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30"}, updated.Times)

	stored, err := repo.GetByID(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30"}, stored.Times)
}

func TestToday_UsesConfiguredLocation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, time.FixedZone("BRT", -3*60*60))
	// 01:00 UTC del 12 sigue siendo el 11 en BRT
	svc.now = func() time.Time { return time.Date(2024, 1, 12, 1, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	end := date("2024-01-11")
	m, err := svc.Create(ctx, Input{Name: "A", StartDate: date("2024-01-01"), EndDate: &end})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, m.ID, active[0].ID)

	_, err = svc.GetEditable(ctx, m.ID)
	assert.NoError(t, err)

	utc := NewService(repo, nil)
	utc.now = svc.now
	active, err = utc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
