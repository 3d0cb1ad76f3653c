package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medication-tracker/internal/domain/medications"
)

type medicationRepo struct {
	mu    sync.RWMutex
	byID  map[string]medications.Medication
	order []string // orden de alta
}

func NewMedicationsRepo() medications.Repository {
	return &medicationRepo{
		byID: make(map[string]medications.Medication),
	}
}

func (r *medicationRepo) Create(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		return errors.New("medication id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("medication already exists")
	}
	r.byID[m.ID] = clone(m)
	r.order = append(r.order, m.ID)
	return nil
}

func (r *medicationRepo) Update(ctx context.Context, m medications.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[m.ID]
	if !exists || cur.Archived {
		return medications.ErrNotFound
	}
	m.Archived = false
	m.CreatedAt = cur.CreatedAt
	r.byID[m.ID] = clone(m)
	return nil
}

func (r *medicationRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.Medication{}, medications.ErrNotFound
	}
	return clone(m), nil
}

func (r *medicationRepo) Archive(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return medications.ErrNotFound
	}
	m.Archived = true
	m.UpdatedAt = at
	r.byID[id] = m
	return nil
}

func (r *medicationRepo) ListActive(ctx context.Context, day time.Time) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day = medications.Day(day)
	out := make([]medications.Medication, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		m := r.byID[r.order[i]]
		if m.Archived || !runningOn(m, day) {
			continue
		}
		out = append(out, clone(m))
	}

	// más recientes primero; en empate queda el último dado de alta adelante
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *medicationRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = medications.Day(from), medications.Day(to)
	out := make([]medications.Medication, 0)
	for _, id := range r.order {
		m := r.byID[id]
		if m.Archived || medications.Day(m.StartDate).After(to) || !runningOn(m, from) {
			continue
		}
		out = append(out, clone(m))
	}
	return out, nil
}

func (r *medicationRepo) ListHistory(ctx context.Context) ([]medications.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]medications.Medication, 0)
	for _, id := range r.order {
		m := r.byID[id]
		if m.IsRegular {
			continue
		}
		out = append(out, clone(m))
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// runningOn: regular, sin fecha final o fin >= day. No mira la fecha de inicio.
func runningOn(m medications.Medication, day time.Time) bool {
	if m.IsRegular || m.EndDate == nil {
		return true
	}
	return !medications.Day(*m.EndDate).Before(day)
}

// clone copia slices y punteros para que nadie mute el estado del repo desde afuera.
func clone(m medications.Medication) medications.Medication {
	if m.Times != nil {
		m.Times = append([]string(nil), m.Times...)
	}
	if m.EndDate != nil {
		end := *m.EndDate
		m.EndDate = &end
	}
	return m
}
