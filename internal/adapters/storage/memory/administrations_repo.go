package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medication-tracker/internal/domain/doses"
	"medication-tracker/internal/domain/medications"
)

type administrationRepo struct {
	mu    sync.RWMutex
	byKey map[doses.DoseKey]doses.AdministrationRecord
}

func NewAdministrationsRepo() doses.Repository {
	return &administrationRepo{
		byKey: make(map[doses.DoseKey]doses.AdministrationRecord),
	}
}

func (r *administrationRepo) ListBetween(ctx context.Context, from, to time.Time) ([]doses.AdministrationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	from, to = medications.Day(from), medications.Day(to)
	out := make([]doses.AdministrationRecord, 0)
	for _, rec := range r.byKey {
		d := medications.Day(rec.DoseDate)
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DoseDate.Equal(out[j].DoseDate) {
			return out[i].DoseDate.Before(out[j].DoseDate)
		}
		if out[i].DoseTime != out[j].DoseTime {
			return out[i].DoseTime < out[j].DoseTime
		}
		return out[i].MedicationID < out[j].MedicationID
	})
	return out, nil
}

// Upsert lee y escribe bajo el mismo lock: dos toggles simultáneos no duplican.
// El ID del primer registro se conserva.
func (r *administrationRepo) Upsert(ctx context.Context, rec doses.AdministrationRecord) (doses.AdministrationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.MedicationID == "" {
		return doses.AdministrationRecord{}, errors.New("medication id required")
	}

	key := rec.Key()
	rec.DoseDate = key.Date
	if prev, ok := r.byKey[key]; ok {
		rec.ID = prev.ID
	}
	r.byKey[key] = rec
	return rec, nil
}

func (r *administrationRepo) Get(ctx context.Context, key doses.DoseKey) (doses.AdministrationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byKey[doses.NewDoseKey(key.MedicationID, key.Date, key.Time)]
	if !ok {
		return doses.AdministrationRecord{}, doses.ErrNotFound
	}
	return rec, nil
}
