package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medication-tracker/internal/domain/doses"
	"medication-tracker/internal/domain/medications"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdministrationsRepo struct {
	db *gorm.DB
}

func NewAdministrationsRepo(db *gorm.DB) *AdministrationsRepo {
	return &AdministrationsRepo{db: db}
}

func (r *AdministrationsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]doses.AdministrationRecord, error) {
	var rows []administrationRow
	err := r.db.WithContext(ctx).
		Where("data_dose BETWEEN ? AND ?", medications.Day(from), medications.Day(to)).
		Order("data_dose ASC").Order("hora_dose ASC").Order("medicamento_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]doses.AdministrationRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.ID, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Upsert usa INSERT ... ON CONFLICT sobre el índice único de la toma; después relee
// la fila para devolver el id que quedó guardado.
func (r *AdministrationsRepo) Upsert(ctx context.Context, rec doses.AdministrationRecord) (doses.AdministrationRecord, error) {
	row := toAdministrationRow(rec)

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "medicamento_id"}, {Name: "data_dose"}, {Name: "hora_dose"}},
			DoUpdates: clause.AssignmentColumns([]string{"foi_administrado", "administrado_em"}),
		}).
		Create(&row).Error
	if err != nil {
		return doses.AdministrationRecord{}, fmt.Errorf("upsert administration: %w", err)
	}

	return r.Get(ctx, rec.Key())
}

func (r *AdministrationsRepo) Get(ctx context.Context, key doses.DoseKey) (doses.AdministrationRecord, error) {
	var row administrationRow
	err := r.db.WithContext(ctx).
		Where("medicamento_id = ? AND data_dose = ? AND hora_dose = ?", key.MedicationID, medications.Day(key.Date), key.Time.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return doses.AdministrationRecord{}, doses.ErrNotFound
		}
		return doses.AdministrationRecord{}, err
	}
	return row.toDomain()
}
