package sqlite

import (
	"context"
	"errors"
	"time"

	"medication-tracker/internal/domain/medications"

	"gorm.io/gorm"
)

type MedicationsRepo struct {
	db *gorm.DB
}

func NewMedicationsRepo(db *gorm.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	row := toMedicationRow(m)
	return r.db.WithContext(ctx).Create(&row).Error
}

// Update reemplaza los campos editables. Select("*") para que gorm escriba también
// los valores cero (times vacío, is_regular false).
func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	row := toMedicationRow(m)
	res := r.db.WithContext(ctx).
		Model(&medicationRow{}).
		Where("id = ? AND is_archived = ?", m.ID, false).
		Select("name", "descricao", "start_date", "end_date", "times", "is_regular", "quantity", "form", "unit", "updated_at").
		Updates(&row)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	var row medicationRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return row.toDomain(), nil
}

func (r *MedicationsRepo) Archive(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&medicationRow{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_archived": true, "updated_at": at.UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) ListActive(ctx context.Context, day time.Time) ([]medications.Medication, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Where("is_regular = ? OR end_date IS NULL OR end_date >= ?", true, medications.Day(day)).
		Order("created_at DESC").Order("rowid DESC"))
}

func (r *MedicationsRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]medications.Medication, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_archived = ?", false).
		Where("start_date <= ?", medications.Day(to)).
		Where("is_regular = ? OR end_date IS NULL OR end_date >= ?", true, medications.Day(from)).
		Order("created_at ASC").Order("rowid ASC"))
}

func (r *MedicationsRepo) ListHistory(ctx context.Context) ([]medications.Medication, error) {
	return r.find(r.db.WithContext(ctx).
		Where("is_regular = ?", false).
		Order("start_date DESC").Order("name ASC"))
}

func (r *MedicationsRepo) find(q *gorm.DB) ([]medications.Medication, error) {
	var rows []medicationRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]medications.Medication, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
