package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medication-tracker/internal/domain/doses"
	"medication-tracker/internal/domain/medications"
)

type AdministrationsRepo struct {
	db *sql.DB
}

func NewAdministrationsRepo(db *sql.DB) *AdministrationsRepo {
	return &AdministrationsRepo{db: db}
}

func (r *AdministrationsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]doses.AdministrationRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, medicamento_id, data_dose, hora_dose, foi_administrado, administrado_em
		FROM administracoes_medicamento
		WHERE data_dose BETWEEN $1 AND $2
		ORDER BY data_dose ASC, hora_dose ASC, medicamento_id ASC
	`, medications.Day(from), medications.Day(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.AdministrationRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert resuelve la carrera en la base: ON CONFLICT sobre la clave única de la toma.
// Si el registro ya existía se conserva su id.
func (r *AdministrationsRepo) Upsert(ctx context.Context, rec doses.AdministrationRecord) (doses.AdministrationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO administracoes_medicamento (
			id, medicamento_id, data_dose, hora_dose, foi_administrado, administrado_em
		) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (medicamento_id, data_dose, hora_dose) DO UPDATE
		SET
			foi_administrado = EXCLUDED.foi_administrado,
			administrado_em = EXCLUDED.administrado_em
		RETURNING id, medicamento_id, data_dose, hora_dose, foi_administrado, administrado_em
	`,
		rec.ID,
		rec.MedicationID,
		medications.Day(rec.DoseDate),
		rec.DoseTime.String(),
		rec.Administered,
		toNullTime(rec.AdministeredAt),
	)

	out, err := scanRecord(row)
	if err != nil {
		return doses.AdministrationRecord{}, fmt.Errorf("upsert administration: %w", err)
	}
	return out, nil
}

func (r *AdministrationsRepo) Get(ctx context.Context, key doses.DoseKey) (doses.AdministrationRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, medicamento_id, data_dose, hora_dose, foi_administrado, administrado_em
		FROM administracoes_medicamento
		WHERE medicamento_id = $1 AND data_dose = $2 AND hora_dose = $3
	`, key.MedicationID, medications.Day(key.Date), key.Time.String())

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return doses.AdministrationRecord{}, doses.ErrNotFound
		}
		return doses.AdministrationRecord{}, err
	}
	return rec, nil
}

func scanRecord(row rowScanner) (doses.AdministrationRecord, error) {
	var rec doses.AdministrationRecord
	var rawTime string
	var at sql.NullTime

	if err := row.Scan(
		&rec.ID,
		&rec.MedicationID,
		&rec.DoseDate,
		&rawTime,
		&rec.Administered,
		&at,
	); err != nil {
		return doses.AdministrationRecord{}, err
	}

	tod, err := medications.ParseTimeOfDay(rawTime)
	if err != nil {
		return doses.AdministrationRecord{}, fmt.Errorf("record %s: %w", rec.ID, err)
	}
	rec.DoseTime = tod
	rec.DoseDate = medications.Day(rec.DoseDate)
	rec.AdministeredAt = fromNullTime(at)
	return rec, nil
}
