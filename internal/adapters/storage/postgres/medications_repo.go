package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"

	"github.com/jackc/pgx/v5/pgtype"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

const medicationColumns = `
	id, name, descricao,
	start_date, end_date, times,
	is_regular, quantity, form, unit,
	is_archived, created_at, updated_at`

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicamentos (`+medicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		m.ID,
		m.Name,
		m.Description,
		m.StartDate,
		toNullTime(m.EndDate),
		timesParam(m.Times),
		m.IsRegular,
		m.Quantity,
		m.Form,
		m.Unit,
		m.Archived,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicamentos
		SET
			name = $2,
			descricao = $3,
			start_date = $4,
			end_date = $5,
			times = $6,
			is_regular = $7,
			quantity = $8,
			form = $9,
			unit = $10,
			updated_at = $11
		WHERE id = $1 AND is_archived = FALSE
	`,
		m.ID,
		m.Name,
		m.Description,
		m.StartDate,
		toNullTime(m.EndDate),
		timesParam(m.Times),
		m.IsRegular,
		m.Quantity,
		m.Form,
		m.Unit,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, medications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+medicationColumns+` FROM medicamentos WHERE id = $1`, id)

	m, err := scanMedication(row, pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return medications.Medication{}, medications.ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) Archive(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medicamentos SET is_archived = TRUE, updated_at = $2 WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return medications.ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) ListActive(ctx context.Context, day time.Time) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medicamentos
		WHERE is_archived = FALSE
		  AND (is_regular OR end_date IS NULL OR end_date >= $1)
		ORDER BY created_at DESC
	`, medications.Day(day))
}

func (r *MedicationsRepo) ListOverlapping(ctx context.Context, from, to time.Time) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medicamentos
		WHERE is_archived = FALSE
		  AND start_date <= $2
		  AND (is_regular OR end_date IS NULL OR end_date >= $1)
		ORDER BY created_at ASC, id ASC
	`, medications.Day(from), medications.Day(to))
}

func (r *MedicationsRepo) ListHistory(ctx context.Context) ([]medications.Medication, error) {
	return r.list(ctx, `
		SELECT `+medicationColumns+`
		FROM medicamentos
		WHERE is_regular = FALSE
		ORDER BY start_date DESC, name ASC
	`)
}

func (r *MedicationsRepo) list(ctx context.Context, query string, args ...any) ([]medications.Medication, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	typeMap := pgtype.NewMap()
	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows, typeMap)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanMedication lee una fila con medicationColumns. times es text[]: database/sql
// no lo soporta, se escanea con el Map de pgtype.
func scanMedication(row rowScanner, typeMap *pgtype.Map) (medications.Medication, error) {
	var m medications.Medication
	var end sql.NullTime
	var times []string

	if err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Description,
		&m.StartDate,
		&end,
		typeMap.SQLScanner(&times),
		&m.IsRegular,
		&m.Quantity,
		&m.Form,
		&m.Unit,
		&m.Archived,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	m.StartDate = medications.Day(m.StartDate)
	if d := fromNullTime(end); d != nil {
		day := medications.Day(*d)
		m.EndDate = &day
	}
	m.Times = times
	if m.Times == nil {
		m.Times = []string{}
	}
	return m, nil
}

// timesParam evita mandar NULL a la columna NOT NULL.
func timesParam(times []string) []string {
	if times == nil {
		return []string{}
	}
	return times
}
