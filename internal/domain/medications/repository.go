package medications

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	// Update reemplaza los campos editables. ErrNotFound si no existe o está archivada.
	Update(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	Archive(ctx context.Context, id string, at time.Time) error

	// ListActive: no archivadas y vigentes en day (regular, sin fin o fin >= day), más recientes primero.
	ListActive(ctx context.Context, day time.Time) ([]Medication, error)
	// ListOverlapping: no archivadas con start <= to y (regular, sin fin o fin >= from), en orden de alta.
	ListOverlapping(ctx context.Context, from, to time.Time) ([]Medication, error)
	// ListHistory: no regulares (archivadas o no), start desc, name asc.
	ListHistory(ctx context.Context) ([]Medication, error)
}
