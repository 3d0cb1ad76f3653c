package doses

import (
	"context"
	"time"
)

type Repository interface {
	// ListBetween devuelve los registros con DoseDate en [from, to].
	ListBetween(ctx context.Context, from, to time.Time) ([]AdministrationRecord, error)

	// Upsert crea o actualiza el registro de la clave (MedicationID, DoseDate, DoseTime)
	// de forma atómica en el store (insert-or-update-on-conflict). Nunca duplica la clave.
	// Devuelve el registro tal como quedó guardado.
	Upsert(ctx context.Context, rec AdministrationRecord) (AdministrationRecord, error)

	Get(ctx context.Context, key DoseKey) (AdministrationRecord, error)
}
