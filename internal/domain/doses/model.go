package doses

import (
	"sort"
	"time"

	"medication-tracker/internal/domain/medications"
)

// DoseKey identifica una toma: medicación + día + hora.
// Construir siempre con NewDoseKey para que fecha y hora queden normalizadas.
type DoseKey struct {
	MedicationID string
	Date         time.Time // medianoche UTC
	Time         medications.TimeOfDay
}

func NewDoseKey(medicationID string, date time.Time, t medications.TimeOfDay) DoseKey {
	return DoseKey{
		MedicationID: medicationID,
		Date:         medications.Day(date),
		Time:         t,
	}
}

// AdministrationRecord registra si una toma concreta se administró.
// No existe hasta que el usuario marca/desmarca la toma.
type AdministrationRecord struct {
	ID           string
	MedicationID string
	DoseDate     time.Time
	DoseTime     medications.TimeOfDay

	Administered   bool
	AdministeredAt *time.Time
}

func (r AdministrationRecord) Key() DoseKey {
	return NewDoseKey(r.MedicationID, r.DoseDate, r.DoseTime)
}

// DoseInstance es una toma esperada. Se calcula al vuelo y nunca se persiste.
type DoseInstance struct {
	MedicationID string
	Name         string
	Description  string

	Date      time.Time
	Time      string // "HH:MM" canónico
	TimeOfDay medications.TimeOfDay

	Administered bool
}

func (d DoseInstance) Key() DoseKey {
	return NewDoseKey(d.MedicationID, d.Date, d.TimeOfDay)
}

// Schedule es el resultado disperso de una expansión: sólo días con tomas.
type Schedule map[time.Time][]DoseInstance

// On devuelve las tomas del día (nil si no hay).
func (s Schedule) On(d time.Time) []DoseInstance {
	return s[medications.Day(d)]
}

// Days devuelve los días con tomas en orden ascendente.
func (s Schedule) Days() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// IndexRecords arma el mapa de estado por DoseKey.
func IndexRecords(records []AdministrationRecord) map[DoseKey]bool {
	out := make(map[DoseKey]bool, len(records))
	for _, r := range records {
		out[r.Key()] = r.Administered
	}
	return out
}
