package doses

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/platform/logger"
)

var ErrInvalidRange = errors.New("invalid date range")

// ActiveOn: start <= d y (regular, sin fecha final o fin >= d).
func ActiveOn(m medications.Medication, d time.Time) bool {
	return m.ActiveOn(d)
}

// Engine expande medicaciones en tomas diarias. No hace I/O: trabaja sobre
// datos ya leídos por el llamador.
type Engine struct {
	log logger.Logger
	loc *time.Location
	now func() time.Time
}

func NewEngine(log logger.Logger, loc *time.Location) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		log: log.With(map[string]any{"component": "doses"}),
		loc: loc,
		now: time.Now,
	}
}

func (e *Engine) Location() *time.Location { return e.loc }

// ExpandRange calcula las tomas de cada día en [start, end] con su estado de administración.
// Horarios inválidos se saltean (con warning); días sin tomas no aparecen en el resultado.
func (e *Engine) ExpandRange(meds []medications.Medication, records []AdministrationRecord, start, end time.Time) (Schedule, error) {
	start, end, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}

	status := IndexRecords(records)
	skip := map[string]struct{}{}

	out := Schedule{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := e.dosesOn(meds, d, status, skip)
		if len(day) > 0 {
			out[d] = day
		}
	}
	return out, nil
}

// dosesOn arma las tomas de un día, ordenadas por hora. El orden estable deja
// las medicaciones con la misma hora en el orden de meds.
// status nil = todas sin administrar (export).
func (e *Engine) dosesOn(meds []medications.Medication, d time.Time, status map[DoseKey]bool, skip map[string]struct{}) []DoseInstance {
	var day []DoseInstance
	emitted := map[DoseKey]struct{}{}

	for _, m := range meds {
		if len(m.Times) == 0 || !ActiveOn(m, d) {
			continue
		}
		for _, raw := range m.Times {
			tod, err := medications.ParseTimeOfDay(raw)
			if err != nil {
				e.warnSkipped(m, raw, err, skip)
				continue
			}

			// una toma por clave aunque el horario venga repetido ("8:00" y "08:00")
			key := NewDoseKey(m.ID, d, tod)
			if _, dup := emitted[key]; dup {
				continue
			}
			emitted[key] = struct{}{}
			day = append(day, DoseInstance{
				MedicationID: m.ID,
				Name:         m.Name,
				Description:  m.Description,
				Date:         key.Date,
				Time:         tod.String(),
				TimeOfDay:    tod,
				Administered: status[key],
			})
		}
	}

	sort.SliceStable(day, func(i, j int) bool {
		return day[i].TimeOfDay < day[j].TimeOfDay
	})
	return day
}

// warnSkipped loguea una sola vez por (medicación, horario) en cada expansión.
func (e *Engine) warnSkipped(m medications.Medication, raw string, err error, skip map[string]struct{}) {
	k := m.ID + "|" + raw
	if _, seen := skip[k]; seen {
		return
	}
	skip[k] = struct{}{}
	e.log.Warn("skipping unparseable dose time", map[string]any{
		"medication_id": m.ID,
		"dose_time":     raw,
		"err":           err,
	})
}

func dayRange(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: missing date", ErrInvalidRange)
	}
	start, end = medications.Day(start), medications.Day(end)
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s after end %s",
			ErrInvalidRange, start.Format(medications.DateLayout), end.Format(medications.DateLayout))
	}
	return start, end, nil
}
