package doses

import (
	"fmt"
	"time"

	"medication-tracker/internal/domain/medications"

	ics "github.com/arran4/golang-ical"
)

const (
	DoseDuration = 15 * time.Minute

	productID    = "-//medication-tracker//doses//PT"
	calendarName = "Medicamentos"
	uidDomain    = "medication-tracker"
)

// ExportRange genera un iCalendar con un evento por toma esperada en [start, end].
// Usa la misma regla de actividad y horarios que ExpandRange pero nunca mira el
// estado de administración: exporta todas las tomas.
func (e *Engine) ExportRange(meds []medications.Medication, start, end time.Time) ([]byte, error) {
	start, end, err := dayRange(start, end)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)

	stamp := e.now().UTC()
	skip := map[string]struct{}{}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for _, dose := range e.dosesOn(meds, d, nil, skip) {
			at := dose.TimeOfDay.On(d, e.loc)

			ev := cal.AddEvent(eventUID(dose))
			ev.SetDtStampTime(stamp)
			ev.SetStartAt(at)
			ev.SetEndAt(at.Add(DoseDuration))
			ev.SetSummary("Take: " + dose.Name)
			if dose.Description != "" {
				ev.SetDescription(dose.Description)
			}
		}
	}

	return []byte(cal.Serialize()), nil
}

// eventUID es estable por toma: reexportar el mismo mes actualiza en vez de duplicar.
func eventUID(d DoseInstance) string {
	return fmt.Sprintf("%s-%s-%02d%02d@%s",
		d.MedicationID, d.Date.Format("20060102"), d.TimeOfDay.Hour(), d.TimeOfDay.Minute(), uidDomain)
}
