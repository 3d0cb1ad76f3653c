package medications

import "time"

const (
	DefaultForm     = "comprimido"
	DefaultUnit     = "unidade"
	DefaultQuantity = 1.0

	// NoTimeLabel agrupa medicamentos sin horarios definidos en la vista principal.
	NoTimeLabel = "Sem Horário Definido"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Medication es un tratamiento registrado con su horario diario.
type Medication struct {
	ID string

	Name        string
	Description string

	StartDate time.Time
	EndDate   *time.Time // nil = sin fecha final

	Times     []string // "HH:MM", en el orden ingresado
	IsRegular bool     // uso continuo: EndDate no cuenta para actividad

	Quantity float64
	Form     string // comprimido, cápsula, gotas...
	Unit     string // unidade, mg, ml...

	Archived bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn indica si la medicación está vigente en el día d.
// Compara por día calendario; las horas de los valores se ignoran.
func (m Medication) ActiveOn(d time.Time) bool {
	day := Day(d)
	if Day(m.StartDate).After(day) {
		return false
	}
	if m.IsRegular || m.EndDate == nil {
		return true
	}
	return !Day(*m.EndDate).Before(day)
}

// Day normaliza t a medianoche UTC conservando año/mes/día de t.
func Day(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
