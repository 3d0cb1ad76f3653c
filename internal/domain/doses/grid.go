package doses

import (
	"fmt"
	"time"
)

// MonthRef identifica un mes para la navegación del calendario.
type MonthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func (m MonthRef) First() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}

func refOf(t time.Time) MonthRef {
	return MonthRef{Year: t.Year(), Month: int(t.Month())}
}

// MonthGrid es la grilla de semanas completas (lunes a domingo) que cubre un mes,
// incluyendo días de los meses vecinos.
type MonthGrid struct {
	Year  int
	Month time.Month

	First time.Time // día 1 del mes
	Last  time.Time // último día del mes
	Start time.Time // primer día visible (lunes)
	End   time.Time // último día visible (domingo)

	Weeks [][]time.Time

	Prev MonthRef
	Next MonthRef
}

func NewMonthGrid(year int, month time.Month) (MonthGrid, error) {
	if month < time.January || month > time.December {
		return MonthGrid{}, fmt.Errorf("%w: month %d", ErrInvalidRange, month)
	}
	if year < 1 || year > 9999 {
		return MonthGrid{}, fmt.Errorf("%w: year %d", ErrInvalidRange, year)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -mondayOffset(first))
	end := last.AddDate(0, 0, 6-mondayOffset(last))

	g := MonthGrid{
		Year:  year,
		Month: month,
		First: first,
		Last:  last,
		Start: start,
		End:   end,
		Prev:  refOf(PrevMonth(first)),
		Next:  refOf(NextMonth(first)),
	}

	var week []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		week = append(week, d)
		if len(week) == 7 {
			g.Weeks = append(g.Weeks, week)
			week = nil
		}
	}
	return g, nil
}

// InMonth indica si d cae dentro del mes de la grilla.
func (g MonthGrid) InMonth(d time.Time) bool {
	return d.Year() == g.Year && d.Month() == g.Month
}

// PrevMonth: día 1 del mes anterior (first - 1 día, normalizado a día 1).
func PrevMonth(first time.Time) time.Time {
	p := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return time.Date(p.Year(), p.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth: día 1 del mes siguiente. Desde el día 28, +4 días siempre cae en el
// mes siguiente sin importar el largo del mes.
func NextMonth(first time.Time) time.Time {
	n := time.Date(first.Year(), first.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	return time.Date(n.Year(), n.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func mondayOffset(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}
