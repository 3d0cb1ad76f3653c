package medications

import (
	"sort"
	"time"
)

// TimeGroup es una entrada de la vista principal: un horario y sus medicaciones.
type TimeGroup struct {
	Time        string
	Medications []Medication
}

// GroupByTime arma el multi-map horario -> medicaciones. Los horarios salen en orden
// ascendente y NoTimeLabel siempre al final. Dentro de cada grupo se respeta el orden de meds.
func GroupByTime(meds []Medication) []TimeGroup {
	byTime := map[string][]Medication{}
	keys := make([]string, 0)

	for _, m := range meds {
		times := m.Times
		if len(times) == 0 {
			times = []string{NoTimeLabel}
		}
		for _, t := range times {
			if _, ok := byTime[t]; !ok {
				keys = append(keys, t)
			}
			byTime[t] = append(byTime[t], m)
		}
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ni, nj := keys[i] == NoTimeLabel, keys[j] == NoTimeLabel
		if ni != nj {
			return nj
		}
		return keys[i] < keys[j]
	})

	out := make([]TimeGroup, 0, len(keys))
	for _, k := range keys {
		out = append(out, TimeGroup{Time: k, Medications: byTime[k]})
	}
	return out
}

// MonthGroup agrupa el historial por mes de inicio.
type MonthGroup struct {
	Month       time.Time // día 1 del mes, UTC
	Medications []Medication
}

// Label devuelve "January 2024".
func (g MonthGroup) Label() string {
	return g.Month.Format("January 2006")
}

// GroupByMonth agrupa por mes de StartDate, meses más recientes primero.
// Dentro de cada mes se mantiene el orden recibido.
func GroupByMonth(meds []Medication) []MonthGroup {
	idx := map[time.Time]int{}
	out := make([]MonthGroup, 0)

	for _, m := range meds {
		if m.StartDate.IsZero() {
			continue
		}
		y, mo, _ := m.StartDate.Date()
		key := time.Date(y, mo, 1, 0, 0, 0, 0, time.UTC)

		i, ok := idx[key]
		if !ok {
			i = len(out)
			idx[key] = i
			out = append(out, MonthGroup{Month: key})
		}
		out[i].Medications = append(out[i].Medications, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month.After(out[j].Month)
	})
	return out
}
