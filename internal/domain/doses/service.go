package doses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("administration record not found")
)

// MedicationLister evita depender del Service de medications completo.
type MedicationLister interface {
	ListOverlapping(ctx context.Context, from, to time.Time) ([]medications.Medication, error)
}

type Service struct {
	meds   MedicationLister
	repo   Repository
	engine *Engine
	now    func() time.Time
}

func NewService(meds MedicationLister, repo Repository, engine *Engine) *Service {
	return &Service{
		meds:   meds,
		repo:   repo,
		engine: engine,
		now:    time.Now,
	}
}

// CalendarDay es una celda de la grilla mensual.
type CalendarDay struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Doses   []DoseInstance
}

type CalendarView struct {
	Year  int
	Month time.Month
	Weeks [][]CalendarDay
	Prev  MonthRef
	Next  MonthRef
}

// Calendar arma la grilla del mes con las tomas de todos los días visibles.
// Si falla la lectura del store devuelve la grilla vacía junto con el error,
// para que la vista se pueda mostrar igual.
func (s *Service) Calendar(ctx context.Context, year int, month time.Month) (CalendarView, error) {
	grid, err := NewMonthGrid(year, month)
	if err != nil {
		return CalendarView{}, err
	}

	schedule, fetchErr := s.Expand(ctx, grid.Start, grid.End)
	if fetchErr != nil {
		schedule = Schedule{}
	}

	today := s.today()

	view := CalendarView{
		Year:  grid.Year,
		Month: grid.Month,
		Prev:  grid.Prev,
		Next:  grid.Next,
		Weeks: make([][]CalendarDay, 0, len(grid.Weeks)),
	}
	for _, week := range grid.Weeks {
		row := make([]CalendarDay, 0, len(week))
		for _, d := range week {
			row = append(row, CalendarDay{
				Date:    d,
				InMonth: grid.InMonth(d),
				IsToday: d.Equal(today),
				Doses:   schedule.On(d),
			})
		}
		view.Weeks = append(view.Weeks, row)
	}

	return view, fetchErr
}

// Expand lee medicaciones y registros del rango y los expande.
func (s *Service) Expand(ctx context.Context, from, to time.Time) (Schedule, error) {
	from, to, err := dayRange(from, to)
	if err != nil {
		return nil, err
	}

	meds, err := s.meds.ListOverlapping(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	records, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list administrations: %w", err)
	}

	return s.engine.ExpandRange(meds, records, from, to)
}

// Export genera el .ics del mes (sólo días del mes, sin los de la grilla vecina).
func (s *Service) Export(ctx context.Context, year int, month time.Month) ([]byte, error) {
	grid, err := NewMonthGrid(year, month)
	if err != nil {
		return nil, err
	}

	meds, err := s.meds.ListOverlapping(ctx, grid.First, grid.Last)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return s.engine.ExportRange(meds, grid.First, grid.Last)
}

type RecordInput struct {
	MedicationID string
	DoseDate     time.Time
	DoseTime     string // "HH:MM"
	Administered bool
}

// RecordAdministration marca o desmarca una toma. La reconciliación de
// concurrentes queda en el Upsert atómico del store; acá no se lee antes de escribir.
func (s *Service) RecordAdministration(ctx context.Context, in RecordInput) (AdministrationRecord, error) {
	medID := strings.TrimSpace(in.MedicationID)
	if medID == "" {
		return AdministrationRecord{}, fmt.Errorf("%w: medication id is required", ErrInvalidInput)
	}
	if in.DoseDate.IsZero() {
		return AdministrationRecord{}, fmt.Errorf("%w: dose date is required", ErrInvalidInput)
	}
	tod, err := medications.ParseTimeOfDay(in.DoseTime)
	if err != nil {
		return AdministrationRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	rec := AdministrationRecord{
		ID:           uuid.NewString(),
		MedicationID: medID,
		DoseDate:     medications.Day(in.DoseDate),
		DoseTime:     tod,
		Administered: in.Administered,
	}
	if in.Administered {
		now := s.now()
		rec.AdministeredAt = &now
	}

	return s.repo.Upsert(ctx, rec)
}

// today es el día actual en la zona configurada.
func (s *Service) today() time.Time {
	return medications.Day(s.now().In(s.engine.Location()))
}

// Status devuelve el registro de una toma. Sin registro la toma no fue
// administrada: se devuelve un registro vacío (ID "") para esa clave.
func (s *Service) Status(ctx context.Context, medID string, date time.Time, doseTime string) (AdministrationRecord, error) {
	medID = strings.TrimSpace(medID)
	if medID == "" {
		return AdministrationRecord{}, fmt.Errorf("%w: medication id is required", ErrInvalidInput)
	}
	if date.IsZero() {
		return AdministrationRecord{}, fmt.Errorf("%w: dose date is required", ErrInvalidInput)
	}
	tod, err := medications.ParseTimeOfDay(doseTime)
	if err != nil {
		return AdministrationRecord{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	key := NewDoseKey(medID, date, tod)
	rec, err := s.repo.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return AdministrationRecord{MedicationID: key.MedicationID, DoseDate: key.Date, DoseTime: key.Time}, nil
	}
	if err != nil {
		return AdministrationRecord{}, fmt.Errorf("get administration: %w", err)
	}
	return rec, nil
}
