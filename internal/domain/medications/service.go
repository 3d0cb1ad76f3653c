package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("medication not found")
)

type Service struct {
	repo     Repository
	now      func() time.Time
	loc      *time.Location
	validate *validator.Validate
}

// NewService usa loc para decidir qué día es "hoy"; nil = UTC.
func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		now:      time.Now,
		loc:      loc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Input son los campos editables. Se usa igual para alta y edición (reemplazo completo).
type Input struct {
	Name        string `validate:"required,max=255"`
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Times       []string `validate:"dive,datetime=15:04"`
	IsRegular   bool
	Quantity    *float64 `validate:"omitempty,gte=0"`
	Form        string   `validate:"max=50"`
	Unit        string   `validate:"max=50"`
}

func (s *Service) Create(ctx context.Context, in Input) (Medication, error) {
	in, err := s.normalize(in)
	if err != nil {
		return Medication{}, err
	}

	now := s.now()
	m := apply(Medication{
		ID:        uuid.NewString(),
		CreatedAt: now,
	}, in)
	m.UpdatedAt = now

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Update reemplaza los campos editables. Medicaciones archivadas no se editan.
func (s *Service) Update(ctx context.Context, id string, in Input) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	in, err := s.normalize(in)
	if err != nil {
		return Medication{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if current.Archived {
		return Medication{}, ErrNotFound
	}

	m := apply(current, in)
	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// GetEditable devuelve la medicación sólo si aparece en la lista activa.
func (s *Service) GetEditable(ctx context.Context, id string) (Medication, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}
	if m.Archived || !stillRunning(m, s.today()) {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

// Archive es el "borrado": la medicación sale de las vistas activas pero queda en el historial.
func (s *Service) Archive(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Archive(ctx, id, s.now())
}

func (s *Service) ListActive(ctx context.Context) ([]Medication, error) {
	return s.repo.ListActive(ctx, s.today())
}

// today es el día actual en la zona configurada, igual que el calendario.
func (s *Service) today() time.Time {
	return Day(s.now().In(s.loc))
}

func (s *Service) ListOverlapping(ctx context.Context, from, to time.Time) ([]Medication, error) {
	from, to = Day(from), Day(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from after to", ErrInvalidInput)
	}
	return s.repo.ListOverlapping(ctx, from, to)
}

func (s *Service) ListHistory(ctx context.Context) ([]Medication, error) {
	return s.repo.ListHistory(ctx)
}

func (s *Service) normalize(in Input) (Input, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Form = strings.TrimSpace(in.Form)
	in.Unit = strings.TrimSpace(in.Unit)

	times := make([]string, 0, len(in.Times))
	for _, t := range in.Times {
		if t = strings.TrimSpace(t); t != "" {
			times = append(times, t)
		}
	}
	in.Times = times

	if err := s.validate.Struct(in); err != nil {
		return Input{}, validationError(err)
	}
	if in.StartDate.IsZero() {
		return Input{}, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}

	// "8:00" y "08:00" son el mismo horario: se guarda una vez, en el orden en que aparece
	canonical := make([]string, 0, len(in.Times))
	seen := make(map[TimeOfDay]struct{}, len(in.Times))
	for _, t := range in.Times {
		tod, err := ParseTimeOfDay(t)
		if err != nil {
			return Input{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if _, dup := seen[tod]; dup {
			continue
		}
		seen[tod] = struct{}{}
		canonical = append(canonical, tod.String())
	}
	in.Times = canonical

	in.StartDate = Day(in.StartDate)
	if in.EndDate != nil {
		end := Day(*in.EndDate)
		if !in.IsRegular && end.Before(in.StartDate) {
			return Input{}, fmt.Errorf("%w: end date before start date", ErrInvalidInput)
		}
		in.EndDate = &end
	}

	if in.Form == "" {
		in.Form = DefaultForm
	}
	if in.Unit == "" {
		in.Unit = DefaultUnit
	}
	return in, nil
}

func apply(m Medication, in Input) Medication {
	m.Name = in.Name
	m.Description = in.Description
	m.StartDate = in.StartDate
	m.EndDate = in.EndDate
	m.Times = in.Times
	m.IsRegular = in.IsRegular
	m.Quantity = DefaultQuantity
	if in.Quantity != nil {
		m.Quantity = *in.Quantity
	}
	m.Form = in.Form
	m.Unit = in.Unit
	return m
}

// stillRunning: regular, sin fin o fin >= hoy. Misma regla que la lista activa.
func stillRunning(m Medication, today time.Time) bool {
	if m.IsRegular || m.EndDate == nil {
		return true
	}
	return !Day(*m.EndDate).Before(today)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(parts, ", "))
}
