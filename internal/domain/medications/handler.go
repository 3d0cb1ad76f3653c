package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"medication-tracker/internal/middleware"
	"medication-tracker/internal/web"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, ui *web.UI) {
	// Páginas (formularios con flash + redirect)
	r.Get("/", indexPage(svc, ui))
	r.Post("/add", addPage(svc, ui))
	r.Get("/edit/{medID}", editPage(svc, ui))
	r.Post("/edit/{medID}", updatePage(svc, ui))
	r.Post("/delete/{medID}", archivePage(svc, ui))
	r.Get("/historico", historyPage(svc, ui))

	// API JSON
	r.Route("/api/medicamentos", func(mr chi.Router) {
		mr.Get("/", listMedicationsHandler(svc))
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/{medID}", getMedicationHandler(svc))
		mr.Put("/{medID}", updateMedicationHandler(svc))
		mr.Delete("/{medID}", archiveMedicationHandler(svc))
	})
}

// medicationRequest es el cuerpo para crear o reemplazar una medicación.
type medicationRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"descricao"`
	StartDate   string   `json:"startDate"` // YYYY-MM-DD
	EndDate     string   `json:"endDate"`   // YYYY-MM-DD opcional
	Times       []string `json:"times"`     // ["08:00","20:00"]
	IsRegular   bool     `json:"isRegular"`
	Quantity    *float64 `json:"quantity"`
	Form        string   `json:"form"`
	Unit        string   `json:"unit"`
}

// medicationResponse representa una medicación devuelta por la API.
type medicationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"descricao"`
	StartDate   string    `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Times       []string  `json:"times"`
	IsRegular   bool      `json:"is_regular"`
	Quantity    float64   `json:"quantity"`
	Form        string    `json:"form"`
	Unit        string    `json:"unit"`
	Archived    bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// listMedicationsHandler godoc
// @Summary Listar medicaciones activas
// @Description Devuelve las medicaciones no archivadas vigentes hoy (regulares, sin fecha final o con fecha final futura), más recientes primero.
// @Tags medicamentos
// @Produce json
// @Success 200 {array} medicationResponse
// @Failure 500 {object} messageResponse
// @Router /api/medicamentos [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListActive(r.Context())
		if err != nil {
			middleware.GetLogger(r.Context()).Error("list active medications failed", map[string]any{"err": err})
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "Erro ao buscar medicamentos."})
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createMedicationHandler godoc
// @Summary Registrar medicación
// @Description Crea una medicación con su horario diario. name y startDate son obligatorios.
// @Tags medicamentos
// @Accept json
// @Produce json
// @Param payload body medicationRequest true "Datos de la medicación; fechas YYYY-MM-DD, horarios HH:MM"
// @Success 201 {object} medicationResponse
// @Failure 400 {object} messageResponse
// @Failure 500 {object} messageResponse
// @Router /api/medicamentos [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeMedicationRequest(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
			return
		}

		m, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// getMedicationHandler godoc
// @Summary Obtener medicación
// @Tags medicamentos
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 404 {object} messageResponse
// @Router /api/medicamentos/{medID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetByID(r.Context(), chi.URLParam(r, "medID"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Reemplazar medicación
// @Description Reemplaza todos los campos editables. Medicaciones archivadas devuelven 404.
// @Tags medicamentos
// @Accept json
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param payload body medicationRequest true "Datos completos de la medicación"
// @Success 200 {object} medicationResponse
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/medicamentos/{medID} [put]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := decodeMedicationRequest(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
			return
		}

		m, err := svc.Update(r.Context(), chi.URLParam(r, "medID"), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// archiveMedicationHandler godoc
// @Summary Archivar medicación
// @Description No borra: marca is_archived y la medicación pasa al historial.
// @Tags medicamentos
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Success 200 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /api/medicamentos/{medID} [delete]
func archiveMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Archive(r.Context(), chi.URLParam(r, "medID")); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Medicamento movido para o histórico (arquivado)."})
	}
}

func decodeMedicationRequest(r *http.Request) (Input, error) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, errors.New("invalid json")
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.StartDate) == "" {
		return Input{}, errors.New("name and startDate are required")
	}

	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return Input{}, err
	}

	return Input{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Times:       req.Times,
		IsRegular:   req.IsRegular,
		Quantity:    req.Quantity,
		Form:        req.Form,
		Unit:        req.Unit,
	}, nil
}

func parseDates(startStr, endStr string) (time.Time, *time.Time, error) {
	start, err := time.Parse(DateLayout, strings.TrimSpace(startStr))
	if err != nil {
		return time.Time{}, nil, errors.New("startDate must be YYYY-MM-DD")
	}
	if strings.TrimSpace(endStr) == "" {
		return start, nil, nil
	}
	end, err := time.Parse(DateLayout, strings.TrimSpace(endStr))
	if err != nil {
		return time.Time{}, nil, errors.New("endDate must be YYYY-MM-DD")
	}
	return start, &end, nil
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Medicamento não encontrado."})
	default:
		middleware.GetLogger(r.Context()).Error("medications request failed", map[string]any{"err": err})
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
	}
}

func toMedicationResponse(m Medication) medicationResponse {
	var end *string
	if m.EndDate != nil {
		s := m.EndDate.Format(DateLayout)
		end = &s
	}
	times := m.Times
	if times == nil {
		times = []string{}
	}
	return medicationResponse{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		StartDate:   m.StartDate.Format(DateLayout),
		EndDate:     end,
		Times:       times,
		IsRegular:   m.IsRegular,
		Quantity:    m.Quantity,
		Form:        m.Form,
		Unit:        m.Unit,
		Archived:    m.Archived,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
