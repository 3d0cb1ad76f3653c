package doses

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"
	"medication-tracker/internal/middleware"
	"medication-tracker/internal/web"

	"github.com/go-chi/chi/v5"
)

const (
	msgInvalidMonth  = "Mês ou ano inválido."
	msgCalendarError = "Erro ao carregar o calendário."
	msgExportError   = "Erro ao gerar o arquivo de calendário."
)

func RegisterRoutes(r chi.Router, svc *Service, ui *web.UI) {
	r.Get("/calendario", calendarPage(svc, ui))
	r.Get("/calendario/{year}/{month}", calendarPage(svc, ui))
	r.Get("/calendario/exportar_ics", exportHandler(svc, ui))
	r.Get("/calendario/exportar_ics/{year}/{month}", exportHandler(svc, ui))

	r.Post("/api/marcar_administrado", markAdministeredHandler(svc))
	r.Get("/api/administracoes/{medID}/{date}/{time}", doseStatusHandler(svc))
	r.Get("/api/calendario/{year}/{month}", calendarJSONHandler(svc))
}

// markRequest usa los nombres de campo que manda el calendario.
type markRequest struct {
	MedicationID string `json:"medicamento_id"`
	DoseDate     string `json:"data_dose"` // YYYY-MM-DD
	DoseTime     string `json:"hora_dose"` // HH:MM
	Administered *bool  `json:"foi_administrado"`
}

type markResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type statusResponse struct {
	MedicationID   string     `json:"medicamento_id"`
	Date           string     `json:"data_dose"`
	Time           string     `json:"hora_dose"`
	Administered   bool       `json:"foi_administrado"`
	AdministeredAt *time.Time `json:"administrado_em,omitempty"`
}

type doseResponse struct {
	MedicationID string `json:"medicamento_id"`
	Name         string `json:"name"`
	Description  string `json:"descricao,omitempty"`
	Date         string `json:"data_dose"`
	Time         string `json:"hora_dose"`
	Administered bool   `json:"foi_administrado"`
}

type dayResponse struct {
	Date    string         `json:"date"`
	InMonth bool           `json:"in_month"`
	IsToday bool           `json:"is_today"`
	Doses   []doseResponse `json:"doses"`
}

type calendarResponse struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Weeks [][]dayResponse `json:"weeks"`
	Prev  MonthRef        `json:"prev"`
	Next  MonthRef        `json:"next"`
}

func calendarPage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, ok := monthFromRequest(r, svc.today())
		if !ok {
			ui.Redirect(w, r, "/calendario", web.FlashError, msgInvalidMonth)
			return
		}

		view, err := svc.Calendar(r.Context(), year, month)
		if errors.Is(err, ErrInvalidRange) {
			ui.Redirect(w, r, "/calendario", web.FlashError, msgInvalidMonth)
			return
		}
		title := fmt.Sprintf("Calendário %02d/%d", int(month), year)
		if err != nil {
			middleware.GetLogger(r.Context()).Error("calendar failed", map[string]any{"err": err})
			ui.Render(w, r, http.StatusOK, "calendario.html", title, view,
				web.Flash{Kind: web.FlashError, Message: msgCalendarError})
			return
		}
		ui.Render(w, r, http.StatusOK, "calendario.html", title, view)
	}
}

// exportHandler godoc
// @Summary Exportar calendario del mes
// @Description Genera un archivo iCalendar con un evento de 15 minutos por toma. No incluye estado de administración.
// @Tags calendario
// @Produce text/calendar
// @Param year path int true "Año"
// @Param month path int true "Mes (1-12)"
// @Success 200 {file} file
// @Router /calendario/exportar_ics/{year}/{month} [get]
func exportHandler(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, ok := monthFromRequest(r, svc.today())
		if !ok {
			ui.Redirect(w, r, "/calendario", web.FlashError, msgInvalidMonth)
			return
		}

		body, err := svc.Export(r.Context(), year, month)
		if err != nil {
			if errors.Is(err, ErrInvalidRange) {
				ui.Redirect(w, r, "/calendario", web.FlashError, msgInvalidMonth)
				return
			}
			middleware.GetLogger(r.Context()).Error("ics export failed", map[string]any{"err": err})
			ui.Redirect(w, r, fmt.Sprintf("/calendario/%d/%d", year, int(month)), web.FlashError, msgExportError)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename(year, month)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}

// ExportFilename: medicamentos-YYYY-MM.ics
func ExportFilename(year int, month time.Month) string {
	return fmt.Sprintf("medicamentos-%04d-%02d.ics", year, int(month))
}

// markAdministeredHandler godoc
// @Summary Marcar toma como administrada
// @Description Crea o actualiza el registro de la toma (medicación, día, hora). Repetir la llamada no duplica registros.
// @Tags calendario
// @Accept json
// @Produce json
// @Param payload body markRequest true "Toma a marcar; data_dose YYYY-MM-DD, hora_dose HH:MM"
// @Success 200 {object} markResponse
// @Failure 400 {object} markResponse
// @Failure 500 {object} markResponse
// @Router /api/marcar_administrado [post]
func markAdministeredHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: "JSON inválido."})
			return
		}
		if strings.TrimSpace(req.MedicationID) == "" {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: "medicamento_id é obrigatório."})
			return
		}
		date, err := time.Parse(medications.DateLayout, strings.TrimSpace(req.DoseDate))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: "Formato de data inválido."})
			return
		}
		if _, err := medications.ParseTimeOfDay(req.DoseTime); err != nil {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: "Formato de hora inválido."})
			return
		}

		administered := false
		if req.Administered != nil {
			administered = *req.Administered
		}

		_, err = svc.RecordAdministration(r.Context(), RecordInput{
			MedicationID: req.MedicationID,
			DoseDate:     date,
			DoseTime:     req.DoseTime,
			Administered: administered,
		})
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, markResponse{Message: err.Error()})
			return
		case err != nil:
			middleware.GetLogger(r.Context()).Error("record administration failed", map[string]any{
				"medication_id": req.MedicationID,
				"err":           err,
			})
			writeJSON(w, http.StatusInternalServerError, markResponse{Message: "Erro ao atualizar status."})
			return
		}

		msg := "Dose desmarcada."
		if administered {
			msg = "Dose marcada como administrada."
		}
		writeJSON(w, http.StatusOK, markResponse{Success: true, Message: msg})
	}
}

// doseStatusHandler godoc
// @Summary Estado de una toma
// @Description Devuelve si la toma (medicación, día, hora) fue administrada. Sin registro se informa como no administrada.
// @Tags calendario
// @Produce json
// @Param medID path string true "ID de la medicación"
// @Param date path string true "Día YYYY-MM-DD"
// @Param time path string true "Hora HH:MM"
// @Success 200 {object} statusResponse
// @Failure 400 {object} markResponse
// @Failure 500 {object} markResponse
// @Router /api/administracoes/{medID}/{date}/{time} [get]
func doseStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		medID := chi.URLParam(r, "medID")
		date, err := time.Parse(medications.DateLayout, chi.URLParam(r, "date"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: "Formato de data inválido."})
			return
		}

		rec, err := svc.Status(r.Context(), medID, date, chi.URLParam(r, "time"))
		switch {
		case errors.Is(err, ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, markResponse{Message: err.Error()})
			return
		case err != nil:
			middleware.GetLogger(r.Context()).Error("dose status failed", map[string]any{
				"medication_id": medID,
				"err":           err,
			})
			writeJSON(w, http.StatusInternalServerError, markResponse{Message: "Erro ao consultar status."})
			return
		}

		writeJSON(w, http.StatusOK, statusResponse{
			MedicationID:   rec.MedicationID,
			Date:           rec.DoseDate.Format(medications.DateLayout),
			Time:           rec.DoseTime.String(),
			Administered:   rec.Administered,
			AdministeredAt: rec.AdministeredAt,
		})
	}
}

// calendarJSONHandler godoc
// @Summary Calendario del mes
// @Description Grilla de semanas (lunes a domingo) con las tomas de cada día y su estado.
// @Tags calendario
// @Produce json
// @Param year path int true "Año"
// @Param month path int true "Mes (1-12)"
// @Success 200 {object} calendarResponse
// @Failure 400 {object} markResponse
// @Failure 500 {object} markResponse
// @Router /api/calendario/{year}/{month} [get]
func calendarJSONHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, month, ok := monthFromRequest(r, svc.today())
		if !ok {
			writeJSON(w, http.StatusBadRequest, markResponse{Message: msgInvalidMonth})
			return
		}

		view, err := svc.Calendar(r.Context(), year, month)
		switch {
		case errors.Is(err, ErrInvalidRange):
			writeJSON(w, http.StatusBadRequest, markResponse{Message: msgInvalidMonth})
			return
		case err != nil:
			middleware.GetLogger(r.Context()).Error("calendar failed", map[string]any{"err": err})
			writeJSON(w, http.StatusInternalServerError, markResponse{Message: msgCalendarError})
			return
		}
		writeJSON(w, http.StatusOK, toCalendarResponse(view))
	}
}

// monthFromRequest lee {year}/{month}; sin parámetros usa el mes actual.
func monthFromRequest(r *http.Request, today time.Time) (int, time.Month, bool) {
	ys, ms := chi.URLParam(r, "year"), chi.URLParam(r, "month")
	if ys == "" && ms == "" {
		return today.Year(), today.Month(), true
	}

	year, err := strconv.Atoi(ys)
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func toCalendarResponse(v CalendarView) calendarResponse {
	out := calendarResponse{
		Year:  v.Year,
		Month: int(v.Month),
		Prev:  v.Prev,
		Next:  v.Next,
		Weeks: make([][]dayResponse, 0, len(v.Weeks)),
	}
	for _, week := range v.Weeks {
		row := make([]dayResponse, 0, len(week))
		for _, d := range week {
			doses := make([]doseResponse, 0, len(d.Doses))
			for _, di := range d.Doses {
				doses = append(doses, doseResponse{
					MedicationID: di.MedicationID,
					Name:         di.Name,
					Description:  di.Description,
					Date:         di.Date.Format(medications.DateLayout),
					Time:         di.Time,
					Administered: di.Administered,
				})
			}
			row = append(row, dayResponse{
				Date:    d.Date.Format(medications.DateLayout),
				InMonth: d.InMonth,
				IsToday: d.IsToday,
				Doses:   doses,
			})
		}
		out.Weeks = append(out.Weeks, row)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
