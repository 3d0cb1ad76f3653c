package medications

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"medication-tracker/internal/middleware"
	"medication-tracker/internal/web"

	"github.com/go-chi/chi/v5"
)

const (
	msgRequired     = "Nome e Data de Início são obrigatórios!"
	msgBadFormat    = "Formato de data ou quantidade inválido."
	msgNotEditable  = "Medicamento não disponível para edição (pode estar arquivado ou ter data final passada e não ser regular)."
	msgStoreFailure = "Não foi possível acessar a base de dados."
)

type indexView struct {
	Groups   []TimeGroup
	ShowForm bool
	Form     *formView
}

// formView son los valores del formulario tal como se muestran (strings).
type formView struct {
	Action      string
	Name        string
	Description string
	StartDate   string
	EndDate     string
	Times       []string
	IsRegular   bool
	Quantity    string
	Form        string
	Unit        string
}

func emptyForm() *formView {
	return &formView{
		Action:   "/add",
		Quantity: "1",
		Form:     DefaultForm,
		Unit:     DefaultUnit,
	}
}

func formFor(m Medication) *formView {
	f := &formView{
		Action:      "/edit/" + m.ID,
		Name:        m.Name,
		Description: m.Description,
		StartDate:   m.StartDate.Format(DateLayout),
		Times:       m.Times,
		IsRegular:   m.IsRegular,
		Quantity:    strconv.FormatFloat(m.Quantity, 'f', -1, 64),
		Form:        m.Form,
		Unit:        m.Unit,
	}
	if m.EndDate != nil {
		f.EndDate = m.EndDate.Format(DateLayout)
	}
	return f
}

func indexPage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := indexView{ShowForm: r.URL.Query().Get("show_form") != ""}
		if view.ShowForm {
			view.Form = emptyForm()
		}

		var extra []web.Flash
		meds, err := svc.ListActive(r.Context())
		if err != nil {
			// la vista se muestra vacía con el error
			middleware.GetLogger(r.Context()).Error("list active medications failed", map[string]any{"err": err})
			extra = append(extra, web.Flash{Kind: web.FlashError, Message: "Erro ao buscar medicamentos."})
			meds = nil
		}
		view.Groups = GroupByTime(meds)

		ui.Render(w, r, http.StatusOK, "index.html", "Medicamentos", view, extra...)
	}
}

func addPage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, msg := parseMedicationForm(r)
		if msg != "" {
			ui.Redirect(w, r, "/?show_form=1", web.FlashError, msg)
			return
		}

		if _, err := svc.Create(r.Context(), in); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				ui.Redirect(w, r, "/?show_form=1", web.FlashError, err.Error())
				return
			}
			middleware.GetLogger(r.Context()).Error("create medication failed", map[string]any{"err": err})
			ui.Redirect(w, r, "/", web.FlashError, "Erro ao adicionar medicamento.")
			return
		}
		ui.Redirect(w, r, "/", web.FlashSuccess, "Medicamento adicionado com sucesso!")
	}
}

func editPage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := svc.GetEditable(r.Context(), chi.URLParam(r, "medID"))
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				ui.Redirect(w, r, "/", web.FlashWarning, msgNotEditable)
				return
			}
			ui.Redirect(w, r, "/", web.FlashError, msgStoreFailure)
			return
		}

		meds, err := svc.ListActive(r.Context())
		if err != nil {
			meds = nil
		}

		ui.Render(w, r, http.StatusOK, "index.html", "Editar "+m.Name, indexView{
			Groups:   GroupByTime(meds),
			ShowForm: true,
			Form:     formFor(m),
		})
	}
}

func updatePage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "medID")
		back := "/edit/" + id

		in, msg := parseMedicationForm(r)
		if msg != "" {
			ui.Redirect(w, r, back, web.FlashError, msg)
			return
		}

		if _, err := svc.Update(r.Context(), id, in); err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				ui.Redirect(w, r, back, web.FlashError, err.Error())
			case errors.Is(err, ErrNotFound):
				ui.Redirect(w, r, "/", web.FlashWarning, "Medicamento não encontrado para atualização ou já arquivado.")
			default:
				middleware.GetLogger(r.Context()).Error("update medication failed", map[string]any{"medication_id": id, "err": err})
				ui.Redirect(w, r, "/", web.FlashError, "Erro ao atualizar medicamento.")
			}
			return
		}
		ui.Redirect(w, r, "/", web.FlashSuccess, "Medicamento atualizado com sucesso!")
	}
}

func archivePage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Archive(r.Context(), chi.URLParam(r, "medID")); err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
				ui.Redirect(w, r, "/", web.FlashWarning, "Medicamento não encontrado.")
				return
			}
			ui.Redirect(w, r, "/", web.FlashError, "Erro ao arquivar medicamento.")
			return
		}
		ui.Redirect(w, r, "/", web.FlashSuccess, "Medicamento movido para o histórico (arquivado).")
	}
}

func historyPage(svc *Service, ui *web.UI) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var extra []web.Flash
		meds, err := svc.ListHistory(r.Context())
		if err != nil {
			middleware.GetLogger(r.Context()).Error("list history failed", map[string]any{"err": err})
			extra = append(extra, web.Flash{Kind: web.FlashError, Message: "Erro ao buscar histórico de medicamentos."})
			meds = nil
		}
		ui.Render(w, r, http.StatusOK, "historico.html", "Histórico", GroupByMonth(meds), extra...)
	}
}

// parseMedicationForm lee el formulario. Devuelve un mensaje para el usuario si falta
// algo obligatorio o hay un formato inválido; en ese caso no se toca la base.
func parseMedicationForm(r *http.Request) (Input, string) {
	if err := r.ParseForm(); err != nil {
		return Input{}, msgBadFormat
	}

	name := strings.TrimSpace(r.PostForm.Get("name"))
	startStr := strings.TrimSpace(r.PostForm.Get("startDate"))
	if name == "" || startStr == "" {
		return Input{}, msgRequired
	}

	start, end, err := parseDates(startStr, r.PostForm.Get("endDate"))
	if err != nil {
		return Input{}, msgBadFormat
	}

	var qty *float64
	if q := strings.TrimSpace(r.PostForm.Get("quantity")); q != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(q, ",", "."), 64)
		if err != nil {
			return Input{}, msgBadFormat
		}
		qty = &v
	}

	_, isRegular := r.PostForm["isRegular"]

	return Input{
		Name:        name,
		Description: r.PostForm.Get("descricao"),
		StartDate:   start,
		EndDate:     end,
		Times:       r.PostForm["times[]"],
		IsRegular:   isRegular,
		Quantity:    qty,
		Form:        r.PostForm.Get("formType"),
		Unit:        r.PostForm.Get("unit"),
	}, ""
}
