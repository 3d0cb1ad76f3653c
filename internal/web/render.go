package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageNames = []string{"index.html", "historico.html", "calendario.html"}

// Page es lo que recibe cada template: título, flashes pendientes y datos de la vista.
type Page struct {
	Title   string
	Flashes []Flash
	Data    any
}

// UI junta templates y flashes para los handlers HTML.
type UI struct {
	pages map[string]*template.Template
	Flash *Flasher
}

func NewUI(secret string) (*UI, error) {
	funcs := template.FuncMap{
		"date":    displayDate,
		"iso":     isoDate,
		"qty":     func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) },
		"weekday": func(t time.Time) string { return t.Weekday().String()[:3] },
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &UI{pages: pages, Flash: NewFlasher(secret)}, nil
}

// Render ejecuta la página dentro del layout. Consume los flashes pendientes y
// agrega extra (errores del mismo request).
func (u *UI) Render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any, extra ...Flash) {
	t, ok := u.pages[page]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	err := t.ExecuteTemplate(&buf, "layout", Page{
		Title:   title,
		Flashes: append(u.Flash.Pop(w, r), extra...),
		Data:    data,
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Redirect deja un flash y redirige con 303.
func (u *UI) Redirect(w http.ResponseWriter, r *http.Request, url string, kind FlashKind, msg string) {
	if msg != "" {
		u.Flash.Add(w, r, kind, msg)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func displayDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return "N/A"
		}
		return t.Format("02/01/2006")
	case *time.Time:
		if t == nil || t.IsZero() {
			return "N/A"
		}
		return t.Format("02/01/2006")
	default:
		return "N/A"
	}
}

func isoDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	default:
		return ""
	}
}
