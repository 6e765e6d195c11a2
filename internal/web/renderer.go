// Package web implements the HTML rendering layer for Postershelf. It
// satisfies Echo's Renderer interface so handlers render pages by template
// name plus a context map, which keeps the workflow code independent of how
// the HTML itself is produced.
package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/printhaus/postershelf/internal/middleware"
	"github.com/printhaus/postershelf/internal/session"
)

// Renderer executes named html/template views. Every template file declares
// its own name with {{define "posters/index"}} so handlers can address views
// by path-style names regardless of file layout.
type Renderer struct {
	templates *template.Template
	sessions  *session.Manager
}

// NewRenderer parses all view templates under viewsDir (top level plus one
// directory deep) and returns a renderer that injects the CSRF token and
// pending flash messages into every render.
func NewRenderer(viewsDir string, sessions *session.Manager) (*Renderer, error) {
	tmpl := template.New("").Funcs(template.FuncMap{
		"date": formatDate,
	})

	tmpl, err := tmpl.ParseGlob(viewsDir + "/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing views: %w", err)
	}
	tmpl, err = tmpl.ParseGlob(viewsDir + "/*/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing nested views: %w", err)
	}

	return &Renderer{templates: tmpl, sessions: sessions}, nil
}

// Render implements echo.Renderer. When data is a map (the common case for
// page renders), the CSRF token and any queued flash messages are merged in
// so every template can show them without each handler plumbing them through.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	m, ok := data.(map[string]any)
	if !ok {
		if data == nil {
			m = map[string]any{}
		} else {
			return r.templates.ExecuteTemplate(w, name, data)
		}
	}

	if _, exists := m["CSRFToken"]; !exists {
		m["CSRFToken"] = middleware.GetCSRFToken(c)
	}

	var successes, errors []string
	for _, f := range r.sessions.PopFlashes(c) {
		switch f.Kind {
		case session.FlashError:
			errors = append(errors, f.Message)
		default:
			successes = append(successes, f.Message)
		}
	}
	m["SuccessMessages"] = successes
	m["ErrorMessages"] = errors

	return r.templates.ExecuteTemplate(w, name, m)
}

// formatDate renders an optional date column as YYYY-MM-DD, empty when unset.
func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
