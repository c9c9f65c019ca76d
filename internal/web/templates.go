package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/listview"
	"github.com/erazemk/armoury/internal/workspace"
	webembed "github.com/erazemk/armoury/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":  export.FormatDate,
		"title": export.Title,
		"sortMark": func(s listview.Sort, key string) string {
			if s.Key != key {
				return ""
			}
			if s.Dir == listview.Desc {
				return "▼"
			}
			return "▲"
		},
		"join": strings.Join,
		"statusClass": func(status string) string {
			switch strings.ToLower(status) {
			case "available":
				return "badge-ok"
			case "issued":
				return "badge-warn"
			case "repair":
				return "badge-bad"
			default:
				return "badge"
			}
		},
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				m[fmt.Sprint(kv[i])] = kv[i+1]
			}
			return m
		},
		"dayValue": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(time.DateOnly)
		},
	}
}

var pages = []string{
	"dashboard.html",
	"armoury.html",
	"asset_new.html",
	"asset_detail.html",
	"asset_edit.html",
	"ammunition.html",
	"transactions.html",
	"reports.html",
	"issue.html",
	"return.html",
	"return_scan.html",
	"officer_new.html",
}

// LoadTemplates parses all page templates with the layout and shared partials.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}
	partialBytes, err := fs.ReadFile(tfs, "partials.html")
	if err != nil {
		return nil, fmt.Errorf("reading partials template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		for _, src := range []struct {
			name string
			body []byte
		}{{"layout", layoutBytes}, {"partials", partialBytes}, {page, pageBytes}} {
			if tmpl, err = tmpl.Parse(string(src.body)); err != nil {
				return nil, fmt.Errorf("parsing %s for %s: %w", src.name, page, err)
			}
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title  string
	Active string
	Flash  *Flash
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB         *sql.DB
	Templates  *Templates
	Backend    Backend
	Workspaces *workspace.Registry
}

// page builds the base data for a page, consuming any pending flash.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title, active string) PageData {
	return PageData{Title: title, Active: active, Flash: popFlash(w, r)}
}

// workspace returns the caller's workspace.
func (s *Server) workspace(r *http.Request) *workspace.Workspace {
	return s.Workspaces.Get(r.Context(), workspace.IDFromContext(r.Context()))
}
