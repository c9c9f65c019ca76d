package web

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// Report is one category table on the reports page.
type Report struct {
	Category string
	List     *List[model.Asset]
}

// ReportsPage handles GET /reports. URL parameters apply to the category
// named by cat only.
func (s *Server) ReportsPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Reports", "reports")
	ws := s.workspace(r)
	target := r.URL.Query().Get("cat")

	var reports []Report
	for _, cat := range model.Categories {
		req := r
		if cat != target {
			req = r.Clone(r.Context())
			req.URL.RawQuery = ""
		}
		list, flash := loadList(req, "/reports", ws.Report(cat))
		list.Params = url.Values{"cat": {cat}}
		if flash != nil {
			pd.Flash = flash
		}
		reports = append(reports, Report{Category: cat, List: list})
	}

	s.Templates.Render(w, "reports.html", &struct {
		PageData
		Reports  []Report
		Statuses []string
	}{
		PageData: pd,
		Reports:  reports,
		Statuses: model.Statuses,
	})
}

// ReportFiltersSubmit handles POST /reports/{category}/filters.
func (s *Server) ReportFiltersSubmit(w http.ResponseWriter, r *http.Request) {
	cat := r.PathValue("category")
	v := s.workspace(r).Report(cat)
	if v == nil {
		http.Error(w, "unknown category", http.StatusNotFound)
		return
	}
	filtersSubmit(s, w, r, v, store.ReportView(cat), "/reports")
}

// ReportExport handles GET /reports/export?format=xlsx|pdf|print&category=...
// Each category exports its filtered rows. "all" exports every category: one
// sheet per category for xlsx, one combined table otherwise.
func (s *Server) ReportExport(w http.ResponseWriter, r *http.Request) {
	ws := s.workspace(r)
	format := r.URL.Query().Get("format")
	category := r.URL.Query().Get("category")

	cats := model.Categories
	if category != "" && category != "all" {
		if !slices.Contains(model.Categories, category) {
			http.Error(w, "unknown category", http.StatusNotFound)
			return
		}
		cats = []string{category}
	}

	var tables []export.Table
	var all []model.Asset
	for _, cat := range cats {
		v := ws.Report(cat)
		if err := v.Load(r.Context()); err != nil {
			slog.Error("failed to load assets for report", "category", cat, "error", err)
		}
		rows := v.Filtered()
		all = append(all, rows...)
		tables = append(tables, export.AssetTable(export.Title(cat), rows))
	}

	if len(tables) > 1 && format != "xlsx" {
		tables = []export.Table{export.AssetTable("All Assets", all)}
	}
	s.sendTable(w, r, format, tables...)
}
