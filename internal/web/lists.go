package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/listview"
	"github.com/erazemk/armoury/internal/model"
)

// List is the render state of one list view.
type List[T any] struct {
	Path     string
	Page     listview.Page[T]
	Query    string
	Expr     string
	Sort     listview.Sort
	Draft    listview.Filters
	Active   int
	Selected map[string]bool
	Count    int
	Fields   []string
	Params   url.Values
}

// AllSelected reports whether every filtered record is selected.
func (l *List[T]) AllSelected() bool {
	return l.Page.Total > 0 && l.Count == l.Page.Total
}

// SortURL links to the list sorted by key. The link carries the direction the
// toggle leads to, so following it again or reloading is stable.
func (l *List[T]) SortURL(key string) string {
	next := l.Sort.Toggle(key)
	return l.link("sort", key, "dir", string(next.Dir))
}

// PageURL links to page n of the list.
func (l *List[T]) PageURL(n int) string {
	return l.link("page", strconv.Itoa(n))
}

// link builds a URL from the list's Params and the given key/value pairs.
func (l *List[T]) link(kv ...string) string {
	q := url.Values{}
	for k, vs := range l.Params {
		q[k] = vs
	}
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return l.Path + "?" + q.Encode()
}

// loadList applies the URL parameters a list page accepts (q, filter, sort,
// page) to v, reloads the collection and returns the render state. Problems
// are returned as a flash.
func loadList[T any](r *http.Request, path string, v *listview.View[T]) (*List[T], *Flash) {
	q := r.URL.Query()
	var flash *Flash

	if q.Has("q") {
		v.SetQuery(q.Get("q"))
	}
	exprText := q.Get("filter")
	if q.Has("filter") {
		x, err := listview.ParseExpr(v.Schema(), exprText)
		if err != nil {
			slog.Warn("invalid filter expression", "path", path, "error", err)
			flash = &Flash{Kind: FlashError, Message: "Invalid filter expression"}
			x = nil
		}
		v.SetExpr(x)
	}
	if key := q.Get("sort"); key != "" {
		dir := listview.Asc
		if listview.Direction(q.Get("dir")) == listview.Desc {
			dir = listview.Desc
		}
		v.SetSort(listview.Sort{Key: key, Dir: dir})
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		v.SetPage(n)
	}

	if err := v.Load(r.Context()); err != nil {
		slog.Error("failed to load collection", "path", path, "error", err)
		flash = &Flash{Kind: FlashError, Message: "Failed to load data, showing the last copy"}
	}

	l := &List[T]{
		Path:   path,
		Page:   v.Current(),
		Query:  v.Query(),
		Expr:   exprText,
		Sort:   v.Sort(),
		Draft:  v.Draft(),
		Active: v.Applied().Active(),
		Fields: v.Schema().Keys(),
	}
	ids := v.SelectedIDs()
	l.Selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		l.Selected[id] = true
	}
	l.Count = len(v.Selected())
	return l, flash
}

// withFlash replaces the pending flash with one raised while loading.
func withFlash(pd PageData, f *Flash) PageData {
	if f != nil {
		pd.Flash = f
	}
	return pd
}

// draftFromForm reads the schema's filter fields from a submitted form.
func draftFromForm[T any](r *http.Request, v *listview.View[T]) listview.Filters {
	f := make(listview.Filters)
	for _, key := range v.Schema().Keys() {
		f[key] = r.FormValue(key)
	}
	return f
}

// filtersSubmit handles the filter panel: "apply" commits the submitted
// draft, "clear" resets both filter sets. Applied filters are persisted
// under viewKey.
func filtersSubmit[T any](s *Server, w http.ResponseWriter, r *http.Request, v *listview.View[T], viewKey, back string) {
	var applied listview.Filters
	switch r.FormValue("action") {
	case "clear":
		applied = v.ClearFilters()
	default:
		v.SetDraft(draftFromForm(r, v))
		applied = v.Apply()
	}

	ws := s.workspace(r)
	if err := s.Workspaces.SaveFilters(r.Context(), ws, viewKey, applied); err != nil {
		slog.Error("failed to save filters", "view", viewKey, "error", err)
		redirectFlash(w, r, back, FlashError, "Filters applied but could not be saved")
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// selectSubmit handles row checkboxes: "toggle" flips one id, "all" selects
// or clears the whole filtered set.
func selectSubmit[T any](w http.ResponseWriter, r *http.Request, v *listview.View[T], back string) {
	if id := r.FormValue("toggle"); id != "" {
		v.Toggle(id)
	}
	switch r.FormValue("all") {
	case "on":
		v.SelectAll(true)
	case "off":
		v.SelectAll(false)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// deleteSelected runs a bulk delete over the view's selection and reports
// the outcome as a flash.
func deleteSelected[T any](s *Server, w http.ResponseWriter, r *http.Request, v *listview.View[T], del func(context.Context, string) error, noun, back string) {
	res, err := v.DeleteSelected(r.Context(), del)
	switch {
	case errors.Is(err, listview.ErrEmptySelection):
		redirectFlash(w, r, back, FlashError, "Please select at least one "+noun)
		return
	case err != nil:
		slog.Error("bulk delete failed", "noun", noun, "failed", len(res.Failed), "succeeded", len(res.Succeeded))
		s.record(r, model.ActionDelete, noun, fmt.Sprintf("%d deleted, %d failed", len(res.Succeeded), len(res.Failed)))
		redirectFlash(w, r, back, FlashError, "Failed to delete some "+noun+"s")
		return
	}

	slog.Info("bulk delete", "noun", noun, "count", len(res.Succeeded))
	s.record(r, model.ActionDelete, noun, fmt.Sprintf("%d deleted", len(res.Succeeded)))
	redirectFlash(w, r, back, FlashSuccess, fmt.Sprintf("Deleted %d %s(s)", len(res.Succeeded), noun))
}

// sendTable writes t in format as a download. Supported formats are csv,
// xlsx, pdf and print.
func (s *Server) sendTable(w http.ResponseWriter, r *http.Request, format string, tables ...export.Table) {
	if len(tables) == 0 {
		http.Error(w, "nothing to export", http.StatusBadRequest)
		return
	}
	title := tables[0].Title
	if len(tables) > 1 {
		title = "Reports"
	}

	var (
		data []byte
		mime string
		ext  string
		err  error
	)
	switch format {
	case "csv":
		data, mime, ext = export.CSV(tables[0]), "text/csv; charset=utf-8", "csv"
	case "xlsx":
		data, err = export.Workbook(tables...)
		mime, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	case "pdf":
		data, err = export.TablePDF(tables[0])
		mime, ext = "application/pdf", "pdf"
	case "print":
		data, err = export.PrintHTML(tables[0])
		if err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(data)
			return
		}
	default:
		http.Error(w, "unknown export format", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("failed to export", "format", format, "title", title, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	s.record(r, model.ActionExport, title, format)
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(title, ext)))
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
