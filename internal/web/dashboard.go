package web

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// Count is one labelled tally on the dashboard.
type Count struct {
	Label string
	Value int
}

// Dashboard handles GET /.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Dashboard", "dashboard")
	c := s.Workspaces.Collections()

	assets, _, err := c.Assets.Get(r.Context())
	if err != nil {
		slog.Error("failed to load assets for dashboard", "error", err)
		pd.Flash = &Flash{Kind: FlashError, Message: "Failed to load assets"}
	}
	txs, _, err := c.Transactions.Get(r.Context())
	if err != nil {
		slog.Error("failed to load transactions for dashboard", "error", err)
	}
	activity, err := store.ListActivity(r.Context(), s.DB, 10)
	if err != nil {
		slog.Error("failed to list activity for dashboard", "error", err)
	}

	byStatus := make([]Count, len(model.Statuses))
	for i, st := range model.Statuses {
		byStatus[i] = Count{Label: st}
	}
	byCategory := make([]Count, len(model.Categories))
	for i, cat := range model.Categories {
		byCategory[i] = Count{Label: cat}
	}
	for _, a := range assets {
		if i := slices.IndexFunc(model.Statuses, func(st string) bool { return strings.EqualFold(st, a.Status) }); i >= 0 {
			byStatus[i].Value++
		}
		if i := slices.IndexFunc(model.Categories, func(cat string) bool { return strings.EqualFold(cat, a.Category) }); i >= 0 {
			byCategory[i].Value++
		}
	}

	open := 0
	for _, tx := range txs {
		if !tx.Returned {
			open++
		}
	}

	// Most recent issues first.
	recent := slices.Clone(txs)
	slices.SortStableFunc(recent, func(a, b model.Transaction) int { return b.IssueDate.Compare(a.IssueDate) })
	if len(recent) > 5 {
		recent = recent[:5]
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Total      int
		Open       int
		ByStatus   []Count
		ByCategory []Count
		Recent     []model.Transaction
		Activity   []model.Activity
	}{
		PageData:   pd,
		Total:      len(assets),
		Open:       open,
		ByStatus:   byStatus,
		ByCategory: byCategory,
		Recent:     recent,
		Activity:   activity,
	})
}
