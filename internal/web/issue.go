package web

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/scan"
)

// IssuePage handles GET /issue. Scanning, fingerprint matching and submit
// run through the scan session API from the page script.
func (s *Server) IssuePage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Scan and Issue", "issue")

	items, _, err := s.Workspaces.Collections().Items.Get(r.Context())
	if err != nil {
		slog.Error("failed to load ammunition for issue page", "error", err)
		pd.Flash = &Flash{Kind: FlashError, Message: "Failed to load ammunition"}
	}
	var available []model.Item
	for _, it := range items {
		if it.AsAsset().Available() {
			available = append(available, it)
		}
	}

	s.Templates.Render(w, "issue.html", &struct {
		PageData
		Mode  scan.Mode
		Items []model.Item
	}{
		PageData: pd,
		Mode:     scan.ModeIssue,
		Items:    available,
	})
}

// ReturnScanPage handles GET /return/scan.
func (s *Server) ReturnScanPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "return_scan.html", &struct {
		PageData
		Mode scan.Mode
	}{
		PageData: s.page(w, r, "Scan and Return", "return"),
		Mode:     scan.ModeReturn,
	})
}
