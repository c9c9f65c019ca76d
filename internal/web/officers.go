package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/armoury/internal/model"
)

// OfficerNewPage handles GET /officers/new.
func (s *Server) OfficerNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderOfficerForm(w, s.page(w, r, "New Officer", "officers"), &model.Officer{})
}

func (s *Server) renderOfficerForm(w http.ResponseWriter, pd PageData, o *model.Officer) {
	s.Templates.Render(w, "officer_new.html", &struct {
		PageData
		Officer *model.Officer
	}{
		PageData: pd,
		Officer:  o,
	})
}

// OfficerCreateSubmit handles POST /officers/new. The fingerprint template,
// when present, was captured by the page through the scan session API.
func (s *Server) OfficerCreateSubmit(w http.ResponseWriter, r *http.Request) {
	o := model.Officer{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Rank:            strings.TrimSpace(r.FormValue("rank")),
		MetalNo:         strings.TrimSpace(r.FormValue("metalNo")),
		Duty:            strings.TrimSpace(r.FormValue("duty")),
		PhoneNumber:     strings.TrimSpace(r.FormValue("phonenumber")),
		RegisterNo:      strings.TrimSpace(r.FormValue("registerNo")),
		KGIDNo:          strings.TrimSpace(r.FormValue("kgidNo")),
		Status:          r.FormValue("status"),
		Remarks:         strings.TrimSpace(r.FormValue("remarks")),
		FingerPrintData: r.FormValue("fingerPrintData"),
	}

	if o.Name == "" || o.MetalNo == "" {
		pd := s.page(w, r, "New Officer", "officers")
		pd.Flash = &Flash{Kind: FlashError, Message: "Name and metal number are required"}
		s.renderOfficerForm(w, pd, &o)
		return
	}

	created, err := s.Backend.CreateOfficer(r.Context(), o)
	if err != nil {
		slog.Error("failed to create officer", "metal_no", o.MetalNo, "error", err)
		pd := s.page(w, r, "New Officer", "officers")
		pd.Flash = &Flash{Kind: FlashError, Message: "Failed to register officer"}
		s.renderOfficerForm(w, pd, &o)
		return
	}

	s.Workspaces.Collections().Officers.MarkStale()
	slog.Info("officer registered", "id", created.ID, "fingerprint", created.HasFingerprint())
	s.record(r, model.ActionRegister, created.Name, created.MetalNo)
	redirectFlash(w, r, "/officers/new", FlashSuccess, "Officer registered successfully")
}
