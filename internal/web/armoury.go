package web

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/erazemk/armoury/internal/export"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// ArmouryPage handles GET /armoury.
func (s *Server) ArmouryPage(w http.ResponseWriter, r *http.Request) {
	pd := s.page(w, r, "Armoury", "armoury")
	list, flash := loadList(r, "/armoury", s.workspace(r).Armoury)

	s.Templates.Render(w, "armoury.html", &struct {
		PageData
		List       *List[model.Asset]
		Statuses   []string
		Categories []string
	}{
		PageData:   withFlash(pd, flash),
		List:       list,
		Statuses:   model.Statuses,
		Categories: model.Categories,
	})
}

// ArmouryFiltersSubmit handles POST /armoury/filters.
func (s *Server) ArmouryFiltersSubmit(w http.ResponseWriter, r *http.Request) {
	filtersSubmit(s, w, r, s.workspace(r).Armoury, store.ViewArmoury, "/armoury")
}

// ArmourySelectSubmit handles POST /armoury/select.
func (s *Server) ArmourySelectSubmit(w http.ResponseWriter, r *http.Request) {
	selectSubmit(w, r, s.workspace(r).Armoury, "/armoury")
}

// ArmouryActionSubmit handles POST /armoury/actions.
func (s *Server) ArmouryActionSubmit(w http.ResponseWriter, r *http.Request) {
	v := s.workspace(r).Armoury
	action := r.FormValue("action")
	if action == "delete" {
		deleteSelected(s, w, r, v, s.Backend.DeleteAsset, "weapon", "/armoury")
		return
	}

	selected := v.Selected()
	if len(selected) == 0 {
		redirectFlash(w, r, "/armoury", FlashError, "Please select at least one weapon")
		return
	}
	s.sendTable(w, r, action, export.AssetTable("Armoury", selected))
}

// AssetNewPage handles GET /armoury/new.
func (s *Server) AssetNewPage(w http.ResponseWriter, r *http.Request) {
	s.renderAssetForm(w, s.page(w, r, "Add Asset", "armoury"), &model.Asset{Category: model.CategoryArmoury})
}

func (s *Server) renderAssetForm(w http.ResponseWriter, pd PageData, a *model.Asset) {
	s.Templates.Render(w, "asset_new.html", &struct {
		PageData
		Asset      *model.Asset
		Categories []string
	}{
		PageData:   pd,
		Asset:      a,
		Categories: model.Categories,
	})
}

// AssetCreateSubmit handles POST /armoury/new.
func (s *Server) AssetCreateSubmit(w http.ResponseWriter, r *http.Request) {
	a := model.Asset{
		Type:           strings.TrimSpace(r.FormValue("type")),
		Category:       r.FormValue("category"),
		RegisterNumber: strings.TrimSpace(r.FormValue("registerNumber")),
		ButtNo:         strings.TrimSpace(r.FormValue("buttNo")),
		Coy:            strings.TrimSpace(r.FormValue("coy")),
		RackNumber:     strings.TrimSpace(r.FormValue("rackNumber")),
		Status:         model.AssetStatusAvailable,
		CreatedOn:      time.Now(),
	}

	if a.Type == "" || a.Category == "" {
		pd := s.page(w, r, "Add Asset", "armoury")
		pd.Flash = &Flash{Kind: FlashError, Message: "Type and category are required"}
		s.renderAssetForm(w, pd, &a)
		return
	}

	created, err := s.Backend.CreateAsset(r.Context(), a)
	if err != nil {
		slog.Error("failed to create asset", "type", a.Type, "error", err)
		pd := s.page(w, r, "Add Asset", "armoury")
		pd.Flash = &Flash{Kind: FlashError, Message: "Failed to add asset"}
		s.renderAssetForm(w, pd, &a)
		return
	}

	s.Workspaces.Collections().Assets.MarkStale()
	slog.Info("asset created", "id", created.ID, "type", created.Type)
	s.record(r, model.ActionCreate, created.Type, created.RegisterNumber)
	redirectFlash(w, r, "/armoury/"+created.ID, FlashSuccess, "Asset added successfully")
}

// asset fetches the asset named by the path, writing an error response when
// it cannot.
func (s *Server) asset(w http.ResponseWriter, r *http.Request) *model.Asset {
	a, err := s.Backend.GetAsset(r.Context(), r.PathValue("id"))
	if err != nil {
		slog.Error("failed to get asset", "id", r.PathValue("id"), "error", err)
		http.Error(w, "failed to load asset", http.StatusBadGateway)
		return nil
	}
	if a == nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return nil
	}
	return a
}

// AssetDetailPage handles GET /armoury/{id}.
func (s *Server) AssetDetailPage(w http.ResponseWriter, r *http.Request) {
	a := s.asset(w, r)
	if a == nil {
		return
	}

	s.Templates.Render(w, "asset_detail.html", &struct {
		PageData
		Asset *model.Asset
	}{
		PageData: s.page(w, r, a.Type, "armoury"),
		Asset:    a,
	})
}

// AssetEditPage handles GET /armoury/{id}/edit.
func (s *Server) AssetEditPage(w http.ResponseWriter, r *http.Request) {
	a := s.asset(w, r)
	if a == nil {
		return
	}

	s.Templates.Render(w, "asset_edit.html", &struct {
		PageData
		Asset         *model.Asset
		Statuses      []string
		RepairHistory string
	}{
		PageData:      s.page(w, r, "Edit "+a.Type, "armoury"),
		Asset:         a,
		Statuses:      model.Statuses,
		RepairHistory: strings.Join(a.RepairHistory, "\n"),
	})
}

// AssetUpdateSubmit handles POST /armoury/{id}/edit. Repair history is
// edited as one entry per line.
func (s *Server) AssetUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	fields := map[string]any{
		"status":                  r.FormValue("status"),
		"coy":                     strings.TrimSpace(r.FormValue("coy")),
		"rackNumber":              strings.TrimSpace(r.FormValue("rackNumber")),
		"lastAuditBy":             strings.TrimSpace(r.FormValue("lastAuditBy")),
		"upcomingMaintenanceDate": r.FormValue("upcomingMaintenanceDate"),
		"repairHistory":           splitLines(r.FormValue("repairHistory")),
	}

	if err := s.Backend.UpdateAsset(r.Context(), id, fields); err != nil {
		slog.Error("failed to update asset", "id", id, "error", err)
		redirectFlash(w, r, "/armoury/"+id+"/edit", FlashError, "Failed to update asset")
		return
	}

	s.Workspaces.Collections().Assets.MarkStale()
	slog.Info("asset updated", "id", id, "status", fields["status"])
	s.record(r, model.ActionUpdate, id, "edit")
	redirectFlash(w, r, "/armoury/"+id, FlashSuccess, "Asset updated successfully")
}

// AssetRemarkSubmit handles POST /armoury/{id}/remarks.
func (s *Server) AssetRemarkSubmit(w http.ResponseWriter, r *http.Request) {
	a := s.asset(w, r)
	if a == nil {
		return
	}

	remark := model.Remark{
		Name: strings.TrimSpace(r.FormValue("name")),
		Text: strings.TrimSpace(r.FormValue("text")),
		Date: time.Now().Format(time.DateOnly),
	}
	if remark.Text == "" {
		redirectFlash(w, r, "/armoury/"+a.ID, FlashError, "Remark text is required")
		return
	}

	remarks := append(a.Remarks, remark)
	if err := s.Backend.UpdateAsset(r.Context(), a.ID, map[string]any{"remarks": remarks}); err != nil {
		slog.Error("failed to add remark", "id", a.ID, "error", err)
		redirectFlash(w, r, "/armoury/"+a.ID, FlashError, "Failed to add remark")
		return
	}

	s.Workspaces.Collections().Assets.MarkStale()
	s.record(r, model.ActionUpdate, a.ID, "remark")
	redirectFlash(w, r, "/armoury/"+a.ID, FlashSuccess, "Remark added")
}

// splitLines returns the trimmed non-empty lines of s.
func splitLines(s string) []string {
	lines := []string{}
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
