package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/armoury/internal/imaging"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/scan"
	"github.com/erazemk/armoury/internal/store"
	"github.com/erazemk/armoury/internal/workspace"
)

// Backend submits issue and return transactions.
type Backend interface {
	Issue(ctx context.Context, req model.IssueRequest) error
	Return(ctx context.Context, req model.ReturnRequest) error
}

// ScanHandler serves the scan sessions behind the issue, return and officer
// registration pages.
type ScanHandler struct {
	DB         *sql.DB
	Backend    Backend
	Device     scan.Device
	Sessions   *scan.Registry
	Workspaces *workspace.Registry
}

type openRequest struct {
	Mode scan.Mode `json:"mode"`
}

type keysRequest struct {
	Keys []string `json:"keys"`
	Text string   `json:"text"`
}

type itemRequest struct {
	ID string `json:"id"`
}

type scanResponse struct {
	Results []scan.Result `json:"results"`
	State   scan.State    `json:"state"`
}

type fingerprintResponse struct {
	State   scan.State `json:"state"`
	Preview string     `json:"preview,omitempty"`
}

type captureResponse struct {
	Template string `json:"template"`
	Quality  int    `json:"quality"`
	Nfiq     int    `json:"nfiq"`
	Preview  string `json:"preview,omitempty"`
}

// Open handles POST /api/scan.
func (h *ScanHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Mode {
	case "":
		req.Mode = scan.ModeIssue
	case scan.ModeIssue, scan.ModeReturn:
	default:
		jsonError(w, http.StatusBadRequest, "invalid mode")
		return
	}

	s := h.Sessions.Open(req.Mode)
	slog.Info("scan session opened", "session", s.ID, "mode", s.Mode)
	jsonResponse(w, http.StatusCreated, s.State())
}

// Get handles GET /api/scan/{id}.
func (h *ScanHandler) Get(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	jsonResponse(w, http.StatusOK, s.State())
}

// Keys handles POST /api/scan/{id}/keys. Key events and raw reader text are
// both accepted; every completed identifier yields one result.
func (h *ScanHandler) Keys(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req keysRequest
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	assets, ok := h.assets(w, r)
	if !ok {
		return
	}

	results := append([]scan.Result{}, s.Keys(req.Keys, assets)...)
	if req.Text != "" {
		results = append(results, s.Feed(req.Text, assets)...)
	}

	for _, res := range results {
		if !res.OK() {
			slog.Info("scan rejected", "session", s.ID, "outcome", res.Outcome)
		}
	}
	jsonResponse(w, http.StatusOK, scanResponse{Results: results, State: s.State()})
}

// AddItem handles POST /api/scan/{id}/items. Ammunition lots carry no
// barcode and are picked from a list.
func (h *ScanHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if s.Mode != scan.ModeIssue {
		jsonError(w, http.StatusBadRequest, "ammunition can only be added when issuing")
		return
	}

	var req itemRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ID == "" {
		jsonError(w, http.StatusBadRequest, "item id is required")
		return
	}

	items, _, err := h.Workspaces.Collections().Items.Get(r.Context())
	if err != nil && items == nil {
		slog.Error("failed to load items", "error", err)
		jsonError(w, http.StatusBadGateway, "failed to load ammunition")
		return
	}

	var found *model.Item
	for i := range items {
		if items[i].ID == req.ID {
			found = &items[i]
			break
		}
	}
	if found == nil {
		jsonError(w, http.StatusNotFound, "ammunition not found")
		return
	}

	asset := found.AsAsset()
	res := scan.Result{Outcome: scan.Added, Message: "Ammunition added successfully", Asset: &asset}
	if !s.Add(asset) {
		res = scan.Result{Outcome: scan.AlreadyAdded, Message: "Ammunition already added", Asset: &asset}
	}
	jsonResponse(w, http.StatusOK, scanResponse{Results: []scan.Result{res}, State: s.State()})
}

// RemoveAsset handles DELETE /api/scan/{id}/assets/{asset}.
func (h *ScanHandler) RemoveAsset(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if !s.Remove(r.PathValue("asset")) {
		jsonError(w, http.StatusNotFound, "asset is not selected")
		return
	}
	jsonResponse(w, http.StatusOK, s.State())
}

// Clear handles POST /api/scan/{id}/clear.
func (h *ScanHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	s.Clear()
	jsonResponse(w, http.StatusOK, s.State())
}

// Fingerprint handles POST /api/scan/{id}/fingerprint: capture a finger and
// match it against every officer on file.
func (h *ScanHandler) Fingerprint(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	officers, _, err := h.Workspaces.Collections().Officers.Get(r.Context())
	if err != nil && officers == nil {
		slog.Error("failed to load officers", "error", err)
		jsonError(w, http.StatusBadGateway, "failed to load officers")
		return
	}

	officer, err := s.Authenticate(r.Context(), h.Device, officers)
	if err != nil {
		h.deviceError(w, s, err)
		return
	}

	slog.Info("officer authenticated", "session", s.ID, "officer", officer.ID)
	st := s.State()
	jsonResponse(w, http.StatusOK, fingerprintResponse{State: st, Preview: preview(st.Bitmap)})
}

// Capture handles POST /api/scan/{id}/capture: capture a finger without
// matching, for registering a new officer.
func (h *ScanHandler) Capture(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	c, err := s.CaptureOnly(r.Context(), h.Device)
	if err != nil {
		h.deviceError(w, s, err)
		return
	}

	jsonResponse(w, http.StatusOK, captureResponse{
		Template: c.AnsiTemplate,
		Quality:  c.Quality,
		Nfiq:     c.Nfiq,
		Preview:  preview(c.BitmapData),
	})
}

// Submit handles POST /api/scan/{id}/submit. A successful submit closes the
// session and marks the cached collections stale.
func (h *ScanHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	ctx := r.Context()

	var (
		action, message string
		count           int
		err             error
	)
	switch s.Mode {
	case scan.ModeIssue:
		var req model.IssueRequest
		if req, err = s.IssueRequest(); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		count = len(req.WeaponIDs) + len(req.AmmunitionIDs) + len(req.MunitionIDs)
		err = h.Backend.Issue(ctx, req)
		action, message = model.ActionIssue, "Items issued successfully"
	case scan.ModeReturn:
		txs, _, lerr := h.Workspaces.Collections().Transactions.Get(ctx)
		if lerr != nil && txs == nil {
			slog.Error("failed to load transactions", "error", lerr)
			jsonError(w, http.StatusBadGateway, "failed to load transactions")
			return
		}
		var req model.ReturnRequest
		if req, err = s.ReturnRequest(txs); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		count = len(req.WeaponIDs)
		err = h.Backend.Return(ctx, req)
		action, message = model.ActionReturn, "Items returned successfully"
	}
	if err != nil {
		slog.Error("failed to submit transaction", "session", s.ID, "mode", s.Mode, "error", err)
		jsonError(w, http.StatusBadGateway, fmt.Sprintf("failed to %s items", s.Mode))
		return
	}

	h.Workspaces.Collections().Invalidate()
	h.Sessions.Close(s.ID)

	officer := s.Officer()
	slog.Info("transaction submitted", "mode", s.Mode, "officer", officer.ID, "items", count)
	record(ctx, h.DB, action, officer.Name, fmt.Sprintf("%d items", count))

	jsonResponse(w, http.StatusOK, map[string]string{"message": message})
}

// Close handles DELETE /api/scan/{id} and POST /api/scan/{id}/close, the
// latter for navigator.sendBeacon on page unload.
func (h *ScanHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Close(r.PathValue("id")); err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ScanHandler) session(w http.ResponseWriter, r *http.Request) *scan.Session {
	s, err := h.Sessions.Get(r.PathValue("id"))
	if err != nil {
		jsonError(w, http.StatusNotFound, err.Error())
		return nil
	}
	return s
}

func (h *ScanHandler) assets(w http.ResponseWriter, r *http.Request) ([]model.Asset, bool) {
	assets, _, err := h.Workspaces.Collections().Assets.Get(r.Context())
	if err != nil {
		slog.Error("failed to load assets", "error", err)
		if assets == nil {
			jsonError(w, http.StatusBadGateway, "failed to load assets")
			return nil, false
		}
	}
	return assets, true
}

func (h *ScanHandler) deviceError(w http.ResponseWriter, s *scan.Session, err error) {
	var ce *scan.CaptureError
	switch {
	case errors.As(err, &ce):
		slog.Warn("fingerprint capture rejected", "session", s.ID, "code", ce.Code)
		jsonError(w, http.StatusUnprocessableEntity, ce.Error())
	case errors.Is(err, scan.ErrNoMatch):
		slog.Warn("no officer matched fingerprint", "session", s.ID)
		jsonError(w, http.StatusUnprocessableEntity, "No matching officer found")
	default:
		slog.Error("fingerprint device failed", "session", s.ID, "error", err)
		jsonError(w, http.StatusBadGateway, "Fingerprint device unavailable")
	}
}

// preview converts a device bitmap to a small PNG data URI. Failures are
// logged and yield no preview.
func preview(bitmap string) string {
	if bitmap == "" {
		return ""
	}
	p, err := imaging.FromBase64(bitmap)
	if err != nil {
		slog.Warn("failed to render fingerprint preview", "error", err)
		return ""
	}
	return p.DataURI()
}

// record stores an activity entry for the current workspace. Failures are
// logged only.
func record(ctx context.Context, db *sql.DB, action, subject, detail string) {
	if db == nil {
		return
	}
	if err := store.RecordActivity(ctx, db, workspace.IDFromContext(ctx), action, subject, detail); err != nil {
		slog.Error("failed to record activity", "action", action, "error", err)
	}
}
