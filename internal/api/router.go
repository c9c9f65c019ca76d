package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/armoury/internal/scan"
	"github.com/erazemk/armoury/internal/store"
	"github.com/erazemk/armoury/internal/workspace"
)

// NewRouter creates the API router with all endpoints registered. Routes
// expect the workspace middleware to have run.
func NewRouter(db *sql.DB, backend Backend, device scan.Device, sessions *scan.Registry, workspaces *workspace.Registry) http.Handler {
	mux := http.NewServeMux()

	scanHandler := &ScanHandler{
		DB:         db,
		Backend:    backend,
		Device:     device,
		Sessions:   sessions,
		Workspaces: workspaces,
	}
	viewsHandler := &ViewsHandler{Workspaces: workspaces}

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{"status": "ok", "scan_sessions": sessions.Len()})
	})

	// Scan sessions.
	mux.HandleFunc("POST /api/scan", scanHandler.Open)
	mux.HandleFunc("GET /api/scan/{id}", scanHandler.Get)
	mux.HandleFunc("DELETE /api/scan/{id}", scanHandler.Close)
	mux.HandleFunc("POST /api/scan/{id}/close", scanHandler.Close)
	mux.HandleFunc("POST /api/scan/{id}/keys", scanHandler.Keys)
	mux.HandleFunc("POST /api/scan/{id}/items", scanHandler.AddItem)
	mux.HandleFunc("DELETE /api/scan/{id}/assets/{asset}", scanHandler.RemoveAsset)
	mux.HandleFunc("POST /api/scan/{id}/clear", scanHandler.Clear)
	mux.HandleFunc("POST /api/scan/{id}/fingerprint", scanHandler.Fingerprint)
	mux.HandleFunc("POST /api/scan/{id}/capture", scanHandler.Capture)
	mux.HandleFunc("POST /api/scan/{id}/submit", scanHandler.Submit)

	// List data.
	mux.HandleFunc("GET /api/views/{view}", viewsHandler.Get)

	mux.HandleFunc("GET /api/activity", func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := store.ListActivity(r.Context(), db, limit)
		if err != nil {
			slog.Error("failed to list activity", "error", err)
			jsonError(w, http.StatusInternalServerError, "internal error")
			return
		}
		jsonResponse(w, http.StatusOK, entries)
	})

	return mux
}
