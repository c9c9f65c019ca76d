package web

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
	"github.com/erazemk/armoury/internal/workspace"
	webembed "github.com/erazemk/armoury/web"
)

// Backend is the part of the backend client the pages write through.
type Backend interface {
	GetAsset(ctx context.Context, id string) (*model.Asset, error)
	CreateAsset(ctx context.Context, a model.Asset) (*model.Asset, error)
	UpdateAsset(ctx context.Context, id string, fields map[string]any) error
	DeleteAsset(ctx context.Context, id string) error
	DeleteItem(ctx context.Context, id string) error
	DeleteTransaction(ctx context.Context, id string) error
	CreateOfficer(ctx context.Context, o model.Officer) (*model.Officer, error)
}

// NewRouter creates the web page router with all page routes registered.
// Routes expect the workspace middleware to have run.
func NewRouter(db *sql.DB, backend Backend, workspaces *workspace.Registry) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:         db,
		Templates:  templates,
		Backend:    backend,
		Workspaces: workspaces,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.Dashboard)

	mux.HandleFunc("GET /armoury", s.ArmouryPage)
	mux.HandleFunc("POST /armoury/filters", s.ArmouryFiltersSubmit)
	mux.HandleFunc("POST /armoury/select", s.ArmourySelectSubmit)
	mux.HandleFunc("POST /armoury/actions", s.ArmouryActionSubmit)
	mux.HandleFunc("GET /armoury/new", s.AssetNewPage)
	mux.HandleFunc("POST /armoury/new", s.AssetCreateSubmit)
	mux.HandleFunc("GET /armoury/{id}", s.AssetDetailPage)
	mux.HandleFunc("GET /armoury/{id}/edit", s.AssetEditPage)
	mux.HandleFunc("POST /armoury/{id}/edit", s.AssetUpdateSubmit)
	mux.HandleFunc("POST /armoury/{id}/remarks", s.AssetRemarkSubmit)

	mux.HandleFunc("GET /ammunition", s.AmmunitionPage)
	mux.HandleFunc("POST /ammunition/filters", s.AmmunitionFiltersSubmit)
	mux.HandleFunc("POST /ammunition/select", s.AmmunitionSelectSubmit)
	mux.HandleFunc("POST /ammunition/actions", s.AmmunitionActionSubmit)

	mux.HandleFunc("GET /transactions", s.TransactionsPage)
	mux.HandleFunc("POST /transactions/filters", s.TransactionsFiltersSubmit)
	mux.HandleFunc("POST /transactions/select", s.TransactionsSelectSubmit)
	mux.HandleFunc("POST /transactions/actions", s.TransactionsActionSubmit)

	mux.HandleFunc("GET /reports", s.ReportsPage)
	mux.HandleFunc("POST /reports/{category}/filters", s.ReportFiltersSubmit)
	mux.HandleFunc("GET /reports/export", s.ReportExport)

	mux.HandleFunc("GET /issue", s.IssuePage)
	mux.HandleFunc("GET /return", s.ReturnPage)
	mux.HandleFunc("GET /return/scan", s.ReturnScanPage)
	mux.HandleFunc("GET /return/{id}/pdf", s.ReturnPDF)

	mux.HandleFunc("GET /officers/new", s.OfficerNewPage)
	mux.HandleFunc("POST /officers/new", s.OfficerCreateSubmit)

	return mux, nil
}

// record stores an activity entry for the caller's workspace. Failures are
// logged only.
func (s *Server) record(r *http.Request, action, subject, detail string) {
	if s.DB == nil {
		return
	}
	ctx := r.Context()
	if err := store.RecordActivity(ctx, s.DB, workspace.IDFromContext(ctx), action, subject, detail); err != nil {
		slog.Error("failed to record activity", "action", action, "error", err)
	}
}
