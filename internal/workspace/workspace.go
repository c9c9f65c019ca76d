// Package workspace holds per-browser list state (filters, sort, page,
// selection) over backend collections shared by every browser.
package workspace

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/armoury/internal/listview"
	"github.com/erazemk/armoury/internal/model"
	"github.com/erazemk/armoury/internal/store"
)

// Backend lists the collections the dashboard caches.
type Backend interface {
	ListAssets(ctx context.Context) ([]model.Asset, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListOfficers(ctx context.Context) ([]model.Officer, error)
}

// Collections are the backend caches shared by every workspace.
type Collections struct {
	Assets       *listview.Collection[model.Asset]
	Items        *listview.Collection[model.Item]
	Transactions *listview.Collection[model.Transaction]
	Officers     *listview.Collection[model.Officer]
}

// NewCollections returns caches loading from b, refetched after maxAge.
func NewCollections(b Backend, maxAge time.Duration) *Collections {
	return &Collections{
		Assets:       listview.NewCollection[model.Asset](b.ListAssets, maxAge),
		Items:        listview.NewCollection[model.Item](b.ListItems, maxAge),
		Transactions: listview.NewCollection[model.Transaction](b.ListTransactions, maxAge),
		Officers:     listview.NewCollection[model.Officer](b.ListOfficers, maxAge),
	}
}

// Invalidate marks every collection stale. Issue and return change assets
// and transactions together.
func (c *Collections) Invalidate() {
	c.Assets.MarkStale()
	c.Items.MarkStale()
	c.Transactions.MarkStale()
	c.Officers.MarkStale()
}

// Workspace is the list state of one browser.
type Workspace struct {
	ID string

	Armoury      *listview.View[model.Asset]
	Ammunition   *listview.View[model.Item]
	Transactions *listview.View[model.Transaction]
	Open         *listview.View[model.Transaction]
	Reports      map[string]*listview.View[model.Asset]

	mu       sync.Mutex
	lastSeen time.Time
}

func newWorkspace(id string, c *Collections, now time.Time) *Workspace {
	ws := &Workspace{
		ID:           id,
		Armoury:      listview.NewView(AssetSchema, c.Assets),
		Ammunition:   listview.NewView(ItemSchema, c.Items),
		Transactions: listview.NewView(TransactionSchema, c.Transactions),
		Open: listview.NewView(TransactionSchema, c.Transactions).
			WithScope(func(tx model.Transaction) bool { return !tx.Returned }),
		Reports:  make(map[string]*listview.View[model.Asset], len(model.Categories)),
		lastSeen: now,
	}
	for _, cat := range model.Categories {
		ws.Reports[cat] = listview.NewView(AssetSchema, c.Assets).
			WithScope(func(a model.Asset) bool { return strings.EqualFold(a.Category, cat) })
	}
	return ws
}

// Report returns the reports view of category, or nil.
func (w *Workspace) Report(category string) *listview.View[model.Asset] {
	return w.Reports[category]
}

// restorable is the part of a view the registry persists.
type restorable interface {
	Restore(listview.Filters)
}

// persisted maps view keys to the views whose applied filters are stored.
func (w *Workspace) persisted() map[string]restorable {
	m := map[string]restorable{
		store.ViewArmoury:      w.Armoury,
		store.ViewAmmunition:   w.Ammunition,
		store.ViewTransactions: w.Transactions,
	}
	for cat, v := range w.Reports {
		m[store.ReportView(cat)] = v
	}
	return m
}

// Registry owns workspaces and persists their applied filters.
type Registry struct {
	db    *sql.DB
	colls *Collections
	ttl   time.Duration
	now   func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewRegistry returns a registry over colls. Workspaces idle for longer than
// ttl are dropped from memory; their filters stay in db.
func NewRegistry(db *sql.DB, colls *Collections, ttl time.Duration) *Registry {
	return &Registry{
		db:         db,
		colls:      colls,
		ttl:        ttl,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Collections returns the shared caches.
func (r *Registry) Collections() *Collections { return r.colls }

// Get returns the workspace with id, creating it and restoring its persisted
// filters on first use.
func (r *Registry) Get(ctx context.Context, id string) *Workspace {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	if !ok {
		ws = newWorkspace(id, r.colls, r.now())
		r.workspaces[id] = ws
	}
	r.mu.Unlock()

	if ok {
		ws.mu.Lock()
		ws.lastSeen = r.now()
		ws.mu.Unlock()
		return ws
	}

	for key, v := range ws.persisted() {
		f, err := store.LoadViewFilters(ctx, r.db, id, key)
		if err != nil {
			slog.Error("failed to load view filters", "workspace", id, "view", key, "error", err)
			continue
		}
		if f != nil {
			v.Restore(f)
		}
	}
	return ws
}

// SaveFilters persists the applied filters of a view. Empty filters remove
// the stored row.
func (r *Registry) SaveFilters(ctx context.Context, ws *Workspace, view string, f listview.Filters) error {
	if f.Empty() {
		return store.ClearViewFilters(ctx, r.db, ws.ID, view)
	}
	return store.SaveViewFilters(ctx, r.db, ws.ID, view, f)
}

// Sweep drops idle workspaces and returns how many were dropped.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, ws := range r.workspaces {
		ws.mu.Lock()
		idle := ws.lastSeen.Before(cutoff)
		ws.mu.Unlock()
		if idle {
			delete(r.workspaces, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("dropped idle workspaces", "count", n)
			}
		}
	}
}
