package listview

import (
	"context"
	"strings"
	"sync"
)

// View is the per-page state of a list: the cached collection, search query,
// applied and draft filters, sort, current page and selection.
type View[T any] struct {
	schema *Schema[T]
	coll   *Collection[T]
	size   int

	mu       sync.Mutex
	query    string
	applied  Filters
	draft    Filters
	expr     *Expr
	sort     Sort
	page     int
	selected *Selection
	scope    func(T) bool
	seen     uint64
}

// NewView returns a view over coll with all filters empty.
func NewView[T any](schema *Schema[T], coll *Collection[T]) *View[T] {
	return &View[T]{
		schema:   schema,
		coll:     coll,
		size:     DefaultPageSize,
		applied:  NewFilters(schema),
		draft:    NewFilters(schema),
		page:     1,
		selected: NewSelection(),
	}
}

// WithScope restricts the view to records for which keep returns true,
// before search and filters apply.
func (v *View[T]) WithScope(keep func(T) bool) *View[T] {
	v.scope = keep
	return v
}

// Schema returns the view's schema.
func (v *View[T]) Schema() *Schema[T] { return v.schema }

// Collection returns the backing cache.
func (v *View[T]) Collection() *Collection[T] { return v.coll }

// Load refreshes the collection when needed and prunes selected ids that no
// longer exist in it. Views sharing a collection each prune on their next
// Load after it changes.
func (v *View[T]) Load(ctx context.Context) error {
	_, _, err := v.coll.Get(ctx)
	v.prune()
	return err
}

func (v *View[T]) prune() {
	version := v.coll.Version()
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	if version == v.seen {
		return
	}
	v.seen = version
	valid := make(map[string]struct{}, len(recs))
	for _, rec := range recs {
		valid[v.schema.ID(rec)] = struct{}{}
	}
	v.selected.Retain(valid)
}

// Restore sets the applied and draft filters, e.g. from persisted state.
func (v *View[T]) Restore(f Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = v.merge(f)
	v.draft = v.applied.Clone()
}

// merge returns a full filter map for the schema, taking known keys from f.
func (v *View[T]) merge(f Filters) Filters {
	out := NewFilters(v.schema)
	for k, val := range f {
		if _, ok := v.schema.Fields[k]; ok {
			out[k] = val
		}
	}
	return out
}

// SetQuery sets the search query and returns to the first page.
func (v *View[T]) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	q = strings.ToLower(strings.TrimSpace(q))
	if q != v.query {
		v.page = 1
	}
	v.query = q
}

// Query returns the current search query.
func (v *View[T]) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// SetExpr sets the advanced filter expression and returns to the first page.
func (v *View[T]) SetExpr(x *Expr) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.expr = x
	v.page = 1
}

// SetDraft edits the draft filters without affecting the rendered result.
func (v *View[T]) SetDraft(f Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.draft = v.merge(f)
}

// Draft returns a copy of the draft filters.
func (v *View[T]) Draft() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.draft.Clone()
}

// Applied returns a copy of the applied filters.
func (v *View[T]) Applied() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.applied.Clone()
}

// Apply commits the draft filters, returns to the first page and returns the
// new applied filters.
func (v *View[T]) Apply() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = v.draft.Clone()
	v.page = 1
	return v.applied.Clone()
}

// ClearFilters empties both filter sets and returns to the first page.
func (v *View[T]) ClearFilters() Filters {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applied = NewFilters(v.schema)
	v.draft = NewFilters(v.schema)
	v.page = 1
	return v.applied.Clone()
}

// SetSort replaces the sort.
func (v *View[T]) SetSort(s Sort) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sort = s
}

// Sort returns the current sort.
func (v *View[T]) Sort() Sort {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sort
}

// SetPage moves to page n.
func (v *View[T]) SetPage(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.page = max(n, 1)
}

// Filtered returns the searched, filtered and sorted records.
func (v *View[T]) Filtered() []T {
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filteredLocked(recs)
}

func (v *View[T]) filteredLocked(recs []T) []T {
	if v.scope != nil {
		scoped := make([]T, 0, len(recs))
		for _, rec := range recs {
			if v.scope(rec) {
				scoped = append(scoped, rec)
			}
		}
		recs = scoped
	}
	out := Apply(v.schema, recs, v.query, v.applied)
	if v.expr != nil {
		matched, err := ApplyExpr(v.schema, v.expr, out)
		if err == nil {
			out = matched
		} else {
			out = out[:0]
		}
	}
	SortRecords(v.schema, out, v.sort)
	return out
}

// Current returns the current page of the filtered records.
func (v *View[T]) Current() Page[T] {
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	p := Paginate(v.filteredLocked(recs), v.page, v.size)
	v.page = p.Number
	return p
}

// Toggle flips the selection of one row.
func (v *View[T]) Toggle(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected.Toggle(id)
}

// Select replaces the selection with ids that exist in the filtered records.
func (v *View[T]) Select(ids []string) {
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	visible := make(map[string]struct{})
	for _, rec := range v.filteredLocked(recs) {
		visible[v.schema.ID(rec)] = struct{}{}
	}
	v.selected.Clear()
	for _, id := range ids {
		if _, ok := visible[id]; ok {
			v.selected.Set(id, true)
		}
	}
}

// SelectAll selects every filtered record when on, or clears the selection.
func (v *View[T]) SelectAll(on bool) {
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	if !on {
		v.selected.Clear()
		return
	}
	filtered := v.filteredLocked(recs)
	ids := make([]string, len(filtered))
	for i, rec := range filtered {
		ids[i] = v.schema.ID(rec)
	}
	v.selected.Replace(ids)
}

// IsSelected reports whether id is selected.
func (v *View[T]) IsSelected(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected.Has(id)
}

// SelectedIDs returns the selected ids.
func (v *View[T]) SelectedIDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected.IDs()
}

// Selected returns the selected records that pass the current filters, in
// filtered order.
func (v *View[T]) Selected() []T {
	recs := v.coll.Records()
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []T
	for _, rec := range v.filteredLocked(recs) {
		if v.selected.Has(v.schema.ID(rec)) {
			out = append(out, rec)
		}
	}
	return out
}

// DeleteSelected calls del for every selected id concurrently. Records whose
// delete succeeded are removed from the cache and the selection; failed ids
// stay selected. The collection is marked stale either way.
func (v *View[T]) DeleteSelected(ctx context.Context, del func(ctx context.Context, id string) error) (BulkResult, error) {
	ids := v.SelectedIDs()
	if len(ids) == 0 {
		return BulkResult{}, ErrEmptySelection
	}

	res := Each(ctx, ids, del)

	v.coll.Remove(v.schema.ID, res.Succeeded)
	v.coll.MarkStale()

	v.mu.Lock()
	for _, id := range res.Succeeded {
		v.selected.Set(id, false)
	}
	v.mu.Unlock()

	return res, res.Err()
}
