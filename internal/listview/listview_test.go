package listview

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

type rec struct {
	ID       string
	Type     string
	Coy      string
	Status   string
	Issued   bool
	Quantity int
	Created  time.Time
	Tags     []string
}

var testSchema = &Schema[rec]{
	Fields: map[string]Kind{
		"type":      Contains,
		"coy":       Exact,
		"status":    Exact,
		"isIssued":  Bool,
		"quantity":  Int,
		"createdOn": Date,
		"tags":      Any,
	},
	Search: []string{"type", "coy"},
	Value: func(r rec, key string) any {
		switch key {
		case "type":
			return r.Type
		case "coy":
			return r.Coy
		case "status":
			return r.Status
		case "isIssued":
			return r.Issued
		case "quantity":
			return r.Quantity
		case "createdOn":
			return r.Created
		case "tags":
			return r.Tags
		}
		return nil
	},
	ID: func(r rec) string { return r.ID },
}

func sample() []rec {
	day := time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local)
	return []rec{
		{ID: "1", Type: "AK-47", Coy: "A", Status: "available", Quantity: 3, Created: day, Tags: []string{"x"}},
		{ID: "2", Type: "INSAS", Coy: "B", Status: "issued", Issued: true, Quantity: 5, Created: day.AddDate(0, 0, 1)},
		{ID: "3", Type: "Glock", Coy: "A", Status: "repair", Quantity: 3},
		{ID: "4", Type: "ak-74", Coy: "C", Status: "available", Quantity: 1, Created: day, Tags: []string{"x", "y"}},
	}
}

func ids(rs []rec) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestApplyEmptyFiltersIsIdentity(t *testing.T) {
	recs := sample()
	got := Apply(testSchema, recs, "", NewFilters(testSchema))
	if !slices.Equal(ids(got), ids(recs)) {
		t.Errorf("expected %v, got %v", ids(recs), ids(got))
	}
}

func TestApplyFilterKinds(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		filters Filters
		want    []string
	}{
		{"search folds case", "ak", nil, []string{"1", "4"}},
		{"search trims", "  glock ", nil, []string{"3"}},
		{"exact", "", Filters{"coy": "A"}, []string{"1", "3"}},
		{"exact is case sensitive", "", Filters{"coy": "a"}, nil},
		{"contains", "", Filters{"type": "AK"}, []string{"1", "4"}},
		{"bool true", "", Filters{"isIssued": "true"}, []string{"2"}},
		{"bool false", "", Filters{"isIssued": "false"}, []string{"1", "3", "4"}},
		{"bool other is no constraint", "", Filters{"isIssued": "TRUE"}, []string{"1", "2", "3", "4"}},
		{"bool yes is no constraint", "", Filters{"isIssued": "yes"}, []string{"1", "2", "3", "4"}},
		{"int", "", Filters{"quantity": "3"}, []string{"1", "3"}},
		{"int not numeric", "", Filters{"quantity": "three"}, nil},
		{"date ignores time", "", Filters{"createdOn": "2024-03-05"}, []string{"1", "4"}},
		{"date skips zero", "", Filters{"createdOn": "0001-01-01"}, nil},
		{"any", "", Filters{"tags": "y"}, []string{"4"}},
		{"conjunction", "", Filters{"coy": "A", "status": "available"}, []string{"1"}},
		{"search and filter", "ak", Filters{"coy": "C"}, []string{"4"}},
		{"unknown key ignored", "", Filters{"nope": "x"}, []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(testSchema, sample(), tt.query, tt.filters))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestApplyConjunctionIsIntersection(t *testing.T) {
	recs := sample()
	a := ids(Apply(testSchema, recs, "", Filters{"coy": "A"}))
	b := ids(Apply(testSchema, recs, "", Filters{"quantity": "3"}))
	both := ids(Apply(testSchema, recs, "", Filters{"coy": "A", "quantity": "3"}))

	var want []string
	for _, id := range a {
		if slices.Contains(b, id) {
			want = append(want, id)
		}
	}
	if !slices.Equal(both, want) {
		t.Errorf("expected %v, got %v", want, both)
	}
}

func TestSortRecords(t *testing.T) {
	recs := sample()
	SortRecords(testSchema, recs, Sort{Key: "type", Dir: Asc})
	if got := ids(recs); !slices.Equal(got, []string{"1", "3", "2", "4"}) {
		t.Errorf("unexpected ascending order %v", got)
	}

	SortRecords(testSchema, recs, Sort{Key: "quantity", Dir: Desc})
	if got := ids(recs); !slices.Equal(got, []string{"2", "1", "3", "4"}) {
		t.Errorf("unexpected descending order %v", got)
	}
}

func TestSortIsIdempotentAndStable(t *testing.T) {
	recs := sample()
	by := Sort{Key: "coy", Dir: Asc}
	SortRecords(testSchema, recs, by)
	first := ids(recs)
	SortRecords(testSchema, recs, by)
	if !slices.Equal(ids(recs), first) {
		t.Errorf("second sort changed order: %v vs %v", first, ids(recs))
	}
	// Records 1 and 3 share coy A and keep input order.
	if first[0] != "1" || first[1] != "3" {
		t.Errorf("expected stable order for equal keys, got %v", first)
	}
}

func TestSortMissingValuesFirst(t *testing.T) {
	recs := sample()
	SortRecords(testSchema, recs, Sort{Key: "createdOn", Dir: Asc})
	if recs[0].ID != "3" {
		t.Errorf("expected record without date first, got %s", recs[0].ID)
	}
}

func TestSortToggle(t *testing.T) {
	s := Sort{}.Toggle("type")
	if s != (Sort{Key: "type", Dir: Asc}) {
		t.Errorf("unexpected first toggle %+v", s)
	}
	s = s.Toggle("type")
	if s.Dir != Desc {
		t.Errorf("expected desc after second toggle, got %s", s.Dir)
	}
	if s.Toggle("type").Dir != Asc {
		t.Error("expected toggling twice to return to asc")
	}
	if got := s.Toggle("coy"); got != (Sort{Key: "coy", Dir: Asc}) {
		t.Errorf("new key should start ascending, got %+v", got)
	}
}

func TestParseOrderBy(t *testing.T) {
	s, err := ParseOrderBy("type desc, coy")
	if err != nil {
		t.Fatalf("ParseOrderBy: %v", err)
	}
	if s != (Sort{Key: "type", Dir: Desc}) {
		t.Errorf("unexpected sort %+v", s)
	}

	s, err = ParseOrderBy("")
	if err != nil || s.Key != "" {
		t.Errorf("expected empty sort, got %+v, %v", s, err)
	}
}

func TestPaginate(t *testing.T) {
	recs := make([]int, 43)
	for i := range recs {
		recs[i] = i
	}

	p := Paginate(recs, 2, 10)
	if p.Pages != 5 || len(p.Items) != 10 || p.Items[0] != 10 {
		t.Errorf("unexpected page %+v", p)
	}
	if p.Label() != "11-20 of 43" {
		t.Errorf("unexpected label %q", p.Label())
	}

	last := Paginate(recs, 5, 10)
	if len(last.Items) != 3 || last.HasNext() {
		t.Errorf("unexpected last page %+v", last)
	}

	clamped := Paginate(recs, 99, 10)
	if clamped.Number != 5 {
		t.Errorf("expected clamp to 5, got %d", clamped.Number)
	}

	empty := Paginate([]int{}, 3, 10)
	if empty.Number != 1 || empty.Pages != 1 || empty.Label() != "0 of 0" {
		t.Errorf("unexpected empty page %+v", empty)
	}
}

func TestPaginateCoversAllRecords(t *testing.T) {
	for n := 0; n <= 25; n++ {
		recs := make([]int, n)
		p := Paginate(recs, 1, 10)
		sum := 0
		for i := 1; i <= p.Pages; i++ {
			page := Paginate(recs, i, 10)
			if len(page.Items) > 10 {
				t.Fatalf("page %d of %d has %d items", i, n, len(page.Items))
			}
			sum += len(page.Items)
		}
		if sum != n {
			t.Errorf("n=%d: pages hold %d records", n, sum)
		}
	}
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle("a")
	s.Toggle("b")
	s.Set("a", true)
	if s.Len() != 2 {
		t.Errorf("expected 2 selected, got %d", s.Len())
	}
	s.Toggle("a")
	if s.Has("a") || !s.Has("b") {
		t.Errorf("unexpected selection %v", s.IDs())
	}

	s.Replace([]string{"x", "y", "z"})
	dropped := s.Retain(map[string]struct{}{"x": {}, "z": {}})
	if dropped != 1 || !slices.Equal(s.IDs(), []string{"x", "z"}) {
		t.Errorf("unexpected retain result %d %v", dropped, s.IDs())
	}
}

func TestCollectionRefetchesWhenStale(t *testing.T) {
	calls := 0
	c := NewCollection[rec](func(ctx context.Context) ([]rec, error) {
		calls++
		return sample(), nil
	}, 0)
	ctx := context.Background()

	if _, fetched, _ := c.Get(ctx); !fetched {
		t.Error("expected first Get to fetch")
	}
	if _, fetched, _ := c.Get(ctx); fetched {
		t.Error("expected cached Get")
	}
	c.MarkStale()
	c.Get(ctx)
	if calls != 2 {
		t.Errorf("expected 2 loads, got %d", calls)
	}
}

func TestCollectionMaxAge(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCollection[rec](func(ctx context.Context) ([]rec, error) { return sample(), nil }, time.Minute)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Get(ctx)
	now = now.Add(2 * time.Minute)
	if !c.Stale() {
		t.Error("expected collection to be stale after max age")
	}
}

func TestCollectionKeepsRecordsOnError(t *testing.T) {
	fail := false
	c := NewCollection[rec](func(ctx context.Context) ([]rec, error) {
		if fail {
			return nil, errors.New("backend down")
		}
		return sample(), nil
	}, 0)
	ctx := context.Background()
	c.Get(ctx)

	fail = true
	c.MarkStale()
	recs, _, err := c.Get(ctx)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(recs) != 4 {
		t.Errorf("expected previous records kept, got %d", len(recs))
	}
	if c.LastError() == nil {
		t.Error("expected LastError to be set")
	}
}

func TestEachCollectsFailures(t *testing.T) {
	res := Each(context.Background(), []string{"a", "b", "c"}, func(ctx context.Context, id string) error {
		if id == "b" {
			return errors.New("boom")
		}
		return nil
	})
	if !slices.Equal(res.Succeeded, []string{"a", "c"}) {
		t.Errorf("unexpected succeeded %v", res.Succeeded)
	}
	if _, ok := res.Failed["b"]; !ok || len(res.Failed) != 1 {
		t.Errorf("unexpected failed %v", res.Failed)
	}
	if res.Err() == nil || res.Err().Error() != "1 of 3 operations failed" {
		t.Errorf("unexpected error %v", res.Err())
	}
}

func newTestView(t *testing.T, recs []rec) *View[rec] {
	t.Helper()
	v := NewView(testSchema, NewCollection[rec](func(ctx context.Context) ([]rec, error) {
		return recs, nil
	}, 0))
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return v
}

func TestViewDraftDoesNotAffectResult(t *testing.T) {
	v := newTestView(t, sample())
	v.SetDraft(Filters{"coy": "A"})
	if got := len(v.Filtered()); got != 4 {
		t.Errorf("draft filters should not apply, got %d rows", got)
	}
	applied := v.Apply()
	if applied["coy"] != "A" {
		t.Errorf("unexpected applied filters %v", applied)
	}
	if got := len(v.Filtered()); got != 2 {
		t.Errorf("expected 2 rows after apply, got %d", got)
	}

	v.ClearFilters()
	if got := len(v.Filtered()); got != 4 {
		t.Errorf("expected all rows after clear, got %d", got)
	}
}

func TestViewSearchResetsPage(t *testing.T) {
	recs := make([]rec, 25)
	for i := range recs {
		recs[i] = rec{ID: string(rune('a' + i)), Type: "rifle"}
	}
	v := newTestView(t, recs)
	v.SetPage(3)
	if v.Current().Number != 3 {
		t.Fatalf("expected page 3")
	}
	v.SetQuery("rifle")
	if v.Current().Number != 1 {
		t.Errorf("expected page reset on search")
	}
	v.SetPage(7)
	if got := v.Current().Number; got != 3 {
		t.Errorf("expected out-of-range page clamped to 3, got %d", got)
	}
}

func TestViewSelectAllUsesFilteredRecords(t *testing.T) {
	v := newTestView(t, sample())
	v.SetDraft(Filters{"status": "available"})
	v.Apply()
	v.SelectAll(true)
	if got := v.SelectedIDs(); !slices.Equal(got, []string{"1", "4"}) {
		t.Errorf("unexpected selection %v", got)
	}
	v.SelectAll(false)
	if len(v.SelectedIDs()) != 0 {
		t.Error("expected empty selection")
	}
}

func TestViewDeleteSelected(t *testing.T) {
	v := newTestView(t, sample())
	ctx := context.Background()

	if _, err := v.DeleteSelected(ctx, nil); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected ErrEmptySelection, got %v", err)
	}

	v.Toggle("1")
	v.Toggle("2")
	v.Toggle("3")
	res, err := v.DeleteSelected(ctx, func(ctx context.Context, id string) error {
		if id == "2" {
			return errors.New("conflict")
		}
		return nil
	})
	if err == nil {
		t.Error("expected partial failure error")
	}
	if len(res.Succeeded) != 2 {
		t.Errorf("expected 2 deletes to succeed, got %v", res.Succeeded)
	}

	if got := ids(v.Collection().Records()); !slices.Equal(got, []string{"2", "4"}) {
		t.Errorf("expected only succeeded ids pruned, got %v", got)
	}
	if got := v.SelectedIDs(); !slices.Equal(got, []string{"2"}) {
		t.Errorf("expected failed id to stay selected, got %v", got)
	}
	if !v.Collection().Stale() {
		t.Error("expected collection marked stale")
	}
}

func TestViewLoadPrunesSelection(t *testing.T) {
	recs := sample()
	current := recs
	v := NewView(testSchema, NewCollection[rec](func(ctx context.Context) ([]rec, error) {
		return current, nil
	}, 0))
	ctx := context.Background()
	v.Load(ctx)
	v.Toggle("1")
	v.Toggle("4")

	current = recs[1:]
	v.Collection().MarkStale()
	v.Load(ctx)
	if got := v.SelectedIDs(); !slices.Equal(got, []string{"4"}) {
		t.Errorf("expected selection pruned to [4], got %v", got)
	}
}

func TestViewExpr(t *testing.T) {
	v := newTestView(t, sample())
	x, err := ParseExpr(testSchema, `coy = "A" AND quantity = 3`)
	if err != nil {
		t.Fatalf("ParseExpr: %v", err)
	}
	v.SetExpr(x)
	if got := ids(v.Filtered()); !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("unexpected expr result %v", got)
	}
}

func TestMatchExpr(t *testing.T) {
	tests := []struct {
		filter string
		want   []string
	}{
		{`status = "available"`, []string{"1", "4"}},
		{`status != "available"`, []string{"2", "3"}},
		{`quantity > 2`, []string{"1", "2", "3"}},
		{`coy = "A" OR coy = "C"`, []string{"1", "3", "4"}},
		{`NOT coy = "A"`, []string{"2", "4"}},
		{`isIssued = true`, []string{"2"}},
		{`isIssued = false`, []string{"1", "3", "4"}},
		{`isIssued != true AND coy = "A"`, []string{"1", "3"}},
		{`isIssued`, []string{"2"}},
		{`NOT isIssued`, []string{"1", "3", "4"}},
		{`coy = "A" quantity = 3`, []string{"1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			x, err := ParseExpr(testSchema, tt.filter)
			if err != nil {
				t.Fatalf("ParseExpr: %v", err)
			}
			got, err := ApplyExpr(testSchema, x, sample())
			if err != nil {
				t.Fatalf("ApplyExpr: %v", err)
			}
			if !slices.Equal(ids(got), tt.want) {
				t.Errorf("expected %v, got %v", tt.want, ids(got))
			}
		})
	}
}

func TestParseExprRejectsUnknownField(t *testing.T) {
	if _, err := ParseExpr(testSchema, `colour = "red"`); err == nil {
		t.Error("expected error for undeclared field")
	}
}

func TestParseExprEmpty(t *testing.T) {
	x, err := ParseExpr(testSchema, " ")
	if err != nil || x != nil {
		t.Errorf("expected nil expr, got %v, %v", x, err)
	}
}
