package listview

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Filters maps a field name to its expected value. An empty value places no
// constraint on the field.
type Filters map[string]string

// Clone returns a copy of f.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Empty reports whether no field carries a constraint.
func (f Filters) Empty() bool {
	for _, v := range f {
		if v != "" {
			return false
		}
	}
	return true
}

// Active returns the number of constrained fields.
func (f Filters) Active() int {
	n := 0
	for _, v := range f {
		if v != "" {
			n++
		}
	}
	return n
}

// NewFilters returns a filter map with every schema field present and empty.
func NewFilters[T any](s *Schema[T]) Filters {
	f := make(Filters, len(s.Fields))
	for k := range s.Fields {
		f[k] = ""
	}
	return f
}

// Apply returns the records matching query and every non-empty filter, in
// their original order.
func Apply[T any](s *Schema[T], recs []T, query string, f Filters) []T {
	query = fold(strings.TrimSpace(query))
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		if Match(s, rec, query, f) {
			out = append(out, rec)
		}
	}
	return out
}

// Match reports whether rec matches the folded search query and all filters.
func Match[T any](s *Schema[T], rec T, query string, f Filters) bool {
	if query != "" && !matchSearch(s, rec, query) {
		return false
	}
	for key, want := range f {
		if want == "" {
			continue
		}
		kind, ok := s.Fields[key]
		if !ok {
			continue
		}
		if !matchField(kind, s.Value(rec, key), want) {
			return false
		}
	}
	return true
}

func matchSearch[T any](s *Schema[T], rec T, query string) bool {
	for _, key := range s.Search {
		if strings.Contains(fold(s.text(rec, key)), query) {
			return true
		}
	}
	return false
}

func matchField(kind Kind, value any, want string) bool {
	switch kind {
	case Exact:
		v, _ := value.(string)
		return v == want
	case Contains:
		v, _ := value.(string)
		return strings.Contains(fold(v), fold(want))
	case Date:
		v, ok := value.(time.Time)
		if !ok || v.IsZero() {
			return false
		}
		day, ok := parseDay(want)
		if !ok {
			return false
		}
		return sameDay(v, day)
	case Bool:
		v, _ := value.(bool)
		switch want {
		case "true":
			return v
		case "false":
			return !v
		}
		// Anything but the two tri-state values is no constraint.
		return true
	case Int:
		n, err := strconv.Atoi(strings.TrimSpace(want))
		if err != nil {
			return false
		}
		v, ok := value.(int)
		return ok && v == n
	case Any:
		v, _ := value.([]string)
		return slices.Contains(v, want)
	}
	return false
}

// parseDay accepts a date input value or a full timestamp.
func parseDay(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), true
	}
	return time.Time{}, false
}

func sameDay(a, b time.Time) bool {
	a = a.In(time.Local)
	b = b.In(time.Local)
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func fold(s string) string {
	return cases.Fold().String(s)
}
