package listview

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"go.einride.tech/aip/ordering"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort selects the sort key and direction. An empty key keeps backend order.
type Sort struct {
	Key string
	Dir Direction
}

// Toggle returns the sort after the user selects key: the same key flips the
// direction, a new key starts ascending.
func (s Sort) Toggle(key string) Sort {
	if s.Key == key && s.Dir == Asc {
		return Sort{Key: key, Dir: Desc}
	}
	return Sort{Key: key, Dir: Asc}
}

// ParseOrderBy converts an AIP-132 order_by string ("type desc") into a Sort.
// Only the first field is used.
func ParseOrderBy(s string) (Sort, error) {
	if strings.TrimSpace(s) == "" {
		return Sort{}, nil
	}
	var ob ordering.OrderBy
	if err := ob.UnmarshalString(s); err != nil {
		return Sort{}, err
	}
	if len(ob.Fields) == 0 {
		return Sort{}, nil
	}
	f := ob.Fields[0]
	if f.Desc {
		return Sort{Key: f.Path, Dir: Desc}, nil
	}
	return Sort{Key: f.Path, Dir: Asc}, nil
}

// SortRecords sorts recs in place, keeping equal elements in their original order.
func SortRecords[T any](s *Schema[T], recs []T, by Sort) {
	if by.Key == "" {
		return
	}
	slices.SortStableFunc(recs, func(a, b T) int {
		c := compareValues(s.Value(a, by.Key), s.Value(b, by.Key))
		if by.Dir == Desc {
			return -c
		}
		return c
	})
}

// compareValues orders two field values. Missing values compare as the empty
// string, so they come first in ascending order.
func compareValues(a, b any) int {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case int:
		if y, ok := b.(int); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			return compareBools(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	}
	// Mixed types: a missing value sorts before anything present.
	_, aEmpty := a.(string)
	_, bEmpty := b.(string)
	switch {
	case aEmpty && !bEmpty:
		return -1
	case !aEmpty && bEmpty:
		return 1
	}
	return 0
}

func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
	case []string:
		return strings.Join(x, ",")
	}
	return v
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
