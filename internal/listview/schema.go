// Package listview implements the client-side list engine shared by the
// dashboard's list pages: search, per-field filters with draft and applied
// state, sorting, pagination, row selection and bulk actions.
package listview

import "slices"

// Kind selects how a filter value is matched against a record field.
type Kind int

const (
	// Exact matches enumerated values by equality.
	Exact Kind = iota
	// Contains matches free text by case-insensitive substring.
	Contains
	// Date matches the calendar day, ignoring time of day.
	Date
	// Bool matches a tri-state "true"/"false" filter.
	Bool
	// Int matches integers exactly after parsing the filter value.
	Int
	// Any matches when any element of a list field equals the filter value.
	Any
)

// Schema describes how the engine reads a record type.
//
// Value returns the field named key for rec. Supported value types are
// string, time.Time, bool, int and []string. A nil result means the field is
// missing.
type Schema[T any] struct {
	Fields map[string]Kind
	Search []string
	Value  func(rec T, key string) any
	ID     func(rec T) string
}

// Keys returns the filter field names in a stable order.
func (s *Schema[T]) Keys() []string {
	keys := make([]string, 0, len(s.Fields))
	for k := range s.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Schema[T]) text(rec T, key string) string {
	if v, ok := s.Value(rec, key).(string); ok {
		return v
	}
	return ""
}
