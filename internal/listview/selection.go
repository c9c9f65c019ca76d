package listview

// Selection is an ordered set of selected record ids.
type Selection struct {
	ids   map[string]struct{}
	order []string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.order) }

// Set selects or deselects id.
func (s *Selection) Set(id string, on bool) {
	if on {
		if _, ok := s.ids[id]; ok {
			return
		}
		s.ids[id] = struct{}{}
		s.order = append(s.order, id)
		return
	}
	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle flips the selection state of id.
func (s *Selection) Toggle(id string) {
	s.Set(id, !s.Has(id))
}

// Replace selects exactly ids.
func (s *Selection) Replace(ids []string) {
	s.Clear()
	for _, id := range ids {
		s.Set(id, true)
	}
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
	s.order = nil
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Retain drops every id not in valid and returns how many were dropped.
func (s *Selection) Retain(valid map[string]struct{}) int {
	kept := s.order[:0]
	dropped := 0
	for _, id := range s.order {
		if _, ok := valid[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(s.ids, id)
		dropped++
	}
	s.order = kept
	return dropped
}
