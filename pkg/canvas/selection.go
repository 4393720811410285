package canvas

import "sort"

// Selection is an unordered set of selected node ids
type Selection struct {
	ids map[string]bool
}

// NewSelection creates an empty selection
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]bool)}
}

// Has reports whether the node id is selected
func (s *Selection) Has(id string) bool { return s.ids[id] }

// Len returns the number of selected nodes
func (s *Selection) Len() int { return len(s.ids) }

// Toggle flips a node's selection state. Toggling twice returns the
// selection to its original value.
func (s *Selection) Toggle(id string) {
	if s.ids[id] {
		delete(s.ids, id)
	} else {
		s.ids[id] = true
	}
}

// Add marks a node id selected
func (s *Selection) Add(id string) { s.ids[id] = true }

// Remove unmarks a node id
func (s *Selection) Remove(id string) { delete(s.ids, id) }

// Clear empties the selection
func (s *Selection) Clear() {
	s.ids = make(map[string]bool)
}

// Replace swaps the selection for the given ids
func (s *Selection) Replace(ids []string) {
	s.ids = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.ids[id] = true
	}
}

// Union adds the given ids to the selection
func (s *Selection) Union(ids []string) {
	for _, id := range ids {
		s.ids[id] = true
	}
}

// IDs returns the selected ids in sorted order for determinism
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
