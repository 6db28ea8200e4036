package featuregraph

// Selection is the single source of truth for what is selected, plus the
// presentation-only state (expanded nodes, search query) shared by the
// graph and list views. Both views derive from the same Selection; neither
// may cache its own copy of the selected set.
//
// All operations are total over well-formed input and never fail at
// runtime. Feature names passed to ToggleFeature must come from the Graph
// the Selection is used against; an unknown name creates an orphan entry
// that the views simply never display.
type Selection struct {
	selected map[string]struct{}
	order    []string
	expanded map[string]struct{}
	query    string
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{
		selected: make(map[string]struct{}),
		expanded: make(map[string]struct{}),
	}
}

// ToggleFeature flips membership of one feature name. Toggling twice
// restores the previous state.
func (s *Selection) ToggleFeature(name string) {
	if _, ok := s.selected[name]; ok {
		s.remove(name)
		return
	}
	s.add(name)
}

// ToggleNode applies the node-header click rule to the node's full feature
// list: if every feature is currently selected, all of them are
// deselected; otherwise all of them are selected. A partial selection is
// therefore always resolved toward select-all, never toward an ambiguous
// per-feature flip.
func (s *Selection) ToggleNode(features []string) {
	all := len(features) > 0
	for _, f := range features {
		if _, ok := s.selected[f]; !ok {
			all = false
			break
		}
	}

	if all {
		for _, f := range features {
			s.remove(f)
		}
		return
	}
	for _, f := range features {
		s.add(f)
	}
}

// SelectAllAvailable selects every feature of every node passing the
// usable predicate. Features under unusable nodes are left exactly as they
// are, not forcibly removed.
func (s *Selection) SelectAllAvailable(g *Graph, usable func(Node) bool) {
	for _, n := range g.Nodes {
		if !usable(n) {
			continue
		}
		for _, f := range n.Features {
			s.add(f)
		}
	}
}

// Clear empties the selected set. Expanded nodes and the search query are
// untouched.
func (s *Selection) Clear() {
	s.selected = make(map[string]struct{})
	s.order = s.order[:0]
}

// ApplyTemplate replaces the selection with the intersection of the given
// names and g's feature universe. Names unknown to g are dropped silently;
// the prior selection is discarded, not merged.
func (s *Selection) ApplyTemplate(g *Graph, names []string) {
	s.Clear()
	for _, name := range names {
		if g.HasFeature(name) {
			s.add(name)
		}
	}
}

// Revalidate drops every selected name that does not exist in g's feature
// universe. Call it when the graph snapshot is replaced by a new version.
func (s *Selection) Revalidate(g *Graph) {
	kept := s.order[:0]
	for _, name := range s.order {
		if g.HasFeature(name) {
			kept = append(kept, name)
		} else {
			delete(s.selected, name)
		}
	}
	s.order = kept
}

// ToggleExpand flips the expanded flag of a node. Pure presentation state.
func (s *Selection) ToggleExpand(nodeID string) {
	if _, ok := s.expanded[nodeID]; ok {
		delete(s.expanded, nodeID)
		return
	}
	s.expanded[nodeID] = struct{}{}
}

// SetQuery sets the current search string. No validation.
func (s *Selection) SetQuery(q string) {
	s.query = q
}

// Query returns the current search string.
func (s *Selection) Query() string {
	return s.query
}

// Has reports whether the feature name is selected.
func (s *Selection) Has(name string) bool {
	_, ok := s.selected[name]
	return ok
}

// Expanded reports whether the node is expanded.
func (s *Selection) Expanded(nodeID string) bool {
	_, ok := s.expanded[nodeID]
	return ok
}

// Count returns the number of selected features.
func (s *Selection) Count() int {
	return len(s.selected)
}

// Selected returns the selected feature names in the order they were
// selected. This is the list handed to the job-submission boundary.
func (s *Selection) Selected() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// SelectedCount returns how many of the given features are selected.
func (s *Selection) SelectedCount(features []string) int {
	n := 0
	for _, f := range features {
		if _, ok := s.selected[f]; ok {
			n++
		}
	}
	return n
}

func (s *Selection) add(name string) {
	if _, ok := s.selected[name]; ok {
		return
	}
	s.selected[name] = struct{}{}
	s.order = append(s.order, name)
}

func (s *Selection) remove(name string) {
	if _, ok := s.selected[name]; !ok {
		return
	}
	delete(s.selected, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
