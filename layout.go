package featuregraph

// SelectionState is the color tier of a node badge.
type SelectionState string

const (
	SelectionEmpty   SelectionState = "empty"
	SelectionPartial SelectionState = "partial"
	SelectionFull    SelectionState = "full"
)

// LayoutConfig holds the spacing constants of the layered placement.
type LayoutConfig struct {
	LevelSpacing float64 `yaml:"level_spacing" json:"level_spacing"`
	NodeSpacing  float64 `yaml:"node_spacing" json:"node_spacing"`
	BaseY        float64 `yaml:"base_y" json:"base_y"`
}

// DefaultLayoutConfig matches the spacing the graph view ships with.
var DefaultLayoutConfig = LayoutConfig{LevelSpacing: 280, NodeSpacing: 120, BaseY: 300}

// LayoutNode is one positioned, annotated node of the graph view.
type LayoutNode struct {
	ID            string         `json:"id"`
	Kind          NodeKind       `json:"type"`
	Label         string         `json:"label"`
	Level         int            `json:"level"`
	X             float64        `json:"x"`
	Y             float64        `json:"y"`
	FeatureCount  int            `json:"feature_count"`
	SelectedCount int            `json:"selected_count"`
	State         SelectionState `json:"state"`
}

// LayoutEdge is an edge of the graph view. Feature-dependency edges are
// flagged for the animated/highlighted treatment.
type LayoutEdge struct {
	ID        string   `json:"id"`
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Kind      EdgeKind `json:"type"`
	Highlight bool     `json:"highlight"`
}

// Layout is the full renderable projection of the graph view.
type Layout struct {
	Nodes []LayoutNode `json:"nodes"`
	Edges []LayoutEdge `json:"edges"`
}

// DeriveLayout computes a layered placement of g annotated with sel's
// per-node selection counts. Nodes are grouped by execution level; within
// a level the graph's node order is preserved, so the result is
// deterministic and O(n). Clicking a laid-out node means calling
// Selection.ToggleNode with that node's feature list (see Session.ClickNode).
//
// The derivation has no state of its own; recompute it whenever the graph
// snapshot or the selected set changes.
func DeriveLayout(g *Graph, sel *Selection, cfg LayoutConfig) Layout {
	out := Layout{
		Nodes: make([]LayoutNode, 0, len(g.Nodes)),
		Edges: make([]LayoutEdge, 0, len(g.Edges)),
	}

	for level, ids := range g.Levels() {
		k := len(ids)
		for i, id := range ids {
			n := g.Node(id)
			selected := sel.SelectedCount(n.Features)
			out.Nodes = append(out.Nodes, LayoutNode{
				ID:            n.ID,
				Kind:          n.Kind,
				Label:         n.Label,
				Level:         n.Level,
				X:             float64(level+1) * cfg.LevelSpacing,
				Y:             cfg.BaseY + (float64(i)-float64(k-1)/2)*cfg.NodeSpacing,
				FeatureCount:  len(n.Features),
				SelectedCount: selected,
				State:         selectionState(selected, len(n.Features)),
			})
		}
	}

	for _, e := range g.Edges {
		out.Edges = append(out.Edges, LayoutEdge{
			ID:        e.ID,
			Source:    e.Source,
			Target:    e.Target,
			Kind:      e.Kind,
			Highlight: e.Kind == EdgeFeatureDependency,
		})
	}

	return out
}

func selectionState(selected, total int) SelectionState {
	switch {
	case total == 0 || selected == 0:
		return SelectionEmpty
	case selected == total:
		return SelectionFull
	default:
		return SelectionPartial
	}
}
