package featuregraph

// NodeKind distinguishes extractor nodes (which own features) from
// resource nodes (which only provide inputs to extractors).
type NodeKind string

const (
	KindExtractor NodeKind = "extractor"
	KindResource  NodeKind = "resource"
)

// EdgeKind tags a dependency edge. Edges are informational for layout and
// highlighting only; selection logic never reads them.
type EdgeKind string

const (
	EdgeFeatureDependency  EdgeKind = "feature_dependency"
	EdgeResourceDependency EdgeKind = "resource_dependency"
)

// Node is one vertex of the dependency graph.
type Node struct {
	ID                string   `json:"id"`
	Kind              NodeKind `json:"type"`
	Label             string   `json:"label"`
	Features          []string `json:"features"`
	RequiresResources []string `json:"requires_resources"`
	RequiresFeatures  []string `json:"requires_features"`
	Level             int      `json:"level"`
}

// Edge is a directed dependency between two node IDs.
type Edge struct {
	ID     string   `json:"id"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   EdgeKind `json:"type"`
}

// Feature is the leaf unit of selection. A feature belongs to exactly one
// extractor node and is identified by a globally unique name.
type Feature struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
	Active      bool   `json:"is_active"`
	NodeID      string `json:"node_id"`
}

// Graph is an immutable snapshot of one DAG version: nodes, edges,
// execution levels and the flattened feature universe. Build one with
// NewGraph and never mutate it afterwards; replacing a version means
// building a new Graph and revalidating any live Selection against it.
type Graph struct {
	Version string
	Nodes   []Node
	Edges   []Edge

	byID     map[string]int
	features map[string]Feature
	levels   [][]string
}

// NewGraph assembles a Graph from the two backend documents: the graph
// document (nodes, edges, execution levels) and the features-by-node
// catalog. The input is assumed topologically valid and already leveled.
func NewGraph(version string, doc *GraphDocument, catalog FeatureCatalog) *Graph {
	g := &Graph{
		Version:  version,
		Nodes:    make([]Node, len(doc.Nodes)),
		Edges:    make([]Edge, len(doc.Edges)),
		byID:     make(map[string]int, len(doc.Nodes)),
		features: make(map[string]Feature),
	}

	for i, n := range doc.Nodes {
		g.Nodes[i] = Node{
			ID:                n.ID,
			Kind:              NodeKind(n.Type),
			Label:             n.Label,
			Features:          n.Features,
			RequiresResources: n.RequiresResources,
			RequiresFeatures:  n.RequiresFeatures,
			Level:             n.Level,
		}
		g.byID[n.ID] = i
	}

	for i, e := range doc.Edges {
		g.Edges[i] = Edge{ID: e.ID, Source: e.Source, Target: e.Target, Kind: EdgeKind(e.Type)}
	}

	maxLevel := -1
	for _, n := range g.Nodes {
		if n.Level > maxLevel {
			maxLevel = n.Level
		}
	}
	g.levels = make([][]string, maxLevel+1)
	for _, n := range g.Nodes {
		g.levels[n.Level] = append(g.levels[n.Level], n.ID)
	}

	for nodeID, specs := range catalog {
		for _, f := range specs {
			g.features[f.Name] = Feature{
				Name:        f.Name,
				DisplayName: f.DisplayName,
				Description: f.Description,
				DataType:    f.DataType,
				Active:      f.IsActive,
				NodeID:      nodeID,
			}
		}
	}
	// The graph document is authoritative for feature ownership; backfill
	// metadata-less entries so every listed feature resolves.
	for _, n := range g.Nodes {
		for _, name := range n.Features {
			if _, ok := g.features[name]; !ok {
				g.features[name] = Feature{Name: name, DisplayName: name, NodeID: n.ID}
			}
		}
	}

	return g
}

// Node returns the node with the given ID, or nil if absent.
func (g *Graph) Node(id string) *Node {
	i, ok := g.byID[id]
	if !ok {
		return nil
	}
	return &g.Nodes[i]
}

// Feature resolves a feature name against the universe.
func (g *Graph) Feature(name string) (Feature, bool) {
	f, ok := g.features[name]
	return f, ok
}

// HasFeature reports whether name exists in this version's feature universe.
func (g *Graph) HasFeature(name string) bool {
	_, ok := g.features[name]
	return ok
}

// FeatureCount returns the size of the feature universe.
func (g *Graph) FeatureCount() int {
	return len(g.features)
}

// Levels returns node IDs grouped by execution level, preserving the
// graph document's node order within each level.
func (g *Graph) Levels() [][]string {
	return g.levels
}
