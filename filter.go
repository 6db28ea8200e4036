package featuregraph

import "strings"

// TreeFeature is one selectable leaf of the list view.
type TreeFeature struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
	Selected    bool   `json:"selected"`
}

// TreeNode is one extractor entry of the list view. FeatureCount counts
// the features surviving the search filter, never the node's original
// total, so badges stay in step with what is shown.
type TreeNode struct {
	ID            string        `json:"id"`
	Label         string        `json:"label"`
	Expanded      bool          `json:"expanded"`
	FeatureCount  int           `json:"feature_count"`
	SelectedCount int           `json:"selected_count"`
	Features      []TreeFeature `json:"features"`
}

// TreeSource is one source bucket of the list view. An unconfigured
// source still shows its search results but its toggles are disabled.
type TreeSource struct {
	Source
	Configured    bool       `json:"configured"`
	FeatureCount  int        `json:"feature_count"`
	SelectedCount int        `json:"selected_count"`
	Nodes         []TreeNode `json:"nodes"`
}

// ProjectTree derives the source → extractor → feature hierarchy of the
// list view, narrowed by sel's search query. It never mutates g or sel.
//
// With an empty query the full grouped structure is returned. Otherwise a
// feature survives when its name, display name or description contains the
// query (case-insensitive); nodes with no surviving features are dropped,
// then sources with no surviving nodes. Resource nodes own no features and
// never appear in the tree.
//
// configured reports whether a source's backing system is set up; nil
// means all sources are configured.
func ProjectTree(g *Graph, sel *Selection, configured func(Source) bool) []TreeSource {
	q := strings.ToLower(sel.Query())

	grouped := make(map[string][]TreeNode, len(sourceOrder))
	for _, n := range g.Nodes {
		if n.Kind != KindExtractor || len(n.Features) == 0 {
			continue
		}
		for _, tn := range splitNodeBySource(g, sel, n, q) {
			src := tn.source
			grouped[src.ID] = append(grouped[src.ID], tn.TreeNode)
		}
	}

	out := make([]TreeSource, 0, len(grouped))
	for _, src := range sourceOrder {
		nodes, ok := grouped[src.ID]
		if !ok {
			continue
		}
		ts := TreeSource{Source: src, Configured: true, Nodes: nodes}
		if configured != nil {
			ts.Configured = configured(src)
		}
		for _, n := range nodes {
			ts.FeatureCount += n.FeatureCount
			ts.SelectedCount += n.SelectedCount
		}
		out = append(out, ts)
	}
	return out
}

type sourcedNode struct {
	TreeNode
	source Source
}

// splitNodeBySource buckets a node's surviving features by source. A node
// usually maps to a single source, but nothing forbids mixed prefixes, in
// which case it appears once per bucket with the matching subset.
func splitNodeBySource(g *Graph, sel *Selection, n Node, q string) []sourcedNode {
	var out []sourcedNode
	index := make(map[string]int)

	for _, name := range n.Features {
		f, _ := g.Feature(name)
		if q != "" && !featureMatches(f, q) {
			continue
		}
		src := SourceOf(name)
		i, ok := index[src.ID]
		if !ok {
			i = len(out)
			index[src.ID] = i
			out = append(out, sourcedNode{
				TreeNode: TreeNode{ID: n.ID, Label: n.Label, Expanded: sel.Expanded(n.ID)},
				source:   src,
			})
		}
		tn := &out[i].TreeNode
		selected := sel.Has(name)
		tn.Features = append(tn.Features, TreeFeature{
			Name:        f.Name,
			DisplayName: f.DisplayName,
			Description: f.Description,
			DataType:    f.DataType,
			Selected:    selected,
		})
		tn.FeatureCount++
		if selected {
			tn.SelectedCount++
		}
	}
	return out
}

func featureMatches(f Feature, q string) bool {
	return strings.Contains(strings.ToLower(f.Name), q) ||
		strings.Contains(strings.ToLower(f.DisplayName), q) ||
		strings.Contains(strings.ToLower(f.Description), q)
}
