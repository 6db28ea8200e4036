package featuregraph

import (
	"sort"
	"strings"
)

// SummaryGroup is one source bucket of the selection summary. Features are
// sorted lexicographically by name for stable, diffable output.
type SummaryGroup struct {
	Source
	Features []Feature `json:"features"`
}

// Summary is the source-grouped read view of everything currently
// selected, derived from the Selection and Graph alone.
type Summary struct {
	Groups []SummaryGroup `json:"groups"`
	Total  int            `json:"total"`
}

// Summarize partitions the selected feature names by source prefix and
// resolves each to its display metadata. A name missing from g's universe
// (selected under a since-replaced graph version) falls back to a stub
// carrying the raw name, so the summary never hard-fails on stale ids.
func Summarize(g *Graph, sel *Selection) Summary {
	grouped := make(map[string][]Feature)
	for _, name := range sel.Selected() {
		f, ok := g.Feature(name)
		if !ok {
			f = Feature{Name: name, DisplayName: name}
		}
		src := SourceOf(name)
		grouped[src.ID] = append(grouped[src.ID], f)
	}

	out := Summary{Total: sel.Count()}
	for _, src := range sourceOrder {
		feats, ok := grouped[src.ID]
		if !ok {
			continue
		}
		sort.Slice(feats, func(i, j int) bool { return feats[i].Name < feats[j].Name })
		out.Groups = append(out.Groups, SummaryGroup{Source: src, Features: feats})
	}
	return out
}

// Export serializes the summary as a sorted, comma-joined name list for
// copy and export.
func (s Summary) Export() string {
	names := make([]string, 0, s.Total)
	for _, g := range s.Groups {
		for _, f := range g.Features {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
