package main

import (
	"encoding/json"
	"fmt"

	"github.com/meikuraledutech/featuregraph"
)

func main() {
	// A small two-level graph: a git repository resource feeding two
	// extractors, plus a sonar extractor at the same level.
	doc := &featuregraph.GraphDocument{
		Nodes: []featuregraph.NodeDocument{
			{ID: "repo", Type: "resource", Label: "Repository", Level: 0},
			{ID: "git-commits", Type: "extractor", Label: "Commit History",
				Features: []string{"git_commit_count", "git_author_count"},
				RequiresResources: []string{"repo"}, Level: 1},
			{ID: "gh-issues", Type: "extractor", Label: "GitHub Issues",
				Features: []string{"gh_open_issues"},
				RequiresResources: []string{"repo"}, Level: 1},
			{ID: "sonar-scan", Type: "extractor", Label: "Sonar Scan",
				Features: []string{"sonar_code_smells"},
				RequiresResources: []string{"repo"}, Level: 1},
		},
		Edges: []featuregraph.EdgeDocument{
			{ID: "e1", Source: "repo", Target: "git-commits", Type: "resource_dependency"},
			{ID: "e2", Source: "repo", Target: "gh-issues", Type: "resource_dependency"},
			{ID: "e3", Source: "repo", Target: "sonar-scan", Type: "resource_dependency"},
		},
	}
	catalog := featuregraph.FeatureCatalog{
		"git-commits": {
			{Name: "git_commit_count", DisplayName: "Commit Count", Description: "Total commits", DataType: "int", IsActive: true},
			{Name: "git_author_count", DisplayName: "Author Count", Description: "Distinct authors", DataType: "int", IsActive: true},
		},
		"gh-issues": {
			{Name: "gh_open_issues", DisplayName: "Open Issues", Description: "Currently open issues", DataType: "int", IsActive: true},
		},
		"sonar-scan": {
			{Name: "sonar_code_smells", DisplayName: "Code Smells", Description: "Sonar code smell count", DataType: "int", IsActive: true},
		},
	}

	graph := featuregraph.NewGraph("v1", doc, catalog)
	sel := featuregraph.NewSelection()

	// ── Toggle a whole node, then drop one feature ────────────────────
	sel.ToggleNode(graph.Node("git-commits").Features)
	sel.ToggleFeature("git_commit_count")
	fmt.Println("selected:", sel.Selected())

	// ── Graph view ────────────────────────────────────────────────────
	layout := featuregraph.DeriveLayout(graph, sel, featuregraph.DefaultLayoutConfig)
	fmt.Println("\nlayout:")
	printJSON(layout.Nodes)

	// ── List view, narrowed by search ─────────────────────────────────
	sel.SetQuery("count")
	tree := featuregraph.ProjectTree(graph, sel, nil)
	fmt.Println("\ntree for query \"count\":")
	printJSON(tree)
	sel.SetQuery("")

	// ── Template: unknown names are dropped ───────────────────────────
	sel.ApplyTemplate(graph, []string{"gh_open_issues", "sonar_code_smells", "zzz_removed"})
	fmt.Println("\nafter template:", sel.Selected())

	// ── Summary + export ──────────────────────────────────────────────
	summary := featuregraph.Summarize(graph, sel)
	fmt.Println("\nsummary:")
	printJSON(summary)
	fmt.Println("export:", summary.Export())
}

func printJSON(v any) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
}
