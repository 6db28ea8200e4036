package featuregraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func treeSource(t *testing.T, tree []TreeSource, id string) (TreeSource, bool) {
	t.Helper()
	for _, s := range tree {
		if s.ID == id {
			return s, true
		}
	}
	return TreeSource{}, false
}

func treeFeatureNames(tree []TreeSource) []string {
	var names []string
	for _, s := range tree {
		for _, n := range s.Nodes {
			for _, f := range n.Features {
				names = append(names, f.Name)
			}
		}
	}
	return names
}

// TestProjectTree_EmptyQuery verifies an empty search returns the full
// grouped structure and excludes resource nodes.
func TestProjectTree_EmptyQuery(t *testing.T) {
	g := buildTestGraph(t)

	tree := ProjectTree(g, NewSelection(), nil)
	require.Len(t, tree, 3)

	git, ok := treeSource(t, tree, "git")
	require.True(t, ok)
	assert.Equal(t, 2, git.FeatureCount)
	require.Len(t, git.Nodes, 1)
	assert.Equal(t, "git-commits", git.Nodes[0].ID)

	for _, s := range tree {
		for _, n := range s.Nodes {
			assert.NotEqual(t, "repo", n.ID, "resource nodes must not appear in the tree")
		}
	}
}

// TestProjectTree_SearchNarrows runs the worked search example: the query
// matches one of two features and the node badge follows the filtered
// list.
func TestProjectTree_SearchNarrows(t *testing.T) {
	g := buildSimpleGraph(t)
	sel := NewSelection()
	sel.SetQuery("first")

	tree := ProjectTree(g, sel, nil)

	other, ok := treeSource(t, tree, "other")
	require.True(t, ok)
	require.Len(t, other.Nodes, 1)
	a := other.Nodes[0]
	assert.Equal(t, "A", a.ID)
	assert.Equal(t, 1, a.FeatureCount, "badge must be recomputed against the filtered list")
	require.Len(t, a.Features, 1)
	assert.Equal(t, "a1", a.Features[0].Name)
}

// TestProjectTree_SearchCaseInsensitive verifies matching is
// case-insensitive over name, display name and description.
func TestProjectTree_SearchCaseInsensitive(t *testing.T) {
	g := buildTestGraph(t)
	sel := NewSelection()

	sel.SetQuery("COMMIT")
	assert.Contains(t, treeFeatureNames(ProjectTree(g, sel, nil)), "git_commit_count")

	// "smell" only appears in a description.
	sel.SetQuery("smell")
	names := treeFeatureNames(ProjectTree(g, sel, nil))
	assert.Equal(t, []string{"sonar_code_smells"}, names)
}

// TestProjectTree_DropsEmptyNodesAndSources verifies nodes with zero
// matches disappear, then sources with zero nodes.
func TestProjectTree_DropsEmptyNodesAndSources(t *testing.T) {
	g := buildTestGraph(t)
	sel := NewSelection()
	sel.SetQuery("issues")

	tree := ProjectTree(g, sel, nil)
	require.Len(t, tree, 1)
	assert.Equal(t, "github", tree[0].ID)
}

// TestProjectTree_NoMatches verifies an unmatched query yields an empty
// tree rather than an error.
func TestProjectTree_NoMatches(t *testing.T) {
	g := buildTestGraph(t)
	sel := NewSelection()
	sel.SetQuery("no such feature anywhere")

	assert.Empty(t, ProjectTree(g, sel, nil))
}

// TestProjectTree_Monotonicity verifies extending the query never grows
// the result set.
func TestProjectTree_Monotonicity(t *testing.T) {
	g := buildTestGraph(t)
	sel := NewSelection()

	sel.SetQuery("co")
	wide := treeFeatureNames(ProjectTree(g, sel, nil))

	sel.SetQuery("commit")
	narrow := treeFeatureNames(ProjectTree(g, sel, nil))

	for _, name := range narrow {
		assert.Contains(t, wide, name)
	}
	assert.LessOrEqual(t, len(narrow), len(wide))
}

// TestProjectTree_ConfiguredFlag verifies unconfigured sources still show
// their results but carry the disabled flag.
func TestProjectTree_ConfiguredFlag(t *testing.T) {
	g := buildTestGraph(t)

	tree := ProjectTree(g, NewSelection(), func(s Source) bool {
		return s.ID != "sonar"
	})

	sonar, ok := treeSource(t, tree, "sonar")
	require.True(t, ok, "unconfigured sources still display")
	assert.False(t, sonar.Configured)

	git, _ := treeSource(t, tree, "git")
	assert.True(t, git.Configured)
}

// TestProjectTree_SelectionMarks verifies selected features and counts
// come through without the projection mutating the selection.
func TestProjectTree_SelectionMarks(t *testing.T) {
	g := buildTestGraph(t)
	sel := NewSelection()
	sel.ToggleFeature("git_commit_count")
	sel.ToggleExpand("git-commits")

	tree := ProjectTree(g, sel, nil)

	git, _ := treeSource(t, tree, "git")
	require.Len(t, git.Nodes, 1)
	n := git.Nodes[0]
	assert.True(t, n.Expanded)
	assert.Equal(t, 1, n.SelectedCount)
	assert.Equal(t, 1, git.SelectedCount)

	selected := 0
	for _, f := range n.Features {
		if f.Selected {
			selected++
			assert.Equal(t, "git_commit_count", f.Name)
		}
	}
	assert.Equal(t, 1, selected)

	assert.Equal(t, 1, sel.Count(), "projection must not mutate the selection")
}
