package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meikuraledutech/featuregraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves canned documents per version and can hold a fetch
// until released, to exercise the superseded-response guard.
type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]*featuregraph.GraphDocument
	cats  map[string]featuregraph.FeatureCatalog
	hold  map[string]chan struct{}
	fails bool
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		docs: make(map[string]*featuregraph.GraphDocument),
		cats: make(map[string]featuregraph.FeatureCatalog),
		hold: make(map[string]chan struct{}),
	}
}

func (f *fakeFetcher) add(version string, features ...string) {
	f.docs[version] = &featuregraph.GraphDocument{
		Nodes: []featuregraph.NodeDocument{
			{ID: "n1", Type: "extractor", Label: "N1", Features: features, Level: 0},
		},
	}
	f.cats[version] = nil
}

func (f *fakeFetcher) FetchGraph(ctx context.Context, version string) (*featuregraph.GraphDocument, error) {
	f.mu.Lock()
	gate := f.hold[version]
	fails := f.fails
	doc := f.docs[version]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fails || doc == nil {
		return nil, errors.New("backend unavailable")
	}
	return doc, nil
}

func (f *fakeFetcher) FetchFeatures(ctx context.Context, version string) (featuregraph.FeatureCatalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cats[version], nil
}

// TestRefresh_InstallsSnapshot verifies a successful refresh makes the
// session ready with the fetched universe.
func TestRefresh_InstallsSnapshot(t *testing.T) {
	f := newFakeFetcher()
	f.add("v1", "git_commit_count")
	s := New("s1", "v1", f, nil)

	assert.False(t, s.Ready())
	require.NoError(t, s.Refresh(context.Background(), "v1"))

	assert.True(t, s.Ready())
	assert.Equal(t, "v1", s.Version())
}

// TestRefresh_FetchFailure verifies a failed fetch leaves the session in
// its prior state.
func TestRefresh_FetchFailure(t *testing.T) {
	f := newFakeFetcher()
	s := New("s1", "v1", f, nil)

	err := s.Refresh(context.Background(), "v1")
	require.Error(t, err)
	assert.False(t, s.Ready())
}

// TestRefresh_SupersededResponseIgnored verifies a late response from an
// overtaken refresh never overwrites the newer snapshot.
func TestRefresh_SupersededResponseIgnored(t *testing.T) {
	f := newFakeFetcher()
	f.add("v1", "old_feature")
	f.add("v2", "new_feature")

	gate := make(chan struct{})
	f.mu.Lock()
	f.hold["v1"] = gate
	f.mu.Unlock()

	s := New("s1", "v1", f, nil)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(context.Background(), "v1") }()

	// The second refresh completes while the first is still blocked.
	require.NoError(t, s.Refresh(context.Background(), "v2"))
	close(gate)
	require.NoError(t, <-done)

	assert.Equal(t, "v2", s.Version())
	st := s.State()
	assert.True(t, st.Ready)
	s.ToggleFeature("new_feature")
	assert.Equal(t, []string{"new_feature"}, s.Selected())
}

// TestRefresh_RevalidatesSelection verifies a version swap drops selected
// names missing from the new universe.
func TestRefresh_RevalidatesSelection(t *testing.T) {
	f := newFakeFetcher()
	f.add("v1", "git_commit_count", "git_author_count")
	f.add("v2", "git_commit_count")

	s := New("s1", "v1", f, nil)
	require.NoError(t, s.Refresh(context.Background(), "v1"))

	s.ToggleFeature("git_commit_count")
	s.ToggleFeature("git_author_count")

	require.NoError(t, s.Refresh(context.Background(), "v2"))
	assert.Equal(t, []string{"git_commit_count"}, s.Selected())
}

// TestClickNode verifies the graph-view click funnels into the node
// toggle rule and unknown nodes error.
func TestClickNode(t *testing.T) {
	f := newFakeFetcher()
	f.add("v1", "git_commit_count", "git_author_count")
	s := New("s1", "v1", f, nil)
	require.NoError(t, s.Refresh(context.Background(), "v1"))

	require.NoError(t, s.ClickNode("n1"))
	assert.ElementsMatch(t, []string{"git_commit_count", "git_author_count"}, s.Selected())

	assert.Error(t, s.ClickNode("nope"))
}

// TestViews_EmptyUntilReady verifies both projections render empty while
// the graph is still loading.
func TestViews_EmptyUntilReady(t *testing.T) {
	s := New("s1", "v1", newFakeFetcher(), nil)

	assert.Empty(t, s.Layout(featuregraph.DefaultLayoutConfig).Nodes)
	assert.Empty(t, s.Tree(nil))
	assert.Equal(t, 0, s.Summary().Total)
}

// TestInstallSnapshot verifies a cached snapshot can stand in for a
// backend fetch.
func TestInstallSnapshot(t *testing.T) {
	s := New("s1", "v1", newFakeFetcher(), nil)

	snap := &featuregraph.Snapshot{
		Version: "v1",
		Graph: []byte(`{"nodes":[{"id":"n1","type":"extractor","label":"N1",
			"features":["git_commit_count"],"level":0}],"edges":[]}`),
		Features: []byte(`{"n1":[{"name":"git_commit_count","display_name":"Commit Count"}]}`),
	}
	require.NoError(t, s.InstallSnapshot(snap))

	assert.True(t, s.Ready())
	tree := s.Tree(nil)
	require.Len(t, tree, 1)
	assert.Equal(t, "Commit Count", tree[0].Nodes[0].Features[0].DisplayName)
}

// TestInstallSnapshot_RejectsInvalidDocument verifies a poisoned cached
// row (here a node with a negative level) is refused with an error
// instead of reaching graph assembly, and leaves the session untouched.
func TestInstallSnapshot_RejectsInvalidDocument(t *testing.T) {
	s := New("s1", "v1", newFakeFetcher(), nil)

	snap := &featuregraph.Snapshot{
		Version: "v1",
		Graph: []byte(`{"nodes":[
			{"id":"x","type":"extractor","label":"X","level":-1},
			{"id":"y","type":"extractor","label":"Y","features":["git_y"],"level":1}
		],"edges":[]}`),
	}
	err := s.InstallSnapshot(snap)
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid graph document")
	assert.False(t, s.Ready())
}

// TestInstallSnapshot_RejectsInvalidCatalog verifies a cached feature
// catalog is validated like a live fetch.
func TestInstallSnapshot_RejectsInvalidCatalog(t *testing.T) {
	s := New("s1", "v1", newFakeFetcher(), nil)

	snap := &featuregraph.Snapshot{
		Version:  "v1",
		Graph:    []byte(`{"nodes":[{"id":"n1","type":"extractor","label":"N1","level":0}],"edges":[]}`),
		Features: []byte(`{"n1":[{"display_name":"No Name"}]}`),
	}
	err := s.InstallSnapshot(snap)
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid feature under node n1")
	assert.False(t, s.Ready())
}

// TestManager verifies create/get/delete round-trips and distinct IDs.
func TestManager(t *testing.T) {
	m := NewManager(newFakeFetcher(), nil)

	a := m.Create("v1")
	b := m.Create("v1")
	assert.NotEqual(t, a.ID, b.ID)

	assert.Same(t, a, m.Get(a.ID))
	assert.Nil(t, m.Get("missing"))

	m.Delete(a.ID)
	assert.Nil(t, m.Get(a.ID))
}

// TestSession_ConcurrentToggles verifies serialized mutations never lose
// an update under parallel callers.
func TestSession_ConcurrentToggles(t *testing.T) {
	f := newFakeFetcher()
	f.add("v1", "git_commit_count")
	s := New("s1", "v1", f, nil)
	require.NoError(t, s.Refresh(context.Background(), "v1"))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.ToggleFeature("git_commit_count")
		}()
	}

	waited := make(chan struct{})
	go func() { wg.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(5 * time.Second):
		t.Fatal("toggles deadlocked")
	}

	// An even number of toggles restores the empty set.
	assert.Empty(t, s.Selected())
}
