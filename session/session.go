// Package session owns the live state of one operator's browsing session:
// a graph snapshot and the Selection mutated by every user action. All
// mutations for a session are serialized through one mutex, the Go
// rendition of the original single event-handling turn, so no interleaved
// partial update is possible. The graph and list projections are derived
// on every read from the same Selection and never cache their own copy.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/meikuraledutech/featuregraph"
)

// Fetcher retrieves the backend documents for a DAG version. client.Client
// implements it.
type Fetcher interface {
	FetchGraph(ctx context.Context, version string) (*featuregraph.GraphDocument, error)
	FetchFeatures(ctx context.Context, version string) (featuregraph.FeatureCatalog, error)
}

// Session is one operator's selection session against one DAG version.
type Session struct {
	ID string

	mu      sync.Mutex
	version string
	gen     uint64
	graph   *featuregraph.Graph
	sel     *featuregraph.Selection

	fetcher Fetcher
	log     *slog.Logger
}

// New creates an empty session for a DAG version. The graph is not loaded
// until Refresh is called; until then every view renders empty.
func New(id, version string, fetcher Fetcher, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		ID:      id,
		version: version,
		sel:     featuregraph.NewSelection(),
		fetcher: fetcher,
		log:     log,
	}
}

// Refresh fetches the graph and feature documents and installs them as the
// session's snapshot, revalidating the selection against the new feature
// universe. If another Refresh supersedes this one while its fetch is in
// flight, the late result is discarded: only the latest outstanding
// request may install a snapshot.
func (s *Session) Refresh(ctx context.Context, version string) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.version = version
	s.mu.Unlock()

	doc, err := s.fetcher.FetchGraph(ctx, version)
	if err != nil {
		return fmt.Errorf("featuregraph: refresh graph: %w", err)
	}
	catalog, err := s.fetcher.FetchFeatures(ctx, version)
	if err != nil {
		return fmt.Errorf("featuregraph: refresh features: %w", err)
	}

	graph := featuregraph.NewGraph(version, doc, catalog)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		s.log.Debug("superseded refresh discarded", "session", s.ID, "version", version)
		return nil
	}
	s.graph = graph
	s.sel.Revalidate(graph)
	s.log.Info("snapshot installed",
		"session", s.ID, "version", version,
		"nodes", len(graph.Nodes), "features", graph.FeatureCount())
	return nil
}

// InstallSnapshot installs a cached snapshot (e.g. one served from the
// store while the backend is down). Cached documents pass the same
// validation as a live fetch: the store is an ingestion boundary too, and
// a poisoned row must surface as an error, not reach NewGraph. The
// install supersedes any fetch still in flight and revalidates the
// selection like Refresh does.
func (s *Session) InstallSnapshot(snap *featuregraph.Snapshot) error {
	var doc featuregraph.GraphDocument
	if err := json.Unmarshal(snap.Graph, &doc); err != nil {
		return fmt.Errorf("featuregraph: decode cached graph: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return err
	}
	var catalog featuregraph.FeatureCatalog
	if len(snap.Features) > 0 {
		if err := json.Unmarshal(snap.Features, &catalog); err != nil {
			return fmt.Errorf("featuregraph: decode cached features: %w", err)
		}
		if err := catalog.Validate(); err != nil {
			return err
		}
	}
	graph := featuregraph.NewGraph(snap.Version, &doc, catalog)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.version = snap.Version
	s.graph = graph
	s.sel.Revalidate(graph)
	s.log.Info("cached snapshot installed", "session", s.ID, "version", snap.Version)
	return nil
}

// Ready reports whether a graph snapshot has been installed.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph != nil
}

// Version returns the DAG version the session is pointed at.
func (s *Session) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// ToggleFeature flips one feature. Unknown names are a documented caller
// error; the session does not look them up on the hot path.
func (s *Session) ToggleFeature(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ToggleFeature(name)
}

// ClickNode resolves a graph-view node click into the node-toggle rule
// over that node's full feature list. Returns an error for an unknown
// node ID.
func (s *Session) ClickNode(nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return fmt.Errorf("featuregraph: session %s: graph not loaded", s.ID)
	}
	n := s.graph.Node(nodeID)
	if n == nil {
		return fmt.Errorf("featuregraph: unknown node %q", nodeID)
	}
	s.sel.ToggleNode(n.Features)
	return nil
}

// SelectAll selects every feature under nodes passing the usable
// predicate; nil means every node is usable.
func (s *Session) SelectAll(usable func(featuregraph.Node) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return
	}
	if usable == nil {
		usable = func(featuregraph.Node) bool { return true }
	}
	s.sel.SelectAllAvailable(s.graph, usable)
}

// Clear empties the selected set.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.Clear()
}

// ApplyTemplate replaces the selection with the template's features
// intersected against the current universe.
func (s *Session) ApplyTemplate(features []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return
	}
	s.sel.ApplyTemplate(s.graph, features)
}

// ToggleExpand flips a node's expanded flag.
func (s *Session) ToggleExpand(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.ToggleExpand(nodeID)
}

// SetQuery sets the search string for the list view.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.SetQuery(q)
}

// Layout derives the graph-view projection. Empty until Refresh succeeds.
func (s *Session) Layout(cfg featuregraph.LayoutConfig) featuregraph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return featuregraph.Layout{}
	}
	return featuregraph.DeriveLayout(s.graph, s.sel, cfg)
}

// Tree derives the list-view projection. Empty until Refresh succeeds.
func (s *Session) Tree(configured func(featuregraph.Source) bool) []featuregraph.TreeSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return nil
	}
	return featuregraph.ProjectTree(s.graph, s.sel, configured)
}

// Summary derives the source-grouped summary of the current selection.
func (s *Session) Summary() featuregraph.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.graph == nil {
		return featuregraph.Summarize(&featuregraph.Graph{}, s.sel)
	}
	return featuregraph.Summarize(s.graph, s.sel)
}

// Selected returns the selected feature names in selection order, the
// list handed to the job-submission boundary.
func (s *Session) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Selected()
}

// State is the session snapshot served over the API.
type State struct {
	ID            string   `json:"id"`
	Version       string   `json:"version"`
	Ready         bool     `json:"ready"`
	Query         string   `json:"query"`
	SelectedCount int      `json:"selected_count"`
	Selected      []string `json:"selected"`
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		ID:            s.ID,
		Version:       s.version,
		Ready:         s.graph != nil,
		Query:         s.sel.Query(),
		SelectedCount: s.sel.Count(),
		Selected:      s.sel.Selected(),
	}
}
