// Package client fetches the graph and feature-catalog documents from the
// backend DAG service. Defensive validation of the wire documents happens
// here, at the ingestion boundary, so the engine's toggle and derive paths
// can stay branch-free.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/meikuraledutech/featuregraph"
)

// Client talks to the backend DAG service.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given backend base URL.
func New(baseURL string) *Client {
	return &Client{base: baseURL, http: &http.Client{}}
}

// FetchGraph retrieves and validates the graph document for a DAG version.
func (c *Client) FetchGraph(ctx context.Context, version string) (*featuregraph.GraphDocument, error) {
	var doc featuregraph.GraphDocument
	if err := c.get(ctx, "/dag/"+url.PathEscape(version)+"/graph", &doc); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// FetchFeatures retrieves the features-by-node catalog for a DAG version.
func (c *Client) FetchFeatures(ctx context.Context, version string) (featuregraph.FeatureCatalog, error) {
	var catalog featuregraph.FeatureCatalog
	if err := c.get(ctx, "/dag/"+url.PathEscape(version)+"/features", &catalog); err != nil {
		return nil, err
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

// FetchRaw retrieves both documents for snapshot caching. The raw bytes
// are validated through the same decode path as the live fetch before
// they are returned, so nothing unvalidated ever reaches the cache.
func (c *Client) FetchRaw(ctx context.Context, version string) (*featuregraph.Snapshot, error) {
	snap := featuregraph.Snapshot{Version: version}
	if err := c.get(ctx, "/dag/"+url.PathEscape(version)+"/graph", &snap.Graph); err != nil {
		return nil, err
	}
	if err := c.get(ctx, "/dag/"+url.PathEscape(version)+"/features", &snap.Features); err != nil {
		return nil, err
	}

	var doc featuregraph.GraphDocument
	if err := json.Unmarshal(snap.Graph, &doc); err != nil {
		return nil, fmt.Errorf("featuregraph: decode graph: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	var catalog featuregraph.FeatureCatalog
	if err := json.Unmarshal(snap.Features, &catalog); err != nil {
		return nil, fmt.Errorf("featuregraph: decode features: %w", err)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return &snap, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("featuregraph: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("featuregraph: fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("featuregraph: fetch %s: unexpected status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("featuregraph: decode %s: %w", path, err)
	}
	return nil
}
