package featuregraph

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrTemplateNotFound = errors.New("featuregraph: template not found")
	ErrSnapshotNotFound = errors.New("featuregraph: snapshot not found")
)

// Template is a named, pre-selected list of feature names usable to
// bulk-set a selection via Selection.ApplyTemplate.
type Template struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name"`
	Features []string `json:"features"`
}

// Snapshot is one persisted DAG version: the raw graph document and the
// features-by-node catalog, kept as received so a cached version can be
// served when the backend is unreachable.
type Snapshot struct {
	Version  string          `json:"version"`
	Graph    json.RawMessage `json:"graph"`
	Features json.RawMessage `json:"features"`
}

// Store defines the contract for persisting graph snapshots and the
// selection-template catalog.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Snapshots
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, version string) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, version string) error

	// Templates
	CreateTemplate(ctx context.Context, t *Template) (string, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
	DeleteTemplate(ctx context.Context, id string) error
	ListTemplates(ctx context.Context) ([]Template, error)
}
