package postgres

import (
	"context"
	"fmt"

	"github.com/meikuraledutech/featuregraph"
)

// SaveSnapshot upserts the stored documents for a DAG version (replace
// semantics: refetching a version overwrites the previous copy).
func (s *PGStore) SaveSnapshot(ctx context.Context, snap *featuregraph.Snapshot) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO fg_snapshots (version, graph, features) VALUES ($1, $2, $3)
		 ON CONFLICT (version) DO UPDATE SET graph = $2, features = $3`,
		snap.Version, snap.Graph, snap.Features,
	)
	if err != nil {
		return fmt.Errorf("featuregraph: save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot fetches the stored documents for a DAG version.
// Returns nil, nil if not found.
func (s *PGStore) GetSnapshot(ctx context.Context, version string) (*featuregraph.Snapshot, error) {
	snap := featuregraph.Snapshot{Version: version}
	err := s.db.QueryRow(ctx,
		`SELECT graph, features FROM fg_snapshots WHERE version = $1`, version,
	).Scan(&snap.Graph, &snap.Features)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("featuregraph: get snapshot: %w", err)
	}

	return &snap, nil
}

// DeleteSnapshot removes the stored documents for a DAG version.
// No error if the version doesn't exist.
func (s *PGStore) DeleteSnapshot(ctx context.Context, version string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM fg_snapshots WHERE version = $1`, version)
	if err != nil {
		return fmt.Errorf("featuregraph: delete snapshot: %w", err)
	}
	return nil
}
