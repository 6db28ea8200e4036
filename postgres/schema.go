package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS fg_snapshots (
    version    TEXT PRIMARY KEY,
    graph      JSONB NOT NULL DEFAULT '{}',
    features   JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS fg_templates (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    features   TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_fg_templates_name ON fg_templates(name);
`

// CreateSchema creates the fg_snapshots and fg_templates tables if they
// don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the fg_snapshots and fg_templates tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS fg_snapshots, fg_templates CASCADE;`)
	return err
}
