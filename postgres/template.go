package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/featuregraph"
)

// CreateTemplate inserts a selection template.
// If t.ID is empty, a UUID is auto-generated.
// Returns the template ID (generated or provided).
func (s *PGStore) CreateTemplate(ctx context.Context, t *featuregraph.Template) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO fg_templates (id, name, features) VALUES ($1, $2, $3)`,
		t.ID, t.Name, t.Features,
	)
	if err != nil {
		return "", fmt.Errorf("featuregraph: insert template: %w", err)
	}

	return t.ID, nil
}

// GetTemplate fetches a single template by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetTemplate(ctx context.Context, id string) (*featuregraph.Template, error) {
	var t featuregraph.Template
	err := s.db.QueryRow(ctx,
		`SELECT id, name, features FROM fg_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Features)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("featuregraph: get template: %w", err)
	}

	return &t, nil
}

// UpdateTemplate updates the name and feature list of an existing
// template. Returns ErrTemplateNotFound if the template doesn't exist.
func (s *PGStore) UpdateTemplate(ctx context.Context, t *featuregraph.Template) error {
	ct, err := s.db.Exec(ctx,
		`UPDATE fg_templates SET name = $1, features = $2 WHERE id = $3`,
		t.Name, t.Features, t.ID,
	)
	if err != nil {
		return fmt.Errorf("featuregraph: update template: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return featuregraph.ErrTemplateNotFound
	}
	return nil
}

// DeleteTemplate deletes a template by its ID.
// No error if the template doesn't exist.
func (s *PGStore) DeleteTemplate(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM fg_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("featuregraph: delete template: %w", err)
	}
	return nil
}

// ListTemplates returns all templates ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListTemplates(ctx context.Context) ([]featuregraph.Template, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, features FROM fg_templates ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("featuregraph: list templates: %w", err)
	}
	defer rows.Close()

	templates := []featuregraph.Template{}
	for rows.Next() {
		var t featuregraph.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.Features); err != nil {
			return nil, fmt.Errorf("featuregraph: scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("featuregraph: rows templates: %w", err)
	}

	return templates, nil
}
