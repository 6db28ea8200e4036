package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/featuregraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies an empty path yields the defaults.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BACKEND_URL", "")
	t.Setenv("LISTEN_ADDR", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, featuregraph.DefaultLayoutConfig, cfg.Layout)
	assert.Empty(t, cfg.DatabaseURL)
}

// TestLoad_File verifies YAML values override the defaults.
func TestLoad_File(t *testing.T) {
	t.Setenv("BACKEND_URL", "")
	t.Setenv("LISTEN_ADDR", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":8080"
backend_url: "http://dag:9000"
configured_sources: [git, github]
layout:
  level_spacing: 300
  node_spacing: 100
  base_y: 250
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "http://dag:9000", cfg.BackendURL)
	assert.Equal(t, 300.0, cfg.Layout.LevelSpacing)
	assert.Equal(t, []string{"git", "github"}, cfg.ConfiguredSources)
}

// TestLoad_EnvOverrides verifies env vars win over file values.
func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("LISTEN_ADDR", ":9999")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, ":9999", cfg.Listen)
}

// TestLoad_MissingFile verifies a bad path errors.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/no/such/config.yaml")
	assert.Error(t, err)
}

// TestSourceConfigured verifies the predicate semantics: empty list means
// everything is configured (nil predicate).
func TestSourceConfigured(t *testing.T) {
	assert.Nil(t, Config{}.SourceConfigured())

	pred := Config{ConfiguredSources: []string{"git"}}.SourceConfigured()
	require.NotNil(t, pred)
	assert.True(t, pred(featuregraph.SourceGit))
	assert.False(t, pred(featuregraph.SourceSonar))
}
