package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wantbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  base_url: http://localhost:9999
  timeout: 3s
pacer:
  spacing: 250ms
logging:
  enabled: true
  level: debug
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Catalog.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Catalog.TimeoutDuration())
	assert.Equal(t, 250*time.Millisecond, cfg.Pacer.SpacingDuration())
	assert.True(t, cfg.Logging.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wantbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog: ["), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WANTBOT_CATALOG_BASE_URL", "http://override:1234")
	t.Setenv("WANTBOT_PACER_SPACING", "500ms")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://override:1234", cfg.Catalog.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Pacer.SpacingDuration())
}

func TestDurationFallbacks(t *testing.T) {
	c := CatalogConfig{Timeout: "not a duration"}
	assert.Equal(t, 10*time.Second, c.TimeoutDuration())

	p := PacerConfig{Spacing: "-5ms"}
	assert.Equal(t, 100*time.Millisecond, p.SpacingDuration())
}
