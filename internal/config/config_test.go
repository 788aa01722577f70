package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.HilbertOrder())
	assert.Equal(t, 512, cfg.CanvasWidth())
	assert.Equal(t, 90, cfg.Margin())
	assert.True(t, cfg.UseCanvas())
	assert.True(t, cfg.EnableZoom())
	assert.True(t, cfg.ShowValueTooltip())
	assert.True(t, cfg.ShowRangeTooltip())
	assert.Equal(t, 10000, cfg.PickThreshold())
	assert.Equal(t, 5000, cfg.LODCeiling())
	assert.Equal(t, uint(8080), cfg.Port())
	assert.Equal(t, "hilbert.db", cfg.DBUrl())
	assert.Equal(t, "demo", cfg.Dataset())
	assert.True(t, cfg.Coarsen())
	assert.Equal(t, "localhost:8080", cfg.APIHost())
	assert.False(t, cfg.LiveReload())
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HILBERT_ORDER=12\nUSE_CANVAS=false\nDATASET=ipv4\nCOARSEN=false\nLIVE_RELOAD=true\n"), 0o600))
	t.Setenv("PORT", "9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.HilbertOrder())
	assert.False(t, cfg.UseCanvas())
	assert.Equal(t, "ipv4", cfg.Dataset())
	assert.Equal(t, uint(9000), cfg.Port())
	assert.False(t, cfg.Coarsen())
	assert.True(t, cfg.LiveReload())
}
