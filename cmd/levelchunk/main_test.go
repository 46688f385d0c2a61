package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/levelchunk/internal/config"
	"github.com/Faultbox/levelchunk/internal/pipeline"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "in.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunking:\n  threshold: 900\n  max_per_chunk: 200\n"), 0644))
	return path
}

func TestConfigCommand_WritesEffectiveConfig(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", config.FileName)

	err := newApp().Run([]string{"levelchunk",
		"--config", writeConfig(t, dir),
		"--threshold", "0",
		"--maps-dir", "levels",
		"config", "--out", out})
	require.NoError(t, err)

	cfg, err := config.Load(out, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Chunking.Threshold, "explicit zero threshold is kept")
	assert.Equal(t, 200, cfg.Chunking.MaxPerChunk)
	assert.Equal(t, "levels", cfg.Paths.MapsDir)
}

func TestConfigCommand_ThresholdUnsetKeepsFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, config.FileName)

	require.NoError(t, newApp().Run([]string{"levelchunk", "--config", writeConfig(t, dir), "config", "--out", out}))

	cfg, err := config.Load(out, config.Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.Chunking.Threshold)
}

func TestCollideCommand_MissingBoundsTable(t *testing.T) {
	dir := t.TempDir()
	err := newApp().Run([]string{"levelchunk",
		"--config", writeConfig(t, dir),
		"--bounds-file", filepath.Join(dir, "missing.json"),
		"collide"})
	assert.True(t, errors.Is(err, pipeline.ErrMissingBoundsTable), "got %v", err)
}
