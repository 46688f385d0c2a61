package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test chunking defaults
	if cfg.Chunking.Threshold != 500 {
		t.Errorf("expected threshold 500, got %d", cfg.Chunking.Threshold)
	}
	if cfg.Chunking.MaxPerChunk != 300 {
		t.Errorf("expected max_per_chunk 300, got %d", cfg.Chunking.MaxPerChunk)
	}
	if cfg.Chunking.Pattern != "level*.glb" {
		t.Errorf("expected pattern level*.glb, got %s", cfg.Chunking.Pattern)
	}
	if !cfg.Chunking.Verify {
		t.Error("expected chunk verification on by default")
	}

	// Test registration defaults
	if cfg.Registration.ScaleFactor != 64 {
		t.Errorf("expected scale factor 64, got %f", cfg.Registration.ScaleFactor)
	}
	if cfg.Registration.Margin != 100 {
		t.Errorf("expected margin 100, got %f", cfg.Registration.Margin)
	}
	want := []string{"cog", "barrel", "bolt", "slime", "spikes"}
	if !reflect.DeepEqual(cfg.Registration.Exclude, want) {
		t.Errorf("expected exclude %v, got %v", want, cfg.Registration.Exclude)
	}

	// Test path defaults
	if cfg.Paths.BoundsFile != "build/chunk_bounds.json" {
		t.Errorf("expected bounds file build/chunk_bounds.json, got %s", cfg.Paths.BoundsFile)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
paths:
  maps_dir: "src/maps"
  bounds_file: "out/bounds.json"

chunking:
  threshold: 800
  max_per_chunk: 250
  extra_models: []

registration:
  scale_factor: 32
  margin: 12.5
  exclude: [crate]

collision_export:
  scale: 16

logging:
  level: "debug"
  log_file: "levelchunk.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Load config
	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify values were loaded
	if cfg.Paths.MapsDir != "src/maps" {
		t.Errorf("expected maps dir src/maps, got %s", cfg.Paths.MapsDir)
	}
	if cfg.Paths.AssetsDir != "assets" {
		t.Errorf("expected assets dir to keep default, got %s", cfg.Paths.AssetsDir)
	}
	if cfg.Chunking.Threshold != 800 {
		t.Errorf("expected threshold 800, got %d", cfg.Chunking.Threshold)
	}
	if cfg.Chunking.MaxPerChunk != 250 {
		t.Errorf("expected max_per_chunk 250, got %d", cfg.Chunking.MaxPerChunk)
	}
	if len(cfg.Chunking.ExtraModels) != 0 {
		t.Errorf("expected no extra models, got %v", cfg.Chunking.ExtraModels)
	}
	if cfg.Registration.ScaleFactor != 32 {
		t.Errorf("expected scale factor 32, got %f", cfg.Registration.ScaleFactor)
	}
	if cfg.Registration.Margin != 12.5 {
		t.Errorf("expected margin 12.5, got %f", cfg.Registration.Margin)
	}
	if !reflect.DeepEqual(cfg.Registration.Exclude, []string{"crate"}) {
		t.Errorf("expected exclude [crate], got %v", cfg.Registration.Exclude)
	}
	if cfg.CollisionExport.Scale != 16 {
		t.Errorf("expected export scale 16, got %f", cfg.CollisionExport.Scale)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "levelchunk.log" {
		t.Errorf("expected log file 'levelchunk.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	// Create temporary config file with invalid YAML
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
chunking:
  threshold: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Try to load - should error
	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/levelchunk.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	// Just verify it returns a non-empty path
	// Actual path depends on OS
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	// Verify path is absolute
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	// Save current directory
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	// Create temp directory and change to it
	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	// No config file exists - should return empty
	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	// Create levelchunk.yaml in current directory
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("chunking:\n  threshold: 10\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	// Should find it now
	path = findConfigFile()
	if path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name   string
		ov     Overrides
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug",
			ov:   Overrides{Debug: true},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "chunk sizes",
			ov:   Overrides{Threshold: intPtr(1000), MaxPerChunk: 128},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Chunking.Threshold != 1000 {
					t.Errorf("expected threshold 1000, got %d", cfg.Chunking.Threshold)
				}
				if cfg.Chunking.MaxPerChunk != 128 {
					t.Errorf("expected max_per_chunk 128, got %d", cfg.Chunking.MaxPerChunk)
				}
			},
		},
		{
			name: "explicit zero threshold",
			ov:   Overrides{Threshold: intPtr(0)},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Chunking.Threshold != 0 {
					t.Errorf("expected threshold 0, got %d", cfg.Chunking.Threshold)
				}
				if err := cfg.Validate(); err != nil {
					t.Errorf("threshold 0 should validate: %v", err)
				}
			},
		},
		{
			name: "paths",
			ov:   Overrides{MapsDir: "m", AssetsDir: "a", BoundsFile: "b.json", LogFile: "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Paths.MapsDir != "m" || cfg.Paths.AssetsDir != "a" || cfg.Paths.BoundsFile != "b.json" {
					t.Errorf("paths not overridden: %+v", cfg.Paths)
				}
				if cfg.Logging.LogFile != "x.log" {
					t.Errorf("expected log file x.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "zero values keep settings",
			ov:   Overrides{},
			verify: func(t *testing.T, cfg *Config) {
				if !reflect.DeepEqual(cfg, Default()) {
					t.Errorf("empty overrides changed config: %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.ov.apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func TestLoadPriority(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
chunking:
  threshold: 900
  max_per_chunk: 200
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath, Overrides{MaxPerChunk: 150})
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// max_per_chunk should be from the override (150), not file (200)
	if cfg.Chunking.MaxPerChunk != 150 {
		t.Errorf("expected max_per_chunk 150 from override, got %d", cfg.Chunking.MaxPerChunk)
	}

	// threshold should be from file (900) since no override
	if cfg.Chunking.Threshold != 900 {
		t.Errorf("expected threshold 900 from file, got %d", cfg.Chunking.Threshold)
	}
}

func TestLoadValidates(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("chunking:\n  max_per_chunk: 0\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath, Overrides{}); err == nil {
		t.Error("expected validation error for max_per_chunk 0")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threshold", func(c *Config) { c.Chunking.Threshold = -1 }},
		{"zero max per chunk", func(c *Config) { c.Chunking.MaxPerChunk = 0 }},
		{"negative margin", func(c *Config) { c.Registration.Margin = -5 }},
		{"zero export scale", func(c *Config) { c.CollisionExport.Scale = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	cfg := Default()
	cfg.Chunking.MaxPerChunk = 42

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", cfg, loaded)
	}
}
