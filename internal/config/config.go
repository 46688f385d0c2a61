// Package config handles pipeline configuration loading and management.
package config

import "github.com/pkg/errors"

// Config holds all pipeline settings.
type Config struct {
	Paths           PathsConfig           `yaml:"paths"`
	Chunking        ChunkingConfig        `yaml:"chunking"`
	Registration    RegistrationConfig    `yaml:"registration"`
	CollisionExport CollisionExportConfig `yaml:"collision_export"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// PathsConfig holds input and output locations.
type PathsConfig struct {
	MapsDir      string `yaml:"maps_dir"`      // Visual source containers
	AssetsDir    string `yaml:"assets_dir"`    // Chunk containers and collision chunks
	CollisionDir string `yaml:"collision_dir"` // Collision sources (.col)
	BoundsFile   string `yaml:"bounds_file"`   // Persisted chunk bounds table
}

// ChunkingConfig holds visual chunking settings.
type ChunkingConfig struct {
	Pattern     string   `yaml:"pattern"`
	ExtraModels []string `yaml:"extra_models"`
	Threshold   int      `yaml:"threshold"`     // Models at or below are not split
	MaxPerChunk int      `yaml:"max_per_chunk"` // Leaf triangle budget
	SegmentExt  string   `yaml:"segment_ext"`
	Verify      bool     `yaml:"verify"` // Re-decode each written container
}

// RegistrationConfig holds collision registration settings.
type RegistrationConfig struct {
	ScaleFactor float64  `yaml:"scale_factor"` // <= 0 uses the estimated scale
	Margin      float64  `yaml:"margin"`
	Exclude     []string `yaml:"exclude"`
}

// CollisionExportConfig holds container to collision conversion settings.
type CollisionExportConfig struct {
	Scale              float32  `yaml:"scale"`
	SkipMeshSubstrings []string `yaml:"skip_mesh_substrings"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the values the level build expects.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			MapsDir:      "maps",
			AssetsDir:    "assets",
			CollisionDir: "collision",
			BoundsFile:   "build/chunk_bounds.json",
		},
		Chunking: ChunkingConfig{
			Pattern:     "level*.glb",
			ExtraModels: []string{"MenuScene"},
			Threshold:   500,
			MaxPerChunk: 300,
			SegmentExt:  ".t3dm",
			Verify:      true,
		},
		Registration: RegistrationConfig{
			ScaleFactor: 64,
			Margin:      100,
			Exclude:     []string{"cog", "barrel", "bolt", "slime", "spikes"},
		},
		CollisionExport: CollisionExportConfig{
			Scale:              64,
			SkipMeshSubstrings: []string{"material_library", "_library"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Chunking.MaxPerChunk < 1:
		return errors.Errorf("chunking.max_per_chunk must be at least 1, got %d", c.Chunking.MaxPerChunk)
	case c.Chunking.Threshold < 0:
		return errors.Errorf("chunking.threshold must not be negative, got %d", c.Chunking.Threshold)
	case c.Registration.Margin < 0:
		return errors.Errorf("registration.margin must not be negative, got %g", c.Registration.Margin)
	case c.CollisionExport.Scale == 0:
		return errors.New("collision_export.scale must not be zero")
	}
	return nil
}
