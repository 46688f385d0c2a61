// Package pipeline runs the level build passes over directories of assets:
// visual chunking, collision registration, collision export and inspection.
//
// Each pass is best effort. A failure on one model is logged and collected
// into the pass report while the remaining models are still processed.
package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/levelchunk/internal/config"
)

// Output file extensions.
const (
	ContainerExt = ".glb"
	CollisionExt = ".col"
)

// Pipeline holds the configuration shared by every pass.
type Pipeline struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates a pipeline. A nil logger discards output.
func New(cfg *config.Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// ensureAssetsDir creates the output directory.
func (p *Pipeline) ensureAssetsDir() error {
	if err := os.MkdirAll(p.cfg.Paths.AssetsDir, 0755); err != nil {
		return errors.Wrap(err, "creating assets directory")
	}
	return nil
}

func (p *Pipeline) assetPath(name, ext string) string {
	return filepath.Join(p.cfg.Paths.AssetsDir, name+ext)
}

// removeStale deletes previous outputs matching patterns in the assets
// directory, never touching keep.
func (p *Pipeline) removeStale(keep string, patterns ...string) {
	keepAbs, _ := filepath.Abs(keep)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(p.cfg.Paths.AssetsDir, pattern))
		if err != nil {
			p.log.Warn("bad cleanup pattern", zap.String("pattern", pattern), zap.Error(err))
			continue
		}
		for _, m := range matches {
			if abs, _ := filepath.Abs(m); abs == keepAbs {
				continue
			}
			if err := os.Remove(m); err != nil {
				p.log.Warn("removing stale output", zap.String("file", m), zap.Error(err))
				continue
			}
			p.log.Debug("removed stale output", zap.String("file", m))
		}
	}
}
