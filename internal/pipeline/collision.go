package pipeline

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/levelchunk/internal/boundstable"
	"github.com/Faultbox/levelchunk/internal/reencode"
	"github.com/Faultbox/levelchunk/internal/registrar"
	"github.com/Faultbox/levelchunk/pkg/colmesh"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// ErrMissingBoundsTable aborts the collision pass when the visual pass has
// not produced a bounds table.
var ErrMissingBoundsTable = errors.New("chunk bounds table missing: run the chunk pass first")

// CollisionResult is the outcome of registering one collision model.
type CollisionResult struct {
	Name      string
	Triangles int
	// Chunks holds the triangle count of each output, in visual chunk order.
	Chunks    []int
	Files     []string
	Rotation  int
	Scale     float64
	SwapXZ    bool
	Fallbacks int
	Estimated bool
}

// Assigned returns the total number of triangles written.
func (r *CollisionResult) Assigned() int {
	n := 0
	for _, c := range r.Chunks {
		n += c
	}
	return n
}

// CollisionReport is the outcome of a collision registration pass.
type CollisionReport struct {
	Models  []CollisionResult
	Skipped []string
	Failed  []string
	Err     error
}

// RunCollision splits every collision source to match the chunks recorded in
// the bounds table. The table is loaded once, before any model is touched.
func (p *Pipeline) RunCollision() (*CollisionReport, error) {
	table, err := boundstable.Load(p.cfg.Paths.BoundsFile)
	if errors.Is(err, boundstable.ErrNotFound) {
		return nil, errors.Wrap(ErrMissingBoundsTable, p.cfg.Paths.BoundsFile)
	}
	if err != nil {
		return nil, err
	}

	names, err := DiscoverCollision(p.cfg.Paths.CollisionDir)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(p.cfg.Registration.Exclude))
	for _, name := range p.cfg.Registration.Exclude {
		excluded[name] = true
	}

	report := &CollisionReport{}
	for _, name := range names {
		targets := table.Bounds(name)
		switch {
		case excluded[name]:
			p.log.Debug("collision model excluded", zap.String("model", name))
			report.Skipped = append(report.Skipped, name)
			continue
		case targets == nil:
			p.log.Debug("no visual chunks for collision model", zap.String("model", name))
			report.Skipped = append(report.Skipped, name)
			continue
		case len(targets) <= 1:
			p.log.Debug("visual model is not chunked", zap.String("model", name))
			report.Skipped = append(report.Skipped, name)
			continue
		}

		tris, err := colmesh.ParseFile(filepath.Join(p.cfg.Paths.CollisionDir, name+CollisionExt))
		if err != nil {
			p.log.Error("reading collision source failed", zap.String("model", name), zap.Error(err))
			report.Failed = append(report.Failed, name)
			report.Err = multierr.Append(report.Err, errors.Wrap(err, name))
			continue
		}
		if len(tris) == 0 {
			p.log.Debug("collision source is empty", zap.String("model", name))
			report.Skipped = append(report.Skipped, name)
			continue
		}

		res, err := p.RegisterModel(name, tris, targets)
		if err != nil {
			p.log.Error("collision registration failed", zap.String("model", name), zap.Error(err))
			report.Failed = append(report.Failed, name)
			report.Err = multierr.Append(report.Err, errors.Wrap(err, name))
			continue
		}
		report.Models = append(report.Models, *res)
	}
	return report, nil
}

// RegisterModel assigns tris to the visual chunk bounds in targets and writes
// one collision file per chunk, empty ones included.
func (p *Pipeline) RegisterModel(name string, tris []colmesh.Triangle, targets []math.Bounds) (*CollisionResult, error) {
	reg, err := registrar.Register(tris, targets, registrar.Options{
		ScaleFactor: p.cfg.Registration.ScaleFactor,
		Margin:      p.cfg.Registration.Margin,
	})
	if err != nil {
		return nil, err
	}

	res := &CollisionResult{
		Name:      name,
		Triangles: len(tris),
		Scale:     reg.Scale,
		SwapXZ:    reg.SwapXZ,
		Fallbacks: reg.Fallbacks,
	}
	fields := []zap.Field{
		zap.String("model", name),
		zap.Int("triangles", len(tris)),
		zap.Int("chunks", len(targets)),
		zap.Bool("swap_xz", reg.SwapXZ),
		zap.Float64("scale", reg.Scale),
	}
	if reg.Transform != nil {
		res.Rotation = reg.Transform.Rotation
		res.Estimated = true
		fields = append(fields,
			zap.Int("rotation", reg.Transform.Rotation),
			zap.Float64("estimated_scale", reg.Transform.Scale),
			zap.Float64("scale_error", reg.Transform.Error))
	} else {
		p.log.Warn("could not estimate collision transform", zap.String("model", name))
	}
	p.log.Info("registering collision", fields...)

	if err := p.ensureAssetsDir(); err != nil {
		return nil, err
	}
	p.removeStale("", name+"_chunk*"+CollisionExt)

	for i, chunk := range reg.Chunks {
		if len(chunk) == 0 {
			p.log.Warn("chunk has no collision triangles", zap.String("model", name), zap.Int("chunk", i))
		}
		file := reencode.ChunkName(name, i) + CollisionExt
		if err := colmesh.WriteFile(p.assetPath(reencode.ChunkName(name, i), CollisionExt), chunk); err != nil {
			return nil, errors.Wrapf(err, "chunk %d", i)
		}
		res.Chunks = append(res.Chunks, len(chunk))
		res.Files = append(res.Files, file)
	}

	if assigned := res.Assigned(); assigned != len(tris) {
		p.log.Warn("collision triangle count mismatch",
			zap.String("model", name),
			zap.Int("original", len(tris)),
			zap.Int("assigned", assigned))
	}
	return res, nil
}
