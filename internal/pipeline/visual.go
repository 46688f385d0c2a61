package pipeline

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/levelchunk/internal/boundstable"
	"github.com/Faultbox/levelchunk/internal/flatten"
	"github.com/Faultbox/levelchunk/internal/geom"
	"github.com/Faultbox/levelchunk/internal/partition"
	"github.com/Faultbox/levelchunk/internal/reencode"
	"github.com/Faultbox/levelchunk/internal/verify"
	"github.com/Faultbox/levelchunk/pkg/glb"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// ChunkInfo describes one written chunk container.
type ChunkInfo struct {
	File      string
	Triangles int
	Vertices  int
	Bounds    math.Bounds
}

// ModelResult is the outcome of chunking one visual model.
type ModelResult struct {
	Name      string
	Triangles int
	// ChunkCount is 0 for models written as a single unchunked container.
	ChunkCount int
	// Files lists the segment files a level header references, in chunk order.
	Files  []string
	Chunks []ChunkInfo
}

// Bounds returns the chunk bounds in chunk order.
func (r *ModelResult) Bounds() []math.Bounds {
	out := make([]math.Bounds, len(r.Chunks))
	for i, c := range r.Chunks {
		out[i] = c.Bounds
	}
	return out
}

// VisualReport is the outcome of a visual chunking pass.
type VisualReport struct {
	Models []ModelResult
	Failed []string
	// Err combines the per-model failures.
	Err error
}

// RunVisual chunks every discovered visual model and then writes the bounds
// table. Per-model failures are collected in the report; the returned error
// is reserved for discovery and bounds table failures.
func (p *Pipeline) RunVisual() (*VisualReport, error) {
	names, err := DiscoverModels(p.cfg.Paths.MapsDir, p.cfg.Chunking.Pattern, p.cfg.Chunking.ExtraModels)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		p.log.Warn("no visual models found",
			zap.String("dir", p.cfg.Paths.MapsDir),
			zap.String("pattern", p.cfg.Chunking.Pattern))
	}

	report := &VisualReport{}
	table := make(boundstable.Table)
	for _, name := range names {
		res, err := p.ChunkModel(name)
		if err != nil {
			p.log.Error("chunking failed", zap.String("model", name), zap.Error(err))
			report.Failed = append(report.Failed, name)
			report.Err = multierr.Append(report.Err, errors.Wrap(err, name))
			continue
		}
		report.Models = append(report.Models, *res)
		table.Set(name, res.Bounds())
	}

	if err := table.Save(p.cfg.Paths.BoundsFile); err != nil {
		return report, err
	}
	p.log.Info("wrote bounds table",
		zap.String("file", p.cfg.Paths.BoundsFile),
		zap.Int("models", len(table)))
	return report, nil
}

// ChunkModel reads <maps_dir>/<name>.glb and writes its chunk containers.
func (p *Pipeline) ChunkModel(name string) (*ModelResult, error) {
	src := filepath.Join(p.cfg.Paths.MapsDir, name+ContainerExt)
	c, err := glb.ParseFile(src)
	if err != nil {
		return nil, err
	}
	tris, err := flatten.Flatten(c, flatten.Options{})
	if err != nil {
		return nil, err
	}
	p.log.Info("loaded model", zap.String("model", name), zap.Int("triangles", len(tris)))
	if dangling, err := reencode.DanglingTextures(c.Document); err != nil {
		return nil, err
	} else if len(dangling) > 0 {
		p.log.Warn("textures lose their embedded image in chunk output",
			zap.String("model", name),
			zap.Ints("textures", dangling))
	}

	if err := p.ensureAssetsDir(); err != nil {
		return nil, err
	}
	p.removeStale(src, name+"_chunk*"+ContainerExt, name+ContainerExt, name+"_chunk*"+CollisionExt)

	res := &ModelResult{Name: name, Triangles: len(tris)}
	ext := p.cfg.Chunking.SegmentExt

	if len(tris) <= p.cfg.Chunking.Threshold {
		info, err := p.writeChunk(name, -1, tris, c.Document)
		if err != nil {
			return nil, err
		}
		res.Chunks = []ChunkInfo{info}
		res.Files = []string{name + ext}
		p.log.Info("flattened model without chunking", zap.String("model", name), zap.String("file", info.File))
		return res, nil
	}

	chunks := partition.Split(tris, p.cfg.Chunking.MaxPerChunk)
	stats := partition.Summarize(chunks)
	p.log.Info("splitting model",
		zap.String("model", name),
		zap.Int("chunks", stats.Chunks),
		zap.Int("min_triangles", stats.MinTriangles),
		zap.Int("max_triangles", stats.MaxTriangles))
	for i, chunk := range chunks {
		info, err := p.writeChunk(name, i, chunk.Triangles, c.Document)
		if err != nil {
			return nil, errors.Wrapf(err, "chunk %d", i)
		}
		res.Chunks = append(res.Chunks, info)
		res.Files = append(res.Files, reencode.ChunkName(name, i)+ext)
		p.log.Debug("wrote chunk",
			zap.String("file", info.File),
			zap.Int("triangles", info.Triangles),
			zap.Int("vertices", info.Vertices))
	}
	res.ChunkCount = len(chunks)
	return res, nil
}

// writeChunk re-encodes tris as chunk index of model. Index -1 writes the
// unchunked model container.
func (p *Pipeline) writeChunk(model string, index int, tris []geom.Triangle, src *glb.Document) (ChunkInfo, error) {
	meshName := reencode.ChunkName(model, index)
	doc, bin, err := reencode.Encode(tris, src, meshName)
	if err != nil {
		return ChunkInfo{}, err
	}
	data, err := glb.Encode(doc, bin)
	if err != nil {
		return ChunkInfo{}, err
	}
	if p.cfg.Chunking.Verify && len(tris) > 0 {
		if _, err := verify.Triangles(data, len(tris)); err != nil {
			return ChunkInfo{}, errors.Wrap(err, meshName)
		}
	}
	path := p.assetPath(meshName, ContainerExt)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return ChunkInfo{}, errors.Wrap(err, "writing chunk container")
	}

	bounds := geom.ComputeBounds(tris)
	if bounds.IsEmpty() {
		bounds = math.Bounds{}
	}
	info := ChunkInfo{File: filepath.Base(path), Triangles: len(tris), Bounds: bounds}
	if len(doc.Accessors) > 0 {
		info.Vertices = doc.Accessors[0].Count
	}
	return info, nil
}
