package pipeline

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/levelchunk/internal/flatten"
	"github.com/Faultbox/levelchunk/pkg/colmesh"
	"github.com/Faultbox/levelchunk/pkg/glb"
)

// ExtractCollision converts the visual container at in into a collision file
// at out. Meshes whose name contains one of the configured skip substrings
// are left out and positions are multiplied by the export scale.
func (p *Pipeline) ExtractCollision(in, out string) (int, error) {
	c, err := glb.ParseFile(in)
	if err != nil {
		return 0, err
	}
	exp := p.cfg.CollisionExport
	tris, err := flatten.Flatten(c, flatten.Options{SkipMeshSubstrings: exp.SkipMeshSubstrings})
	if err != nil {
		return 0, errors.Wrap(err, in)
	}

	col := make([]colmesh.Triangle, len(tris))
	for i, t := range tris {
		for k, pos := range t.Positions {
			col[i][k] = pos.Scale(exp.Scale)
		}
	}
	if err := colmesh.WriteFile(out, col); err != nil {
		return 0, err
	}
	p.log.Info("exported collision",
		zap.String("source", in),
		zap.String("file", out),
		zap.Int("triangles", len(col)),
		zap.Float32("scale", exp.Scale))
	return len(col), nil
}
