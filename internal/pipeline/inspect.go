package pipeline

import (
	"sort"

	"github.com/Faultbox/levelchunk/internal/flatten"
	"github.com/Faultbox/levelchunk/internal/geom"
	"github.com/Faultbox/levelchunk/pkg/glb"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// ModeCount is the number of primitives drawn with one mode.
type ModeCount struct {
	Mode  int
	Count int
}

// Info summarizes a container.
type Info struct {
	Path       string
	Version    uint32
	Generator  string
	Triangles  int
	Bounds     math.Bounds
	Meshes     int
	Nodes      int
	Primitives int
	Materials  int
	Textures   int
	Images     int
	Modes      []ModeCount
}

// Inspect reads the container at path and reports what the chunk pass would
// see in it.
func Inspect(path string) (*Info, error) {
	c, err := glb.ParseFile(path)
	if err != nil {
		return nil, err
	}
	tris, err := flatten.Flatten(c, flatten.Options{})
	if err != nil {
		return nil, err
	}

	doc := c.Document
	s := flatten.Summarize(doc)
	info := &Info{
		Path:       path,
		Version:    c.Version,
		Generator:  doc.Asset.Generator,
		Triangles:  len(tris),
		Bounds:     geom.ComputeBounds(tris),
		Meshes:     s.Meshes,
		Nodes:      len(doc.Nodes),
		Primitives: s.Primitives,
		Materials:  len(doc.Materials),
		Textures:   len(doc.Textures),
		Images:     len(doc.Images),
	}
	for mode, n := range s.Modes {
		info.Modes = append(info.Modes, ModeCount{Mode: mode, Count: n})
	}
	sort.Slice(info.Modes, func(i, j int) bool { return info.Modes[i].Mode < info.Modes[j].Mode })
	return info, nil
}
