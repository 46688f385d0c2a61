// Package flatten turns the active scene of a container into a world-space
// triangle soup.
//
// The scene graph is treated as a two-level lookup: node to mesh, then mesh to
// the list of world transforms of every active node that references it.
// Child links are not followed.
package flatten

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/levelchunk/internal/geom"
	"github.com/Faultbox/levelchunk/pkg/glb"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// ErrIndexOutOfRange is returned when a primitive index points past its vertex data.
var ErrIndexOutOfRange = errors.New("vertex index out of range")

// Options controls which meshes are flattened.
type Options struct {
	// SkipMeshSubstrings drops meshes whose name contains any of these.
	SkipMeshSubstrings []string
}

// Instance is one placement of a mesh in the world.
type Instance struct {
	Node   int
	World  math.Mat4
	Normal math.Mat3
	// Renormalize is set for matrix nodes whose upper 3x3 may carry scale.
	Renormalize bool
}

// ActiveNodes returns the node indices of the declared scene, or every node
// when the scene index is absent from the scene table.
func ActiveNodes(doc *glb.Document) map[int]bool {
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}

	active := make(map[int]bool)
	if sceneIdx >= 0 && sceneIdx < len(doc.Scenes) {
		for _, n := range doc.Scenes[sceneIdx].Nodes {
			active[n] = true
		}
		return active
	}
	for i := range doc.Nodes {
		active[i] = true
	}
	return active
}

// Instances maps mesh index to every active placement of that mesh.
func Instances(doc *glb.Document) map[int][]Instance {
	active := ActiveNodes(doc)
	result := make(map[int][]Instance)
	for i := range doc.Nodes {
		node := &doc.Nodes[i]
		if node.Mesh == nil || !active[i] {
			continue
		}
		result[*node.Mesh] = append(result[*node.Mesh], nodeInstance(i, node))
	}
	return result
}

func nodeInstance(index int, node *glb.Node) Instance {
	if node.Matrix != nil {
		m := math.Mat4(*node.Matrix)
		return Instance{Node: index, World: m, Normal: m.Mat3(), Renormalize: true}
	}

	t := math.Vec3{}
	if node.Translation != nil {
		t = math.V3(*node.Translation)
	}
	r := math.QuatIdentity()
	if node.Rotation != nil {
		r = math.QuatFromArray(*node.Rotation)
	}
	s := math.Vec3{X: 1, Y: 1, Z: 1}
	if node.Scale != nil {
		s = math.V3(*node.Scale)
	}
	return Instance{Node: index, World: math.TRS(t, r, s), Normal: r.ToMat3()}
}

// Flatten emits one triangle per index triple of every triangle-list
// primitive of every active mesh instance. Meshes are visited in index order.
func Flatten(c *glb.Container, opts Options) ([]geom.Triangle, error) {
	doc := c.Document
	instances := Instances(doc)

	var tris []geom.Triangle
	for mi := range doc.Meshes {
		placements := instances[mi]
		if len(placements) == 0 || skipMesh(doc.Meshes[mi].Name, opts.SkipMeshSubstrings) {
			continue
		}
		for pi := range doc.Meshes[mi].Primitives {
			prim := &doc.Meshes[mi].Primitives[pi]
			if prim.ModeOrDefault() != glb.ModeTriangles {
				continue
			}
			src, err := readPrimitive(c, prim)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", mi, pi)
			}
			for _, inst := range placements {
				tris = src.appendTriangles(tris, inst)
			}
		}
	}
	return tris, nil
}

func skipMesh(name string, substrings []string) bool {
	for _, s := range substrings {
		if s != "" && strings.Contains(strings.ToLower(name), strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// primitiveData is the decoded, untransformed vertex data of one primitive.
type primitiveData struct {
	positions [][]float64
	normals   [][]float64
	uvs       [][]float64
	colors    [][]float64
	indices   []uint32
	material  int
}

func readPrimitive(c *glb.Container, prim *glb.Primitive) (*primitiveData, error) {
	posIdx, ok := prim.Attributes[glb.AttrPosition]
	if !ok {
		return &primitiveData{}, nil
	}

	d := &primitiveData{material: geom.NoMaterial}
	if prim.Material != nil {
		d.material = *prim.Material
	}

	var err error
	if d.positions, err = c.ReadAccessor(posIdx, false); err != nil {
		return nil, errors.Wrap(err, "positions")
	}
	if idx, ok := prim.Attributes[glb.AttrNormal]; ok {
		if d.normals, err = c.ReadAccessor(idx, false); err != nil {
			return nil, errors.Wrap(err, "normals")
		}
	}
	if idx, ok := prim.Attributes[glb.AttrTexCoord]; ok {
		if d.uvs, err = c.ReadAccessor(idx, false); err != nil {
			return nil, errors.Wrap(err, "uvs")
		}
	}
	if idx, ok := prim.Attributes[glb.AttrColor]; ok {
		if d.colors, err = c.ReadAccessor(idx, true); err != nil {
			return nil, errors.Wrap(err, "colors")
		}
	}

	if prim.Indices != nil {
		if d.indices, err = c.ReadIndices(*prim.Indices); err != nil {
			return nil, errors.Wrap(err, "indices")
		}
	} else {
		d.indices = make([]uint32, len(d.positions))
		for i := range d.indices {
			d.indices[i] = uint32(i)
		}
	}

	for _, v := range d.indices {
		if int(v) >= len(d.positions) {
			return nil, errors.Wrapf(ErrIndexOutOfRange, "index %d, %d vertices", v, len(d.positions))
		}
	}
	return d, nil
}

// appendTriangles appends the primitive's triangles placed by inst.
// A trailing partial triangle is dropped.
func (d *primitiveData) appendTriangles(dst []geom.Triangle, inst Instance) []geom.Triangle {
	for i := 0; i+2 < len(d.indices); i += 3 {
		tri := geom.Triangle{Material: d.material}
		var normals [3]math.Vec3
		var uvs [3][2]float32
		var colors [3][4]float32
		hasNormals := d.normals != nil
		hasUVs := d.uvs != nil
		hasColors := d.colors != nil

		for k := 0; k < 3; k++ {
			v := int(d.indices[i+k])
			tri.Positions[k] = inst.World.TransformPoint(vec3(d.positions[v]))

			if hasNormals {
				if v >= len(d.normals) {
					hasNormals = false
				} else {
					n := inst.Normal.MulVec3(vec3(d.normals[v]))
					if inst.Renormalize {
						n = n.Normalize()
					}
					normals[k] = n
				}
			}
			if hasUVs {
				if v >= len(d.uvs) || len(d.uvs[v]) < 2 {
					hasUVs = false
				} else {
					uvs[k] = [2]float32{float32(d.uvs[v][0]), float32(d.uvs[v][1])}
				}
			}
			if hasColors {
				if v >= len(d.colors) {
					hasColors = false
				} else {
					colors[k] = rgba(d.colors[v])
				}
			}
		}

		if hasNormals {
			tri.Normals = &normals
		}
		if hasUVs {
			tri.UVs = &uvs
		}
		if hasColors {
			tri.Colors = &colors
		}
		dst = append(dst, tri)
	}
	return dst
}

func vec3(t []float64) math.Vec3 {
	var v math.Vec3
	if len(t) > 0 {
		v.X = float32(t[0])
	}
	if len(t) > 1 {
		v.Y = float32(t[1])
	}
	if len(t) > 2 {
		v.Z = float32(t[2])
	}
	return v
}

// rgba widens a color tuple to four components with opaque alpha.
func rgba(t []float64) [4]float32 {
	c := [4]float32{1, 1, 1, 1}
	for i := 0; i < len(t) && i < 4; i++ {
		c[i] = float32(t[i])
	}
	return c
}

// Summary describes the primitives of a document without decoding buffers.
type Summary struct {
	Meshes     int
	Primitives int
	Skipped    int // non-triangle-list primitives
	Modes      map[int]int
}

// Summarize counts primitives by mode across every mesh.
func Summarize(doc *glb.Document) Summary {
	s := Summary{Meshes: len(doc.Meshes), Modes: make(map[int]int)}
	for _, m := range doc.Meshes {
		for i := range m.Primitives {
			mode := m.Primitives[i].ModeOrDefault()
			s.Primitives++
			s.Modes[mode]++
			if mode != glb.ModeTriangles {
				s.Skipped++
			}
		}
	}
	return s
}

// ModeName returns a readable primitive mode.
func ModeName(mode int) string {
	switch mode {
	case glb.ModePoints:
		return "points"
	case glb.ModeLines:
		return "lines"
	case glb.ModeLineLoop:
		return "line_loop"
	case glb.ModeLineStrip:
		return "line_strip"
	case glb.ModeTriangles:
		return "triangles"
	case glb.ModeTriangleStrip:
		return "triangle_strip"
	case glb.ModeTriangleFan:
		return "triangle_fan"
	default:
		return fmt.Sprintf("mode(%d)", mode)
	}
}
