// Package reencode rebuilds a standalone container from a chunk of triangles.
package reencode

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/Faultbox/levelchunk/internal/geom"
	"github.com/Faultbox/levelchunk/pkg/glb"
	"github.com/Faultbox/levelchunk/pkg/math"
)

// Generator is written into the asset block of every re-encoded container.
const Generator = "levelchunk"

// MaxVertices is the number of unique vertices a 16-bit index buffer can address.
const MaxVertices = 1 << 16

// ErrTooManyVertices is returned when a chunk needs more than MaxVertices
// unique vertices. Chunk sizing upstream normally prevents this.
var ErrTooManyVertices = errors.New("chunk exceeds 16-bit vertex index range")

var (
	defaultNormal = math.Vec3{X: 0, Y: 0, Z: 1}
	white         = [4]float32{1, 1, 1, 1}
)

// ChunkName returns the mesh name of chunk index of model. A negative index
// names an unchunked model.
func ChunkName(model string, index int) string {
	if index < 0 {
		return model
	}
	return fmt.Sprintf("%s_chunk%d", model, index)
}

// vertexKey identifies a unique vertex. Missing normals and UVs are folded
// into their defaults; a missing color is kept distinct from white.
type vertexKey struct {
	pos      math.Vec3
	normal   math.Vec3
	uv       [2]float32
	color    [4]float32
	hasColor bool
}

// vertexSet deduplicates vertices across every material group of a chunk.
type vertexSet struct {
	index map[vertexKey]uint16
	keys  []vertexKey
}

func (s *vertexSet) add(k vertexKey) (uint16, error) {
	if i, ok := s.index[k]; ok {
		return i, nil
	}
	if len(s.keys) >= MaxVertices {
		return 0, ErrTooManyVertices
	}
	i := uint16(len(s.keys))
	s.index[k] = i
	s.keys = append(s.keys, k)
	return i, nil
}

// group is the index list of one material.
type group struct {
	material int
	indices  []uint16
}

// Encode builds a container holding tris as one mesh named meshName, with
// one primitive per material. Materials and samplers of src are carried over
// unchanged; images only when they point at an external resource or carry a
// name. Texture sources follow their image to its new index.
func Encode(tris []geom.Triangle, src *glb.Document, meshName string) (*glb.Document, []byte, error) {
	var hasNormals, hasUVs, hasColors bool
	for i := range tris {
		hasNormals = hasNormals || tris[i].Normals != nil
		hasUVs = hasUVs || tris[i].UVs != nil
		hasColors = hasColors || tris[i].Colors != nil
	}

	verts := &vertexSet{index: make(map[vertexKey]uint16)}
	groups := make(map[int]*group)
	for i := range tris {
		tri := &tris[i]
		g, ok := groups[tri.Material]
		if !ok {
			g = &group{material: tri.Material}
			groups[tri.Material] = g
		}
		for k := 0; k < 3; k++ {
			idx, err := verts.add(keyOf(tri, k))
			if err != nil {
				return nil, nil, errors.Wrapf(err, "mesh %s", meshName)
			}
			g.indices = append(g.indices, idx)
		}
	}

	b := glb.NewBuilder(Generator)
	attrs := writeAttributes(b, verts.keys, hasNormals, hasUVs, hasColors)

	prims := make([]glb.Primitive, 0, len(groups))
	for _, g := range orderGroups(groups) {
		if len(g.indices) == 0 {
			continue
		}
		prim := glb.Primitive{
			Attributes: attrs,
			Indices:    glb.Index(b.AddIndices16(g.indices)),
			Mode:       glb.Index(glb.ModeTriangles),
		}
		if g.material != geom.NoMaterial {
			prim.Material = glb.Index(g.material)
		}
		prims = append(prims, prim)
	}

	mesh := b.AddMesh(glb.Mesh{Name: meshName, Primitives: prims})
	b.SetScene(b.AddNode(glb.Node{Name: meshName, Mesh: glb.Index(mesh)}))

	doc, bin := b.Finish()
	if src != nil {
		doc.Materials = src.Materials
		doc.Samplers = src.Samplers
		images, remap, err := externalImages(src.Images)
		if err != nil {
			return nil, nil, err
		}
		doc.Images = images
		if doc.Textures, _, err = remapTextures(src.Textures, remap); err != nil {
			return nil, nil, err
		}
	}
	return doc, bin, nil
}

func keyOf(tri *geom.Triangle, k int) vertexKey {
	key := vertexKey{pos: tri.Positions[k], normal: defaultNormal}
	if tri.Normals != nil {
		key.normal = tri.Normals[k]
	}
	if tri.UVs != nil {
		key.uv = tri.UVs[k]
	}
	if tri.Colors != nil {
		key.color = tri.Colors[k]
		key.hasColor = true
	}
	return key
}

// orderGroups sorts material groups by index with the unassigned group last.
func orderGroups(groups map[int]*group) []*group {
	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i].material, ordered[j].material
		if a == geom.NoMaterial || b == geom.NoMaterial {
			return b == geom.NoMaterial && a != geom.NoMaterial
		}
		return a < b
	})
	return ordered
}

// writeAttributes emits the shared vertex streams and returns the attribute map.
func writeAttributes(b *glb.Builder, keys []vertexKey, normals, uvs, colors bool) map[string]int {
	positions := make([]math.Vec3, len(keys))
	for i, k := range keys {
		positions[i] = k.pos
	}
	attrs := map[string]int{glb.AttrPosition: b.AddVec3(positions, true)}

	if normals {
		ns := make([]math.Vec3, len(keys))
		for i, k := range keys {
			ns[i] = k.normal
		}
		attrs[glb.AttrNormal] = b.AddVec3(ns, false)
	}
	if uvs {
		ts := make([][2]float32, len(keys))
		for i, k := range keys {
			ts[i] = k.uv
		}
		attrs[glb.AttrTexCoord] = b.AddVec2(ts)
	}
	if colors {
		cs := make([][4]float32, len(keys))
		for i, k := range keys {
			cs[i] = white
			if k.hasColor {
				cs[i] = k.color
			}
		}
		attrs[glb.AttrColor] = b.AddVec4(cs)
	}
	return attrs
}

// externalImages keeps URI images whole and reduces name-only images to their
// name. Images embedded in the source buffer are dropped. remap gives the new
// index of every source image, or -1 when it was dropped.
func externalImages(images []json.RawMessage) (kept []json.RawMessage, remap []int, err error) {
	remap = make([]int, len(images))
	for i, raw := range images {
		remap[i] = -1
		var img map[string]json.RawMessage
		if err := json.Unmarshal(raw, &img); err != nil {
			return nil, nil, errors.Wrapf(err, "image %d", i)
		}
		if _, ok := img["uri"]; ok {
			remap[i] = len(kept)
			kept = append(kept, raw)
			continue
		}
		if name, ok := img["name"]; ok {
			entry, err := json.Marshal(map[string]json.RawMessage{"name": name})
			if err != nil {
				return nil, nil, errors.Wrapf(err, "image %d", i)
			}
			remap[i] = len(kept)
			kept = append(kept, entry)
		}
	}
	return kept, remap, nil
}

// remapTextures points texture sources at the filtered image list. Textures
// whose image was dropped, or whose source was already out of range, lose
// their source and are listed in dangling. Untouched entries stay verbatim.
func remapTextures(textures []json.RawMessage, remap []int) (out []json.RawMessage, dangling []int, err error) {
	if len(textures) == 0 {
		return textures, nil, nil
	}
	out = make([]json.RawMessage, len(textures))
	for i, raw := range textures {
		var tex map[string]json.RawMessage
		if err := json.Unmarshal(raw, &tex); err != nil {
			return nil, nil, errors.Wrapf(err, "texture %d", i)
		}
		srcRaw, ok := tex["source"]
		if !ok {
			out[i] = raw
			continue
		}
		var src int
		if err := json.Unmarshal(srcRaw, &src); err != nil {
			return nil, nil, errors.Wrapf(err, "texture %d source", i)
		}

		valid := src >= 0 && src < len(remap) && remap[src] >= 0
		if valid && remap[src] == src {
			out[i] = raw
			continue
		}
		if valid {
			tex["source"] = json.RawMessage(strconv.Itoa(remap[src]))
		} else {
			delete(tex, "source")
			dangling = append(dangling, i)
		}
		if out[i], err = json.Marshal(tex); err != nil {
			return nil, nil, errors.Wrapf(err, "texture %d", i)
		}
	}
	return out, dangling, nil
}

// DanglingTextures lists the textures of src that lose their image when the
// document is re-encoded.
func DanglingTextures(src *glb.Document) ([]int, error) {
	_, remap, err := externalImages(src.Images)
	if err != nil {
		return nil, err
	}
	_, dangling, err := remapTextures(src.Textures, remap)
	return dangling, err
}
