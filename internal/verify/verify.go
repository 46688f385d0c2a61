// Package verify re-reads written chunk containers with an independent glTF
// decoder and checks the properties downstream loaders rely on.
package verify

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

// MaxVertices is the most vertices a uint16 index buffer can address.
const MaxVertices = 1 << 16

// Errors reported for containers that decode but break a chunk invariant.
var (
	ErrNotTriangles     = errors.New("primitive is not a triangle list")
	ErrMissingIndices   = errors.New("primitive has no index buffer")
	ErrIndexType        = errors.New("index buffer is not unsigned short")
	ErrPartialTriangle  = errors.New("index count is not a multiple of three")
	ErrTooManyVertices  = errors.New("position accessor exceeds 16-bit addressing")
	ErrBadReference     = errors.New("reference out of range")
	ErrEmbeddedImage    = errors.New("image is embedded in the buffer")
	ErrTriangleMismatch = errors.New("triangle count does not match")
)

// Report summarizes a decoded container.
type Report struct {
	Meshes     int
	Primitives int
	Triangles  int
	Vertices   int
	Materials  int
	Images     int
}

// Container decodes data as a binary glTF and checks it.
func Container(data []byte) (*Report, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decoding container")
	}
	return Document(doc)
}

// Document checks a decoded document: indexed uint16 triangle lists, in-range
// accessor, material and texture references, and no images stored in the buffer.
func Document(doc *gltf.Document) (*Report, error) {
	r := &Report{
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
		Images:    len(doc.Images),
	}
	for i, img := range doc.Images {
		if img.BufferView != nil {
			return nil, errors.Wrapf(ErrEmbeddedImage, "image %d", i)
		}
	}

	for i, tex := range doc.Textures {
		if tex.Source != nil && int(*tex.Source) >= len(doc.Images) {
			return nil, errors.Wrapf(ErrBadReference, "texture %d source %d", i, *tex.Source)
		}
	}

	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if err := checkPrimitive(doc, prim, r); err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d", mi, pi)
			}
			r.Primitives++
		}
	}
	return r, nil
}

func checkPrimitive(doc *gltf.Document, prim *gltf.Primitive, r *Report) error {
	if prim.Mode != gltf.PrimitiveTriangles {
		return ErrNotTriangles
	}
	if prim.Material != nil && int(*prim.Material) >= len(doc.Materials) {
		return errors.Wrapf(ErrBadReference, "material %d", *prim.Material)
	}

	pos, ok := prim.Attributes[gltf.POSITION]
	if !ok || int(pos) >= len(doc.Accessors) {
		return errors.Wrap(ErrBadReference, "position accessor")
	}
	vertices := int(doc.Accessors[pos].Count)
	if vertices > MaxVertices {
		return errors.Wrapf(ErrTooManyVertices, "%d vertices", vertices)
	}
	if vertices > r.Vertices {
		r.Vertices = vertices
	}

	if prim.Indices == nil {
		return ErrMissingIndices
	}
	if int(*prim.Indices) >= len(doc.Accessors) {
		return errors.Wrapf(ErrBadReference, "indices accessor %d", *prim.Indices)
	}
	idx := doc.Accessors[*prim.Indices]
	if idx.ComponentType != gltf.ComponentUshort {
		return ErrIndexType
	}
	if idx.Count%3 != 0 {
		return errors.Wrapf(ErrPartialTriangle, "%d indices", idx.Count)
	}
	r.Triangles += int(idx.Count / 3)
	return nil
}

// Triangles checks data and that it holds exactly want triangles.
func Triangles(data []byte, want int) (*Report, error) {
	r, err := Container(data)
	if err != nil {
		return nil, err
	}
	if r.Triangles != want {
		return r, errors.Wrapf(ErrTriangleMismatch, "decoded %d, expected %d", r.Triangles, want)
	}
	return r, nil
}
