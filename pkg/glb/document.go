package glb

import "encoding/json"

// Document is the structured metadata block of a container.
// Only the parts the pipeline reads or rebuilds are typed; material, texture,
// sampler and image entries are kept as raw JSON so they can be carried
// forward verbatim.
type Document struct {
	Asset       Asset             `json:"asset"`
	Buffers     []Buffer          `json:"buffers,omitempty"`
	BufferViews []BufferView      `json:"bufferViews,omitempty"`
	Accessors   []Accessor        `json:"accessors,omitempty"`
	Meshes      []Mesh            `json:"meshes,omitempty"`
	Nodes       []Node            `json:"nodes,omitempty"`
	Scenes      []Scene           `json:"scenes,omitempty"`
	Scene       *int              `json:"scene,omitempty"`
	Materials   []json.RawMessage `json:"materials,omitempty"`
	Textures    []json.RawMessage `json:"textures,omitempty"`
	Samplers    []json.RawMessage `json:"samplers,omitempty"`
	Images      []json.RawMessage `json:"images,omitempty"`
}

// Asset carries version and generator information.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
}

// Buffer describes a binary buffer. The container's BIN chunk is buffer 0.
type Buffer struct {
	ByteLength int    `json:"byteLength"`
	URI        string `json:"uri,omitempty"`
}

// BufferView is a byte range of a buffer.
type BufferView struct {
	Buffer     int `json:"buffer"`
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength"`
	ByteStride int `json:"byteStride,omitempty"`
	Target     int `json:"target,omitempty"`
}

// Buffer view targets.
const (
	TargetArrayBuffer        = 34962
	TargetElementArrayBuffer = 34963
)

// Accessor describes how to read typed tuples out of a buffer view.
type Accessor struct {
	BufferView    *int          `json:"bufferView,omitempty"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          AccessorType  `json:"type"`
	Min           []float32     `json:"min,omitempty"`
	Max           []float32     `json:"max,omitempty"`
}

// Mesh is a named list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive modes.
const (
	ModePoints        = 0
	ModeLines         = 1
	ModeLineLoop      = 2
	ModeLineStrip     = 3
	ModeTriangles     = 4
	ModeTriangleStrip = 5
	ModeTriangleFan   = 6
)

// Attribute semantics used by the pipeline.
const (
	AttrPosition = "POSITION"
	AttrNormal   = "NORMAL"
	AttrTexCoord = "TEXCOORD_0"
	AttrColor    = "COLOR_0"
)

// Primitive is one draw call worth of geometry.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       *int           `json:"mode,omitempty"`
}

// ModeOrDefault returns the primitive mode, defaulting to triangles.
func (p *Primitive) ModeOrDefault() int {
	if p.Mode == nil {
		return ModeTriangles
	}
	return *p.Mode
}

// Node is a scene graph node. Either Matrix or the TRS fields are set.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
}

// Scene lists root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes"`
}

// Index returns a pointer to i, for optional index fields.
func Index(i int) *int {
	return &i
}
