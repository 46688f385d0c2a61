// Package colmesh reads and writes the runtime collision mesh format.
//
// Layout (big-endian):
//
//	magic    [4]byte  "COL1"
//	count    uint32   triangle count
//	vertices count × 9 float32 (v0.xyz, v1.xyz, v2.xyz)
package colmesh

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/pkg/errors"

	"github.com/Faultbox/levelchunk/pkg/math"
)

// Magic is the 4-byte tag of a collision file.
const Magic = "COL1"

const triangleSize = 9 * 4

// Collision format errors.
var (
	ErrInvalidMagic     = errors.New("invalid collision magic: expected 'COL1'")
	ErrTruncatedData    = errors.New("truncated collision data")
	ErrTooManyTriangles = errors.New("triangle count exceeds uint32")
)

// Triangle is three vertex positions.
type Triangle [3]math.Vec3

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() math.Vec3 {
	s := t[0].Add(t[1]).Add(t[2])
	return math.Vec3{X: s.X / 3, Y: s.Y / 3, Z: s.Z / 3}
}

// Parse decodes a collision mesh from raw bytes.
func Parse(data []byte) ([]Triangle, error) {
	if len(data) < 8 {
		return nil, ErrTruncatedData
	}
	if string(data[0:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	count := int(binary.BigEndian.Uint32(data[4:8]))
	if need := 8 + count*triangleSize; len(data) < need || need < 8 {
		return nil, errors.Wrapf(ErrTruncatedData, "%d triangles need %d bytes, have %d", count, need, len(data))
	}

	r := bytes.NewReader(data[8:])
	tris := make([]Triangle, count)
	var raw [9]float32
	for i := range tris {
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, errors.Wrapf(ErrTruncatedData, "triangle %d", i)
		}
		tris[i] = Triangle{
			{X: raw[0], Y: raw[1], Z: raw[2]},
			{X: raw[3], Y: raw[4], Z: raw[5]},
			{X: raw[6], Y: raw[7], Z: raw[8]},
		}
	}
	return tris, nil
}

// ParseFile decodes a collision mesh from disk.
func ParseFile(path string) ([]Triangle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading collision mesh")
	}
	return Parse(data)
}

// Encode serializes triangles into the collision format.
func Encode(tris []Triangle) ([]byte, error) {
	if uint64(len(tris)) > uint64(^uint32(0)) {
		return nil, ErrTooManyTriangles
	}

	buf := bytes.NewBuffer(make([]byte, 0, 8+len(tris)*triangleSize))
	buf.WriteString(Magic)
	binary.Write(buf, binary.BigEndian, uint32(len(tris)))
	for _, t := range tris {
		for _, v := range t {
			binary.Write(buf, binary.BigEndian, v.Array())
		}
	}
	return buf.Bytes(), nil
}

// WriteFile encodes triangles and writes them to path.
func WriteFile(path string, tris []Triangle) error {
	data, err := Encode(tris)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing collision mesh")
	}
	return nil
}
