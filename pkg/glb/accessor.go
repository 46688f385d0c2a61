package glb

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// Accessor decoding errors.
var (
	ErrUnknownComponentType = errors.New("unknown accessor component type")
	ErrUnknownAccessorType  = errors.New("unknown accessor type")
	ErrInvalidAccessor      = errors.New("invalid accessor reference")
)

// ComponentType is the numeric type of each accessor component.
type ComponentType int

// Component types.
const (
	ComponentByte          ComponentType = 5120
	ComponentUnsignedByte  ComponentType = 5121
	ComponentShort         ComponentType = 5122
	ComponentUnsignedShort ComponentType = 5123
	ComponentUnsignedInt   ComponentType = 5125
	ComponentFloat         ComponentType = 5126
)

// String returns the glTF name of the component type.
func (c ComponentType) String() string {
	switch c {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Size returns the byte size of one component.
func (c ComponentType) Size() (int, error) {
	switch c {
	case ComponentByte, ComponentUnsignedByte:
		return 1, nil
	case ComponentShort, ComponentUnsignedShort:
		return 2, nil
	case ComponentUnsignedInt, ComponentFloat:
		return 4, nil
	default:
		return 0, errors.Wrapf(ErrUnknownComponentType, "%d", int(c))
	}
}

// normalizeDivisor is the value integer components are divided by when
// mapping normalized data into [0,1]. Unsigned int and float pass through.
func (c ComponentType) normalizeDivisor() float64 {
	switch c {
	case ComponentByte:
		return 127
	case ComponentUnsignedByte:
		return 255
	case ComponentShort:
		return 32767
	case ComponentUnsignedShort:
		return 65535
	default:
		return 1
	}
}

// AccessorType is the semantic shape of an accessor element.
type AccessorType string

// Accessor types.
const (
	AccessorScalar AccessorType = "SCALAR"
	AccessorVec2   AccessorType = "VEC2"
	AccessorVec3   AccessorType = "VEC3"
	AccessorVec4   AccessorType = "VEC4"
	AccessorMat4   AccessorType = "MAT4"
)

// Components returns the number of components per element.
func (t AccessorType) Components() (int, error) {
	switch t {
	case AccessorScalar:
		return 1, nil
	case AccessorVec2:
		return 2, nil
	case AccessorVec3:
		return 3, nil
	case AccessorVec4:
		return 4, nil
	case AccessorMat4:
		return 16, nil
	default:
		return 0, errors.Wrapf(ErrUnknownAccessorType, "%q", string(t))
	}
}

// Decode reads count tuples of the given shape from data starting at offset.
// A zero stride means tightly packed. When normalize is set, integer components
// are divided by the maximum value of their type.
func Decode(data []byte, offset, stride, count int, ct ComponentType, at AccessorType, normalize bool) ([][]float64, error) {
	size, err := ct.Size()
	if err != nil {
		return nil, err
	}
	components, err := at.Components()
	if err != nil {
		return nil, err
	}
	elem := size * components
	switch {
	case count < 0:
		return nil, errors.Wrapf(ErrInvalidAccessor, "negative count %d", count)
	case offset < 0:
		return nil, errors.Wrapf(ErrInvalidAccessor, "negative offset %d", offset)
	case stride < 0 || (stride != 0 && stride < elem):
		return nil, errors.Wrapf(ErrInvalidAccessor, "stride %d for %d-byte elements", stride, elem)
	}
	if stride == 0 {
		stride = elem
	}
	// Compare by division so huge counts or strides cannot overflow.
	if avail := len(data) - offset; count > 0 && (avail < elem || count-1 > (avail-elem)/stride) {
		return nil, errors.Wrapf(ErrTruncatedData, "%d elements of %d bytes at offset %d, stride %d, buffer has %d",
			count, elem, offset, stride, len(data))
	}

	divisor := 1.0
	if normalize {
		divisor = ct.normalizeDivisor()
	}

	result := make([][]float64, count)
	for i := 0; i < count; i++ {
		base := offset + i*stride
		tuple := make([]float64, components)
		for c := 0; c < components; c++ {
			tuple[c] = readComponent(data[base+c*size:], ct) / divisor
		}
		result[i] = tuple
	}
	return result, nil
}

func readComponent(b []byte, ct ComponentType) float64 {
	switch ct {
	case ComponentByte:
		return float64(int8(b[0]))
	case ComponentUnsignedByte:
		return float64(b[0])
	case ComponentShort:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case ComponentUnsignedShort:
		return float64(binary.LittleEndian.Uint16(b))
	case ComponentUnsignedInt:
		return float64(binary.LittleEndian.Uint32(b))
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}

// ReadAccessor decodes accessor index from the container's BIN chunk.
func (c *Container) ReadAccessor(index int, normalize bool) ([][]float64, error) {
	doc := c.Document
	if index < 0 || index >= len(doc.Accessors) {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d of %d", index, len(doc.Accessors))
	}
	acc := doc.Accessors[index]
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, errors.Wrapf(ErrInvalidAccessor, "accessor %d has no valid buffer view", index)
	}
	view := doc.BufferViews[*acc.BufferView]

	tuples, err := Decode(c.Binary, view.ByteOffset+acc.ByteOffset, view.ByteStride, acc.Count,
		acc.ComponentType, acc.Type, normalize)
	if err != nil {
		return nil, errors.Wrapf(err, "accessor %d", index)
	}
	return tuples, nil
}

// ReadIndices decodes a scalar accessor as vertex indices.
func (c *Container) ReadIndices(index int) ([]uint32, error) {
	tuples, err := c.ReadAccessor(index, false)
	if err != nil {
		return nil, err
	}
	indices := make([]uint32, len(tuples))
	for i, t := range tuples {
		indices[i] = uint32(t[0])
	}
	return indices, nil
}
