// Package glb reads and writes binary scene containers (glTF 2.0 GLB).
//
// A container is a 12-byte little-endian header (magic, version, total length)
// followed by length-prefixed, type-tagged chunks. Only the JSON metadata chunk
// and the BIN buffer chunk are retained.
package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Magic is the 4-byte tag every container starts with.
const Magic = "glTF"

// Version is the container version written by Encode.
const Version = 2

// Chunk type tags.
const (
	ChunkJSON uint32 = 0x4E4F534A
	ChunkBIN  uint32 = 0x004E4942
)

const (
	headerSize      = 12
	chunkHeaderSize = 8
)

// Container format errors.
var (
	ErrInvalidMagic     = errors.New("invalid container magic: expected 'glTF'")
	ErrTruncatedData    = errors.New("truncated container data")
	ErrMissingJSONChunk = errors.New("container has no JSON chunk")
)

// Container is a parsed scene container.
type Container struct {
	Version  uint32
	Document *Document
	Binary   []byte
}

// Parse parses a container from raw bytes.
func Parse(data []byte) (*Container, error) {
	if len(data) < headerSize {
		return nil, ErrTruncatedData
	}
	if string(data[0:4]) != Magic {
		return nil, ErrInvalidMagic
	}

	c := &Container{Version: binary.LittleEndian.Uint32(data[4:8])}
	length := int(binary.LittleEndian.Uint32(data[8:12]))
	if length > len(data) {
		return nil, errors.Wrapf(ErrTruncatedData, "declared length %d exceeds %d bytes", length, len(data))
	}

	var jsonChunk []byte
	offset := headerSize
	for offset < length {
		if offset+chunkHeaderSize > length {
			return nil, errors.Wrapf(ErrTruncatedData, "chunk header at offset %d", offset)
		}
		chunkLen := int(binary.LittleEndian.Uint32(data[offset:]))
		chunkType := binary.LittleEndian.Uint32(data[offset+4:])

		start := offset + chunkHeaderSize
		end := start + chunkLen
		if end > length || end < start {
			return nil, errors.Wrapf(ErrTruncatedData, "chunk at offset %d declares %d bytes", offset, chunkLen)
		}

		switch chunkType {
		case ChunkJSON:
			jsonChunk = data[start:end]
		case ChunkBIN:
			c.Binary = data[start:end]
		}
		offset = end
	}

	if jsonChunk == nil {
		return nil, ErrMissingJSONChunk
	}

	c.Document = &Document{}
	if err := json.Unmarshal(bytes.TrimRight(jsonChunk, " \x00"), c.Document); err != nil {
		return nil, errors.Wrap(err, "decoding JSON chunk")
	}
	return c, nil
}

// ParseFile parses a container from disk.
func ParseFile(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading container")
	}
	return Parse(data)
}

// Encode serializes a document and its buffer into container bytes.
// The JSON chunk is padded with spaces and the BIN chunk with zeros to
// 4-byte alignment.
func Encode(doc *Document, bin []byte) ([]byte, error) {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encoding JSON chunk")
	}
	jsonData = pad(jsonData, ' ')
	binData := pad(append([]byte(nil), bin...), 0)

	total := headerSize + chunkHeaderSize + len(jsonData) + chunkHeaderSize + len(binData)

	buf := bytes.NewBuffer(make([]byte, 0, total))
	buf.WriteString(Magic)
	binary.Write(buf, binary.LittleEndian, uint32(Version))
	binary.Write(buf, binary.LittleEndian, uint32(total))

	binary.Write(buf, binary.LittleEndian, uint32(len(jsonData)))
	binary.Write(buf, binary.LittleEndian, ChunkJSON)
	buf.Write(jsonData)

	binary.Write(buf, binary.LittleEndian, uint32(len(binData)))
	binary.Write(buf, binary.LittleEndian, ChunkBIN)
	buf.Write(binData)

	return buf.Bytes(), nil
}

// WriteFile encodes a container and writes it to path.
func WriteFile(path string, doc *Document, bin []byte) error {
	data, err := Encode(doc, bin)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "writing container")
	}
	return nil
}

// pad appends fill bytes until len(b) is a multiple of 4.
func pad(b []byte, fill byte) []byte {
	for len(b)%4 != 0 {
		b = append(b, fill)
	}
	return b
}
