// Package boundstable persists per-model chunk bounds between the visual
// chunking pass and the collision registration pass.
//
// The file is a JSON object mapping model name to an ordered list of
// {"min": [x, y, z], "max": [x, y, z]} records, one per chunk. It is read
// with a JSON5 decoder so hand-edited tables with comments or trailing
// commas still load.
package boundstable

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/Faultbox/levelchunk/pkg/math"
)

// ErrNotFound is returned by Load when the table file does not exist.
var ErrNotFound = errors.New("bounds table not found")

// Record is the bounds of one chunk.
type Record struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// FromBounds converts a box to a record.
func FromBounds(b math.Bounds) Record {
	return Record{Min: b.Min.Array(), Max: b.Max.Array()}
}

// Bounds converts the record back to a box.
func (r Record) Bounds() math.Bounds {
	return math.Bounds{Min: math.V3(r.Min), Max: math.V3(r.Max)}
}

// Table maps model name to its chunk bounds in chunk index order.
type Table map[string][]Record

// Set replaces the records of model.
func (t Table) Set(model string, bounds []math.Bounds) {
	records := make([]Record, len(bounds))
	for i, b := range bounds {
		records[i] = FromBounds(b)
	}
	t[model] = records
}

// Bounds returns the chunk boxes of model, or nil if it is absent.
func (t Table) Bounds(model string) []math.Bounds {
	records, ok := t[model]
	if !ok {
		return nil
	}
	out := make([]math.Bounds, len(records))
	for i, r := range records {
		out[i] = r.Bounds()
	}
	return out
}

// Models returns the model names in sorted order.
func (t Table) Models() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a table from path.
func Load(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading bounds table")
	}

	t := make(Table)
	if err := json5.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, "parsing bounds table %s", path)
	}
	return t, nil
}

// Save writes the table to path as indented JSON, creating parent directories.
func (t Table) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding bounds table")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating bounds table directory")
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(err, "writing bounds table")
	}
	return nil
}
