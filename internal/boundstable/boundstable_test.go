package boundstable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/levelchunk/pkg/math"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "build", "chunk_bounds.json")

	table := make(Table)
	table.Set("level1", []math.Bounds{
		{Min: math.Vec3{X: 0, Y: 0, Z: 0}, Max: math.Vec3{X: 50, Y: 10, Z: 50}},
		{Min: math.Vec3{X: 50, Y: -1.5, Z: 0}, Max: math.Vec3{X: 100, Y: 10, Z: 50}},
	})
	table.Set("MenuScene", []math.Bounds{{Max: math.Vec3{X: 1, Y: 1, Z: 1}}})
	require.NoError(t, table.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, table, got)
	assert.Equal(t, []string{"MenuScene", "level1"}, got.Models())

	b := got.Bounds("level1")
	require.Len(t, b, 2)
	assert.Equal(t, float32(-1.5), b[1].Min.Y)
	assert.Nil(t, got.Bounds("level9"))
}

func TestSave_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.json")
	table := Table{"a": {{Min: [3]float32{0, 0, 0}, Max: [3]float32{1, 2, 3}}}}
	require.NoError(t, table.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[{"min":[0,0,0],"max":[1,2,3]}]}`, string(data))
	assert.Contains(t, string(data), "\n  \"a\": [")
}

func TestLoad_HandEdited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.json")
	src := `{
  // regenerated by hand after moving the spawn room
  "level2": [
    {"min": [0, 0, 0], "max": [10, 5, 10],},
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []Record{{Min: [3]float32{0, 0, 0}, Max: [3]float32{10, 5, 10}}}, got["level2"])
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": [`), 0644))
	_, err := Load(path)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
