package ontomap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMapping() *Mapping {
	m := NewMapping()
	m.Set("Color_Code", Result{Mapping: "colour", Score: 0.98})
	m.Set("Weight", Result{Mapping: Unknown, ClosestTarget: "colour", Score: 0.302})
	m.Set("a<b>&c", Result{Mapping: "size", Score: 1})
	return m
}

func TestWriteMappingShapes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, WriteMapping(path, sampleMapping()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	want := `{
  "Color_Code": {
    "mapping": "colour",
    "score": 0.98
  },
  "Weight": {
    "mapping": "UNKNOWN",
    "closest target": "colour",
    "score": 0.302
  },
  "a<b>&c": {
    "mapping": "size",
    "score": 1
  }
}
`
	assert.Equal(t, want, string(data))
}

func TestReadMappingPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "zeta": {"mapping": "UNKNOWN", "closest target": "z", "score": 0.1},
  "alpha": {"mapping": "a", "score": 0.9},
  "mid": {"mapping": "m", "score": 0.8}
}`), 0o644))

	m, err := ReadMapping(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, m.Keys())

	res, ok := m.Get("zeta")
	require.True(t, ok)
	assert.True(t, res.IsUnknown())
	assert.Equal(t, "z", res.ClosestTarget)
}

func TestReadMappingErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadMapping(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o644))
	_, err = ReadMapping(bad)
	assert.Error(t, err)
}

func TestMappingSetKeepsFirstPosition(t *testing.T) {
	m := NewMapping()
	m.Set("a", Result{Mapping: "x", Score: 0.9})
	m.Set("b", Result{Mapping: "y", Score: 0.9})
	m.Set("a", Result{Mapping: "z", Score: 0.8})

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, 2, m.Len())
	res, _ := m.Get("a")
	assert.Equal(t, "z", res.Mapping)
}

func TestEmptyMappingJSON(t *testing.T) {
	data, err := json.Marshal(NewMapping())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
