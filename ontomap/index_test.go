package ontomap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIndexBest(t *testing.T) {
	idx := NewInMemoryIndex()
	_, ok := idx.Best([]float32{1, 0})
	assert.False(t, ok)

	idx.Replace([]VectorItem{
		{Label: "first", Vector: []float32{1, 0}},
		{Label: "second", Vector: []float32{0, 1}},
		{Label: "dup of first", Vector: []float32{2, 0}},
	})
	require.Equal(t, 3, idx.Size())

	hit, ok := idx.Best([]float32{0.9, 0.1})
	require.True(t, ok)
	assert.Equal(t, "first", hit.Label, "ties keep the earliest item")
	assert.Equal(t, 0, hit.Index)

	hit, ok = idx.Best([]float32{0, 3})
	require.True(t, ok)
	assert.Equal(t, "second", hit.Label)
	assert.InDelta(t, 1.0, hit.Score, 1e-9)
}

func TestInMemoryIndexReplaceCopiesVectors(t *testing.T) {
	vec := []float32{1, 0}
	idx := NewInMemoryIndex()
	idx.Replace([]VectorItem{{Label: "a", Vector: vec}})
	vec[0] = 0

	hit, ok := idx.Best([]float32{1, 0})
	require.True(t, ok)
	assert.InDelta(t, 1.0, hit.Score, 1e-9)
}

func TestBestOfFallsBackOnNaN(t *testing.T) {
	items := []VectorItem{{Label: "a"}, {Label: "b"}}
	hit := bestOf(items, []float64{math.NaN(), math.NaN()})
	assert.Equal(t, Hit{Label: "a", Index: 0, Score: 0}, hit)

	hit = bestOf(items, []float64{math.NaN(), 0.4})
	assert.Equal(t, "b", hit.Label)
	assert.Equal(t, 1, hit.Index)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, cosineSimilarity(nil, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
