package ontomap

import (
	"math"
	"sync"
)

// VectorItem represents an entry within a vector index.
type VectorItem struct {
	Label  string
	Vector []float32
}

// Hit is the best match found for a query vector.
type Hit struct {
	Label string
	Index int
	Score float64
}

// InMemoryIndex is a brute-force vector index with cosine similarity.
type InMemoryIndex struct {
	mu    sync.RWMutex
	items []VectorItem
}

// NewInMemoryIndex constructs an empty index.
func NewInMemoryIndex() *InMemoryIndex {
	return &InMemoryIndex{}
}

// Replace swaps the stored items atomically.
func (idx *InMemoryIndex) Replace(items []VectorItem) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.items = make([]VectorItem, len(items))
	for i, it := range items {
		idx.items[i] = VectorItem{
			Label:  it.Label,
			Vector: cloneVector(it.Vector),
		}
	}
}

// Size returns the current number of vectors stored.
func (idx *InMemoryIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// Best returns the highest-scoring item. Ties resolve to the earliest item.
func (idx *InMemoryIndex) Best(vec []float32) (Hit, bool) {
	idx.mu.RLock()
	items := idx.items
	idx.mu.RUnlock()
	if len(items) == 0 {
		return Hit{}, false
	}
	return bestOf(items, scoreItems(items, vec)), true
}

func scoreItems(items []VectorItem, vec []float32) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = cosineSimilarity(vec, it.Vector)
	}
	return out
}

// bestOf picks the first maximum of scores; all-NaN scores fall back to item 0.
func bestOf(items []VectorItem, scores []float64) Hit {
	best := Hit{Index: -1, Score: math.Inf(-1)}
	for i, score := range scores {
		if score > best.Score {
			best = Hit{Label: items[i].Label, Index: i, Score: score}
		}
	}
	if best.Index < 0 {
		best = Hit{Label: items[0].Label, Index: 0, Score: 0}
	}
	return best
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		fa := float64(a[i])
		fb := float64(b[i])
		dot += fa * fb
		na += fa * fa
		nb += fb * fb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func cloneVector(vec []float32) []float32 {
	out := make([]float32, len(vec))
	copy(out, vec)
	return out
}
