package ontomap

import (
	"context"
	"fmt"
)

// fakeEmbedder returns fixed vectors for known normalized texts.
type fakeEmbedder struct {
	vectors    map[string][]float32
	textCalls  int
	batchCalls int
	closed     bool
	failOn     string
}

func newFakeEmbedder(vectors map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: vectors}
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.textCalls++
	return f.lookup(text)
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := f.lookup(t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) lookup(text string) ([]float32, error) {
	if f.failOn != "" && text == f.failOn {
		return nil, fmt.Errorf("encode %q failed", text)
	}
	vec, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return cloneVector(vec), nil
}

func (f *fakeEmbedder) Close() error {
	f.closed = true
	return nil
}

func (f *fakeEmbedder) ModelID() string { return "fake/model.onnx" }

// colourVectors: "color code" is close to "colour" (cos≈0.98) and far from "size".
func colourVectors() map[string][]float32 {
	return map[string][]float32{
		"colour":     {1, 0, 0},
		"size":       {0, 1, 0},
		"color code": {0.98, 0.2, 0},
		"weight":     {0.3, 0.3, 0.9},
		"dimensions": {0.1, 0.95, 0.1},
	}
}
