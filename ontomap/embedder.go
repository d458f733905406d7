package ontomap

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"yashubustudio/ontomap/emb"
)

// Embedder exposes the minimal surface required by the mapper.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	Close() error
	ModelID() string
}

// OrtEmbedder is a thin wrapper over emb.Encoder. Vectors are memoized for the
// lifetime of the process only.
type OrtEmbedder struct {
	enc  *emb.Encoder
	cfg  EmbedderConfig
	memo map[string][]float32
	mu   sync.RWMutex
}

// NewOrtEmbedder initializes the encoder.
func NewOrtEmbedder(cfg EmbedderConfig) (*OrtEmbedder, error) {
	if cfg.ModelID == "" && cfg.ModelPath != "" {
		cfg.ModelID = filepath.Base(filepath.Dir(cfg.ModelPath)) + "/" + filepath.Base(cfg.ModelPath)
	}
	encoder := &emb.Encoder{}
	if err := encoder.Init(emb.Config{
		OrtDLL:        cfg.OrtDLL,
		ModelPath:     cfg.ModelPath,
		TokenizerPath: cfg.TokenizerPath,
		MaxSeqLen:     cfg.MaxSeqLen,
	}); err != nil {
		return nil, err
	}
	return &OrtEmbedder{
		enc:  encoder,
		cfg:  cfg,
		memo: make(map[string][]float32),
	}, nil
}

// Close releases ORT resources.
func (o *OrtEmbedder) Close() error {
	if o == nil {
		return nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.enc != nil {
		o.enc.Close()
		o.enc = nil
	}
	o.memo = nil
	return nil
}

// ModelID identifies the model in logs and run history.
func (o *OrtEmbedder) ModelID() string {
	return o.cfg.ModelID
}

// EmbedText embeds a single, already normalized string.
func (o *OrtEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if o == nil {
		return nil, errors.New("embedder is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o.mu.RLock()
	enc := o.enc
	vec, ok := o.memo[text]
	o.mu.RUnlock()
	if enc == nil {
		return nil, errors.New("embedder is not initialized")
	}
	if ok {
		return cloneVector(vec), nil
	}
	vec, err := enc.Encode(text)
	if err != nil {
		return nil, err
	}
	o.mu.Lock()
	if o.memo != nil {
		o.memo[text] = cloneVector(vec)
	}
	o.mu.Unlock()
	return vec, nil
}

// EmbedTexts embeds a slice of strings sequentially.
func (o *OrtEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := o.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
