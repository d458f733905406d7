package ontomap

import (
	"context"
	"errors"
	"fmt"
)

// Logger is satisfied by *log.Logger and the levelled logger in internal/logging.
type Logger interface {
	Printf(format string, args ...any)
}

type debugLogger interface {
	Debugf(format string, args ...any)
}

// Mapper embeds target labels once and maps source labels onto them.
type Mapper struct {
	embedder Embedder
	targets  *InMemoryIndex
	logger   Logger
}

// NewMapper constructs a mapper with the given embedder.
func NewMapper(embedder Embedder, logger Logger) (*Mapper, error) {
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	return &Mapper{
		embedder: embedder,
		targets:  NewInMemoryIndex(),
		logger:   logger,
	}, nil
}

// Close releases embedder resources.
func (m *Mapper) Close() error {
	if m.embedder != nil {
		return m.embedder.Close()
	}
	return nil
}

// ModelID returns the identifier of the underlying embedding model.
func (m *Mapper) ModelID() string {
	return m.embedder.ModelID()
}

// LoadTargets normalizes and embeds the target vocabulary in one batch,
// replacing any previously loaded targets.
func (m *Mapper) LoadTargets(ctx context.Context, labels []string) error {
	if len(labels) == 0 {
		m.targets.Replace(nil)
		return ErrNoTargets
	}
	vecs, err := m.embedder.EmbedTexts(ctx, NormalizeAll(labels))
	if err != nil {
		return fmt.Errorf("embed targets: %w", err)
	}
	if len(vecs) != len(labels) {
		return fmt.Errorf("embed targets: got %d vectors for %d labels", len(vecs), len(labels))
	}
	items := make([]VectorItem, len(labels))
	for i, label := range labels {
		items[i] = VectorItem{Label: label, Vector: vecs[i]}
	}
	m.targets.Replace(items)
	m.logf("Loaded %d target labels", len(items))
	return nil
}

// TargetCount returns how many target labels are indexed.
func (m *Mapper) TargetCount() int {
	return m.targets.Size()
}

// MapLabel embeds one source label and decides its mapping against the loaded targets.
func (m *Mapper) MapLabel(ctx context.Context, label string, threshold float64) (Result, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Result{}, err
	}
	if m.targets.Size() == 0 {
		return Result{}, ErrNoTargets
	}
	normalized := NormalizeLabel(label)
	vec, err := m.embedder.EmbedText(ctx, normalized)
	if err != nil {
		return Result{}, fmt.Errorf("embed %q: %w", label, err)
	}
	hit, ok := m.targets.Best(vec)
	if !ok {
		return Result{}, ErrNoTargets
	}
	res := decide(hit, threshold)
	m.debugf("%q -> %q (closest %q, score %.3f)", label, res.Mapping, hit.Label, hit.Score)
	return res, nil
}

// MapLabels loads the targets and maps every source label. The returned
// mapping is keyed by the original source text in first-seen order.
func (m *Mapper) MapLabels(ctx context.Context, sources, targets []string, threshold float64) (*Mapping, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := m.LoadTargets(ctx, targets); err != nil {
		return nil, err
	}
	out := NewMapping()
	for _, label := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := m.MapLabel(ctx, label, threshold)
		if err != nil {
			return nil, err
		}
		out.Set(label, res)
	}
	m.logf("Mapped %d source labels (threshold %v)", out.Len(), threshold)
	return out, nil
}

// decide compares the unrounded score; the stored score is rounded.
func decide(hit Hit, threshold float64) Result {
	score := roundTo(hit.Score, 3)
	if hit.Score >= threshold {
		return Result{Mapping: hit.Label, Score: score}
	}
	return Result{Mapping: Unknown, ClosestTarget: hit.Label, Score: score}
}

func (m *Mapper) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

func (m *Mapper) debugf(format string, args ...any) {
	if d, ok := m.logger.(debugLogger); ok {
		d.Debugf(format, args...)
	}
}
