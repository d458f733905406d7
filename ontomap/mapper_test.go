package ontomap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMapper(t *testing.T, vectors map[string][]float32) (*Mapper, *fakeEmbedder) {
	t.Helper()
	fake := newFakeEmbedder(vectors)
	m, err := NewMapper(fake, nil)
	require.NoError(t, err)
	return m, fake
}

func TestNewMapperRequiresEmbedder(t *testing.T) {
	_, err := NewMapper(nil, nil)
	assert.Error(t, err)
}

func TestMapLabelsColourExample(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())

	got, err := m.MapLabels(context.Background(), []string{"Color_Code"}, []string{"colour", "size"}, 0.75)
	require.NoError(t, err)
	require.Equal(t, []string{"Color_Code"}, got.Keys())

	res, ok := got.Get("Color_Code")
	require.True(t, ok)
	assert.Equal(t, "colour", res.Mapping)
	assert.Empty(t, res.ClosestTarget)
	assert.Equal(t, 0.98, res.Score)
}

func TestMapLabelsBelowThresholdIsUnknown(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())

	got, err := m.MapLabels(context.Background(), []string{"Color_Code"}, []string{"colour", "size"}, 0.99)
	require.NoError(t, err)

	res, _ := got.Get("Color_Code")
	assert.True(t, res.IsUnknown())
	assert.Equal(t, Unknown, res.Mapping)
	assert.Equal(t, "colour", res.ClosestTarget)
	assert.Equal(t, 0.98, res.Score)
}

func TestMapLabelsZeroThresholdMapsEverything(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())

	got, err := m.MapLabels(context.Background(), []string{"weight", "Color-Code"}, []string{"colour", "size"}, 0)
	require.NoError(t, err)
	for _, row := range got.Rows() {
		assert.NotEqual(t, Unknown, row.Mapping, row.Source)
	}
}

func TestMapLabelsKeysAreOriginalAndOrdered(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())

	sources := []string{"Weight", "Color_Code", "DIMENSIONS", "Color_Code"}
	got, err := m.MapLabels(context.Background(), sources, []string{"colour", "size"}, 0.75)
	require.NoError(t, err)
	assert.Equal(t, []string{"Weight", "Color_Code", "DIMENSIONS"}, got.Keys())

	res, _ := got.Get("DIMENSIONS")
	assert.Equal(t, "size", res.Mapping)

	res, _ = got.Get("Weight")
	assert.Equal(t, Unknown, res.Mapping)
	assert.Contains(t, []string{"colour", "size"}, res.ClosestTarget)
}

func TestMapLabelsEmbedsTargetsOnce(t *testing.T) {
	m, fake := newTestMapper(t, colourVectors())

	_, err := m.MapLabels(context.Background(), []string{"weight", "color code", "dimensions"}, []string{"colour", "size"}, 0.75)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.batchCalls)
	assert.Equal(t, 3, fake.textCalls)
	assert.Equal(t, 2, m.TargetCount())
}

func TestMapLabelsScoresAreRounded(t *testing.T) {
	m, _ := newTestMapper(t, map[string][]float32{
		"a": {1, 0},
		"b": {1, 1},
	})
	got, err := m.MapLabels(context.Background(), []string{"b"}, []string{"a"}, 0.5)
	require.NoError(t, err)
	res, _ := got.Get("b")
	assert.Equal(t, 0.707, res.Score)
}

func TestMapLabelsThresholdComparesUnroundedScore(t *testing.T) {
	m, _ := newTestMapper(t, map[string][]float32{
		"a": {1, 0},
		"b": {1, 1},
	})
	// cos = 0.70710..., rounds to 0.707 but is above 0.7071
	got, err := m.MapLabels(context.Background(), []string{"b"}, []string{"a"}, 0.7071)
	require.NoError(t, err)
	res, _ := got.Get("b")
	assert.Equal(t, "a", res.Mapping)
}

func TestMapLabelsErrors(t *testing.T) {
	ctx := context.Background()
	m, fake := newTestMapper(t, colourVectors())

	_, err := m.MapLabels(ctx, []string{"colour"}, nil, 0.75)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = m.MapLabels(ctx, []string{"colour"}, []string{"size"}, 1.5)
	assert.ErrorIs(t, err, ErrThresholdRange)

	_, err = m.MapLabels(ctx, []string{"colour"}, []string{"size"}, -0.1)
	assert.ErrorIs(t, err, ErrThresholdRange)

	fake.failOn = "weight"
	_, err = m.MapLabels(ctx, []string{"Weight"}, []string{"size"}, 0.75)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Weight")
}

func TestMapLabelWithoutTargets(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())
	_, err := m.MapLabel(context.Background(), "colour", 0.75)
	assert.True(t, errors.Is(err, ErrNoTargets))
}

func TestMapLabelsHonoursCancellation(t *testing.T) {
	m, _ := newTestMapper(t, colourVectors())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.MapLabels(ctx, []string{"colour"}, []string{"size"}, 0.75)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapperCloseAndModelID(t *testing.T) {
	m, fake := newTestMapper(t, colourVectors())
	assert.Equal(t, "fake/model.onnx", m.ModelID())
	require.NoError(t, m.Close())
	assert.True(t, fake.closed)
}

type recordingLogger struct {
	lines []string
	debug []string
}

func (r *recordingLogger) Printf(format string, args ...any) {
	r.lines = append(r.lines, format)
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.debug = append(r.debug, format)
}

func TestMapperLogsThroughLogger(t *testing.T) {
	logger := &recordingLogger{}
	m, err := NewMapper(newFakeEmbedder(colourVectors()), logger)
	require.NoError(t, err)

	_, err = m.MapLabels(context.Background(), []string{"color code"}, []string{"colour"}, 0.75)
	require.NoError(t, err)
	assert.NotEmpty(t, logger.lines)
	assert.Len(t, logger.debug, 1)
}
