package ontomap

import (
	"errors"
	"fmt"
	"math"
)

const (
	// Unknown marks a source label whose best target scored below the threshold.
	Unknown = "UNKNOWN"
	// DefaultThreshold is the minimum similarity accepted as a mapping.
	DefaultThreshold = 0.75
	// DefaultReportPath is where the text report is written unless overridden.
	DefaultReportPath = "output/report.txt"
)

var (
	// ErrNoTargets is returned when mapping is attempted without target labels.
	ErrNoTargets = errors.New("no target labels")
	// ErrThresholdRange is returned for thresholds outside [0, 1].
	ErrThresholdRange = errors.New("threshold must be between 0 and 1")
	// ErrUnsupportedFormat is returned for label files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported label file format")
)

// Result is the decision recorded for one source label.
type Result struct {
	Mapping       string
	ClosestTarget string
	Score         float64
}

// IsUnknown reports whether the label fell below the threshold.
func (r Result) IsUnknown() bool {
	return r.Mapping == Unknown
}

// EmbedderConfig wraps the configuration for the ORT embedder.
type EmbedderConfig struct {
	OrtDLL        string `json:"ortDll"`
	ModelPath     string `json:"modelPath"`
	TokenizerPath string `json:"tokenizerPath"`
	MaxSeqLen     int    `json:"maxSeqLen"`
	ModelID       string `json:"modelId"`
}

// Config aggregates runtime settings persisted to config.json.
type Config struct {
	Threshold    float64        `json:"threshold"`
	ReportPath   string         `json:"reportPath"`
	HistoryPath  string         `json:"historyPath,omitempty"`
	LogLevel     string         `json:"logLevel"`
	LabelColumn  string         `json:"labelColumn,omitempty"`
	LabelColumns []string       `json:"labelColumns,omitempty"`
	Embedder     EmbedderConfig `json:"embedder"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	cfg := Config{Threshold: DefaultThreshold}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults populates zero values with sensible defaults. The threshold is
// left alone because zero is a legitimate value.
func (c *Config) ApplyDefaults() {
	if c.ReportPath == "" {
		c.ReportPath = DefaultReportPath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Embedder.ModelPath == "" {
		c.Embedder.ModelPath = "./models/all-MiniLM-L6-v2/model.onnx"
	}
	if c.Embedder.TokenizerPath == "" {
		c.Embedder.TokenizerPath = "./models/all-MiniLM-L6-v2/tokenizer.json"
	}
	if c.Embedder.MaxSeqLen == 0 {
		c.Embedder.MaxSeqLen = 256
	}
}

// ValidateThreshold rejects NaN and values outside [0, 1].
func ValidateThreshold(t float64) error {
	if math.IsNaN(t) || t < 0 || t > 1 {
		return fmt.Errorf("%w: got %v", ErrThresholdRange, t)
	}
	return nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
