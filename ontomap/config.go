package ontomap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultConfigFile = "config.json"
	defaultEnvFile    = ".env"
)

// LoadConfig loads configuration from the given path or the default config.json.
// A missing file yields DefaultConfig. A file without a "threshold" key gets
// DefaultThreshold; an explicit 0 is kept.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = defaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	var explicit struct {
		Threshold *float64 `json:"threshold"`
	}
	if err := json.Unmarshal(data, &explicit); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	if explicit.Threshold == nil {
		cfg.Threshold = DefaultThreshold
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveConfig persists configuration to disk.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		path = defaultConfigFile
	}
	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	cfg.ApplyDefaults()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// LoadEnvFile loads KEY=VALUE pairs from envPath (default .env) into the
// process environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(envPath string) error {
	if envPath == "" {
		envPath = defaultEnvFile
	}
	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(envPath); err != nil {
		return fmt.Errorf("load %s: %w", envPath, err)
	}
	return nil
}

// ApplyEnv overrides cfg with ONTOMAP_* environment variables.
func ApplyEnv(cfg *Config) error {
	if v, ok := lookupEnv("ONTOMAP_THRESHOLD"); ok {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ONTOMAP_THRESHOLD: %w", err)
		}
		cfg.Threshold = t
	}
	if v, ok := lookupEnv("ONTOMAP_REPORT_PATH"); ok {
		cfg.ReportPath = v
	}
	if v, ok := lookupEnv("ONTOMAP_HISTORY_PATH"); ok {
		cfg.HistoryPath = v
	}
	if v, ok := lookupEnv("ONTOMAP_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookupEnv("ONTOMAP_LABEL_COLUMN"); ok {
		cfg.LabelColumn = v
	}
	if v, ok := lookupEnv("ONTOMAP_ORT_DLL"); ok {
		cfg.Embedder.OrtDLL = v
	}
	if v, ok := lookupEnv("ONTOMAP_MODEL_PATH"); ok {
		cfg.Embedder.ModelPath = v
	}
	if v, ok := lookupEnv("ONTOMAP_TOKENIZER_PATH"); ok {
		cfg.Embedder.TokenizerPath = v
	}
	if v, ok := lookupEnv("ONTOMAP_MAX_SEQ_LEN"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ONTOMAP_MAX_SEQ_LEN: %w", err)
		}
		cfg.Embedder.MaxSeqLen = n
	}
	cfg.ApplyDefaults()
	return nil
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
