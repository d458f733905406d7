package ontomap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Mapping is an insertion-ordered map from source label to Result.
type Mapping struct {
	keys    []string
	results map[string]Result
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{results: make(map[string]Result)}
}

// Set records the result for label. A repeated label keeps its first position.
func (m *Mapping) Set(label string, r Result) {
	if m.results == nil {
		m.results = make(map[string]Result)
	}
	if _, ok := m.results[label]; !ok {
		m.keys = append(m.keys, label)
	}
	m.results[label] = r
}

// Get returns the result recorded for label.
func (m *Mapping) Get(label string) (Result, bool) {
	r, ok := m.results[label]
	return r, ok
}

// Keys returns the source labels in insertion order.
func (m *Mapping) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of source labels.
func (m *Mapping) Len() int {
	return len(m.keys)
}

// Row is a flattened view of one mapping entry.
type Row struct {
	Source        string
	Mapping       string
	ClosestTarget string
	Score         float64
}

// Rows returns the mapping as rows in insertion order.
func (m *Mapping) Rows() []Row {
	out := make([]Row, 0, len(m.keys))
	for _, k := range m.keys {
		r := m.results[k]
		out = append(out, Row{Source: k, Mapping: r.Mapping, ClosestTarget: r.ClosestTarget, Score: r.Score})
	}
	return out
}

// MarshalJSON writes a JSON object whose key order follows insertion order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(k)
		if err != nil {
			return nil, err
		}
		val, err := marshalPlain(m.results[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("mapping must be a JSON object")
	}
	out := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var r Result
		if err := dec.Decode(&r); err != nil {
			return fmt.Errorf("decode %q: %w", key, err)
		}
		out.Set(key, r)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = *out
	return nil
}

type successJSON struct {
	Mapping string  `json:"mapping"`
	Score   float64 `json:"score"`
}

type unknownJSON struct {
	Mapping       string  `json:"mapping"`
	ClosestTarget string  `json:"closest target"`
	Score         float64 `json:"score"`
}

// MarshalJSON emits the success shape or the UNKNOWN shape.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.IsUnknown() {
		return marshalPlain(unknownJSON{Mapping: r.Mapping, ClosestTarget: r.ClosestTarget, Score: r.Score})
	}
	return marshalPlain(successJSON{Mapping: r.Mapping, Score: r.Score})
}

// UnmarshalJSON accepts either result shape.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw unknownJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{Mapping: raw.Mapping, ClosestTarget: raw.ClosestTarget, Score: raw.Score}
	return nil
}

func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteMapping writes the mapping as indented JSON, creating parent directories.
func WriteMapping(path string, m *Mapping) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write mapping: %w", err)
	}
	return nil
}

// ReadMapping loads a mapping previously written by WriteMapping.
func ReadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	m := NewMapping()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode mapping %s: %w", filepath.Base(path), err)
	}
	return m, nil
}
