package ontomap

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LabelParseOptions selects the label column of a CSV/TSV file. Column is a
// header name or a 1-based "#N" index; empty means auto-detect.
type LabelParseOptions struct {
	Column string
}

// LoadLabels reads a label list. JSON files must hold an array of strings;
// CSV/TSV files are read column-wise and .txt files line by line.
func LoadLabels(path string, opts LabelParseOptions) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", "":
		return loadJSONLabels(path)
	case ".csv":
		return loadDelimitedLabels(path, ',', opts)
	case ".tsv":
		return loadDelimitedLabels(path, '\t', opts)
	case ".txt":
		return loadTextLabels(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}
}

func loadJSONLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if labels == nil {
		return nil, fmt.Errorf("decode %s: expected a JSON array of strings", filepath.Base(path))
	}
	return labels, nil
}

func loadTextLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	var out []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 2*1024*1024)
	for scanner.Scan() {
		line := cleanCell(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(path), err)
	}
	return out, nil
}

func loadDelimitedLabels(path string, comma rune, opts LabelParseOptions) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty label file %s", filepath.Base(path))
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	col, start, err := resolveLabelColumn(header, opts.Column)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(rows)-start)
	for _, row := range rows[start:] {
		if col >= len(row) {
			continue
		}
		if value := cleanCell(row[col]); value != "" {
			labels = append(labels, value)
		}
	}
	return labels, nil
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "\ufeff")
	return v
}

func findColumn(header []string, candidates []string) int {
	for i, col := range header {
		for _, cand := range candidates {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

// resolveLabelColumn returns the column index and the first data row.
func resolveLabelColumn(header []string, explicit string) (int, int, error) {
	trimmed := strings.TrimSpace(explicit)
	if trimmed != "" {
		idx, fromHeader, err := matchExplicitColumn(header, trimmed)
		if err != nil {
			return -1, 0, err
		}
		start := 0
		if fromHeader {
			start = 1
		}
		return idx, start, nil
	}
	col := findColumn(header, getLabelColumns())
	start := 0
	if col >= 0 {
		start = 1
	} else if len(header) > 0 {
		col = 0
	}
	if col < 0 {
		return -1, 0, errors.New("no usable label column found")
	}
	return col, start, nil
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	for i, col := range header {
		if strings.EqualFold(col, explicit) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(explicit, "#") {
		idx, err := parseColumnIndex(explicit)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, fmt.Errorf("column index %s is out of range", explicit)
		}
		return idx, false, nil
	}
	return -1, false, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}
