package main

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2/data/binding"

	"yashubustudio/ontomap/ontomap"
)

var tableHeader = []string{"source", "mapping", "closest target", "score"}

// buildTableData flattens a mapping into header + rows for the results table.
func buildTableData(m *ontomap.Mapping) [][]string {
	data := [][]string{tableHeader}
	if m == nil {
		return data
	}
	for _, row := range m.Rows() {
		data = append(data, []string{
			truncateText(row.Source, 80),
			row.Mapping,
			row.ClosestTarget,
			fmt.Sprintf("%.3f", row.Score),
		})
	}
	return data
}

func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}

func formatPercent(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

// logCapture keeps the last limit log lines in a string binding.
type logCapture struct {
	mu      sync.Mutex
	lines   []string
	limit   int
	binding binding.String
}

func newLogCapture(b binding.String, limit int) *logCapture {
	return &logCapture{binding: b, limit: limit}
}

func (l *logCapture) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = appendLines(l.lines, string(p), l.limit)
	_ = l.binding.Set(strings.Join(l.lines, "\n"))
	return len(p), nil
}

func appendLines(lines []string, text string, limit int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, part := range strings.Split(text, "\n") {
		if part != "" {
			lines = append(lines, part)
		}
	}
	if limit > 0 && len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}
