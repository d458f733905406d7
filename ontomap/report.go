package ontomap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const reportIndent = "    "

// Summary holds the aggregate counts printed at the top of the report.
type Summary struct {
	SourceCount       int
	TargetCount       int
	Threshold         float64
	Mapped            int
	Unknown           int
	SuccessPercentage float64
}

// Summarize counts mapped and unknown entries. An empty mapping reports 0%.
func Summarize(m *Mapping, sourceCount, targetCount int, threshold float64) Summary {
	s := Summary{SourceCount: sourceCount, TargetCount: targetCount, Threshold: threshold}
	for _, k := range m.keys {
		if m.results[k].Mapping == Unknown {
			s.Unknown++
		}
	}
	s.Mapped = m.Len() - s.Unknown
	if m.Len() > 0 {
		s.SuccessPercentage = roundTo(float64(s.Mapped)/float64(m.Len())*100, 2)
	}
	return s
}

// RenderReport writes the fixed-format text report.
func RenderReport(w io.Writer, m *Mapping, s Summary, now time.Time) error {
	bw := bufio.NewWriter(w)
	upper := cases.Upper(language.Und)
	p := func(format string, args ...any) {
		fmt.Fprintf(bw, format, args...)
		bw.WriteByte('\n')
	}

	p("===== START REPORT =====")
	p("")
	p("TITLE: Ontology Mapping Report %s", now.Format("02-01-2006 15:04:05"))
	p("")
	p("SUMMARY:")
	p("%s- Source labels mapped: %d", reportIndent, s.SourceCount)
	p("%s- Target labels: %d", reportIndent, s.TargetCount)
	p("%s- Threshold for success: %s", reportIndent, formatNumber(s.Threshold))
	p("%s- Success percentage: %s%%", reportIndent, formatNumber(s.SuccessPercentage))
	p("%s- Labels mapped: %d", reportIndent, s.Mapped)
	p("%s- Labels unknown: %d", reportIndent, s.Unknown)
	p("")
	p("RESULTS:")
	p("%s== SUCCESS ==", reportIndent)
	for _, row := range m.Rows() {
		if row.Mapping == Unknown {
			continue
		}
		p("%s- Source: %s -> Target: %s || Score: %s", reportIndent,
			upper.String(row.Source), upper.String(row.Mapping), formatNumber(row.Score))
	}
	p("")
	p("%s== UNKNOWN ==", reportIndent)
	for _, row := range m.Rows() {
		if row.Mapping != Unknown {
			continue
		}
		p("%s- Source: %s -> Target: %s || Closest target: %s Score: %s", reportIndent,
			upper.String(row.Source), Unknown, upper.String(row.ClosestTarget), formatNumber(row.Score))
	}
	p("")
	p("===== END REPORT =====")
	return bw.Flush()
}

// WriteReport renders the report to path, creating parent directories.
func WriteReport(path string, m *Mapping, s Summary, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := RenderReport(f, m, s, now); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	return nil
}

// ProduceReport re-reads the mapping JSON at mappingPath and writes the report.
func ProduceReport(mappingPath, reportPath string, sourceCount, targetCount int, threshold float64, now time.Time) (*Mapping, Summary, error) {
	m, err := ReadMapping(mappingPath)
	if err != nil {
		return nil, Summary{}, err
	}
	s := Summarize(m, sourceCount, targetCount, threshold)
	if err := WriteReport(reportPath, m, s, now); err != nil {
		return nil, Summary{}, err
	}
	return m, s, nil
}

// formatNumber prints the shortest representation with at least one
// fractional digit, e.g. 0.8, 1.0, 66.67.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
