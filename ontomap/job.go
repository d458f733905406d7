package ontomap

import (
	"context"
	"fmt"
	"time"
)

// Job describes one end-to-end mapping run.
type Job struct {
	SourcePath string
	TargetPath string
	OutputPath string
	ReportPath string
	Threshold  float64
	Labels     LabelParseOptions
	// Now stamps the report title; time.Now when nil.
	Now func() time.Time
}

// JobResult is what a completed job produced.
type JobResult struct {
	Mapping     *Mapping
	Summary     Summary
	SourceCount int
	TargetCount int
	OutputPath  string
	ReportPath  string
	StartedAt   time.Time
}

// Run loads both label lists, maps them, writes the mapping JSON and then
// builds the report from the JSON that was written.
func (m *Mapper) Run(ctx context.Context, job Job) (JobResult, error) {
	now := job.Now
	if now == nil {
		now = time.Now
	}
	started := now()
	if err := ValidateThreshold(job.Threshold); err != nil {
		return JobResult{}, err
	}
	reportPath := job.ReportPath
	if reportPath == "" {
		reportPath = DefaultReportPath
	}

	sources, err := LoadLabels(job.SourcePath, job.Labels)
	if err != nil {
		return JobResult{}, fmt.Errorf("load source labels: %w", err)
	}
	targets, err := LoadLabels(job.TargetPath, job.Labels)
	if err != nil {
		return JobResult{}, fmt.Errorf("load target labels: %w", err)
	}
	m.logf("Loaded %d source and %d target labels", len(sources), len(targets))

	mapping, err := m.MapLabels(ctx, sources, targets, job.Threshold)
	if err != nil {
		return JobResult{}, fmt.Errorf("map labels: %w", err)
	}
	if err := WriteMapping(job.OutputPath, mapping); err != nil {
		return JobResult{}, err
	}

	written, summary, err := ProduceReport(job.OutputPath, reportPath, len(sources), len(targets), job.Threshold, now())
	if err != nil {
		return JobResult{}, fmt.Errorf("produce report: %w", err)
	}
	m.logf("Mapped %d, unknown %d (%.2f%%)", summary.Mapped, summary.Unknown, summary.SuccessPercentage)

	return JobResult{
		Mapping:     written,
		Summary:     summary,
		SourceCount: len(sources),
		TargetCount: len(targets),
		OutputPath:  job.OutputPath,
		ReportPath:  reportPath,
		StartedAt:   started,
	}, nil
}
