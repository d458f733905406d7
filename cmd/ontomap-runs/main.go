package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"yashubustudio/ontomap/history"
	"yashubustudio/ontomap/ontomap"
)

type cliOptions struct {
	configPath  string
	historyPath string
	limit       int
	runID       string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("ontomap-runs: %v", err)
	}
	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("ontomap-runs: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.historyPath, "history", "", "SQLite archive (default: historyPath from config)")
	flag.IntVar(&opts.limit, "limit", 20, "How many runs to list")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [run-id]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		return opts, fmt.Errorf("expected at most one run id, got %d arguments", flag.NArg())
	}
	opts.runID = strings.TrimSpace(flag.Arg(0))
	opts.historyPath = strings.TrimSpace(opts.historyPath)
	if opts.historyPath == "" {
		if err := ontomap.LoadEnvFile(""); err != nil {
			return opts, err
		}
		cfg, err := ontomap.LoadConfig(opts.configPath)
		if err != nil {
			return opts, fmt.Errorf("load config: %w", err)
		}
		if err := ontomap.ApplyEnv(&cfg); err != nil {
			return opts, fmt.Errorf("apply env: %w", err)
		}
		opts.historyPath = cfg.HistoryPath
	}
	if opts.historyPath == "" {
		return opts, fmt.Errorf("no history database: pass --history or set historyPath")
	}
	return opts, nil
}

func run(ctx context.Context, opts cliOptions, w io.Writer) error {
	store, err := history.Open(ctx, opts.historyPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.runID != "" {
		r, err := store.GetRun(ctx, opts.runID)
		if err != nil {
			return err
		}
		printRun(w, r)
		return nil
	}
	runs, err := store.ListRuns(ctx, opts.limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  threshold=%s  mapped=%d unknown=%d  %s -> %s\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), formatThreshold(r.Threshold),
			r.Mapped, r.Unknown, r.SourcePath, r.TargetPath)
	}
	return nil
}

func printRun(w io.Writer, r history.Run) {
	fmt.Fprintf(w, "Run %s (%s)\n", r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  model: %s\n", r.ModelID)
	fmt.Fprintf(w, "  source: %s (%d labels)\n", r.SourcePath, r.SourceCount)
	fmt.Fprintf(w, "  target: %s (%d labels)\n", r.TargetPath, r.TargetCount)
	fmt.Fprintf(w, "  threshold: %s  mapped: %d  unknown: %d\n", formatThreshold(r.Threshold), r.Mapped, r.Unknown)
	if r.Mapping == nil {
		return
	}
	for _, row := range r.Mapping.Rows() {
		if row.Mapping == ontomap.Unknown {
			fmt.Fprintf(w, "  %s -> %s (closest %s, %.3f)\n", row.Source, row.Mapping, row.ClosestTarget, row.Score)
			continue
		}
		fmt.Fprintf(w, "  %s -> %s (%.3f)\n", row.Source, row.Mapping, row.Score)
	}
}

func formatThreshold(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
