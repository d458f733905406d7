package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"yashubustudio/ontomap/history"
	"yashubustudio/ontomap/internal/logging"
	"yashubustudio/ontomap/ontomap"
)

// errUsage means the usage text has already been printed.
var errUsage = errors.New("usage")

type cliOptions struct {
	configPath  string
	envPath     string
	reportPath  string
	historyPath string
	column      string
	logLevel    string

	sourcePath string
	targetPath string
	outputPath string

	threshold    float64
	thresholdSet bool

	// set records which flags were given explicitly.
	set map[string]bool
}

func main() {
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "ontomap: %v\n", err)
		}
		os.Exit(1)
	}
	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		log.Fatalf("ontomap: %v", err)
	}
}

func parseArgs(args []string, stderr io.Writer) (cliOptions, error) {
	opts := cliOptions{set: make(map[string]bool)}
	fs := flag.NewFlagSet("ontomap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	fs.StringVar(&opts.envPath, "env", "", "Path to a .env file with ONTOMAP_* overrides (default: ./.env)")
	fs.StringVar(&opts.reportPath, "report", ontomap.DefaultReportPath, "Where to write the text report")
	fs.StringVar(&opts.historyPath, "history", "", "SQLite file to archive the run in (empty disables)")
	fs.StringVar(&opts.column, "column", "", "Column name or #index holding labels in CSV/TSV inputs")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info or error")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, errUsage
		}
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })

	rest := fs.Args()
	if len(rest) < 3 || len(rest) > 4 {
		fs.Usage()
		return opts, errUsage
	}
	opts.sourcePath = strings.TrimSpace(rest[0])
	opts.targetPath = strings.TrimSpace(rest[1])
	opts.outputPath = strings.TrimSpace(rest[2])
	if len(rest) == 4 {
		t, err := strconv.ParseFloat(strings.TrimSpace(rest[3]), 64)
		if err != nil {
			return opts, fmt.Errorf("invalid threshold %q: %w", rest[3], err)
		}
		if err := ontomap.ValidateThreshold(t); err != nil {
			return opts, err
		}
		opts.threshold = t
		opts.thresholdSet = true
	}
	return opts, nil
}

func printUsage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "Example Usage: ontomap <assets/source_ontology_labels.json> <assets/target_schema_ontology.json> <output/output.json>")
	fmt.Fprintf(w, "Optional args: <threshold between 0..1>, default %v\n\n", ontomap.DefaultThreshold)
	fmt.Fprintln(w, "Flags (before the positional arguments):")
	fs.PrintDefaults()
}

// resolveConfig layers config.json, environment and command-line flags.
func resolveConfig(opts cliOptions) (ontomap.Config, error) {
	if err := ontomap.LoadEnvFile(opts.envPath); err != nil {
		return ontomap.Config{}, err
	}
	cfg, err := ontomap.LoadConfig(opts.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := ontomap.ApplyEnv(&cfg); err != nil {
		return cfg, fmt.Errorf("apply env: %w", err)
	}
	if opts.set["report"] {
		cfg.ReportPath = opts.reportPath
	}
	if opts.set["history"] {
		cfg.HistoryPath = opts.historyPath
	}
	if opts.set["column"] {
		cfg.LabelColumn = opts.column
	}
	if opts.set["log-level"] {
		cfg.LogLevel = opts.logLevel
	}
	if opts.thresholdSet {
		cfg.Threshold = opts.threshold
	}
	if err := ontomap.ValidateThreshold(cfg.Threshold); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, opts cliOptions, stdout, stderr io.Writer) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}
	if len(cfg.LabelColumns) > 0 {
		ontomap.SetLabelColumns(cfg.LabelColumns)
	}

	embedder, err := ontomap.NewOrtEmbedder(cfg.Embedder)
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	return runJob(ctx, cfg, opts, embedder, stdout, stderr)
}

// runJob maps with the given embedder. stdout only receives the two result
// lines; all log output goes to stderr.
func runJob(ctx context.Context, cfg ontomap.Config, opts cliOptions, embedder ontomap.Embedder, stdout, stderr io.Writer) error {
	logger := logging.NewWithWriters(cfg.LogLevel, stderr, stderr)
	mapper, err := ontomap.NewMapper(embedder, logger)
	if err != nil {
		embedder.Close()
		return fmt.Errorf("init mapper: %w", err)
	}
	defer mapper.Close()

	job := ontomap.Job{
		SourcePath: opts.sourcePath,
		TargetPath: opts.targetPath,
		OutputPath: opts.outputPath,
		ReportPath: cfg.ReportPath,
		Threshold:  cfg.Threshold,
		Labels:     ontomap.LabelParseOptions{Column: cfg.LabelColumn},
	}
	res, err := mapper.Run(ctx, job)
	if err != nil {
		return err
	}

	if cfg.HistoryPath != "" {
		id, err := archive(ctx, cfg.HistoryPath, history.NewRun(job, res, mapper.ModelID()))
		if err != nil {
			return err
		}
		logger.Info("Archived run %s in %s", id, cfg.HistoryPath)
	}

	fmt.Fprintf(stdout, "Mapping saved to %s\n", res.OutputPath)
	fmt.Fprintf(stdout, "Report saved to %s\n", res.ReportPath)
	return nil
}

func archive(ctx context.Context, path string, run history.Run) (string, error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open history: %w", err)
	}
	defer store.Close()
	id, err := store.Record(ctx, run)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return id, nil
}
