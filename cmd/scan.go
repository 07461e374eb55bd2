package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hpkotak/migrationguard/internal/config"
	"github.com/hpkotak/migrationguard/internal/report"
	"github.com/hpkotak/migrationguard/internal/scan"
	"github.com/spf13/cobra"
)

var (
	scanConcurrency int
	scanMetricsFile string
	scanWatch       bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [glob...]",
	Short: "Check migration files on disk",
	Long: `Check the contents of migration files with the same rules used for commands.
Globs support ** and default to the scan patterns in the config file.

Examples:
  migrationguard scan
  migrationguard scan 'db/migrations/**/*.sql' --metrics-file /var/lib/node_exporter/migrationguard.prom
  migrationguard scan --watch`,
	Args: cobra.ArbitraryArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanConcurrency, "concurrency", 0, "files evaluated in parallel (default from config)")
	scanCmd.Flags().StringVar(&scanMetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false, "keep running and re-check files as they change")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, closeLog := newLogger()
	defer func() { _ = closeLog() }()

	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Scan.Patterns
	}
	concurrency := cfg.Scan.Concurrency
	if scanConcurrency > 0 {
		concurrency = scanConcurrency
	}

	files, err := scan.ResolveFiles(patterns)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := &scan.Scanner{Concurrency: concurrency, Logger: logger}
	results, err := s.Scan(ctx, files)
	if err != nil {
		return err
	}

	for _, r := range results {
		printScanResult(r)
	}
	worst := scan.Worst(results)
	_, _ = fmt.Fprintf(ioOut, "\n%d file(s) checked, worst decision: %s\n", len(results), worst)

	if scanMetricsFile != "" {
		if err := scan.WriteMetrics(scanMetricsFile, results); err != nil {
			return err
		}
	}

	if scanWatch {
		return watchFiles(ctx, patterns, results, logger)
	}

	if code := report.ExitCode(worst); code != report.ExitPass {
		return &ExitError{Code: code}
	}
	return nil
}

func printScanResult(r scan.Result) {
	_, _ = fmt.Fprintf(ioOut, "%s: %s\n", r.Path, r.Decision)
	for _, f := range r.Findings {
		_, _ = fmt.Fprintf(ioOut, "  %s %s\n", report.Marker(f.Severity), f.Message)
	}
}

func watchFiles(ctx context.Context, patterns []string, initial []scan.Result, logger *slog.Logger) error {
	w := &scan.Watcher{
		Logger: logger,
		Match: func(path string) bool {
			for _, p := range patterns {
				if ok, _ := doublestar.PathMatch(filepath.Clean(p), path); ok {
					return true
				}
			}
			return false
		},
	}

	latest := make(map[string]scan.Result, len(initial))
	files := make([]string, 0, len(initial))
	for _, r := range initial {
		latest[r.Path] = r
		files = append(files, r.Path)
	}

	dirs := scan.WatchDirs(files)
	if len(dirs) == 0 {
		return fmt.Errorf("no migration directories to watch")
	}
	logger.Info("watching migration files", "dirs", dirs)
	_, _ = fmt.Fprintf(ioOut, "Watching %d director(ies). Press Ctrl+C to stop.\n", len(dirs))

	return w.Watch(ctx, dirs, func(r scan.Result) {
		printScanResult(r)
		latest[r.Path] = r
		if scanMetricsFile == "" {
			return
		}
		all := make([]scan.Result, 0, len(latest))
		for _, res := range latest {
			all = append(all, res)
		}
		if err := scan.WriteMetrics(scanMetricsFile, all); err != nil {
			_, _ = fmt.Fprintf(ioErr, "Error: %v\n", err)
		}
	})
}
