// Package scan evaluates migration files on disk with the same rules the hook
// applies to commands.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hpkotak/migrationguard/internal/safety"
	"golang.org/x/sync/errgroup"
)

// Result is the evaluation of one file.
type Result struct {
	Path     string
	Findings safety.Findings
	Decision safety.Decision
}

// Scanner evaluates files in parallel. The zero value uses one worker and the
// default logger.
type Scanner struct {
	Concurrency int
	Logger      *slog.Logger
}

// ResolveFiles expands glob patterns (with ** support) to a sorted,
// de-duplicated list of regular files. A pattern without glob characters names
// a file directly and must exist.
func ResolveFiles(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 && !containsGlob(pattern) {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, os.ErrNotExist)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			clean := filepath.Clean(m)
			if !seen[clean] {
				seen[clean] = true
				files = append(files, clean)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func containsGlob(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// File evaluates a single file's contents.
func File(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", path, err)
	}
	findings := safety.Evaluate(string(data))
	return Result{Path: path, Findings: findings, Decision: safety.Decide(findings)}, nil
}

// Scan evaluates every path. Results are returned in the order of paths
// regardless of which worker finished first. The first read error cancels the
// remaining work.
func (s *Scanner) Scan(ctx context.Context, paths []string) ([]Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := File(path)
			if err != nil {
				return err
			}
			logger.Debug("scanned migration file",
				"path", path,
				"decision", r.Decision.String(),
				"rules", r.Findings.RuleIDs())
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Worst returns the most severe decision across results, Pass when empty.
func Worst(results []Result) safety.Decision {
	worst := safety.Pass
	for _, r := range results {
		if r.Decision > worst {
			worst = r.Decision
		}
	}
	return worst
}
