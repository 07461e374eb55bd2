package cmd

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/hpkotak/migrationguard/internal/config"
)

func TestRunConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr string
		check   func(t *testing.T, cfg *config.Config)
	}{
		{"set log level", "log.level", "DEBUG", "", func(t *testing.T, cfg *config.Config) {
			if cfg.Log.Level != "debug" {
				t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
			}
		}},
		{"set invalid log level", "log.level", "loud", "invalid log level", nil},
		{"set log format", "log.format", "json", "", func(t *testing.T, cfg *config.Config) {
			if cfg.Log.Format != "json" {
				t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
			}
		}},
		{"set invalid log format", "log.format", "xml", "invalid log format", nil},
		{"set log file", "log.file", " /tmp/guard.log ", "", func(t *testing.T, cfg *config.Config) {
			if cfg.Log.File != "/tmp/guard.log" {
				t.Errorf("Log.File = %q, want /tmp/guard.log", cfg.Log.File)
			}
		}},
		{"set scan patterns", "scan.patterns", "db/**/*.sql, ,migrations/*.sql", "", func(t *testing.T, cfg *config.Config) {
			want := []string{"db/**/*.sql", "migrations/*.sql"}
			if !reflect.DeepEqual(cfg.Scan.Patterns, want) {
				t.Errorf("Scan.Patterns = %v, want %v", cfg.Scan.Patterns, want)
			}
		}},
		{"set empty scan patterns", "scan.patterns", " , ", "scan patterns cannot be empty", nil},
		{"set scan concurrency", "scan.concurrency", "8", "", func(t *testing.T, cfg *config.Config) {
			if cfg.Scan.Concurrency != 8 {
				t.Errorf("Scan.Concurrency = %d, want 8", cfg.Scan.Concurrency)
			}
		}},
		{"set non-numeric concurrency", "scan.concurrency", "many", "invalid scan concurrency", nil},
		{"set zero concurrency", "scan.concurrency", "0", "invalid scan concurrency", nil},
		{"rules are not configurable", "rules.disabled", "truncate-table", "unknown config key", nil},
		{"unknown key", "unknown.key", "value", "unknown config key", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restore := saveCmdVars(t)
			defer restore()
			ioOut = io.Discard

			// Isolate config directory
			t.Setenv("HOME", t.TempDir())
			if err := config.Save(config.Default()); err != nil {
				t.Fatalf("save default config: %v", err)
			}

			err := runConfigSet(nil, []string{tt.key, tt.value})

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Verify the value was persisted
			loaded, err := config.Load()
			if err != nil {
				t.Fatalf("Load() after set: %v", err)
			}
			tt.check(t, loaded)
		})
	}
}

func TestRunConfigSetNoExistingConfig(t *testing.T) {
	// When no config exists, runConfigSet falls back to Default()
	restore := saveCmdVars(t)
	defer restore()
	ioOut = io.Discard
	t.Setenv("HOME", t.TempDir())

	if err := runConfigSet(nil, []string{"log.level", "info"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := config.Load()
	if err != nil {
		t.Fatalf("Load() after set: %v", err)
	}
	if loaded.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", loaded.Log.Level)
	}
	if loaded.Scan.Concurrency != config.DefaultConcurrency {
		t.Errorf("Scan.Concurrency = %d, want default %d", loaded.Scan.Concurrency, config.DefaultConcurrency)
	}
}

func TestRunConfigSetMalformedConfig(t *testing.T) {
	// When config file contains invalid YAML, config set should refuse (not silently reset).
	restore := saveCmdVars(t)
	defer restore()
	setupMalformedConfig(t)

	err := runConfigSet(nil, []string{"log.level", "debug"})
	if err == nil {
		t.Fatal("expected error for malformed config, got nil")
	}
	if !strings.Contains(err.Error(), "parsing config") {
		t.Errorf("error = %q, want substring %q", err.Error(), "parsing config")
	}
}
