package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hpkotak/migrationguard/internal/config"
	"github.com/spf13/cobra"
)

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Update a configuration value",
	Long: `Update a configuration value. Supported keys:
  log.level         debug, info, warn or error
  log.format        text or json
  log.file          file to append logs to ("" for stderr)
  scan.patterns     comma-separated globs checked by 'scan'
  scan.concurrency  files evaluated in parallel by 'scan'

Rules and exit codes are fixed and cannot be configured.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	switch key {
	case "log.level":
		cfg.Log.Level = strings.ToLower(strings.TrimSpace(value))
	case "log.format":
		cfg.Log.Format = strings.ToLower(strings.TrimSpace(value))
	case "log.file":
		cfg.Log.File = strings.TrimSpace(value)
	case "scan.patterns":
		var patterns []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			return fmt.Errorf("scan patterns cannot be empty")
		}
		cfg.Scan.Patterns = patterns
	case "scan.concurrency":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid scan concurrency %q: %w", value, err)
		}
		cfg.Scan.Concurrency = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ioOut, "Set %s = %s\n", key, value)
	return nil
}
