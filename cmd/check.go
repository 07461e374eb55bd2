package cmd

import (
	"fmt"
	"strings"

	"github.com/hpkotak/migrationguard/internal/report"
	"github.com/hpkotak/migrationguard/internal/safety"
	"github.com/hpkotak/migrationguard/internal/shellparse"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check [command]",
	Short: "Check a command given on the command line",
	Long: `Check a command without a hook envelope. Words are joined with spaces.

Examples:
  migrationguard check "ALTER TABLE users DROP COLUMN email"
  migrationguard check --json psql -c "TRUNCATE TABLE events"`,
	Args: cobra.ArbitraryArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")
	if command == "" {
		_, _ = fmt.Fprintln(ioOut, "Nothing to validate.")
		return nil
	}

	logger, closeLog := newLogger()
	defer func() { _ = closeLog() }()

	if !checkJSON {
		return validate(command, logger)
	}

	findings := safety.Evaluate(command)
	decision := safety.Decide(findings)
	logDecision(logger, command, findings, decision)

	result := report.NewResult(command, shellparse.Programs(command), findings, decision)
	if err := report.WriteJSON(ioOut, result); err != nil {
		return err
	}
	if result.ExitCode != report.ExitPass {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}
