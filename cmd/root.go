package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/hpkotak/migrationguard/internal/config"
	"github.com/hpkotak/migrationguard/internal/hook"
	"github.com/hpkotak/migrationguard/internal/logging"
	"github.com/hpkotak/migrationguard/internal/report"
	"github.com/hpkotak/migrationguard/internal/safety"
	"github.com/hpkotak/migrationguard/internal/shellparse"
	"github.com/spf13/cobra"
)

// Package-level I/O for testability.
// Tests override these to capture output and feed hook input.
var (
	ioIn  io.Reader = os.Stdin
	ioOut io.Writer = os.Stdout
	ioErr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "migrationguard",
	Short: "Check database migration commands before they run",
	Long: `migrationguard inspects a shell command before a host runs it and decides
whether it may run, may run with a warning, or must be blocked.

Without a subcommand it reads the host's hook envelope from stdin:
  {"tool_input": {"command": "ALTER TABLE users DROP COLUMN email"}}

Exit codes:
  0  pass (no findings, or tips only)
  1  warnings, or malformed input
  2  blocked`,
	Args:              cobra.NoArgs,
	RunE:              runHook,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

// ExitError carries a non-zero exit code out of a command. It is how a
// decision reaches the process boundary; main is the only caller of os.Exit.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute runs the CLI. Errors other than ExitError are printed to stderr.
func Execute() error {
	err := rootCmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		_, _ = fmt.Fprintln(ioErr, "Error:", err)
	}
	return err
}

// ExitCode maps an Execute error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// newLogger builds the logger from the saved config. A broken config falls
// back to defaults so logging never stands between the host and a decision.
func newLogger() (*slog.Logger, func() error) {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		cfg = config.Default()
	}
	logger, closeFn, err := logging.New(cfg.Log, ioErr)
	if err != nil {
		logger, closeFn, _ = logging.New(config.Default().Log, ioErr)
	}
	return logger, closeFn
}

func runHook(cmd *cobra.Command, args []string) error {
	logger, closeLog := newLogger()
	defer func() { _ = closeLog() }()

	req, err := hook.Read(ioIn)
	if err != nil {
		_, _ = fmt.Fprintf(ioErr, "Error: %v\n", err)
		logger.Debug("rejected hook input", "error", err)
		return &ExitError{Code: report.ExitInputError, Err: err}
	}

	if req.Command == "" {
		logger.Debug("no command to validate", "tool", req.ToolName)
		return nil
	}

	logger = logger.With(
		"invocation", uuid.NewString(),
		"tool", req.ToolName,
		"session", req.SessionID,
		"cwd", req.CWD,
	)
	return validate(req.Command, logger)
}

// validate evaluates command, renders the report and converts the decision
// into an exit code.
func validate(command string, logger *slog.Logger) error {
	findings := safety.Evaluate(command)
	decision := safety.Decide(findings)

	report.Render(ioOut, findings, decision)
	logDecision(logger, command, findings, decision)

	if code := report.ExitCode(decision); code != report.ExitPass {
		return &ExitError{Code: code}
	}
	return nil
}

func logDecision(logger *slog.Logger, command string, findings safety.Findings, decision safety.Decision) {
	logger.Info("decision",
		"decision", decision.String(),
		"rules", findings.RuleIDs(),
		"programs", shellparse.Programs(command),
	)
}
