// Package report renders evaluation results and maps decisions to exit codes.
// It performs no matching of its own.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hpkotak/migrationguard/internal/safety"
)

// Exit codes are the stable contract with the host process.
const (
	ExitPass  = 0
	ExitWarn  = 1
	ExitBlock = 2

	// ExitInputError shares its code with ExitWarn for compatibility with
	// existing hosts, even though it is a different kind of failure.
	ExitInputError = 1
)

const bannerWidth = 60

// ExitCode maps a decision to the process exit code.
func ExitCode(d safety.Decision) int {
	switch d {
	case safety.Block:
		return ExitBlock
	case safety.Warn:
		return ExitWarn
	default:
		return ExitPass
	}
}

// Marker is the prefix printed before a finding of severity s.
func Marker(s safety.Severity) string {
	switch s {
	case safety.SevBlock:
		return "❌"
	case safety.SevWarn:
		return "⚠️ "
	default:
		return "💡"
	}
}

// Render writes the human-readable report: the findings framed by a banner,
// then the decision. It always writes something, so a pass is distinguishable
// from a run that never happened.
func Render(w io.Writer, findings safety.Findings, decision safety.Decision) {
	_, _ = fmt.Fprintln(w, "🔍 Validating database migration command...")

	if len(findings) == 0 {
		_, _ = fmt.Fprintln(w, "✅ Migration validation passed")
		return
	}

	banner := strings.Repeat("=", bannerWidth)
	_, _ = fmt.Fprintf(w, "\n%s\nMigration Validation Results:\n%s\n", banner, banner)
	for _, f := range findings {
		_, _ = fmt.Fprintf(w, "%s %s\n", Marker(f.Severity), f.Message)
	}
	_, _ = fmt.Fprintf(w, "%s\n\n", banner)

	switch decision {
	case safety.Block:
		_, _ = fmt.Fprintln(w, "❌ Migration validation FAILED - command blocked")
		_, _ = fmt.Fprintln(w, "\nFix the issues above or use a safer migration approach.")
		_, _ = fmt.Fprintln(w, "See the project's migration guidelines for multi-step patterns.")
	case safety.Warn:
		_, _ = fmt.Fprintln(w, "⚠️  Migration has warnings - proceed with caution")
	default:
		_, _ = fmt.Fprintln(w, "💡 Migration tips provided")
	}
}

// Result is the machine-readable form of one evaluation.
type Result struct {
	Command  string    `json:"command"`
	Programs []string  `json:"programs,omitempty"`
	Decision string    `json:"decision"`
	ExitCode int       `json:"exit_code"`
	Findings []Finding `json:"findings"`
}

// Finding is the JSON form of safety.Finding.
type Finding struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// NewResult assembles a Result from an evaluation.
func NewResult(command string, programs []string, findings safety.Findings, decision safety.Decision) Result {
	r := Result{
		Command:  command,
		Programs: programs,
		Decision: decision.String(),
		ExitCode: ExitCode(decision),
		Findings: make([]Finding, 0, len(findings)),
	}
	for _, f := range findings {
		r.Findings = append(r.Findings, Finding{
			Rule:     f.RuleID,
			Severity: f.Severity.String(),
			Message:  f.Message,
		})
	}
	return r
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
