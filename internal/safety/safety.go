// Package safety classifies database-migration commands as pass, warn or block using
// textual pattern matching. This is intentionally not a SQL parser: checks must be
// deterministic, fast, and independent of whatever produced the command.
package safety

// Severity ranks a single finding. Higher is worse.
type Severity int

const (
	SevInfo Severity = iota
	SevWarn
	SevBlock
)

func (s Severity) String() string {
	switch s {
	case SevWarn:
		return "warn"
	case SevBlock:
		return "block"
	default:
		return "info"
	}
}

// Decision is the outcome for a whole command.
type Decision int

const (
	Pass Decision = iota
	Warn
	Block
)

func (d Decision) String() string {
	switch d {
	case Warn:
		return "warn"
	case Block:
		return "block"
	default:
		return "pass"
	}
}

// Finding is one diagnostic produced by a rule or a synthesized check.
type Finding struct {
	RuleID   string
	Message  string
	Severity Severity
}

// Findings are kept in evaluation order: catalogue rules first, then the
// transaction check, then the creation hint.
type Findings []Finding

// Max returns the highest severity present, or SevInfo when there are none.
func (fs Findings) Max() Severity {
	m := SevInfo
	for _, f := range fs {
		if f.Severity > m {
			m = f.Severity
		}
	}
	return m
}

// RuleIDs lists the rule ID of every finding, in order.
func (fs Findings) RuleIDs() []string {
	ids := make([]string, len(fs))
	for i, f := range fs {
		ids[i] = f.RuleID
	}
	return ids
}

// Evaluate applies every catalogue rule to command, then the synthesized
// transaction and creation checks. An empty command yields no findings.
func Evaluate(command string) Findings {
	if command == "" {
		return nil
	}

	var findings Findings
	for _, set := range [][]Rule{catalogue, checks} {
		for _, r := range set {
			if r.Pattern.Match(command) {
				findings = append(findings, Finding{RuleID: r.ID, Message: r.Message, Severity: r.Severity})
			}
		}
	}
	return findings
}

// Decide reduces findings to a single decision from their highest severity.
func Decide(findings Findings) Decision {
	switch m := findings.Max(); {
	case m >= SevBlock:
		return Block
	case m == SevWarn:
		return Warn
	default:
		return Pass
	}
}
