package safety

import (
	"regexp"
	"strings"
)

// Predicate reports whether a command matches a rule. Evaluate only sees this
// interface, so new matchers need no change there.
type Predicate interface {
	Match(command string) bool
}

// Rule pairs a predicate with the message and severity reported on a match.
type Rule struct {
	ID       string
	Pattern  Predicate
	Message  string
	Severity Severity
}

// Patterns are compiled case-insensitive with . matching newlines, so a
// multi-clause statement may span lines.
const flags = `(?is)`

type regexPredicate struct {
	re *regexp.Regexp
}

// Regex returns a predicate for pattern. It panics if pattern does not compile.
func Regex(pattern string) Predicate {
	return regexPredicate{re: regexp.MustCompile(flags + pattern)}
}

func (p regexPredicate) Match(command string) bool {
	return p.re.MatchString(command)
}

func (p regexPredicate) String() string {
	return strings.TrimPrefix(p.re.String(), flags)
}

// notFollowedBy stands in for a negative lookahead, which RE2 does not support.
// It matches when some occurrence of anchor is preceded somewhere by context
// and is not immediately followed by refuse.
type notFollowedBy struct {
	context *regexp.Regexp // nil means no context is required
	anchor  *regexp.Regexp
	refuse  *regexp.Regexp
}

// NotFollowedBy returns a predicate matching anchor, optionally after context,
// unless refuse follows it directly. An empty context matches anywhere.
func NotFollowedBy(context, anchor, refuse string) Predicate {
	p := notFollowedBy{
		anchor: regexp.MustCompile(flags + anchor),
		refuse: regexp.MustCompile(flags + `\A(?:` + refuse + `)`),
	}
	if context != "" {
		p.context = regexp.MustCompile(flags + context)
	}
	return p
}

func (p notFollowedBy) Match(command string) bool {
	for _, loc := range p.anchor.FindAllStringIndex(command, -1) {
		if p.context != nil && !p.context.MatchString(command[:loc[0]]) {
			continue
		}
		if p.refuse.MatchString(command[loc[1]:]) {
			continue
		}
		return true
	}
	return false
}

func (p notFollowedBy) String() string {
	s := strings.TrimPrefix(p.anchor.String(), flags) + " not followed by " +
		strings.TrimSuffix(strings.TrimPrefix(p.refuse.String(), flags+`\A(?:`), ")")
	if p.context != nil {
		s = strings.TrimPrefix(p.context.String(), flags) + " ... " + s
	}
	return s
}

type absentPredicate struct {
	re *regexp.Regexp
}

// Absent returns a predicate matching when pattern occurs nowhere in the command.
func Absent(pattern string) Predicate {
	return absentPredicate{re: regexp.MustCompile(flags + pattern)}
}

func (p absentPredicate) Match(command string) bool {
	return !p.re.MatchString(command)
}

func (p absentPredicate) String() string {
	return "no " + strings.TrimPrefix(p.re.String(), flags)
}

type containsPredicate []string

// Contains returns a predicate matching when command contains any of phrases,
// ignoring case.
func Contains(phrases ...string) Predicate {
	lowered := make(containsPredicate, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return lowered
}

func (p containsPredicate) Match(command string) bool {
	command = strings.ToLower(command)
	for _, phrase := range p {
		if strings.Contains(command, phrase) {
			return true
		}
	}
	return false
}

func (p containsPredicate) String() string {
	return "contains " + strings.Join(p, " | ")
}

// catalogue is built once at program start and never mutated.
var catalogue = []Rule{
	{
		ID:       "drop-table-without-if-exists",
		Pattern:  NotFollowedBy("", `DROP\s+TABLE`, `\s+IF\s+EXISTS`),
		Message:  "DROP TABLE without IF EXISTS - this will fail if the table doesn't exist",
		Severity: SevWarn,
	},
	{
		ID:       "drop-column-without-if-exists",
		Pattern:  NotFollowedBy(`ALTER\s+TABLE`, `DROP\s+COLUMN`, `\s+IF\s+EXISTS`),
		Message:  "DROP COLUMN without IF EXISTS - irreversible and not backward compatible",
		Severity: SevBlock,
	},
	{
		ID:       "delete-rows",
		Pattern:  Regex(`DELETE\s+FROM.*WHERE`),
		Message:  "DELETE statement detected - make sure you have a backup and the WHERE clause is correct",
		Severity: SevWarn,
	},
	{
		ID:       "truncate-table",
		Pattern:  Regex(`TRUNCATE\s+TABLE`),
		Message:  "TRUNCATE TABLE deletes every row in the table",
		Severity: SevBlock,
	},
	{
		ID:       "add-not-null",
		Pattern:  Regex(`ALTER\s+TABLE.*ALTER\s+COLUMN.*NOT\s+NULL`),
		Message:  "Adding a NOT NULL constraint - make sure the column has a value in every row",
		Severity: SevWarn,
	},
	{
		ID:       "rename-column",
		Pattern:  Regex(`ALTER\s+TABLE.*RENAME\s+COLUMN`),
		Message:  "RENAME COLUMN breaks code still using the old name - use a multi-step migration",
		Severity: SevBlock,
	},
}

const (
	TransactionRuleID = "missing-transaction"
	CreateHintRuleID  = "migration-create-hint"
)

// checks run after the catalogue. They look at the command as a whole rather
// than at a single statement.
var checks = []Rule{
	{
		ID:       TransactionRuleID,
		Pattern:  Absent(`BEGIN|START\s+TRANSACTION`),
		Message:  "Migration should be wrapped in a transaction (BEGIN ... COMMIT)",
		Severity: SevWarn,
	},
	{
		ID:       CreateHintRuleID,
		Pattern:  Contains("migration:create", "db:generate"),
		Message:  "Remember to write both UP and DOWN migrations",
		Severity: SevInfo,
	},
}

// Rules returns a copy of the rule catalogue in declaration order.
func Rules() []Rule {
	out := make([]Rule, len(catalogue))
	copy(out, catalogue)
	return out
}

// Checks returns a copy of the synthesized whole-command checks.
func Checks() []Rule {
	out := make([]Rule, len(checks))
	copy(out, checks)
	return out
}

// Describe returns a human-readable form of a rule's pattern.
func Describe(p Predicate) string {
	if s, ok := p.(interface{ String() string }); ok {
		return s.String()
	}
	return "custom matcher"
}
