package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hpkotak/migrationguard/internal/safety"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Catalogue formats accepted by WriteCatalogue.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

type catalogueEntry struct {
	Severity string `json:"severity" yaml:"severity"`
	Pattern  string `json:"pattern" yaml:"pattern"`
	Message  string `json:"message" yaml:"message"`
}

// catalogue keys entries by rule ID while keeping declaration order, which a
// plain map would lose on encoding.
func catalogue(rules []safety.Rule) *orderedmap.OrderedMap[string, catalogueEntry] {
	om := orderedmap.New[string, catalogueEntry]()
	for _, r := range rules {
		om.Set(r.ID, catalogueEntry{
			Severity: r.Severity.String(),
			Pattern:  safety.Describe(r.Pattern),
			Message:  r.Message,
		})
	}
	return om
}

// WriteCatalogue lists rules in the given format, keeping their order.
func WriteCatalogue(w io.Writer, format string, rules []safety.Rule) error {
	om := catalogue(rules)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(om); err != nil {
			return fmt.Errorf("encoding catalogue: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(om); err != nil {
			return fmt.Errorf("encoding catalogue: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "RULE\tSEVERITY\tMESSAGE")
		for pair := om.Oldest(); pair != nil; pair = pair.Next() {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", pair.Key, pair.Value.Severity, pair.Value.Message)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
	return nil
}
