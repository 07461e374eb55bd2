package cmd

import (
	"github.com/hpkotak/migrationguard/internal/report"
	"github.com/hpkotak/migrationguard/internal/safety"
	"github.com/spf13/cobra"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules commands are checked against",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", report.FormatText, "output format (text, json, yaml)")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	rules := append(safety.Rules(), safety.Checks()...)
	return report.WriteCatalogue(ioOut, rulesFormat, rules)
}
