package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage logging and scan settings",
}

func init() {
	rootCmd.AddCommand(configCmd)
}
