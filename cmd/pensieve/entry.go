// Entry command group for the pensieve CLI.
package main

import "github.com/spf13/cobra"

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Create, inspect, and search journal entries",
}

func init() {
	entryCmd.AddCommand(entryCreateCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryShowCmd)
	entryCmd.AddCommand(entrySearchCmd)
	entryCmd.AddCommand(entryLinkCmd)
	entryCmd.AddCommand(entryTagCmd)
	entryCmd.AddCommand(entryStatusCmd)
	entryCmd.AddCommand(entryExportCmd)
}
