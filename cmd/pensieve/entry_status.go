// Entry update-status command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var entryStatusCmd = &cobra.Command{
	Use:   "update-status ID STATUS",
	Short: "Set an entry's status to active or archived",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.UpdateEntryStatus(args[0], args[1])
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(entry)
		}
		fmt.Printf("status: %s\n", entry.Status)
		fmt.Println(entry.EntryID)
		return nil
	},
}
