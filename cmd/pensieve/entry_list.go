// Entry list command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	entryListLimit  int
	entryListOffset int
)

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.ListEntries(entryListLimit, entryListOffset)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("no entries")
			return nil
		}
		for _, e := range entries {
			fmt.Println(entrySummaryLine(e))
		}
		return nil
	},
}

func init() {
	entryListCmd.Flags().IntVar(&entryListLimit, "limit", types.DefaultQueryLimit, "maximum entries to return")
	entryListCmd.Flags().IntVar(&entryListOffset, "offset", 0, "entries to skip")
}
