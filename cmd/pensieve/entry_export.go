// Entry export command for the pensieve CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var entryExportOutput string

var entryExportCmd = &cobra.Command{
	Use:   "export ID",
	Short: "Export one entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.GetEntry(args[0])
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(entry, "", "  ")
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
		data = append(data, '\n')

		if entryExportOutput == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(entryExportOutput, data, 0o644); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		fmt.Printf("exported entry %s to %s\n", shortID(entry.EntryID), entryExportOutput)
		return nil
	},
}

func init() {
	entryExportCmd.Flags().StringVar(&entryExportOutput, "output", "", "write to a file instead of stdout")
}
