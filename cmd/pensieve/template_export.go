// Template export command for the pensieve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var templateExportOutput string

var templateExportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Export a template as canonical JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		tpl, err := store.GetTemplate(args[0])
		if err != nil {
			return err
		}
		data, err := tpl.ExportJSON()
		if err != nil {
			return err
		}

		if templateExportOutput == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(templateExportOutput, data, 0o644); err != nil {
			return fmt.Errorf("write export file: %w", err)
		}
		fmt.Printf("exported template %q to %s\n", tpl.Name, templateExportOutput)
		return nil
	},
}

func init() {
	templateExportCmd.Flags().StringVar(&templateExportOutput, "output", "", "write to a file instead of stdout")
}
