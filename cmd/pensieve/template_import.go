// Template import command for the pensieve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	templateImportProject string
	templateImportAgent   string
)

var templateImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import a template from an exported JSON file",
	Long: `Import creates a new template from a previously exported JSON file.
The imported template gets a fresh id and creation timestamp; the name must
not collide with an existing template.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read template file: %w", err)
		}
		tpl, err := types.ImportTemplate(data)
		if err != nil {
			return err
		}

		project, err := resolveProject(templateImportProject)
		if err != nil {
			return err
		}
		tpl.Project = project
		tpl.CreatedBy = resolveAgent(templateImportAgent)

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.CreateTemplate(tpl); err != nil {
			return err
		}

		if flagJSON {
			return printJSON(tpl)
		}
		fmt.Printf("imported template %q (%d fields)\n", tpl.Name, len(tpl.Fields))
		fmt.Println(tpl.Name)
		return nil
	},
}

func init() {
	templateImportCmd.Flags().StringVar(&templateImportProject, "project", "", "project path (default: detected from cwd)")
	templateImportCmd.Flags().StringVar(&templateImportAgent, "agent", "", "importing agent name")
}
