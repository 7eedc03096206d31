// Template list command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var templateListProject string

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates in name order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		templates, err := store.ListTemplates(templateListProject)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(templates)
		}
		if len(templates) == 0 {
			fmt.Println("no templates")
			return nil
		}
		for _, tpl := range templates {
			fmt.Printf("%-24s v%-3d %2d fields  %s\n", tpl.Name, tpl.Version, len(tpl.Fields), tpl.Description)
		}
		return nil
	},
}

func init() {
	templateListCmd.Flags().StringVar(&templateListProject, "project", "", "filter by project path substring")
}
