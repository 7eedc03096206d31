// Template show command for the pensieve CLI.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var templateShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show one template with its field definitions",
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

		if flagJSON {
			return printJSON(tpl)
		}
		printTemplate(tpl)
		return nil
	},
}

func printTemplate(tpl *types.Template) {
	fmt.Printf("template:    %s (v%d)\n", tpl.Name, tpl.Version)
	fmt.Printf("id:          %s\n", tpl.TemplateID)
	if tpl.Description != "" {
		fmt.Printf("description: %s\n", tpl.Description)
	}
	fmt.Printf("project:     %s\n", tpl.Project)
	fmt.Printf("created:     %s by %s\n", tpl.CreatedAt.Format(time.RFC3339), tpl.CreatedBy)
	fmt.Println("fields:")
	for _, f := range tpl.Fields {
		req := "optional"
		if f.Required {
			req = "required"
		}
		line := fmt.Sprintf("  %-20s %-15s %s", f.Name, f.Type, req)
		if !f.Constraints.IsZero() {
			line += "  " + describeConstraints(f.Constraints)
		}
		fmt.Println(line)
		if f.Description != "" {
			fmt.Printf("      %s\n", f.Description)
		}
	}
}

// describeConstraints renders a constraint set in the --field flag syntax.
func describeConstraints(c types.Constraints) string {
	var parts []string
	if c.MaxLength > 0 {
		parts = append(parts, fmt.Sprintf("max_length=%d", c.MaxLength))
	}
	if len(c.URLSchemes) > 0 {
		parts = append(parts, "url_schemes="+strings.Join(c.URLSchemes, "|"))
	}
	if len(c.FileTypes) > 0 {
		parts = append(parts, "file_types="+strings.Join(c.FileTypes, "|"))
	}
	if c.AutoNow {
		parts = append(parts, "auto_now=true")
	}
	return strings.Join(parts, ",")
}
