// Template create command for the pensieve CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	templateCreateDescription string
	templateCreateProject     string
	templateCreateAgent       string
	templateCreateFields      []string
	templateCreateFromFile    string
)

var templateCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new entry template",
	Long: `Create a template from --field specifications or a JSON file.

Each --field takes the form name:type:required|optional[:constraints[:description]]
where type is one of boolean, text, url, timestamp, file_reference and
constraints are comma-separated key=value pairs (list values use "|"), e.g.

  --field severity:text:required:max_length=20
  --field ticket:url:optional:url_schemes=http|https
  --field noted_at:timestamp:optional:auto_now=true`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := buildTemplate(args[0])
		if err != nil {
			return err
		}

		project, err := resolveProject(templateCreateProject)
		if err != nil {
			return err
		}
		tpl.Project = project
		tpl.CreatedBy = resolveAgent(templateCreateAgent)

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
		fmt.Printf("created template %q (%d fields)\n", tpl.Name, len(tpl.Fields))
		fmt.Println(tpl.Name)
		return nil
	},
}

// buildTemplate assembles the template from the file or the --field flags.
func buildTemplate(name string) (*types.Template, error) {
	if templateCreateFromFile != "" {
		data, err := os.ReadFile(templateCreateFromFile)
		if err != nil {
			return nil, fmt.Errorf("read template file: %w", err)
		}
		tpl, err := types.ImportTemplate(data)
		if err != nil {
			return nil, err
		}
		tpl.Name = name
		return tpl, nil
	}

	tpl := &types.Template{
		Name:        name,
		Description: templateCreateDescription,
	}
	for _, spec := range templateCreateFields {
		def, err := parseFieldDefinition(spec)
		if err != nil {
			return nil, err
		}
		tpl.Fields = append(tpl.Fields, def)
	}
	return tpl, nil
}

func init() {
	templateCreateCmd.Flags().StringVar(&templateCreateDescription, "description", "", "template description")
	templateCreateCmd.Flags().StringVar(&templateCreateProject, "project", "", "project path (default: detected from cwd)")
	templateCreateCmd.Flags().StringVar(&templateCreateAgent, "agent", "", "creating agent name")
	templateCreateCmd.Flags().StringArrayVar(&templateCreateFields, "field", nil, "field spec name:type:required|optional[:constraints[:description]] (repeatable)")
	templateCreateCmd.Flags().StringVar(&templateCreateFromFile, "from-file", "", "read the template definition from a JSON file")
}
