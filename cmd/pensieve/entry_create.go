// Entry create command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	entryCreateFields  []string
	entryCreateAgent   string
	entryCreateProject string
	entryCreateTags    []string
)

var entryCreateCmd = &cobra.Command{
	Use:   "create TEMPLATE",
	Short: "Create an entry validated against a template",
	Long: `Create validates every --field value against the named template and
persists the entry atomically. All validation failures are reported at once;
if any field is invalid, nothing is written.

  pensieve entry create bug_fix --field summary="fixed the flaky retry" \
      --field fixed=yes --tag retries`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]string, len(entryCreateFields))
		for _, arg := range entryCreateFields {
			key, value, err := parseFieldValue(arg)
			if err != nil {
				return err
			}
			values[key] = value
		}

		project, err := resolveProject(entryCreateProject)
		if err != nil {
			return err
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.CreateEntry(types.EntryInput{
			TemplateName: args[0],
			FieldValues:  values,
			Agent:        resolveAgent(entryCreateAgent),
			Project:      project,
			Tags:         entryCreateTags,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(entry)
		}
		fmt.Printf("created entry against template %q\n", args[0])
		fmt.Println(entry.EntryID)
		return nil
	},
}

func init() {
	entryCreateCmd.Flags().StringArrayVar(&entryCreateFields, "field", nil, "field value key=value (repeatable)")
	entryCreateCmd.Flags().StringVar(&entryCreateAgent, "agent", "", "acting agent name")
	entryCreateCmd.Flags().StringVar(&entryCreateProject, "project", "", "project path (default: detected from cwd)")
	entryCreateCmd.Flags().StringArrayVar(&entryCreateTags, "tag", nil, "tag to attach (repeatable)")
}
