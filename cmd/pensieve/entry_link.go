// Entry link command for the pensieve CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	entryLinkType  string
	entryLinkAgent string
)

var entryLinkCmd = &cobra.Command{
	Use:   "link SOURCE TARGET",
	Short: "Create a typed link between two entries",
	Long: `Link records a directed relationship from SOURCE to TARGET. Both may be
full entry ids or unique prefixes. Relationships: ` + strings.Join(types.Relationships, ", ") + `.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if entryLinkType == "" {
			return fmt.Errorf("%w: --type is required", types.ErrInvalidRelationship)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		link, err := store.CreateLink(args[0], args[1], entryLinkType, resolveAgent(entryLinkAgent))
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(link)
		}
		fmt.Printf("linked %s %s %s\n", shortID(link.SourceID), link.Relationship, shortID(link.TargetID))
		fmt.Println(link.LinkID)
		return nil
	},
}

func init() {
	entryLinkCmd.Flags().StringVar(&entryLinkType, "type", "", "relationship type ("+strings.Join(types.Relationships, "|")+")")
	entryLinkCmd.Flags().StringVar(&entryLinkAgent, "agent", "", "acting agent name")
}
