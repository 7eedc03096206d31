// Entry show command for the pensieve CLI.
package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/internal/sqlite"
	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var entryShowFollowLinks bool

var entryShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one entry by id or unique id prefix",
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

		if flagJSON {
			if entryShowFollowLinks {
				related, err := store.Related(entry.EntryID)
				if err != nil {
					return err
				}
				return printJSON(struct {
					Entry   *types.Entry          `json:"entry"`
					Related []*types.RelatedEntry `json:"related"`
				}{entry, related})
			}
			return printJSON(entry)
		}

		printEntry(store, entry)
		if entryShowFollowLinks {
			related, err := store.Related(entry.EntryID)
			if err != nil {
				return err
			}
			printRelated(related)
		}
		return nil
	},
}

func printEntry(store *sqlite.Store, e *types.Entry) {
	fmt.Printf("entry:    %s\n", e.EntryID)
	fmt.Printf("template: %s (v%d)\n", templateLabel(store, e.TemplateID), e.TemplateVersion)
	fmt.Printf("created:  %s by %s\n", e.CreatedAt.Format(time.RFC3339), e.Agent)
	fmt.Printf("project:  %s\n", e.Project)
	fmt.Printf("status:   %s\n", e.Status)
	if len(e.Tags) > 0 {
		fmt.Printf("tags:     %s\n", strings.Join(e.Tags, ", "))
	}
	fmt.Println("fields:")
	names := make([]string, 0, len(e.FieldValues))
	for name := range e.FieldValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-20s %s\n", name, e.FieldValues[name].String())
	}
}

func printRelated(related []*types.RelatedEntry) {
	if len(related) == 0 {
		fmt.Println("links:    none")
		return
	}
	fmt.Println("links:")
	for _, r := range related {
		arrow := "->"
		if r.Direction == types.DirectionIn {
			arrow = "<-"
		}
		fmt.Printf("  %s %s %s  %s\n", arrow, r.Link.Relationship, shortID(r.Entry.EntryID), entrySummaryLine(r.Entry))
	}
}

// templateLabel resolves a template id to its name for display, falling
// back to the raw id when the template row is gone.
func templateLabel(store *sqlite.Store, templateID string) string {
	tpl, err := store.GetTemplateByID(templateID)
	if err != nil {
		return templateID
	}
	return tpl.Name
}

func entrySummaryLine(e *types.Entry) string {
	line := fmt.Sprintf("%s  %s  %-8s %s", shortID(e.EntryID), e.CreatedAt.Format("2006-01-02 15:04"), e.Status, e.Agent)
	if len(e.Tags) > 0 {
		line += "  [" + strings.Join(e.Tags, ",") + "]"
	}
	return line
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	entryShowCmd.Flags().BoolVar(&entryShowFollowLinks, "follow-links", false, "include one-hop linked entries")
}
