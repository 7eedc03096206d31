// Entry search command for the pensieve CLI.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	searchTemplate    string
	searchAgent       string
	searchProject     string
	searchStatus      string
	searchTags        []string
	searchFrom        string
	searchTo          string
	searchField       string
	searchValue       string
	searchSubstring   bool
	searchLinkedTo    string
	searchLinkedFrom  string
	searchLimit       int
	searchOffset      int
	searchFollowLinks bool
)

var entrySearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search entries by template, field value, tag, agent, or date",
	Long: `Search combines every given filter with AND; an entry must satisfy all
of them. The one exception is --tag: repeating it matches entries carrying
ANY of the listed tags. The date range is inclusive of --from and exclusive
of --to. An empty result is not an error.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		q := types.Query{
			Template:   searchTemplate,
			Agent:      searchAgent,
			Project:    searchProject,
			Status:     searchStatus,
			Tags:       searchTags,
			LinkedTo:   searchLinkedTo,
			LinkedFrom: searchLinkedFrom,
			Limit:      searchLimit,
			Offset:     searchOffset,
		}

		var err error
		if q.From, err = parseSearchTime(searchFrom); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		if q.To, err = parseSearchTime(searchTo); err != nil {
			return fmt.Errorf("--to: %w", err)
		}

		if searchField != "" {
			q.FieldName = searchField
			q.FieldValue = searchValue
			q.Match = types.MatchExact
			if searchSubstring {
				q.Match = types.MatchSubstring
			}
		} else if searchValue != "" || searchSubstring {
			return fmt.Errorf("--value and --substring require --field")
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.Search(q)
		if err != nil {
			return err
		}

		if flagJSON {
			if searchFollowLinks {
				results, err := withRelated(store, entries)
				if err != nil {
					return err
				}
				return printJSON(results)
			}
			return printJSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println("no matching entries")
			return nil
		}
		for _, e := range entries {
			fmt.Println(entrySummaryLine(e))
			if searchFollowLinks {
				related, err := store.Related(e.EntryID)
				if err != nil {
					return err
				}
				for _, r := range related {
					arrow := "->"
					if r.Direction == types.DirectionIn {
						arrow = "<-"
					}
					fmt.Printf("    %s %s %s\n", arrow, r.Link.Relationship, entrySummaryLine(r.Entry))
				}
			}
		}
		return nil
	},
}

// searchResult pairs an entry with its one-hop neighbors for JSON output.
type searchResult struct {
	Entry   *types.Entry          `json:"entry"`
	Related []*types.RelatedEntry `json:"related"`
}

func withRelated(store types.Store, entries []*types.Entry) ([]searchResult, error) {
	results := make([]searchResult, 0, len(entries))
	for _, e := range entries {
		related, err := store.Related(e.EntryID)
		if err != nil {
			return nil, err
		}
		results = append(results, searchResult{Entry: e, Related: related})
	}
	return results, nil
}

// parseSearchTime accepts RFC 3339 or a bare date. Bare dates mean midnight
// UTC, so "--to 2026-03-01" excludes everything from March onward.
func parseSearchTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not a timestamp or date", types.ErrInvalidValue, raw)
}

func init() {
	entrySearchCmd.Flags().StringVar(&searchTemplate, "template", "", "filter by template name")
	entrySearchCmd.Flags().StringVar(&searchAgent, "agent", "", "filter by exact agent name")
	entrySearchCmd.Flags().StringVar(&searchProject, "project", "", "filter by project path substring")
	entrySearchCmd.Flags().StringVar(&searchStatus, "status", "", "filter by status (active|archived)")
	entrySearchCmd.Flags().StringArrayVar(&searchTags, "tag", nil, "filter by tag, any-of (repeatable)")
	entrySearchCmd.Flags().StringVar(&searchFrom, "from", "", "created at or after this timestamp (inclusive)")
	entrySearchCmd.Flags().StringVar(&searchTo, "to", "", "created before this timestamp (exclusive)")
	entrySearchCmd.Flags().StringVar(&searchField, "field", "", "filter by field name (with --value)")
	entrySearchCmd.Flags().StringVar(&searchValue, "value", "", "field value to match")
	entrySearchCmd.Flags().BoolVar(&searchSubstring, "substring", false, "match field value as a substring")
	entrySearchCmd.Flags().StringVar(&searchLinkedTo, "linked-to", "", "entries with an outgoing link to this entry id")
	entrySearchCmd.Flags().StringVar(&searchLinkedFrom, "linked-from", "", "entries this entry id links to")
	entrySearchCmd.Flags().IntVar(&searchLimit, "limit", types.DefaultQueryLimit, "maximum entries to return")
	entrySearchCmd.Flags().IntVar(&searchOffset, "offset", 0, "entries to skip")
	entrySearchCmd.Flags().BoolVar(&searchFollowLinks, "follow-links", false, "include one-hop linked entries")
}
