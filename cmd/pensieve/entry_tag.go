// Entry tag command for the pensieve CLI.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/types"
)

var (
	entryTagAdd    []string
	entryTagRemove []string
)

var entryTagCmd = &cobra.Command{
	Use:   "tag ID",
	Short: "Add or remove tags on an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(entryTagAdd) == 0 && len(entryTagRemove) == 0 {
			return fmt.Errorf("%w: nothing to do, pass --add or --remove", types.ErrInvalidValue)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.GetEntry(args[0])
		if err != nil {
			return err
		}
		if len(entryTagAdd) > 0 {
			if entry, err = store.AddEntryTags(entry.EntryID, entryTagAdd); err != nil {
				return err
			}
		}
		if len(entryTagRemove) > 0 {
			if entry, err = store.RemoveEntryTags(entry.EntryID, entryTagRemove); err != nil {
				return err
			}
		}

		if flagJSON {
			return printJSON(entry)
		}
		if len(entry.Tags) == 0 {
			fmt.Println("tags: none")
		} else {
			fmt.Printf("tags: %s\n", strings.Join(entry.Tags, ", "))
		}
		fmt.Println(entry.EntryID)
		return nil
	},
}

func init() {
	entryTagCmd.Flags().StringArrayVar(&entryTagAdd, "add", nil, "tag to add (repeatable)")
	entryTagCmd.Flags().StringArrayVar(&entryTagRemove, "remove", nil, "tag to remove (repeatable)")
}
