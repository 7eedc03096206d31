// Tags command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsProject string

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show tag usage counts across entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.TagStats(tagsProject)
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(stats)
		}
		if len(stats) == 0 {
			fmt.Println("no tags")
			return nil
		}
		for _, tc := range stats {
			fmt.Printf("%5d  %s\n", tc.Count, tc.Tag)
		}
		return nil
	},
}

func init() {
	tagsCmd.Flags().StringVar(&tagsProject, "project", "", "filter by project path substring")
}
