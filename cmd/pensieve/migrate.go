// Migrate commands for the pensieve CLI. These bypass the pending-migration
// gate that every other command goes through.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/internal/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Inspect and apply schema migrations",
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreUngated()
		if err != nil {
			return err
		}
		defer store.Close()

		status, err := sqlite.NewRunner(store).Status()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(status)
		}
		fmt.Printf("current version: %d\n", status.CurrentVersion)
		for _, m := range status.Applied {
			fmt.Printf("  applied %03d %-28s %s\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		for _, m := range status.Pending {
			fmt.Printf("  pending %03d %s\n", m.Version, m.Name)
		}
		if len(status.Pending) == 0 {
			fmt.Println("schema is up to date")
		}
		return nil
	},
}

var migrateApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply all pending migrations in order",
	Long: `Apply runs every pending migration forward, one transaction each, after
verifying its checksum. A mismatch halts before the offending migration
runs; everything applied up to that point stays applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStoreUngated()
		if err != nil {
			return err
		}
		defer store.Close()

		runner := sqlite.NewRunner(store)
		applied, err := runner.ApplyPending()
		if err != nil {
			return err
		}

		version, err := runner.CurrentVersion()
		if err != nil {
			return err
		}

		if flagJSON {
			return printJSON(struct {
				Applied        int `json:"applied"`
				CurrentVersion int `json:"current_version"`
			}{applied, version})
		}
		if applied == 0 {
			fmt.Println("nothing to apply")
		} else {
			fmt.Printf("applied %d migration(s)\n", applied)
		}
		fmt.Printf("current version: %d\n", version)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	migrateCmd.AddCommand(migrateApplyCmd)
}
