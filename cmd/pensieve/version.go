// Version command for the pensieve CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/pkg/pensieve"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the pensieve version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagJSON {
			return printJSON(struct {
				Version string `json:"version"`
			}{pensieve.Version})
		}
		fmt.Println(pensieve.Version)
		return nil
	},
}
