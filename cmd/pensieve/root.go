// Root command for the pensieve CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pensieve/internal/paths"
	"github.com/mesh-intelligence/pensieve/pkg/pensieve"
)

// Exit codes. Recoverable errors exit 1; integrity and lock-contention
// failures exit 2.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagDB        string
	flagConfigDir string
	flagJSON      bool
)

// Values loaded from config.yaml by PersistentPreRunE.
var (
	configDBPath string
	configAgent  string
)

var rootCmd = &cobra.Command{
	Use:     "pensieve",
	Short:   "Pensieve is a template-validated journal for agent memory",
	Version: pensieve.Version,
	Long: `Pensieve records structured, immutable journal entries validated against
user-defined templates, and retrieves them by template, field value, tag,
agent, project, date range, and links.

Schema migrations are applied explicitly: while migrations are pending,
every command except "migrate" and "version" refuses to run until
"pensieve migrate apply" succeeds.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		configDBPath = cfg.GetString(cfgKeyDBPath)
		configAgent = cfg.GetString(cfgKeyAgent)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database file (default: $PENSIEVE_DB or ~/.pensieve/pensieve.db)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database file following the precedence chain:
// --db flag > config.yaml db_path > PENSIEVE_DB env > default.
func resolveDBPath() (string, error) {
	return paths.ResolveDBPath(flagDB, configDBPath)
}

// resolveAgent returns the acting agent name: flag value, then config.yaml,
// then "unknown". The name is caller-supplied and not authenticated.
func resolveAgent(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configAgent != "" {
		return configAgent
	}
	return "unknown"
}
