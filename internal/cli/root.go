// Package cli implements the gourdianringlog command line: a simulator of
// a cooperative firmware main loop and tools to inspect what it persisted.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gourdian25/gourdianringlog"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gourdianringlog",
		Short:         "Deferred ring logger tools",
		Long:          "gourdianringlog simulates a deferred ring logger on a cooperative main loop and dumps persisted records.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("config", "", "Logger config file (.json, .yaml or .yml)")

	rootCmd.AddCommand(newSimulateCommand())
	rootCmd.AddCommand(newDumpCommand())
	rootCmd.AddCommand(newConfigCommand())
	return rootCmd
}

// loadConfig resolves defaults, then the --config file, then RINGLOG_* env.
func loadConfig(cmd *cobra.Command) (gourdianringlog.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	config, err := gourdianringlog.LoadConfig(path)
	if err != nil {
		return gourdianringlog.Config{}, err
	}
	gourdianringlog.ApplyEnv(&config)
	if err := config.Validate(); err != nil {
		return gourdianringlog.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}
