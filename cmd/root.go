// Package cmd implements the waex command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the full command tree. Every call returns fresh
// commands with their own flag state.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "waex",
		Short: "waex watches files and runs commands when they change",
		Long: `waex watches a set of files and runs an ordered list of commands
(formatters, linters, build steps) against every file that changes.

  waex init                     write a starter waex.config.yaml
  waex watch                    watch using ./waex.config.{json,yaml}
  waex watch -c "gofmt -l" --req-path --debounce 300ms`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newWatchCmd(),
		newRunCmd(),
		newListCmd(),
		newInitCmd(),
		newPresetCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute executes the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
