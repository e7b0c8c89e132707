package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "waex %s\n", version.Version)
		},
	}
}
