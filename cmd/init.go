package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/config"
)

func newInitCmd() *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "waex.config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteStarter(path, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return c
}
