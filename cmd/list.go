package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/registry"
)

func newListCmd() *cobra.Command {
	var f sessionFlags
	c := &cobra.Command{
		Use:   "list",
		Short: "List the commands a watch session would run",
		Long:  "List the commands a watch session would run, in order. Example:\n  waex list --preset web",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, used, err := f.options(cmd)
			if err != nil {
				return err
			}
			reg, err := registry.New(nil, opts.Commands...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if used != "" {
				fmt.Fprintf(out, "config: %s\n", used)
			}
			cmds := reg.Read()
			if len(cmds) == 0 {
				fmt.Fprintln(out, "no commands configured")
				return nil
			}
			for i, c := range cmds {
				line := fmt.Sprintf("[%d] %s", i, c.Str)
				if c.ReqPath {
					line += " <path>"
				}
				fmt.Fprintf(out, "%s  (key: %s)\n", line, c.Key)
			}
			return nil
		},
	}
	f.bind(c)
	return c
}
