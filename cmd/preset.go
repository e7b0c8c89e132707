package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/db"
	"github.com/VoxDroid/waex/internal/presets"
	"github.com/VoxDroid/waex/internal/recorder"
)

func newPresetCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved command presets",
		Long: `Presets are named command lists stored in the waex database
(~/.waex/waex.db, or WAEX_DB). Add them to a session with --preset <name>.`,
	}
	c.AddCommand(
		newPresetSaveCmd(),
		newPresetListCmd(),
		newPresetShowCmd(),
		newPresetRmCmd(),
		newPresetExportCmd(),
		newPresetImportCmd(),
	)
	return c
}

func openPresets() (*presets.Repository, error) {
	dbConn, err := db.InitDB()
	if err != nil {
		return nil, err
	}
	return presets.NewRepository(dbConn), nil
}

func newPresetSaveCmd() *cobra.Command {
	var (
		desc     string
		commands []string
		stdin    bool
		reqPath  bool
	)
	c := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a named command list",
		Long: `Save a named command list. Examples:
  waex preset save web -d 'format and lint' -c 'npx prettier --write' -c 'npx eslint' --req-path
  printf 'gofmt -l\ngo vet ./...\n' | waex preset save go --stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, changed := presets.CleanName(args[0])
			if changed {
				cmd.PrintErrf("warning: preset name cleaned to %q\n", name)
			}
			lines := append([]string(nil), commands...)
			if stdin {
				recorded, err := recorder.RecordCommands(cmd.InOrStdin())
				if err != nil {
					return err
				}
				lines = append(lines, recorded...)
			}
			if len(lines) == 0 {
				return fmt.Errorf("no commands given; use -c or --stdin")
			}

			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			var descPtr *string
			if desc != "" {
				descPtr = &desc
			}
			if _, err := recorder.SaveRecorded(r, name, descPtr, lines, reqPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved '%s' with %d commands\n", name, len(lines))
			return nil
		},
	}
	c.Flags().StringVarP(&desc, "description", "d", "", "Description for the preset")
	c.Flags().StringArrayVarP(&commands, "cmd", "c", nil, "Command to add to the preset (can be repeated)")
	c.Flags().BoolVar(&stdin, "stdin", false, "Read commands from stdin, one per line (# comments, :end stops)")
	c.Flags().BoolVar(&reqPath, "req-path", false, "Append the changed file's absolute path to every command")
	return c
}

func newPresetListCmd() *cobra.Command {
	var (
		filter string
		fuzzy  bool
	)
	c := &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			var ps []presets.Preset
			switch {
			case filter != "" && fuzzy:
				ps, err = r.FuzzySearch(filter)
			case filter != "":
				ps, err = r.Search(filter)
			default:
				ps, err = r.List()
			}
			if err != nil {
				return err
			}
			for _, p := range ps {
				line := "- " + p.Name
				if p.Description.Valid && p.Description.String != "" {
					line += ": " + p.Description.String
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	c.Flags().StringVar(&filter, "filter", "", "Filter by text search")
	c.Flags().BoolVar(&fuzzy, "fuzzy", false, "Enable fuzzy matching for text filter")
	return c
}

func newPresetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the commands of a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			p, err := r.Get(args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("preset %q not found", args[0])
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", p.Name)
			if p.Description.Valid && strings.TrimSpace(p.Description.String) != "" {
				fmt.Fprintf(out, "  %s\n", p.Description.String)
			}
			for i, s := range p.Strs() {
				suffix := ""
				if p.Commands[i].ReqPath {
					suffix = " <path>"
				}
				fmt.Fprintf(out, "  %d. %s%s\n", i+1, s, suffix)
			}
			return nil
		},
	}
}

func newPresetRmCmd() *cobra.Command {
	var yes bool
	c := &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete '%s' permanently?", name)) {
				fmt.Fprintln(cmd.OutOrStdout(), "aborted")
				return nil
			}
			if err := r.Delete(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted '%s'\n", name)
			return nil
		},
	}
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return c
}

func newPresetExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <name> <file>",
		Short: "Export a preset into a standalone SQLite file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()
			if err := r.Export(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported '%s' to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newPresetImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import every preset from a SQLite file",
		Long:  "Import every preset from a SQLite file written by 'waex preset export'.\nPresets whose name is taken are stored as <name>-import-N.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openPresets()
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()
			names, err := r.Import(args[0])
			for _, n := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "imported '%s'\n", n)
			}
			return err
		},
	}
}
