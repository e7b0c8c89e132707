package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/config"
	"github.com/VoxDroid/waex/internal/db"
	"github.com/VoxDroid/waex/internal/executor"
	"github.com/VoxDroid/waex/internal/logger"
	"github.com/VoxDroid/waex/internal/presets"
	"github.com/VoxDroid/waex/internal/recorder"
	"github.com/VoxDroid/waex/internal/security"
)

// sessionFlags are shared by every command that builds a command list.
type sessionFlags struct {
	configPath      string
	debounce        string
	limitProcessing bool
	shell           string
	commands        []string
	reqPath         bool
	presets         []string
	force           bool
}

func (f *sessionFlags) bind(c *cobra.Command) {
	fl := c.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to a waex.config.json or .yaml file")
	fl.StringVar(&f.debounce, "debounce", "", `Debounce window in ms or as a duration ("300ms"); "false" disables it`)
	fl.BoolVar(&f.limitProcessing, "limit-processing", true, "Ignore changes while commands are still running")
	fl.StringVar(&f.shell, "shell", "", "Shell used to run commands (bash, sh, pwsh, cmd)")
	// StringArray keeps commas inside a command intact
	fl.StringArrayVarP(&f.commands, "cmd", "c", nil, "Command to run on change (can be repeated)")
	fl.BoolVar(&f.reqPath, "req-path", false, "Append the changed file's absolute path to --cmd commands")
	fl.StringArrayVar(&f.presets, "preset", nil, "Saved preset whose commands are added (can be repeated)")
	fl.BoolVar(&f.force, "force", false, "Run commands even if they look destructive")
}

// options loads the config file and applies the flags on top of it. The
// returned path is the config file that was read, if any.
func (f *sessionFlags) options(c *cobra.Command) (config.Options, string, error) {
	opts, used, err := config.Load(f.configPath)
	if err != nil {
		return config.Options{}, "", err
	}
	fl := c.Flags()
	if fl.Changed("debounce") {
		d, err := config.ParseDebounce(f.debounce)
		if err != nil {
			return config.Options{}, "", fmt.Errorf("--debounce: %w", err)
		}
		opts.Debounce = d
	}
	if fl.Changed("limit-processing") {
		opts.LimitProcessing = f.limitProcessing
	}
	if f.shell != "" {
		opts.Shell = f.shell
	}

	specs, err := recorder.ParseSpecs(f.commands, f.reqPath)
	if err != nil {
		return config.Options{}, "", fmt.Errorf("--cmd: %w", err)
	}
	opts.Commands = append(opts.Commands, specs...)

	if len(f.presets) > 0 {
		fromPresets, err := loadPresets(f.presets)
		if err != nil {
			return config.Options{}, "", err
		}
		opts.Commands = append(opts.Commands, fromPresets...)
	}

	if err := executor.CheckParams(opts.Commands); err != nil {
		return config.Options{}, "", err
	}
	if !f.force {
		cmds := make([]command.Command, 0, len(opts.Commands))
		for _, s := range opts.Commands {
			cmds = append(cmds, command.New(s))
		}
		if err := security.CheckCommands(cmds); err != nil {
			return config.Options{}, "", err
		}
	}
	return opts, used, nil
}

func loadPresets(names []string) ([]command.Spec, error) {
	dbConn, err := db.InitDB()
	if err != nil {
		return nil, err
	}
	r := presets.NewRepository(dbConn)
	defer func() { _ = r.Close() }()

	var specs []command.Spec
	for _, name := range names {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("preset %q not found", name)
		}
		if err := r.MarkUsed(name); err != nil {
			return nil, err
		}
		specs = append(specs, p.Commands...)
	}
	return specs, nil
}

// newSink builds the console logger and sink for c. The spinner is only
// enabled when writing straight to a terminal.
func newSink(c *cobra.Command, opts config.Options) (*logger.Sink, error) {
	out := c.OutOrStdout()
	l, err := logger.New(out, opts.Logger)
	if err != nil {
		return nil, err
	}
	var sinkOpts []logger.SinkOption
	if f, ok := out.(*os.File); ok {
		sinkOpts = append(sinkOpts, logger.WithSpinner(f))
	}
	return logger.NewSink(l, sinkOpts...), nil
}

func describeSource(l *logger.Logger, used string) {
	if used == "" {
		l.Infof("No configuration file found; using defaults")
		return
	}
	l.Infof("Loaded configuration from %s", used)
}

func contextOf(c *cobra.Command) context.Context {
	if ctx := c.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
