package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/logger"
)

type fileWatcherOptions struct {
	Ignored []string `yaml:"ignored,omitempty"`
	Cwd     string   `yaml:"cwd,omitempty"`
}

type fileWatcher struct {
	Paths   []string           `yaml:"paths"`
	Options fileWatcherOptions `yaml:"options"`
}

type fileCommand struct {
	Runner  string   `yaml:"runner"`
	Args    []string `yaml:"args,omitempty"`
	Label   string   `yaml:"label,omitempty"`
	Color   string   `yaml:"color,omitempty"`
	Key     string   `yaml:"key,omitempty"`
	ReqPath bool     `yaml:"reqPath,omitempty"`
	Timeout string   `yaml:"timeout,omitempty"`
}

// file mirrors the on-disk layout, which differs from Options in how the
// debounce rate and watcher options are spelled.
type file struct {
	DebounceRate    any           `yaml:"debounceRate"`
	LimitProcessing bool          `yaml:"limitProcessing"`
	Shell           string        `yaml:"shell,omitempty"`
	Watcher         fileWatcher   `yaml:"watcher"`
	Logger          logger.Config `yaml:"logger"`
	Commands        []fileCommand `yaml:"commands"`
}

func toFile(o Options) file {
	f := file{
		LimitProcessing: o.LimitProcessing,
		Shell:           o.Shell,
		Watcher: fileWatcher{
			Paths:   o.Watcher.Paths,
			Options: fileWatcherOptions{Ignored: o.Watcher.Ignored, Cwd: o.Watcher.Cwd},
		},
		Logger: o.Logger,
	}
	if o.Debounce == 0 {
		f.DebounceRate = false
	} else {
		f.DebounceRate = int(o.Debounce / time.Millisecond)
	}
	for _, c := range o.Commands {
		fc := fileCommand{Runner: c.Runner, Args: c.Args, Label: c.Label, Color: c.Color, Key: c.Key, ReqPath: c.ReqPath}
		if c.Timeout > 0 {
			fc.Timeout = c.Timeout.String()
		}
		f.Commands = append(f.Commands, fc)
	}
	return f
}

// Starter returns the defaults plus example commands for `waex init`.
func Starter() Options {
	o := Defaults()
	o.Commands = []command.Spec{
		{Runner: "npx", Args: []string{"prettier", "--write"}, Label: "[PRETTIER]", Color: "#c596c7", Key: "prettier", ReqPath: true},
		{Runner: "npx", Args: []string{"eslint", "--fix"}, Label: "[ESLINT]", Color: "#4b32c3", Key: "eslint", ReqPath: true, Timeout: time.Minute},
	}
	return o
}

// MarshalYAML renders o in the config file layout.
func MarshalYAML(o Options) ([]byte, error) {
	return yaml.Marshal(toFile(o))
}

// WriteStarter writes a starter YAML config to path. It refuses to
// overwrite an existing file unless force is set.
func WriteStarter(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	b, err := MarshalYAML(Starter())
	if err != nil {
		return fmt.Errorf("render starter config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write starter config: %w", err)
	}
	return nil
}
