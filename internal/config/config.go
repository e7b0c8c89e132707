// Package config loads waex options from defaults, a JSON or YAML file and
// WAEX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/logger"
)

// DefaultFiles are tried in order when no config path is given.
var DefaultFiles = []string{"waex.config.json", "waex.config.yaml", "waex.config.yml"}

// Environment variable names bound to config keys.
const (
	EnvDebounceRate    = "WAEX_DEBOUNCE_RATE"
	EnvLimitProcessing = "WAEX_LIMIT_PROCESSING"
	EnvShell           = "WAEX_SHELL"
)

// WatcherConfig selects what the watch source observes.
type WatcherConfig struct {
	Paths   []string `json:"paths" yaml:"paths"`
	Ignored []string `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Cwd     string   `json:"cwd,omitempty" yaml:"cwd,omitempty"`
}

// Options is the fully resolved configuration of a watch session.
type Options struct {
	// Debounce is zero when debouncing is disabled.
	Debounce        time.Duration
	LimitProcessing bool
	Watcher         WatcherConfig
	Logger          logger.Config
	Commands        []command.Spec
	// Shell overrides the host shell used to run commands.
	Shell string
}

// Defaults returns the options used when nothing else is configured.
func Defaults() Options {
	return Options{
		Debounce:        500 * time.Millisecond,
		LimitProcessing: true,
		Watcher: WatcherConfig{
			Paths:   []string{"./src/**/*.{js,ts}"},
			Ignored: []string{"**/node_modules/**"},
			Cwd:     ".",
		},
		Logger: logger.Config{Defaults: logger.Defaults{
			Label: "[APP]",
			Level: logger.LevelLog,
			Colors: logger.Colors{
				Log:     "#87ceeb",
				Info:    "#0dbaff",
				Error:   "#ff3232",
				Warning: "#c48c1d",
			},
		}},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("debounceRate", int(d.Debounce/time.Millisecond))
	v.SetDefault("limitProcessing", d.LimitProcessing)
	v.SetDefault("watcher.paths", d.Watcher.Paths)
	v.SetDefault("watcher.options.ignored", d.Watcher.Ignored)
	v.SetDefault("watcher.options.cwd", d.Watcher.Cwd)
	v.SetDefault("logger.defaults.label", d.Logger.Defaults.Label)
	v.SetDefault("logger.defaults.level", string(d.Logger.Defaults.Level))
	v.SetDefault("logger.defaults.colors.log", d.Logger.Defaults.Colors.Log)
	v.SetDefault("logger.defaults.colors.info", d.Logger.Defaults.Colors.Info)
	v.SetDefault("logger.defaults.colors.error", d.Logger.Defaults.Colors.Error)
	v.SetDefault("logger.defaults.colors.warning", d.Logger.Defaults.Colors.Warning)
	v.SetDefault("shell", "")
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range map[string]string{
		"debounceRate":    EnvDebounceRate,
		"limitProcessing": EnvLimitProcessing,
		"shell":           EnvShell,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Load resolves options. With an empty path the first existing file of
// DefaultFiles is used, and defaults apply when none exists. It returns the
// file that was read, or "" when none was.
func Load(path string) (Options, string, error) {
	v, err := newViper()
	if err != nil {
		return Options{}, "", err
	}
	used := path
	if used == "" {
		used = findDefaultFile()
	}
	if used != "" {
		v.SetConfigFile(used)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, "", fmt.Errorf("failed to load configuration from %s: %w", used, err)
		}
	}
	opts, err := decode(v)
	if err != nil {
		if used != "" {
			return Options{}, "", fmt.Errorf("failed to load configuration from %s: %w", used, err)
		}
		return Options{}, "", err
	}
	return opts, used, nil
}

func findDefaultFile() string {
	for _, f := range DefaultFiles {
		p, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

func decode(v *viper.Viper) (Options, error) {
	var opts Options
	d, err := ParseDebounce(v.Get("debounceRate"))
	if err != nil {
		return opts, err
	}
	opts.Debounce = d
	opts.LimitProcessing = v.GetBool("limitProcessing")
	opts.Shell = v.GetString("shell")
	opts.Watcher = WatcherConfig{
		Paths:   v.GetStringSlice("watcher.paths"),
		Ignored: v.GetStringSlice("watcher.options.ignored"),
		Cwd:     v.GetString("watcher.options.cwd"),
	}

	lvl, err := logger.ParseLevel(v.GetString("logger.defaults.level"))
	if err != nil {
		return opts, err
	}
	opts.Logger.Defaults = logger.Defaults{
		Label: v.GetString("logger.defaults.label"),
		Level: lvl,
		Colors: logger.Colors{
			Log:     v.GetString("logger.defaults.colors.log"),
			Info:    v.GetString("logger.defaults.colors.info"),
			Error:   v.GetString("logger.defaults.colors.error"),
			Warning: v.GetString("logger.defaults.colors.warning"),
		},
	}
	if err := v.UnmarshalKey("logger.indicators", &opts.Logger.Indicators); err != nil {
		return opts, fmt.Errorf("logger.indicators: %w", err)
	}
	if err := v.UnmarshalKey("commands", &opts.Commands); err != nil {
		return opts, fmt.Errorf("commands: %w", err)
	}
	return opts, nil
}

var errDebounce = errors.New("debounceRate must be milliseconds, false, or a duration such as 250ms")

// ParseDebounce interprets a debounceRate value. Numbers are milliseconds,
// false (or 0) disables debouncing, and strings may also be Go durations.
func ParseDebounce(val any) (time.Duration, error) {
	var d time.Duration
	switch x := val.(type) {
	case nil:
		return 0, nil
	case bool:
		if x {
			return 0, errDebounce
		}
		return 0, nil
	case int:
		d = time.Duration(x) * time.Millisecond
	case int64:
		d = time.Duration(x) * time.Millisecond
	case float64:
		d = time.Duration(x * float64(time.Millisecond))
	case time.Duration:
		d = x
	case string:
		s := strings.TrimSpace(x)
		switch {
		case s == "" || strings.EqualFold(s, "false"):
			return 0, nil
		case isInt(s):
			n, _ := strconv.Atoi(s)
			d = time.Duration(n) * time.Millisecond
		default:
			pd, err := time.ParseDuration(s)
			if err != nil {
				return 0, fmt.Errorf("%w: %q", errDebounce, s)
			}
			d = pd
		}
	default:
		return 0, fmt.Errorf("%w: got %T", errDebounce, val)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative value %s", errDebounce, d)
	}
	return d, nil
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
