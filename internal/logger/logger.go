// Package logger renders waex console output: grouped, colorized log
// entries with a leading indicator symbol.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Level selects the color and default indicator of an entry.
type Level string

// Supported levels.
const (
	LevelLog   Level = "log"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel validates s as a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelLog:
		return LevelLog, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	}
	return "", fmt.Errorf("unknown log level %q", s)
}

// Colors holds one hex color per level.
type Colors struct {
	Log     string `json:"log,omitempty" yaml:"log,omitempty" mapstructure:"log"`
	Info    string `json:"info,omitempty" yaml:"info,omitempty" mapstructure:"info"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty" mapstructure:"warning"`
}

// Merge returns c with every non-empty field of o applied.
func (c Colors) Merge(o Colors) Colors {
	if o.Log != "" {
		c.Log = o.Log
	}
	if o.Info != "" {
		c.Info = o.Info
	}
	if o.Error != "" {
		c.Error = o.Error
	}
	if o.Warning != "" {
		c.Warning = o.Warning
	}
	return c
}

// Defaults apply to every entry that does not override them.
type Defaults struct {
	Label  string `json:"label" yaml:"label" mapstructure:"label"`
	Level  Level  `json:"level" yaml:"level" mapstructure:"level"`
	Colors Colors `json:"colors" yaml:"colors" mapstructure:"colors"`
}

// Config builds a Logger.
type Config struct {
	Defaults   Defaults          `json:"defaults" yaml:"defaults" mapstructure:"defaults"`
	Indicators []IndicatorConfig `json:"indicators,omitempty" yaml:"indicators,omitempty" mapstructure:"indicators"`
}

// Head is the first line of an entry.
type Head struct {
	Command  string
	Indicate string
	Level    Level
	Label    string
	// Color overrides the resolved level color for the head line only.
	Color string
}

// Entry is one "key: value" body line.
type Entry struct {
	Key   string
	Value any
	Color string
}

// Detail is a complete log entry.
type Detail struct {
	Head   Head
	Body   []Entry
	Colors Colors
}

// resolveColor picks the color for level, preferring provided over the
// defaults.
func resolveColor(level Level, defaults, provided Colors) string {
	switch level {
	case LevelInfo:
		return firstNonEmpty(provided.Info, defaults.Info)
	case LevelWarn:
		return firstNonEmpty(provided.Warning, defaults.Warning)
	case LevelError:
		return firstNonEmpty(provided.Error, defaults.Error)
	default:
		return firstNonEmpty(provided.Log, defaults.Log)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Logger writes Details to an output stream.
type Logger struct {
	mu         sync.Mutex
	out        io.Writer
	renderer   *lipgloss.Renderer
	defaults   Defaults
	indicators *Indicators
}

// New returns a Logger writing to out (os.Stdout when nil).
func New(out io.Writer, cfg Config) (*Logger, error) {
	if out == nil {
		out = os.Stdout
	}
	r := lipgloss.NewRenderer(out)
	in, err := NewIndicators(r, cfg.Indicators...)
	if err != nil {
		return nil, fmt.Errorf("logger indicators: %w", err)
	}
	if cfg.Defaults.Level == "" {
		cfg.Defaults.Level = LevelLog
	}
	return &Logger{out: out, renderer: r, defaults: cfg.Defaults, indicators: in}, nil
}

// Writer returns the stream the logger writes to.
func (l *Logger) Writer() io.Writer { return l.out }

// Indicators exposes the indicator catalog.
func (l *Logger) Indicators() *Indicators { return l.indicators }

// IndicatorKeys lists the registered indicator keys.
func (l *Logger) IndicatorKeys() []string { return l.indicators.Keys() }

// Defaults returns the current defaults.
func (l *Logger) Defaults() Defaults {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.defaults
}

// UpdateDefaults applies the non-empty fields of d. Colors merge per level.
func (l *Logger) UpdateDefaults(d Defaults) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d.Label != "" {
		l.defaults.Label = d.Label
	}
	if d.Level != "" {
		l.defaults.Level = d.Level
	}
	l.defaults.Colors = l.defaults.Colors.Merge(d.Colors)
}

func (l *Logger) indicatorStr(level Level, indicate string) string {
	if indicate != "" {
		if i, err := l.indicators.Read(indicate); err == nil {
			return i.Str
		}
	}
	if i, err := l.indicators.ByLevel(level); err == nil {
		return i.Str
	}
	return ""
}

func (l *Logger) style(color string) lipgloss.Style {
	s := l.renderer.NewStyle()
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	return s
}

// Log renders d as a head line followed by indented body lines.
func (l *Logger) Log(d Detail) {
	l.mu.Lock()
	defer l.mu.Unlock()

	level := d.Head.Level
	if level == "" {
		level = l.defaults.Level
	}
	label := d.Head.Label
	if label == "" {
		label = l.defaults.Label
	}
	msgColor := resolveColor(level, l.defaults.Colors, d.Colors)

	parts := make([]string, 0, 3)
	if ind := l.indicatorStr(level, d.Head.Indicate); ind != "" {
		parts = append(parts, ind)
	}
	if label != "" {
		parts = append(parts, l.style(firstNonEmpty(d.Head.Color, msgColor)).Bold(true).Render(label))
	}
	parts = append(parts, l.style(firstNonEmpty(d.Head.Color, msgColor)).Render(d.Head.Command))

	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteByte('\n')
	for _, e := range d.Body {
		val := fmt.Sprint(e.Value)
		st := l.style(firstNonEmpty(e.Color, msgColor))
		lines := strings.Split(val, "\n")
		b.WriteString("  ")
		b.WriteString(st.Render(e.Key + ": " + lines[0]))
		b.WriteByte('\n')
		for _, ln := range lines[1:] {
			b.WriteString("    ")
			b.WriteString(st.Render(ln))
			b.WriteByte('\n')
		}
	}
	_, _ = io.WriteString(l.out, b.String())
}

// Infof logs a single formatted line at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Log(Detail{Head: Head{Command: fmt.Sprintf(format, args...), Level: LevelInfo}})
}

// Warnf logs a single formatted line at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Log(Detail{Head: Head{Command: fmt.Sprintf(format, args...), Level: LevelWarn}})
}

// Errorf logs a single formatted line at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Log(Detail{Head: Head{Command: fmt.Sprintf(format, args...), Level: LevelError}})
}
