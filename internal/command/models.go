// Package command holds the data model shared by the registry, the runner
// and the dispatcher.
package command

import (
	"strconv"
	"strings"
	"time"
)

// Spec is an author-supplied command configuration.
type Spec struct {
	Runner       string        `json:"runner" yaml:"runner" mapstructure:"runner"`
	Args         []string      `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
	Label        string        `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
	Color        string        `json:"color,omitempty" yaml:"color,omitempty" mapstructure:"color"`
	InfoColor    string        `json:"infoColor,omitempty" yaml:"infoColor,omitempty" mapstructure:"infoColor"`
	ErrorColor   string        `json:"errorColor,omitempty" yaml:"errorColor,omitempty" mapstructure:"errorColor"`
	WarningColor string        `json:"warningColor,omitempty" yaml:"warningColor,omitempty" mapstructure:"warningColor"`
	Key          string        `json:"key,omitempty" yaml:"key,omitempty" mapstructure:"key"`
	ReqPath      bool          `json:"reqPath,omitempty" yaml:"reqPath,omitempty" mapstructure:"reqPath"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Command is a registered Spec together with its cached invocation string.
type Command struct {
	Spec
	// Str is Runner + " " + the space-joined Args. The per-invocation path
	// is never part of it.
	Str string
}

// Invocation joins a runner and its args the way every command string in
// waex is built. An empty args slice still leaves the separating space.
func Invocation(runner string, args []string) string {
	return runner + " " + strings.Join(args, " ")
}

// New builds a Command from s with a freshly computed Str.
func New(s Spec) Command {
	s.Args = cloneArgs(s.Args)
	return Command{Spec: s, Str: Invocation(s.Runner, s.Args)}
}

// Clone returns a deep copy of c.
func (c Command) Clone() Command {
	c.Args = cloneArgs(c.Args)
	return c
}

func cloneArgs(args []string) []string {
	if args == nil {
		return nil
	}
	out := make([]string, len(args))
	copy(out, args)
	return out
}

// Patch is a partial Spec used by registry updates. Nil fields are left
// unchanged.
type Patch struct {
	Runner       *string
	Args         *[]string
	Label        *string
	Color        *string
	InfoColor    *string
	ErrorColor   *string
	WarningColor *string
	Key          *string
	ReqPath      *bool
	Timeout      *time.Duration
}

// Apply shallow-merges p onto c. Str is deliberately left as it was.
func (p Patch) Apply(c Command) Command {
	out := c.Clone()
	if p.Runner != nil {
		out.Runner = *p.Runner
	}
	if p.Args != nil {
		out.Args = cloneArgs(*p.Args)
	}
	if p.Label != nil {
		out.Label = *p.Label
	}
	if p.Color != nil {
		out.Color = *p.Color
	}
	if p.InfoColor != nil {
		out.InfoColor = *p.InfoColor
	}
	if p.ErrorColor != nil {
		out.ErrorColor = *p.ErrorColor
	}
	if p.WarningColor != nil {
		out.WarningColor = *p.WarningColor
	}
	if p.Key != nil {
		out.Key = *p.Key
	}
	if p.ReqPath != nil {
		out.ReqPath = *p.ReqPath
	}
	if p.Timeout != nil {
		out.Timeout = *p.Timeout
	}
	return out
}

// Selector addresses one registered command either by position or by key.
type Selector struct {
	index int
	key   string
	byKey bool
}

// ByIndex selects the command at position i.
func ByIndex(i int) Selector { return Selector{index: i} }

// ByKey selects the command whose Key equals k.
func ByKey(k string) Selector { return Selector{key: k, byKey: true} }

// Index reports the selected position and whether s is an index selector.
func (s Selector) Index() (int, bool) { return s.index, !s.byKey }

// Key reports the selected key and whether s is a key selector.
func (s Selector) Key() (string, bool) { return s.key, s.byKey }

func (s Selector) String() string {
	if s.byKey {
		return "key " + s.key
	}
	return "index " + strconv.Itoa(s.index)
}

// Result is the outcome of executing one command against one changed file.
type Result struct {
	Command Command
	// Invocation is the string actually executed, including any
	// appended path.
	Invocation string
	Stdout     string
	Stderr     string
	// Err is set exactly when the process failed to spawn, exited
	// non-zero or was cancelled. It is always a *ExecError.
	Err      error
	Duration time.Duration
}

// Failed reports whether the command did not complete successfully.
func (r Result) Failed() bool { return r.Err != nil }
