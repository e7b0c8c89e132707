// Package presets stores named command lists in the waex SQLite database.
package presets

import (
	"database/sql"

	"github.com/VoxDroid/waex/internal/command"
)

// Preset is a named, reusable list of command specs.
type Preset struct {
	ID          int64
	Name        string
	Description sql.NullString
	CreatedAt   string
	LastUsed    sql.NullString
	Commands    []command.Spec
}

// Strs returns the invocation string of every command in the preset.
func (p *Preset) Strs() []string {
	out := make([]string, 0, len(p.Commands))
	for _, c := range p.Commands {
		out = append(out, command.Invocation(c.Runner, c.Args))
	}
	return out
}
