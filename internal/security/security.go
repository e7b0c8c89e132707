// Package security refuses to run command lines that look destructive.
package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/VoxDroid/waex/internal/command"
)

// ErrBlocked matches every *BlockedError.
var ErrBlocked = errors.New("command appears destructive or unsafe")

type rule struct {
	name string
	re   *regexp.Regexp
}

var rules = []rule{
	{"recursive delete of /", regexp.MustCompile(`(?i)\brm\s+-(rf|fr)\s+/(\s|$)`)},
	{"recursive delete of ~", regexp.MustCompile(`(?i)\brm\s+-(rf|fr)\s+~/?(\s|$)`)},
	{"filesystem format", regexp.MustCompile(`(?i)\bmkfs(\.\w+)?\b`)},
	{"raw disk write", regexp.MustCompile(`(?i)\bdd\s+if=`)},
	{"fork bomb", regexp.MustCompile(`:\(\)\s*\{`)},
	{"disk wipe", regexp.MustCompile(`(?i)\bwipefs\b`)},
	{"package removal", regexp.MustCompile(`(?i)\b(apt-get|apt|yum|dnf)\s+(remove|purge)\s+`)},
	{"world-writable root", regexp.MustCompile(`(?i)\bchmod\s+-R\s+0?777\s+/(\s|$)`)},
}

// BlockedError names the command and the rule that stopped it.
type BlockedError struct {
	Command string
	Rule    string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %q (%s); pass --force to run it anyway", ErrBlocked, e.Command, e.Rule)
}

// Is reports whether target is ErrBlocked.
func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// CheckAllowed returns nil if line may run. Checking is conservative and
// not exhaustive.
func CheckAllowed(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return errors.New("empty command")
	}
	for _, r := range rules {
		if r.re.MatchString(line) {
			return &BlockedError{Command: line, Rule: r.name}
		}
	}
	return nil
}

// CheckCommands checks the invocation string of every command and returns
// the first refusal.
func CheckCommands(cmds []command.Command) error {
	for _, c := range cmds {
		if err := CheckAllowed(c.Str); err != nil {
			return err
		}
	}
	return nil
}
