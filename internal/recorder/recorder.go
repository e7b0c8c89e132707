// Package recorder turns typed or piped command lines into command specs
// and saves them as presets.
package recorder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/presets"
)

// sentinels end recording when they are the whole line.
var sentinels = map[string]bool{":end": true, ":save": true, ":quit": true}

// cutEOF truncates s at a Ctrl+Z byte or a typed "^Z". The bool reports
// whether one was found.
func cutEOF(s string) (string, bool) {
	i := strings.IndexByte(s, 0x1A)
	if j := strings.Index(s, "^Z"); j >= 0 && (i < 0 || j < i) {
		i = j
	}
	if i < 0 {
		return s, false
	}
	return s[:i], true
}

// RecordCommands reads one command line per input line until EOF, a
// Ctrl+Z, or a sentinel line (:end, :save, :quit). Blank lines and lines
// starting with '#' are skipped.
func RecordCommands(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(r)
	var out []string
	for s.Scan() {
		text, stop := cutEOF(s.Text())
		line := strings.TrimSpace(text)
		if sentinels[line] {
			break
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
		if stop {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}

// ParseSpec splits line with shell quoting rules: the first word is the
// runner and the rest are args.
func ParseSpec(line string, reqPath bool) (command.Spec, error) {
	words, err := shellquote.Split(line)
	if err != nil {
		return command.Spec{}, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(words) == 0 {
		return command.Spec{}, &command.ConfigError{Field: "runner", Reason: "must be non-empty"}
	}
	return command.Spec{Runner: words[0], Args: words[1:], ReqPath: reqPath}, nil
}

// ParseSpecs parses every line, reporting the position of a bad one.
func ParseSpecs(lines []string, reqPath bool) ([]command.Spec, error) {
	specs := make([]command.Spec, 0, len(lines))
	for i, ln := range lines {
		s, err := ParseSpec(ln, reqPath)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i+1, err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

// SaveRecorded stores lines as a new preset and returns its ID.
func SaveRecorded(repo *presets.Repository, name string, description *string, lines []string, reqPath bool) (int64, error) {
	specs, err := ParseSpecs(lines, reqPath)
	if err != nil {
		return 0, err
	}
	return repo.Create(name, description, specs)
}
