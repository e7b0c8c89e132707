package command

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is.
var (
	ErrConfig   = errors.New("invalid command config")
	ErrSelector = errors.New("invalid command selector")
	ErrExec     = errors.New("command execution failed")
)

// ConfigError reports a Spec rejected at creation time.
type ConfigError struct {
	// Position of the offending spec within the Create call.
	Position int
	Field    string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid command config at position %d: %s %s", e.Position, e.Field, e.Reason)
}

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// BoundsError reports an index selector outside the registry, or any
// selector against an empty registry.
type BoundsError struct {
	Index int
	Len   int
}

func (e *BoundsError) Error() string {
	if e.Len == 0 {
		return "provided index is out of bounds: no commands registered"
	}
	return fmt.Sprintf("provided index is out of bounds: got %d, valid range [0, %d]", e.Index, e.Len-1)
}

func (e *BoundsError) Is(target error) bool { return target == ErrSelector }

// KeyError reports a key selector that matched nothing on a mutating
// operation.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("no command registered with key %q", e.Key)
}

func (e *KeyError) Is(target error) bool { return target == ErrSelector }

// ExecError describes a command that failed to spawn, exited non-zero or
// was cancelled.
type ExecError struct {
	Invocation string
	// ExitCode is -1 when the process never produced an exit status.
	ExitCode int
	Err      error
}

func (e *ExecError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command failed: %s", e.Invocation)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, " (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExecError) Unwrap() error { return e.Err }

func (e *ExecError) Is(target error) bool { return target == ErrExec }
