// Package executor runs one registered command against a changed file
// through the host shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/VoxDroid/waex/internal/command"
)

// Executor runs shell commands in an OS-aware way.
type Executor struct {
	// DryRun skips spawning and reports success for every command.
	DryRun bool
	// Shell is an optional override (e.g., "pwsh", "sh").
	Shell string
	// Dir is the working directory of spawned commands; empty means the
	// current one.
	Dir string
}

// New returns an Executor using shell (empty for the platform default).
func New(shell string) *Executor {
	return &Executor{Shell: shell}
}

// unescapeWriter wraps an io.Writer and normalizes output produced by some
// shells on Windows which can emit backslash-escaped quotes like \"HELLO\".
// It will:
//   - unescape `\"` -> `"`
//   - if the entire line is wrapped in quotes ("..."), strip the outer quotes
//     so `"HELLO"\n` becomes `HELLO\n`.
//
// This applies only to simple cases where the whole output line is a quoted
// string.
type unescapeWriter struct {
	w io.Writer
}

func (u *unescapeWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	s := string(p)
	s = strings.ReplaceAll(s, "\\\"", "\"")
	trimmed := strings.TrimRight(s, "\r\n")
	if len(trimmed) >= 2 && strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		body := trimmed[1 : len(trimmed)-1]
		suffix := s[len(trimmed):]
		s = body + suffix
	}
	if _, err := u.w.Write([]byte(s)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// sanitizeCommand normalizes common unicode characters that often get
// inserted by editors (e.g., smart quotes, NBSP, zero-width spaces) and
// converts them to their ASCII equivalents where sensible.
func sanitizeCommand(s string) string {
	r := strings.NewReplacer(
		"\u2018", "'", // left single quote
		"\u2019", "'", // right single quote
		"\u201C", "\"", // left double quote
		"\u201D", "\"", // right double quote
		"\u00A0", " ", // NO-BREAK SPACE
		"\u200B", "", // zero width space
		"\u200E", "", // left-to-right mark
		"\u200F", "", // right-to-left mark
	)
	rp := r.Replace(s)
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, rp)
}

func isBadControl(r rune) bool {
	return r == 0 || (r < 32 && r != '\t') || r == 0x7f
}

// ValidateCommand checks for remaining problematic characters that will
// cause command execution to fail (e.g., newlines and control characters).
func ValidateCommand(s string) error {
	if strings.Contains(s, "\n") {
		return fmt.Errorf("invalid command: contains newline characters; each command must be a single line")
	}
	if strings.IndexFunc(s, isBadControl) != -1 {
		return fmt.Errorf("invalid command: contains control characters; remove non-printable characters")
	}
	return nil
}

func validateAndSanitize(cmd string) (string, error) {
	cmd = sanitizeCommand(cmd)
	if err := ValidateCommand(cmd); err != nil {
		return "", err
	}
	return cmd, nil
}

// finalArgs expands placeholders in the command's args and appends the
// absolute path when the command requires it. Relative paths resolve
// against dir when set.
func finalArgs(c command.Command, filePath, dir string) (args []string, abs string, err error) {
	abs = filePath
	if !filepath.IsAbs(abs) && dir != "" {
		abs = filepath.Join(dir, abs)
	}
	abs, err = filepath.Abs(abs)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %s: %w", filePath, err)
	}
	vars := pathParams(filePath, abs)
	args = make([]string, 0, len(c.Args)+1)
	for _, a := range c.Args {
		expanded, err := ApplyParams(a, vars)
		if err != nil {
			return nil, abs, err
		}
		args = append(args, expanded)
	}
	if c.ReqPath {
		args = append(args, abs)
	}
	return args, abs, nil
}

// Execute runs c against filePath and reports every outcome in the
// returned Result. It never panics on command failure and has no separate
// error return.
func (e *Executor) Execute(ctx context.Context, filePath string, c command.Command) command.Result {
	start := time.Now()
	res := command.Result{Command: c.Clone()}
	fail := func(code int, err error) command.Result {
		res.Err = &command.ExecError{Invocation: res.Invocation, ExitCode: code, Err: err}
		res.Duration = time.Since(start)
		return res
	}

	args, abs, err := finalArgs(c, filePath, e.Dir)
	if err != nil {
		res.Invocation = command.Invocation(c.Runner, c.Args)
		return fail(-1, err)
	}
	res.Invocation = command.Invocation(c.Runner, args)

	line, err := validateAndSanitize(res.Invocation)
	if err != nil {
		return fail(-1, err)
	}
	if e.DryRun {
		res.Duration = time.Since(start)
		return res
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	shell, shellArgs := shellInvocation(line, e.Shell)
	if err := validateShellAndArgs(shell, shellArgs); err != nil {
		return fail(-1, err)
	}

	bout, berr, runErr := runShellCommand(ctx, shell, shellArgs, e.Dir)
	strip := []string{filePath}
	if c.ReqPath {
		strip = append(strip, abs)
	}
	res.Stdout = cleanOutput(normalizeOutput(bout), strip...)
	res.Stderr = cleanOutput(normalizeOutput(berr), strip...)

	if runErr != nil {
		return fail(exitCode(runErr), causeOf(ctx, runErr))
	}
	res.Duration = time.Since(start)
	return res
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

// causeOf prefers the context error so timeouts and cancellation read as
// such instead of "signal: terminated".
func causeOf(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}

// runShellCommand executes a command by running the given executable and
// arguments, returning captured stdout/stderr buffers along with any error.
func runShellCommand(ctx context.Context, shell string, args []string, cwd string) (*bytes.Buffer, *bytes.Buffer, error) {
	cmd := exec.CommandContext(ctx, shell, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	configureProcess(cmd)
	var bout, berr bytes.Buffer
	cmd.Stdout = &bout
	cmd.Stderr = &berr
	if err := cmd.Run(); err != nil {
		return &bout, &berr, err
	}
	return &bout, &berr, nil
}

func normalizeOutput(b *bytes.Buffer) string {
	if runtime.GOOS != "windows" {
		return b.String()
	}
	var out bytes.Buffer
	_, _ = (&unescapeWriter{w: &out}).Write(b.Bytes())
	return strings.ReplaceAll(out.String(), "\r\n", "\n")
}

// cleanOutput trims s, drops blank lines and lines equal to any of paths,
// and trims every remaining line. It is idempotent.
func cleanOutput(s string, paths ...string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	kept := lines[:0]
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if ln == "" || matchesAny(ln, paths) {
			continue
		}
		kept = append(kept, ln)
	}
	return strings.Join(kept, "\n")
}

func matchesAny(s string, candidates []string) bool {
	for _, c := range candidates {
		if c != "" && s == c {
			return true
		}
	}
	return false
}

// shellInvocation returns the shell executable and arguments for the platform.
// Optional `overrideShell` lets callers request alternate shell (e.g., pwsh).
func shellInvocation(cmd string, overrideShell string) (string, []string) {
	if overrideShell != "" {
		switch overrideShell {
		case "pwsh":
			return "pwsh", []string{"-Command", cmd}
		case "powershell":
			// On Windows prefer the OS-provided 'powershell' if present, else
			// fall back to 'pwsh'. On non-Windows prefer 'pwsh'.
			if runtime.GOOS == "windows" {
				if p, err := exec.LookPath("powershell"); err == nil {
					return p, []string{"-Command", cmd}
				}
				if p, err := exec.LookPath("pwsh"); err == nil {
					return p, []string{"-Command", cmd}
				}
				return "powershell", []string{"-Command", cmd}
			}
			return "pwsh", []string{"-Command", cmd}
		case "cmd":
			return "cmd", []string{"/C", cmd}
		default:
			return overrideShell, []string{"-c", cmd}
		}
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", cmd}
	}
	return "bash", []string{"-c", cmd}
}

func validateShellAndArgs(shell string, args []string) error {
	if _, err := exec.LookPath(shell); err != nil {
		return fmt.Errorf("shell not found in PATH: %s", shell)
	}
	for i, a := range args {
		if strings.IndexFunc(a, isBadControl) != -1 {
			return fmt.Errorf("invalid shell arg[%d]: contains control characters", i)
		}
	}
	return nil
}
