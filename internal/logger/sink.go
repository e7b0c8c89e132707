package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"

	"github.com/VoxDroid/waex/internal/command"
)

var watchContext = Head{Label: "[WATCH_EXEC]", Color: "#e76d38"}

const (
	commandLabel = "[CMD]"
	commandColor = "#1a8f00"
)

// Sink renders registry and dispatcher notifications through a Logger.
type Sink struct {
	log *Logger
	now func() time.Time

	mu   sync.Mutex
	spin *spinner.Spinner
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) SinkOption {
	return func(s *Sink) { s.now = now }
}

// WithSpinner shows a spinner on f while a command runs. It is a no-op
// when f is not a terminal.
func WithSpinner(f *os.File) SinkOption {
	return func(s *Sink) {
		if f == nil || !term.IsTerminal(int(f.Fd())) {
			return
		}
		s.spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	}
}

// NewSink returns a Sink writing through l.
func NewSink(l *Logger, opts ...SinkOption) *Sink {
	s := &Sink{log: l, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Logger returns the underlying logger.
func (s *Sink) Logger() *Logger { return s.log }

func (s *Sink) timestamp() string {
	return s.now().Format("1/2/2006, 3:04 PM")
}

func (s *Sink) stopSpinner() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spin != nil && s.spin.Active() {
		s.spin.Stop()
	}
}

func commandColors(c command.Command) Colors {
	return Colors{Log: c.Color, Info: c.InfoColor, Error: c.ErrorColor, Warning: c.WarningColor}
}

func commandHeadLabel(c command.Command) string {
	if c.Label != "" {
		return c.Label
	}
	return commandLabel
}

// ChangeDetected implements dispatcher.Notifier.
func (s *Sink) ChangeDetected(path string) {
	h := watchContext
	h.Command = "File Change Detected at: " + path
	s.log.Log(Detail{Head: h})
}

// NoCommands implements dispatcher.Notifier.
func (s *Sink) NoCommands() {
	h := watchContext
	h.Command = "No commands registered to execute."
	h.Level = LevelWarn
	s.log.Log(Detail{Head: h})
}

// ExecutionError implements dispatcher.Notifier.
func (s *Sink) ExecutionError(err error) {
	s.stopSpinner()
	h := watchContext
	h.Command = "Execute Commands"
	h.Level = LevelError
	s.log.Log(Detail{Head: h, Body: []Entry{
		{Key: "time", Value: s.timestamp()},
		{Key: "error", Value: err},
	}})
}

// CommandStarted shows the spinner for c when one is configured.
func (s *Sink) CommandStarted(c command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spin == nil {
		return
	}
	s.spin.Suffix = " " + c.Str
	s.spin.Start()
}

// CommandExecuted implements dispatcher.Notifier.
func (s *Sink) CommandExecuted(r command.Result) {
	s.stopSpinner()
	level, indicate := LevelLog, IndicatorSuccess
	if r.Failed() {
		level, indicate = LevelError, IndicatorError
	}
	body := []Entry{
		{Key: "time", Value: s.timestamp()},
		{Key: "executionTime", Value: r.Duration.Round(time.Millisecond)},
	}
	if r.Stdout != "" {
		body = append(body, Entry{Key: "stdout", Value: r.Stdout})
	}
	if r.Stderr != "" {
		body = append(body, Entry{Key: "stderr", Value: r.Stderr})
	}
	if r.Err != nil {
		body = append(body, Entry{Key: "error", Value: r.Err})
	}
	s.log.Log(Detail{
		Head:   Head{Command: r.Invocation, Label: commandHeadLabel(r.Command), Level: level, Indicate: indicate},
		Body:   body,
		Colors: commandColors(r.Command),
	})
}

// Created implements registry.Notifier.
func (s *Sink) Created(c command.Command) {
	s.log.Log(Detail{
		Head: Head{Command: "Command Created", Label: commandHeadLabel(c), Level: LevelInfo, Indicate: IndicatorSuccess},
		Body: []Entry{
			{Key: "time", Value: s.timestamp()},
			{Key: "key", Value: c.Key},
			{Key: "runner", Value: c.Runner},
			{Key: "args", Value: strings.Join(c.Args, ",")},
			{Key: "str", Value: c.Str},
		},
		Colors: commandColors(c),
	})
}

// Updated implements registry.Notifier.
func (s *Sink) Updated(before, after command.Command) {
	body := []Entry{{Key: "time", Value: s.timestamp()}}
	if before.Runner != after.Runner {
		body = append(body, Entry{Key: "runner", Value: fmt.Sprintf("%s => %s", before.Runner, after.Runner)})
	}
	if b, a := strings.Join(before.Args, ","), strings.Join(after.Args, ","); b != a {
		body = append(body, Entry{Key: "args", Value: fmt.Sprintf("%s => %s", b, a)})
	}
	if before.Label != after.Label {
		body = append(body, Entry{Key: "label", Value: fmt.Sprintf("%s => %s", before.Label, after.Label)})
	}
	if before.Key != after.Key {
		body = append(body, Entry{Key: "key", Value: fmt.Sprintf("%s => %s", before.Key, after.Key)})
	}
	if before.ReqPath != after.ReqPath {
		body = append(body, Entry{Key: "reqPath", Value: fmt.Sprintf("%t => %t", before.ReqPath, after.ReqPath)})
	}
	s.log.Log(Detail{
		Head:   Head{Command: commandHeadLabel(before) + " Updated", Label: commandHeadLabel(after), Level: LevelInfo, Indicate: IndicatorSuccess},
		Body:   body,
		Colors: commandColors(after),
	})
}

// Deleted implements registry.Notifier.
func (s *Sink) Deleted(str string) {
	s.log.Log(Detail{
		Head:   Head{Command: "Command Deleted", Label: commandLabel, Level: LevelInfo, Indicate: IndicatorSuccess},
		Body:   []Entry{{Key: "time", Value: s.timestamp()}, {Key: "str", Value: str}},
		Colors: Colors{Info: commandColor},
	})
}

// Reset implements registry.Notifier.
func (s *Sink) Reset() {
	s.log.Log(Detail{
		Head:   Head{Command: "Commands Reset", Label: commandLabel, Level: LevelInfo, Indicate: IndicatorSuccess},
		Body:   []Entry{{Key: "time", Value: s.timestamp()}},
		Colors: Colors{Info: commandColor},
	})
}

// WatchError reports an error raised by the watch source.
func (s *Sink) WatchError(err error) {
	h := watchContext
	h.Command = "Watcher Error"
	h.Level = LevelWarn
	s.log.Log(Detail{Head: h, Body: []Entry{{Key: "error", Value: err}}})
}
