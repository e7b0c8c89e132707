// Package session ties the registry, dispatcher and notification sink
// into a single watch session.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/config"
	"github.com/VoxDroid/waex/internal/dispatcher"
	"github.com/VoxDroid/waex/internal/executor"
	"github.com/VoxDroid/waex/internal/logger"
	"github.com/VoxDroid/waex/internal/registry"
)

// Sink receives both registry and dispatch notifications.
type Sink interface {
	registry.Notifier
	dispatcher.Notifier
}

// Options configures New.
type Options struct {
	Config config.Options
	// Sink defaults to a logger writing nowhere.
	Sink Sink
	// Source is required.
	Source dispatcher.Source
	// Runner defaults to an executor using Config.Shell in Config.Watcher.Cwd.
	Runner dispatcher.Runner
}

// Session is a running watch-and-execute session.
type Session struct {
	reg  *registry.Registry
	disp *dispatcher.Dispatcher
	sink Sink
}

// New builds the registry from the configured commands and installs the
// change handler on the source.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Source == nil {
		return nil, errors.New("session: watch source is required")
	}
	sink := opts.Sink
	if sink == nil {
		l, err := logger.New(io.Discard, opts.Config.Logger)
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		sink = logger.NewSink(l)
	}
	runner := opts.Runner
	if runner == nil {
		e := executor.New(opts.Config.Shell)
		e.Dir = opts.Config.Watcher.Cwd
		runner = e
	}

	reg, err := registry.New(sink, opts.Config.Commands...)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	disp := dispatcher.New(ctx, opts.Source, runner, reg, sink, dispatcher.Config{
		Debounce:        opts.Config.Debounce,
		LimitProcessing: opts.Config.LimitProcessing,
	})
	disp.Reinstall()
	return &Session{reg: reg, disp: disp, sink: sink}, nil
}

// RegisterCommand adds specs to the registry and reinstalls the handler.
// Nothing is added when any spec is invalid.
func (s *Session) RegisterCommand(specs ...command.Spec) error {
	if err := s.reg.Create(specs...); err != nil {
		return err
	}
	s.disp.Reinstall()
	return nil
}

// SetDebounceRate changes the debounce window; zero disables it.
func (s *Session) SetDebounceRate(rate time.Duration) {
	s.disp.SetDebounce(rate)
}

// SetLimitProcessing toggles overlap suppression.
func (s *Session) SetLimitProcessing(on bool) {
	s.disp.SetLimitProcessing(on)
}

// Registry returns the session's command registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Dispatcher returns the session's dispatcher.
func (s *Session) Dispatcher() *dispatcher.Dispatcher { return s.disp }

// Sink returns the notification sink.
func (s *Session) Sink() Sink { return s.sink }

// Wait blocks until in-flight batches finish.
func (s *Session) Wait() { s.disp.Wait() }

// Close detaches the handler and cancels in-flight batches.
func (s *Session) Close() { s.disp.Close() }
