// Package dispatcher turns change events from a watch source into
// sequential runs of every registered command.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/VoxDroid/waex/internal/command"
)

// ChangeHandler receives one changed path per call. Implementations must
// not block the caller.
type ChangeHandler interface {
	HandleChange(path string)
}

// Source is the subset of a watch handle the dispatcher installs its
// handler on.
type Source interface {
	On(h ChangeHandler)
	Off(h ChangeHandler)
}

// Runner executes a single command against a changed file.
type Runner interface {
	Execute(ctx context.Context, filePath string, c command.Command) command.Result
}

// Commands supplies the commands to run. Read must return a snapshot.
type Commands interface {
	Read() []command.Command
}

// Notifier receives dispatch events.
type Notifier interface {
	ChangeDetected(path string)
	NoCommands()
	CommandExecuted(r command.Result)
	ExecutionError(err error)
}

// StartNotifier is implemented by notifiers that want to know when a
// command is about to run.
type StartNotifier interface {
	CommandStarted(c command.Command)
}

// Config is the dispatcher's tunable state.
type Config struct {
	// Debounce is the trailing-edge window; zero disables debouncing.
	Debounce time.Duration
	// LimitProcessing drops changes that arrive while a batch is running.
	LimitProcessing bool
}

// Dispatcher owns the handler installed on a Source and the busy flag
// that governs overlap suppression.
type Dispatcher struct {
	src    Source
	runner Runner
	cmds   Commands
	notify Notifier

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	cfg     Config
	current *Handler
	closed  bool

	busy atomic.Bool
	wg   sync.WaitGroup
}

// New returns a Dispatcher. No handler is installed until Reinstall is
// called. Cancelling ctx stops batches between commands.
func New(ctx context.Context, src Source, runner Runner, cmds Commands, n Notifier, cfg Config) *Dispatcher {
	ctx, cancel := context.WithCancel(ctx)
	return &Dispatcher{
		src:    src,
		runner: runner,
		cmds:   cmds,
		notify: n,
		ctx:    ctx,
		cancel: cancel,
		cfg:    cfg,
	}
}

// Config returns the current configuration.
func (d *Dispatcher) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Busy reports whether a batch is running under overlap suppression.
func (d *Dispatcher) Busy() bool { return d.busy.Load() }

// Current returns the installed handler, or nil.
func (d *Dispatcher) Current() *Handler {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Reinstall detaches the current handler, cancels its pending debounce,
// and installs a fresh handler built from the current configuration.
func (d *Dispatcher) Reinstall() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.detachLocked()
	d.current = newHandler(d, d.cfg)
	d.src.On(d.current)
}

func (d *Dispatcher) detachLocked() {
	if d.current == nil {
		return
	}
	d.src.Off(d.current)
	d.current.stop()
	d.current = nil
}

// SetDebounce changes the debounce window and reinstalls the handler.
func (d *Dispatcher) SetDebounce(rate time.Duration) {
	if rate < 0 {
		rate = 0
	}
	d.mu.Lock()
	d.cfg.Debounce = rate
	d.mu.Unlock()
	d.Reinstall()
}

// SetLimitProcessing toggles overlap suppression. The handler is only
// reinstalled when the state changes; the return value reports whether it
// did.
func (d *Dispatcher) SetLimitProcessing(on bool) bool {
	d.mu.Lock()
	changed := d.cfg.LimitProcessing != on
	d.cfg.LimitProcessing = on
	d.mu.Unlock()
	if changed {
		d.Reinstall()
	}
	return changed
}

// Dispatch runs one batch for path synchronously, bypassing debounce but
// honoring overlap suppression. It reports whether the batch ran; a closed
// dispatcher never runs one.
func (d *Dispatcher) Dispatch(path string) bool {
	limit := d.Config().LimitProcessing
	if !d.begin(limit) {
		return false
	}
	defer d.wg.Done()
	if limit {
		defer d.busy.Store(false)
	}
	d.runBatch(path)
	return true
}

// Wait blocks until every in-flight batch has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Close detaches the handler, cancels in-flight batches, and waits for
// them to return.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.detachLocked()
	d.mu.Unlock()
	d.cancel()
	d.wg.Wait()
}

// start launches a batch on its own goroutine unless suppression drops it.
func (d *Dispatcher) start(path string, limit bool) {
	if !d.begin(limit) {
		return
	}
	go func() {
		defer d.wg.Done()
		if limit {
			defer d.busy.Store(false)
		}
		d.runBatch(path)
	}()
}

// begin claims a batch slot. The WaitGroup is only added to under d.mu
// while the dispatcher is open, so Close never waits concurrently with Add.
func (d *Dispatcher) begin(limit bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	if limit && !d.busy.CompareAndSwap(false, true) {
		return false
	}
	d.wg.Add(1)
	return true
}

func (d *Dispatcher) runBatch(path string) {
	defer func() {
		if r := recover(); r != nil {
			d.notify.ExecutionError(fmt.Errorf("dispatch for %s panicked: %v", path, r))
		}
	}()

	d.notify.ChangeDetected(path)
	cmds := d.cmds.Read()
	if len(cmds) == 0 {
		d.notify.NoCommands()
		return
	}
	starter, _ := d.notify.(StartNotifier)
	for _, c := range cmds {
		if err := d.ctx.Err(); err != nil {
			d.notify.ExecutionError(fmt.Errorf("stopped before %s: %w", c.Str, err))
			return
		}
		if starter != nil {
			starter.CommandStarted(c)
		}
		d.notify.CommandExecuted(d.runner.Execute(d.ctx, path, c))
	}
}
