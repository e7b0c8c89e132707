// Package registry holds the ordered, in-memory list of commands a watch
// session runs on every change.
package registry

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/VoxDroid/waex/internal/command"
)

// Notifier receives registry mutations.
type Notifier interface {
	Created(c command.Command)
	Updated(before, after command.Command)
	Deleted(str string)
	Reset()
}

type nopNotifier struct{}

func (nopNotifier) Created(command.Command) {}
func (nopNotifier) Updated(command.Command, command.Command) {}
func (nopNotifier) Deleted(string) {}
func (nopNotifier) Reset() {}

// Registry is safe for concurrent use. Every read returns copies, so
// callers never share state with the registry.
type Registry struct {
	mu       sync.RWMutex
	commands []command.Command
	notify   Notifier
}

// New returns a Registry reporting to n (which may be nil) and holding
// specs.
func New(n Notifier, specs ...command.Spec) (*Registry, error) {
	if n == nil {
		n = nopNotifier{}
	}
	r := &Registry{notify: n}
	if len(specs) > 0 {
		if err := r.Create(specs...); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Create appends specs in order. Every spec is validated first; on error
// nothing is appended. A runner of only whitespace is rejected. A spec
// without a Key is given a generated one.
func (r *Registry) Create(specs ...command.Spec) error {
	built := make([]command.Command, 0, len(specs))
	for i, s := range specs {
		if strings.TrimSpace(s.Runner) == "" {
			return &command.ConfigError{Position: i, Field: "runner", Reason: "must be non-empty"}
		}
		if s.Key == "" {
			s.Key = uuid.NewString()
		}
		built = append(built, command.New(s))
	}

	r.mu.Lock()
	r.commands = append(r.commands, built...)
	r.mu.Unlock()

	for _, c := range built {
		r.notify.Created(c.Clone())
	}
	return nil
}

// Read returns a copy of every command in insertion order.
func (r *Registry) Read() []command.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]command.Command, len(r.commands))
	for i, c := range r.commands {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// ReadKey returns the first command with key. A miss is not an error.
func (r *Registry) ReadKey(key string) (command.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.commands {
		if c.Key == key {
			return c.Clone(), true
		}
	}
	return command.Command{}, false
}

// ReadIndex returns the command at i or a *command.BoundsError.
func (r *Registry) ReadIndex(i int) (command.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !inBounds(i, len(r.commands)) {
		return command.Command{}, &command.BoundsError{Index: i, Len: len(r.commands)}
	}
	return r.commands[i].Clone(), nil
}

// ReadSelector resolves sel for a caller that wants an error on any miss.
func (r *Registry) ReadSelector(sel command.Selector) (command.Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, err := r.resolve(sel)
	if err != nil {
		return command.Command{}, err
	}
	return r.commands[i].Clone(), nil
}

func inBounds(i, n int) bool {
	return n > 0 && i >= 0 && i < n
}

// resolve must be called with r.mu held.
func (r *Registry) resolve(sel command.Selector) (int, error) {
	n := len(r.commands)
	if n == 0 {
		idx, _ := sel.Index()
		return -1, &command.BoundsError{Index: idx, Len: 0}
	}
	if key, ok := sel.Key(); ok {
		for i, c := range r.commands {
			if c.Key == key {
				return i, nil
			}
		}
		return -1, &command.KeyError{Key: key}
	}
	idx, _ := sel.Index()
	if !inBounds(idx, n) {
		return -1, &command.BoundsError{Index: idx, Len: n}
	}
	return idx, nil
}

// Update merges p into the selected command. The cached Str is not
// recomputed.
func (r *Registry) Update(sel command.Selector, p command.Patch) error {
	r.mu.Lock()
	i, err := r.resolve(sel)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	before := r.commands[i].Clone()
	after := p.Apply(before)
	r.commands[i] = after
	r.mu.Unlock()

	r.notify.Updated(before, after.Clone())
	return nil
}

// Delete removes exactly the selected command.
func (r *Registry) Delete(sel command.Selector) error {
	r.mu.Lock()
	i, err := r.resolve(sel)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	removed := r.commands[i]
	r.commands = append(r.commands[:i:i], r.commands[i+1:]...)
	r.mu.Unlock()

	r.notify.Deleted(removed.Str)
	return nil
}

// Reset removes every command.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.commands = nil
	r.mu.Unlock()
	r.notify.Reset()
}
