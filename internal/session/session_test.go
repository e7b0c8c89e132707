package session

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/config"
	"github.com/VoxDroid/waex/internal/dispatcher"
	"github.com/VoxDroid/waex/internal/logger"
)

type fakeSource struct {
	mu       sync.Mutex
	handlers []dispatcher.ChangeHandler
	swaps    int
}

func (s *fakeSource) On(h dispatcher.ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
	s.swaps++
}

func (s *fakeSource) Off(h dispatcher.ChangeHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, x := range s.handlers {
		if x == h {
			s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
			return
		}
	}
}

func (s *fakeSource) emit(p string) {
	s.mu.Lock()
	hs := append([]dispatcher.ChangeHandler(nil), s.handlers...)
	s.mu.Unlock()
	for _, h := range hs {
		h.HandleChange(p)
	}
}

type fakeRunner struct {
	mu   sync.Mutex
	strs []string
}

func (r *fakeRunner) Execute(_ context.Context, path string, c command.Command) command.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strs = append(r.strs, c.Str)
	return command.Result{Command: c, Invocation: c.Str + path, Stdout: "done"}
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.strs)
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func newSession(t *testing.T, cfg config.Options) (*Session, *fakeSource, *fakeRunner, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	l, err := logger.New(out, cfg.Logger)
	require.NoError(t, err)
	src := &fakeSource{}
	run := &fakeRunner{}
	s, err := New(context.Background(), Options{Config: cfg, Sink: logger.NewSink(l), Source: src, Runner: run})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, src, run, out
}

func TestNewInstallsOnceAndRunsConfiguredCommands(t *testing.T) {
	cfg := config.Defaults()
	cfg.Debounce = 0
	cfg.Commands = []command.Spec{{Runner: "npx", Args: []string{"prettier"}}}
	s, src, run, out := newSession(t, cfg)

	require.Equal(t, 1, src.swaps)
	require.Equal(t, 1, s.Registry().Len())

	src.emit("src/a.ts")
	require.Eventually(t, func() bool { return run.count() == 1 }, time.Second, 5*time.Millisecond)
	s.Wait()
	text := out.String()
	require.Contains(t, text, "File Change Detected at: src/a.ts")
	require.Contains(t, text, "Command Created")
}

func TestRegisterCommandReinstalls(t *testing.T) {
	cfg := config.Defaults()
	cfg.Debounce = 0
	s, src, run, out := newSession(t, cfg)

	src.emit("a.ts")
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "No commands registered") }, time.Second, 5*time.Millisecond)
	s.Wait()

	require.NoError(t, s.RegisterCommand(command.Spec{Runner: "make"}, command.Spec{Runner: "go", Args: []string{"vet"}}))
	require.Equal(t, 2, src.swaps)
	require.Error(t, s.RegisterCommand(command.Spec{}))
	require.Equal(t, 2, s.Registry().Len())
	require.Equal(t, 2, src.swaps, "a failed registration does not reinstall")

	src.emit("b.ts")
	require.Eventually(t, func() bool { return run.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestTuningReinstalls(t *testing.T) {
	cfg := config.Defaults()
	s, src, _, _ := newSession(t, cfg)

	s.SetDebounceRate(20 * time.Millisecond)
	require.Equal(t, 2, src.swaps)
	require.Equal(t, 20*time.Millisecond, s.Dispatcher().Config().Debounce)

	s.SetLimitProcessing(true)
	require.Equal(t, 2, src.swaps, "unchanged state must not reinstall")
	s.SetLimitProcessing(false)
	require.Equal(t, 3, src.swaps)
	require.False(t, s.Dispatcher().Config().LimitProcessing)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Commands = []command.Spec{{Runner: " "}}
	_, err := New(context.Background(), Options{Config: cfg, Source: &fakeSource{}})
	require.ErrorIs(t, err, command.ErrConfig)

	_, err = New(context.Background(), Options{Config: config.Defaults()})
	require.Error(t, err)
}
