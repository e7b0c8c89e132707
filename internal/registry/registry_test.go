package registry

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/VoxDroid/waex/internal/command"
)

type recorder struct {
	mu      sync.Mutex
	created []command.Command
	updated [][2]command.Command
	deleted []string
	resets  int
}

func (r *recorder) Created(c command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, c)
}

func (r *recorder) Updated(before, after command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updated = append(r.updated, [2]command.Command{before, after})
}

func (r *recorder) Deleted(str string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, str)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
}

func specs() []command.Spec {
	return []command.Spec{
		{Runner: "npx", Args: []string{"prettier", "--write"}, Key: "fmt", ReqPath: true},
		{Runner: "npx", Args: []string{"eslint"}, Key: "lint"},
		{Runner: "make"},
	}
}

func TestCreateAndReadPreservesOrder(t *testing.T) {
	rec := &recorder{}
	r, err := New(rec, specs()...)
	require.NoError(t, err)

	got := r.Read()
	require.Len(t, got, 3)
	require.Equal(t, "npx prettier --write", got[0].Str)
	require.Equal(t, "npx eslint", got[1].Str)
	require.Equal(t, "make ", got[2].Str)
	require.NotEmpty(t, got[2].Key, "missing keys are generated")
	require.Len(t, rec.created, 3)
	require.Equal(t, "fmt", rec.created[0].Key)
}

func TestCreateWithoutRunnerLeavesRegistryUnchanged(t *testing.T) {
	rec := &recorder{}
	r, err := New(rec, specs()[0])
	require.NoError(t, err)

	err = r.Create(command.Spec{Runner: "ok"}, command.Spec{Args: []string{"x"}})
	require.Error(t, err)
	require.True(t, errors.Is(err, command.ErrConfig))
	var ce *command.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "runner", ce.Field)
	require.Equal(t, 1, ce.Position)

	require.Equal(t, 1, r.Len())
	require.Len(t, rec.created, 1)
}

func TestCreateRejectsBlankRunner(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	err = r.Create(command.Spec{Runner: "  \t"})
	var ce *command.ConfigError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, "runner", ce.Field)
	require.Zero(t, r.Len())
}

func TestReadReturnsCopies(t *testing.T) {
	r, err := New(nil, specs()...)
	require.NoError(t, err)
	got := r.Read()
	got[0].Args[0] = "mutated"
	got[0].Runner = "mutated"
	again, err := r.ReadIndex(0)
	require.NoError(t, err)
	require.Equal(t, "npx", again.Runner)
	require.Equal(t, "prettier", again.Args[0])
}

func TestReadKey(t *testing.T) {
	r, err := New(nil, specs()...)
	require.NoError(t, err)
	c, ok := r.ReadKey("lint")
	require.True(t, ok)
	require.Equal(t, "npx eslint", c.Str)

	_, ok = r.ReadKey("missing")
	require.False(t, ok, "a key miss is a silent outcome")
}

func TestReadIndexBounds(t *testing.T) {
	empty, err := New(nil)
	require.NoError(t, err)
	_, err = empty.ReadIndex(0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no commands registered")

	r, err := New(nil, specs()...)
	require.NoError(t, err)
	for k := -2; k <= 4; k++ {
		_, err := r.ReadIndex(k)
		if k >= 0 && k < 3 {
			require.NoError(t, err, "index %d", k)
			continue
		}
		var be *command.BoundsError
		require.ErrorAs(t, err, &be, "index %d", k)
		require.Equal(t, k, be.Index)
		require.Contains(t, err.Error(), "[0, 2]")
	}
}

func TestUpdateDoesNotRecomputeStr(t *testing.T) {
	rec := &recorder{}
	r, err := New(rec, specs()...)
	require.NoError(t, err)

	runner := "pnpm"
	require.NoError(t, r.Update(command.ByKey("lint"), command.Patch{Runner: &runner}))
	c, _ := r.ReadKey("lint")
	require.Equal(t, "pnpm", c.Runner)
	require.Equal(t, "npx eslint", c.Str)

	require.Len(t, rec.updated, 1)
	require.Equal(t, "npx", rec.updated[0][0].Runner)
	require.Equal(t, "pnpm", rec.updated[0][1].Runner)
}

func TestUpdateSelectorErrors(t *testing.T) {
	empty, _ := New(nil)
	label := "x"
	err := empty.Update(command.ByKey("fmt"), command.Patch{Label: &label})
	var be *command.BoundsError
	require.ErrorAs(t, err, &be, "any selector against an empty registry is a bounds error")
	require.Contains(t, err.Error(), "no commands registered")

	r, _ := New(nil, specs()...)
	err = r.Update(command.ByIndex(3), command.Patch{Label: &label})
	require.ErrorAs(t, err, &be)

	err = r.Update(command.ByKey("nope"), command.Patch{Label: &label})
	var ke *command.KeyError
	require.ErrorAs(t, err, &ke)
	require.True(t, errors.Is(err, command.ErrSelector))
}

func TestDelete(t *testing.T) {
	rec := &recorder{}
	r, err := New(rec, specs()...)
	require.NoError(t, err)

	require.NoError(t, r.Delete(command.ByIndex(1)))
	got := r.Read()
	require.Len(t, got, 2)
	require.Equal(t, "fmt", got[0].Key)
	require.Equal(t, "make ", got[1].Str)
	require.Equal(t, []string{"npx eslint"}, rec.deleted)

	require.NoError(t, r.Delete(command.ByKey("fmt")))
	require.Equal(t, 1, r.Len())

	require.Error(t, r.Delete(command.ByIndex(5)))
	require.Error(t, r.Delete(command.ByKey("fmt")))
	require.Equal(t, 1, r.Len())
}

func TestReset(t *testing.T) {
	rec := &recorder{}
	r, err := New(rec, specs()...)
	require.NoError(t, err)
	r.Reset()
	require.Zero(t, r.Len())
	require.Equal(t, 1, rec.resets)
	_, err = r.ReadSelector(command.ByIndex(0))
	require.Error(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Create(command.Spec{Runner: "echo"})
			_ = r.Read()
			_, _ = r.ReadIndex(0)
		}()
	}
	wg.Wait()
	require.Equal(t, 16, r.Len())
}
