package cmd

import (
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/command"
	"github.com/VoxDroid/waex/internal/dispatcher"
	"github.com/VoxDroid/waex/internal/executor"
	"github.com/VoxDroid/waex/internal/logger"
	"github.com/VoxDroid/waex/internal/session"
)

// detached is a watch source for one-shot runs; nothing is ever emitted.
type detached struct{}

func (detached) On(dispatcher.ChangeHandler) {}
func (detached) Off(dispatcher.ChangeHandler) {}

// failureCounter counts failed results on their way to the sink.
type failureCounter struct {
	*logger.Sink
	failed atomic.Int32
	total  atomic.Int32
}

func (c *failureCounter) CommandExecuted(r command.Result) {
	c.total.Add(1)
	if r.Failed() {
		c.failed.Add(1)
	}
	c.Sink.CommandExecuted(r)
}

func newRunCmd() *cobra.Command {
	var f sessionFlags
	var dryRun bool
	c := &cobra.Command{
		Use:   "run <file>",
		Short: "Run the configured commands once against a file",
		Long: `Run the configured commands once against a file, as if it had just
changed, and exit non-zero if any command failed.

  waex run src/app.ts
  waex run --dry-run -c "npx eslint" --req-path src/app.ts`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, used, err := f.options(cmd)
			if err != nil {
				return err
			}
			sink, err := newSink(cmd, opts)
			if err != nil {
				return err
			}
			describeSource(sink.Logger(), used)

			e := executor.New(opts.Shell)
			e.Dir = opts.Watcher.Cwd
			e.DryRun = dryRun
			counter := &failureCounter{Sink: sink}

			sess, err := session.New(contextOf(cmd), session.Options{
				Config: opts,
				Sink:   counter,
				Source: detached{},
				Runner: e,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			sess.Dispatcher().Dispatch(args[0])
			if n := counter.failed.Load(); n > 0 {
				return fmt.Errorf("%d of %d commands failed", n, counter.total.Load())
			}
			return nil
		},
	}
	f.bind(c)
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Show the resolved invocations without running them")
	return c
}
