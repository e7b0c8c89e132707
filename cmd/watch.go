package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VoxDroid/waex/internal/session"
	"github.com/VoxDroid/waex/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var f sessionFlags
	c := &cobra.Command{
		Use:   "watch [paths...]",
		Short: "Watch files and run the configured commands on every change",
		Long: `Watch files and run the configured commands on every change.

Paths may be files, directories or globs such as "./src/**/*.{js,ts}". When
none are given the watcher.paths of the configuration are used. Commands from
the configuration, --cmd and --preset run in that order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, used, err := f.options(cmd)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				opts.Watcher.Paths = args
			}
			sink, err := newSink(cmd, opts)
			if err != nil {
				return err
			}
			describeSource(sink.Logger(), used)

			h, err := watcher.Watch(opts.Watcher.Paths, watcher.Options{
				Ignored: opts.Watcher.Ignored,
				Cwd:     opts.Watcher.Cwd,
			})
			if err != nil {
				return err
			}
			defer func() { _ = h.Close() }()

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := session.New(ctx, session.Options{Config: opts, Sink: sink, Source: h})
			if err != nil {
				return err
			}
			defer sess.Close()

			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case err := <-h.Errors():
						sink.WatchError(err)
					}
				}
			}()

			sink.Logger().Infof("Watching %d directories for %v; press Ctrl+C to stop", len(h.Dirs()), opts.Watcher.Paths)
			h.Run(ctx)
			return nil
		},
	}
	f.bind(c)
	return c
}
