package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cxref-io/cxref/pkg/logging"
	"github.com/cxref-io/cxref/pkg/watch"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the database whenever source files change",
	Long: `Watch the source root and rerun the collect-and-index pipeline whenever
files matching the configured suffixes change. Bursts of changes are
coalesced, so a branch switch triggers one rebuild, not hundreds.

Stops cleanly on Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := logging.NewLoggerFromEnv()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Initial build so the database exists before the first change.
		if err := runPipeline(ctx, cfg, false, logger); err != nil {
			return err
		}

		watcher, err := watch.New(cfg.Root, watch.Options{
			Suffixes: cfg.Suffixes,
			Exclude:  cfg.Exclude,
			Debounce: flagDebounce,
		}, logger)
		if err != nil {
			return err
		}

		err = watcher.Run(ctx, func(ctx context.Context) error {
			return runPipeline(ctx, cfg, false, logger)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", watch.DefaultDebounce, "Coalescing window for change bursts")

	rootCmd.AddCommand(watchCmd)
}
