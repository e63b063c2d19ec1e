package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cxref-io/cxref/pkg/collector"
	"github.com/cxref-io/cxref/pkg/config"
	"github.com/cxref-io/cxref/pkg/cscope"
	"github.com/cxref-io/cxref/pkg/logging"
)

var (
	flagConfig   string
	flagRoot     string
	flagList     string
	flagNoRescan bool
)

var rootCmd = &cobra.Command{
	Use:   "cxref",
	Short: "Build a cscope cross-reference database for a source tree",
	Long: `cxref collects source files by extension and invokes cscope to (re)build
its cross-reference database. All parsing and database construction is
delegated to cscope; cxref owns file discovery and invocation.

Run with no arguments to regenerate the file list and rebuild the
database. Use -d to reuse the existing list file.`,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Usage is only helpful for flag errors, which happen before
		// RunE; pipeline failures get the error alone.
		cmd.SilenceUsage = true

		logger := logging.NewLoggerFromEnv()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runPipeline(ctx, cfg, flagNoRescan, logger)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to config file (default: .cxref.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "Source root to scan (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagList, "list", "", "File list path (overrides config)")
	rootCmd.Flags().BoolVarP(&flagNoRescan, "no-rescan", "d", false, "Reuse the existing file list instead of regenerating it")
}

// loadConfig builds the effective configuration from defaults, the
// config file, the environment, and flags, in that order.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagList != "" {
		cfg.ListFile = flagList
	}
	return cfg, nil
}

// runPipeline is the whole program: collect (unless skipped), then
// invoke. Both steps run to completion before the next; any failure is
// fatal and reported once.
func runPipeline(ctx context.Context, cfg config.Config, skipList bool, logger *slog.Logger) error {
	if skipList {
		logger.Debug("reusing existing file list", "list_file", cfg.ListFile)
	} else {
		coll := collector.New(cfg.Root, cfg.Suffixes, cfg.Exclude, logger)
		n, err := coll.WriteList(cfg.ListFile)
		if err != nil {
			return err
		}
		logger.Info("file list written",
			"list_file", cfg.ListFile,
			"files", n)
	}

	executor, err := cscope.NewExecutor(cfg.ToolPath, cfg.LockFile(), logger)
	if err != nil {
		return err
	}

	return executor.Build(ctx, cfg.ListFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
