package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cxref-io/cxref/pkg/logging"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the file list and the cscope database files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		logger := logging.NewLoggerFromEnv()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		targets := append([]string{cfg.ListFile}, cfg.DatabaseFiles()...)
		targets = append(targets, cfg.LockFile())

		for _, path := range targets {
			err := os.Remove(path)
			switch {
			case err == nil:
				logger.Info("removed", "path", path)
			case os.IsNotExist(err):
				// Nothing to do.
			default:
				return fmt.Errorf("failed to remove %s: %w", path, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
