package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cxref-io/cxref/pkg/collector"
	"github.com/cxref-io/cxref/pkg/config"
	"github.com/cxref-io/cxref/pkg/cscope"
)

var flagJSON bool

// statusReport is the machine-readable shape of `cxref status --json`.
type statusReport struct {
	Tool      toolStatus   `json:"tool"`
	ListFile  listStatus   `json:"list_file"`
	Databases []fileStatus `json:"databases"`
}

type toolStatus struct {
	Resolved bool   `json:"resolved"`
	Path     string `json:"path,omitempty"`
	Version  string `json:"version,omitempty"`
	Error    string `json:"error,omitempty"`
}

type listStatus struct {
	Path    string `json:"path"`
	Exists  bool   `json:"exists"`
	Entries int    `json:"entries"`
}

type fileStatus struct {
	Path    string    `json:"path"`
	Exists  bool      `json:"exists"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"mod_time"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the resolved tool, file list, and database state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		report := buildStatus(cmd.Context(), cfg)

		if flagJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(report)
		}

		printStatus(cmd, report)
		return nil
	},
}

func buildStatus(ctx context.Context, cfg config.Config) statusReport {
	if ctx == nil {
		ctx = context.Background()
	}

	var report statusReport

	bin, err := cscope.Resolve(cfg.ToolPath)
	if err != nil {
		report.Tool = toolStatus{Error: err.Error()}
	} else {
		report.Tool = toolStatus{Resolved: true, Path: bin}
		if executor, err := cscope.NewExecutor(cfg.ToolPath, "", nil); err == nil {
			if version, err := executor.Version(ctx); err == nil {
				report.Tool.Version = version
			}
		}
	}

	report.ListFile = listStatus{Path: cfg.ListFile}
	if entries, err := collector.ReadList(cfg.ListFile); err == nil {
		report.ListFile.Exists = true
		report.ListFile.Entries = len(entries)
	}

	for _, path := range cfg.DatabaseFiles() {
		fs := fileStatus{Path: path}
		if info, err := os.Stat(path); err == nil {
			fs.Exists = true
			fs.Size = info.Size()
			fs.ModTime = info.ModTime()
		}
		report.Databases = append(report.Databases, fs)
	}

	return report
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()

	if report.Tool.Resolved {
		fmt.Fprintf(out, "tool:      %s\n", report.Tool.Path)
		if report.Tool.Version != "" {
			fmt.Fprintf(out, "version:   %s\n", report.Tool.Version)
		}
	} else {
		fmt.Fprintf(out, "tool:      not found (%s)\n", report.Tool.Error)
	}

	if report.ListFile.Exists {
		fmt.Fprintf(out, "list file: %s (%d entries)\n", report.ListFile.Path, report.ListFile.Entries)
	} else {
		fmt.Fprintf(out, "list file: %s (missing)\n", report.ListFile.Path)
	}

	for _, db := range report.Databases {
		if db.Exists {
			fmt.Fprintf(out, "database:  %s (%d bytes, %s)\n",
				db.Path, db.Size, db.ModTime.Format(time.RFC3339))
		} else {
			fmt.Fprintf(out, "database:  %s (missing)\n", db.Path)
		}
	}
}

func init() {
	statusCmd.Flags().BoolVar(&flagJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(statusCmd)
}
