package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cxref-io/cxref/pkg/config"
	"github.com/cxref-io/cxref/pkg/cscope"
	"github.com/cxref-io/cxref/pkg/logging"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestUnknownFlagPrintsUsage(t *testing.T) {
	out, err := execute(t, "--bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, out, "Usage:")
}

func TestHelpSucceeds(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "no-rescan")
}

func fakeTool(t *testing.T, argvFile string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cscope")
	script := "#!/bin/sh\necho \"$@\" > " + argvFile + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func testConfig(t *testing.T, tool string) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Root = filepath.Join(dir, "src")
	cfg.ListFile = filepath.Join(dir, "cscope.files")
	cfg.DatabaseFile = filepath.Join(dir, "cscope.out")
	cfg.ToolPath = tool
	require.NoError(t, os.MkdirAll(cfg.Root, 0o755))
	return cfg
}

func TestRunPipeline_CollectsThenInvokes(t *testing.T) {
	argvFile := filepath.Join(t.TempDir(), "argv")
	cfg := testConfig(t, fakeTool(t, argvFile))

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "a.c"), []byte("int a;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "b.hpp"), []byte("int b;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "c.txt"), []byte("notes\n"), 0o644))

	logger := logging.NewLogger("error", "text", os.Stderr)
	require.NoError(t, runPipeline(context.Background(), cfg, false, logger))

	data, err := os.ReadFile(cfg.ListFile)
	require.NoError(t, err)
	lines := strings.Fields(string(data))
	assert.ElementsMatch(t, []string{
		filepath.Join(cfg.Root, "a.c"),
		filepath.Join(cfg.Root, "b.hpp"),
	}, lines)

	argv, err := os.ReadFile(argvFile)
	require.NoError(t, err)
	assert.Equal(t, "-b -q -k -i "+cfg.ListFile, strings.TrimSpace(string(argv)))
}

func TestRunPipeline_SkipModeReusesList(t *testing.T) {
	argvFile := filepath.Join(t.TempDir(), "argv")
	cfg := testConfig(t, fakeTool(t, argvFile))

	existing := "/already/collected/a.c\n/already/collected/b.c\n"
	require.NoError(t, os.WriteFile(cfg.ListFile, []byte(existing), 0o644))

	// A file that would be collected if a rescan happened.
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "new.c"), []byte("int n;\n"), 0o644))

	logger := logging.NewLogger("error", "text", os.Stderr)
	require.NoError(t, runPipeline(context.Background(), cfg, true, logger))

	data, err := os.ReadFile(cfg.ListFile)
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestRunPipeline_ToolNotFound(t *testing.T) {
	cfg := testConfig(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "a.c"), []byte("int a;\n"), 0o644))

	t.Setenv("PATH", t.TempDir())
	prev := cscope.FallbackPath
	cscope.FallbackPath = filepath.Join(t.TempDir(), "cscope")
	t.Cleanup(func() { cscope.FallbackPath = prev })

	logger := logging.NewLogger("error", "text", os.Stderr)
	err := runPipeline(context.Background(), cfg, false, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cscope not found")
}
