package cscope

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BinaryName is the executable looked up on PATH.
const BinaryName = "cscope"

// FallbackPath is tried last, after the override variable and PATH.
// A variable so tests can point it somewhere hermetic.
var FallbackPath = "/usr/local/bin/cscope"

// buildArgs is the fixed flag set for a database rebuild: build
// non-interactively (-b), maintain the fast lookup indexes (-q), and
// kernel mode (-k) so the default system include directories are not
// scanned. Input files come from the list file via -i.
var buildArgs = []string{"-b", "-q", "-k"}

// Executor invokes the external cscope binary. The binary owns the
// cross-reference database entirely; Executor never interprets its
// output files.
type Executor struct {
	Bin string

	lockFile string
	logger   *slog.Logger
}

// NewExecutor resolves the cscope binary and returns an Executor bound
// to it. Resolution tries, in order: the override path (if non-empty),
// a PATH lookup, and the fixed fallback location. The lock file guards
// rebuilds against concurrent runs.
func NewExecutor(override, lockFile string, logger *slog.Logger) (*Executor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	bin, err := Resolve(override)
	if err != nil {
		return nil, err
	}

	return &Executor{
		Bin:      bin,
		lockFile: lockFile,
		logger:   logger,
	}, nil
}

// resolver attempts one lookup strategy, returning the resolved path or
// an error when this strategy has nothing.
type resolver func() (string, error)

// Resolve locates the cscope binary. The override, when supplied and
// valid, wins even if a same-named binary appears earlier on PATH.
func Resolve(override string) (string, error) {
	resolvers := []resolver{
		func() (string, error) { return resolveOverride(override) },
		func() (string, error) { return exec.LookPath(BinaryName) },
		func() (string, error) { return resolveFile(FallbackPath) },
	}

	for _, r := range resolvers {
		if path, err := r(); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%s not found: set $CSCOPE, install it on PATH, or place it at %s",
		BinaryName, FallbackPath)
}

func resolveOverride(override string) (string, error) {
	if override == "" {
		return "", fmt.Errorf("no override set")
	}
	return resolveFile(override)
}

// resolveFile accepts path only if it exists and is executable.
func resolveFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("%s is not an executable file", path)
	}
	return path, nil
}

// Build rebuilds the cross-reference database from the given list file.
// A file lock serializes rebuilds across processes so two runs cannot
// interleave writes to the database files. The tool's combined output
// is included in any error.
func (e *Executor) Build(ctx context.Context, listFile string) error {
	if _, err := os.Stat(listFile); err != nil {
		return fmt.Errorf("list file not found: %s", listFile)
	}

	if e.lockFile != "" {
		lock := NewBuildLock(e.lockFile)
		if err := lock.Lock(); err != nil {
			return err
		}
		defer func() { _ = lock.Unlock() }()
	}

	args := append(append([]string{}, buildArgs...), "-i", listFile)

	e.logger.Debug("invoking indexer",
		"bin", e.Bin,
		"args", strings.Join(args, " "))

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.Bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\nOutput: %s", BinaryName, err, string(output))
	}

	e.logger.Info("cross-reference database rebuilt",
		"bin", e.Bin,
		"list_file", listFile,
		"duration", time.Since(start).Round(time.Millisecond).String())

	return nil
}

// Version reports the resolved binary's version string, as a cheap
// availability probe.
func (e *Executor) Version(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, e.Bin, "-V")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s -V failed: %w", BinaryName, err)
	}
	return strings.TrimSpace(string(output)), nil
}
