package cscope

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BuildLock provides cross-process locking around database rebuilds.
// cscope rewrites its output files in place, so two concurrent builds
// in the same directory would corrupt them.
type BuildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewBuildLock creates a lock backed by the given file path.
func NewBuildLock(path string) *BuildLock {
	return &BuildLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Lock acquires the lock, blocking until it is available. The lock file
// is created if missing.
func (l *BuildLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire build lock: %w", err)
	}

	l.locked = true
	return nil
}

// TryLock attempts to acquire the lock without blocking. Returns true
// if acquired, false if another process holds it.
func (l *BuildLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("failed to acquire build lock: %w", err)
	}

	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Safe to call on an unlocked BuildLock.
func (l *BuildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release build lock: %w", err)
	}
	return nil
}
