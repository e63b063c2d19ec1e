package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the window used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Suffixes limits file events to names ending in one of these.
	// Directory creations always pass so new subtrees get watched.
	Suffixes []string

	// Exclude holds directory basenames never descended into.
	Exclude []string

	// Debounce is the coalescing window before a rebuild fires.
	Debounce time.Duration
}

// Watcher watches a source tree and invokes a callback once per
// debounced batch of relevant changes. It is the only concurrent part
// of the program; the callback itself runs serially.
type Watcher struct {
	root     string
	opts     Options
	exclude  map[string]bool
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger
}

// New creates a Watcher over root.
func New(root string, opts Options, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ex := make(map[string]bool, len(opts.Exclude))
	for _, e := range opts.Exclude {
		ex[e] = true
	}

	return &Watcher{
		root:     absRoot,
		opts:     opts,
		exclude:  ex,
		fsw:      fsw,
		debounce: NewDebouncer(opts.Debounce),
		logger:   logger,
	}, nil
}

// Run watches until ctx is cancelled, calling rebuild once per
// coalesced batch of changes. A failed rebuild is logged and watching
// continues; the next change retries naturally.
func (w *Watcher) Run(ctx context.Context, rebuild func(ctx context.Context) error) error {
	defer func() { _ = w.fsw.Close() }()
	defer w.debounce.Stop()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}

	w.logger.Info("watching for changes",
		"root", w.root,
		"debounce", w.opts.Debounce.String())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err.Error())

		case batch := <-w.debounce.Output():
			w.logger.Info("source files changed", "count", len(batch))
			if err := rebuild(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("rebuild failed", "error", err.Error())
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)

	if w.exclude[name] {
		return
	}

	// New directories must be added to the watch before their contents
	// start changing.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					"path", event.Name,
					"error", err.Error())
			}
			return
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	if !w.matchesSuffix(name) {
		return
	}

	w.debounce.Add(event.Name)
}

func (w *Watcher) matchesSuffix(name string) bool {
	if len(w.opts.Suffixes) == 0 {
		return true
	}
	for _, s := range w.opts.Suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// addRecursive registers root and every directory beneath it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.exclude[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory",
				"path", path,
				"error", err.Error())
		}
		return nil
	})
}
