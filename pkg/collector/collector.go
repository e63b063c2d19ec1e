package collector

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Collector discovers source files for the indexer. It walks a root
// directory and keeps every regular file whose name ends in one of the
// configured suffixes.
type Collector struct {
	root     string
	suffixes []string
	exclude  map[string]bool
	logger   *slog.Logger
}

// New creates a Collector. Suffix matching is case-sensitive and
// suffix-exact; exclude entries are basenames skipped wherever they
// appear (directories are pruned, files are dropped).
func New(root string, suffixes, exclude []string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	ex := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		ex[e] = true
	}
	return &Collector{
		root:     root,
		suffixes: suffixes,
		exclude:  ex,
		logger:   logger,
	}
}

// Collect walks the root and returns the absolute paths of all matching
// files, in traversal order. Zero matches is not an error. Entries that
// cannot be read are skipped.
func (c *Collector) Collect() ([]string, error) {
	absRoot, err := filepath.Abs(c.root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip entries we can't access
		}

		if d.IsDir() {
			if path != absRoot && c.exclude[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		// Symlinks are not followed; the indexer sees real files only.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if c.exclude[d.Name()] {
			return nil
		}

		if c.matchesSuffix(d.Name()) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	c.logger.Debug("collected source files",
		"root", absRoot,
		"count", len(paths))

	return paths, nil
}

// WriteList collects and overwrites listFile with one absolute path per
// line. The previous contents are always replaced wholesale; an empty
// result produces an empty file.
func (c *Collector) WriteList(listFile string) (int, error) {
	paths, err := c.Collect()
	if err != nil {
		return 0, err
	}

	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(listFile, []byte(b.String()), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write list file %s: %w", listFile, err)
	}

	return len(paths), nil
}

func (c *Collector) matchesSuffix(name string) bool {
	for _, s := range c.suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ReadList returns the entries of an existing list file, one path per
// line, with blank lines dropped. Used by skip-mode status reporting.
func ReadList(listFile string) ([]string, error) {
	data, err := os.ReadFile(listFile)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}
