package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the optional per-project config file, looked up in
// the working directory.
const DefaultFileName = ".cxref.yaml"

// ToolEnvVar names the environment variable that overrides the resolved
// cscope binary path. It takes precedence over any PATH lookup.
const ToolEnvVar = "CSCOPE"

// Config carries everything the collector and invoker need, so neither
// reads ambient process state (environment, working directory) itself.
type Config struct {
	// Root is the directory walked for source files.
	Root string `yaml:"root"`

	// Suffixes are the recognized file-name suffixes. Matching is
	// case-sensitive and suffix-exact.
	Suffixes []string `yaml:"suffixes"`

	// ListFile is the path of the generated file list, one absolute
	// path per line. Consumed by the indexer via -i.
	ListFile string `yaml:"list_file"`

	// DatabaseFile is the cross-reference database the external tool
	// writes. Its format is opaque; cxref only reports on it.
	DatabaseFile string `yaml:"database_file"`

	// ToolPath, when non-empty, is used as the indexer binary instead
	// of any PATH or fallback lookup.
	ToolPath string `yaml:"tool_path"`

	// Exclude holds directory or file basenames skipped during
	// collection. Empty by default: every suffix match is listed.
	Exclude []string `yaml:"exclude"`
}

// Default returns the stock configuration: current directory, the
// conventional C/C++/lex/yacc suffix set, and cscope's conventional
// file names.
func Default() Config {
	return Config{
		Root:         ".",
		Suffixes:     []string{".c", ".h", ".l", ".y", ".cc", ".hh", ".cpp", ".hpp"},
		ListFile:     "cscope.files",
		DatabaseFile: "cscope.out",
	}
}

// Load builds the effective configuration: defaults, overlaid by the
// config file at path (if it exists), overlaid by the CSCOPE
// environment variable. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file; defaults apply.
	case err != nil:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if override := os.Getenv(ToolEnvVar); override != "" {
		cfg.ToolPath = override
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate rejects configurations the pipeline cannot act on.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if c.ListFile == "" {
		return fmt.Errorf("list_file must not be empty")
	}
	if len(c.Suffixes) == 0 {
		return fmt.Errorf("at least one suffix is required")
	}
	for _, s := range c.Suffixes {
		if !strings.HasPrefix(s, ".") {
			return fmt.Errorf("suffix %q must start with a dot", s)
		}
	}
	return nil
}

// LockFile is the flock path guarding database rebuilds, kept next to
// the database file.
func (c *Config) LockFile() string {
	return filepath.Join(filepath.Dir(c.DatabaseFile), ".cxref.lock")
}

// DatabaseFiles returns every file the external tool writes for this
// configuration. With fast lookup enabled it maintains two auxiliary
// indexes alongside the main database.
func (c *Config) DatabaseFiles() []string {
	base := strings.TrimSuffix(c.DatabaseFile, ".out")
	return []string{
		c.DatabaseFile,
		base + ".in.out",
		base + ".po.out",
	}
}
