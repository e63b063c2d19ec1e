package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Root)
	assert.Equal(t, "cscope.files", cfg.ListFile)
	assert.Equal(t, "cscope.out", cfg.DatabaseFile)
	assert.Contains(t, cfg.Suffixes, ".c")
	assert.Contains(t, cfg.Suffixes, ".hpp")
	assert.Empty(t, cfg.ToolPath)
	assert.Empty(t, cfg.Exclude)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(ToolEnvVar, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Suffixes, cfg.Suffixes)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(ToolEnvVar, "")

	path := filepath.Join(t.TempDir(), ".cxref.yaml")
	content := `
root: src
suffixes: [".c", ".h"]
list_file: files.list
exclude: [vendor, third_party]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Root)
	assert.Equal(t, []string{".c", ".h"}, cfg.Suffixes)
	assert.Equal(t, "files.list", cfg.ListFile)
	assert.Equal(t, []string{"vendor", "third_party"}, cfg.Exclude)
	// Untouched keys keep defaults.
	assert.Equal(t, "cscope.out", cfg.DatabaseFile)
}

func TestLoad_EnvOverridesToolPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cxref.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tool_path: /opt/cscope\n"), 0o644))

	t.Setenv(ToolEnvVar, "/env/cscope")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/cscope", cfg.ToolPath)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cxref.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [unclosed\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid default",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty root",
			mutate:  func(c *Config) { c.Root = "" },
			wantErr: "root",
		},
		{
			name:    "empty list file",
			mutate:  func(c *Config) { c.ListFile = "" },
			wantErr: "list_file",
		},
		{
			name:    "no suffixes",
			mutate:  func(c *Config) { c.Suffixes = nil },
			wantErr: "suffix",
		},
		{
			name:    "suffix without dot",
			mutate:  func(c *Config) { c.Suffixes = []string{"c"} },
			wantErr: "must start with a dot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseFiles(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"cscope.out", "cscope.in.out", "cscope.po.out"}, cfg.DatabaseFiles())

	cfg.DatabaseFile = filepath.Join("build", "xref.out")
	assert.Equal(t, []string{
		filepath.Join("build", "xref.out"),
		filepath.Join("build", "xref.in.out"),
		filepath.Join("build", "xref.po.out"),
	}, cfg.DatabaseFiles())
}

func TestLockFile(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ".cxref.lock", cfg.LockFile())

	cfg.DatabaseFile = filepath.Join("build", "cscope.out")
	assert.Equal(t, filepath.Join("build", ".cxref.lock"), cfg.LockFile())
}
