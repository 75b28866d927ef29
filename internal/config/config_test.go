package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != ".mchat/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, ".mchat/logs")
	}
	if cfg.PositiveThreshold != 2 {
		t.Errorf("PositiveThreshold = %d, want 2", cfg.PositiveThreshold)
	}
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "markdown", cfg.Report.Format)
	assert.Empty(t, cfg.Instrument)
	assert.NoError(t, cfg.Validate())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfigValidFile(t *testing.T) {
	path := writeConfig(t, `log_level: debug
log_dir: /tmp/mchat-logs
instrument: items.md
positive_threshold: 3
store:
  backend: sqlite
report:
  format: html
  path: out/report.html
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/mchat-logs", cfg.LogDir)
	assert.Equal(t, "items.md", cfg.Instrument)
	assert.Equal(t, 3, cfg.PositiveThreshold)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "html", cfg.Report.Format)
	assert.Equal(t, "out/report.html", cfg.Report.Path)
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "log_level: warn\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ".mchat/logs", cfg.LogDir)
	assert.Equal(t, 2, cfg.PositiveThreshold)
	assert.Equal(t, "memory", cfg.Store.Backend)
}

func TestLoadConfigExplicitZeroThreshold(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "positive_threshold: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.PositiveThreshold)
	assert.Error(t, cfg.Validate())
}

func TestLoadConfigMalformed(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "log_level: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".mchat"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mchat", "config.yaml"), []byte("log_level: error\n"), 0644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "trace"
	backend := "sqlite"
	reportPath := "r.md"

	cfg.MergeWithFlags(&level, nil, nil, &backend, &reportPath, nil)

	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, ".mchat/logs", cfg.LogDir, "nil flags leave config alone")
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "r.md", cfg.Report.Path)
	assert.Equal(t, "markdown", cfg.Report.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"threshold below one", func(c *Config) { c.PositiveThreshold = 0 }, "positive_threshold must be >= 1"},
		{"bad backend", func(c *Config) { c.Store.Backend = "postgres" }, "invalid store.backend"},
		{"bad report format", func(c *Config) { c.Report.Format = "pdf" }, "invalid report.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetHome(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		home := filepath.Join(t.TempDir(), "custom")
		t.Setenv(HomeEnv, home)

		got, err := GetHome()
		require.NoError(t, err)
		assert.Equal(t, home, got)
		assert.DirExists(t, home)

		logDir, err := GetLogDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "logs"), logDir)
	})

	t.Run("working directory fallback", func(t *testing.T) {
		t.Setenv(HomeEnv, "")
		dir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		got, err := GetHome()
		require.NoError(t, err)
		assert.Equal(t, ".mchat", filepath.Base(got))
		assert.DirExists(t, filepath.Join(dir, ".mchat"))
	})
}

func TestLoadFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv(HomeEnv, home)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("positive_threshold: 4\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.PositiveThreshold)
}
