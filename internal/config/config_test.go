package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	cfg := Default()

	assert.Equal(t, LanguageJapanese, cfg.Language)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
	assert.False(t, cfg.Metrics.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown language", func(c *Config) { c.Language = "fr" }, "language"},
		{"zero retention", func(c *Config) { c.Retention = 0 }, "retention"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"sqlite without path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"file without path", func(c *Config) { c.Storage.Backend = BackendFile; c.Storage.Path = "" }, "storage.path"},
		{"postgres without dsn", func(c *Config) { c.Storage.Backend = BackendPostgres }, "storage.dsn"},
		{"pg alias without dsn", func(c *Config) { c.Storage.Backend = "pg" }, "storage.dsn"},
		{"metrics without namespace", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }, "metrics.namespace"},
		{"metrics without textfile", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Textfile = "" }, "metrics.textfile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, gerrors.HasCode(err, gerrors.CodeConfigInvalid))
			assert.Contains(t, err.Error(), tt.field)
		})
	}

	mem := Default()
	mem.Storage = StorageConfig{Backend: BackendMemory}
	assert.NoError(t, mem.Validate(), "memory needs no location")

	alias := Default()
	alias.Storage.Backend = "sqlite3"
	assert.NoError(t, alias.Validate(), "dialect aliases name SQL backends")
}

func TestSaveAndLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "gantt.yaml")

	cfg := Default()
	cfg.Language = LanguageEnglish
	cfg.Retention = 48 * time.Hour
	cfg.Storage = StorageConfig{Backend: BackendFile, Path: "/var/lib/gantt"}
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_WritesRetentionAsDuration(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "gantt.yaml")

	cfg := Default()
	cfg.Retention = 90 * time.Minute
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "retention: 1h30m0s")
	assert.NotContains(t, string(data), "5400000000000")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, loaded.Retention)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "gantt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: en\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LanguageEnglish, cfg.Language)
	assert.Equal(t, DefaultRetention, cfg.Retention)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
}

func TestLoad_InvalidFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage:\n  backend: redis\n"), 0644))
	_, err := Load(bad)
	assert.True(t, gerrors.HasCode(err, gerrors.CodeConfigInvalid))

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GANTT_STORAGE_BACKEND", BackendMemory)
	t.Setenv("GANTT_RETENTION", "72h")
	path := filepath.Join(t.TempDir(), "gantt.yaml")
	require.NoError(t, Save(Default(), path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, 72*time.Hour, cfg.Retention)
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultPath())

	require.NoError(t, WriteDefault(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "retention: 720h0m0s")
}
