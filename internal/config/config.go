// Package config provides configuration for gantt.
package config

import (
	"fmt"
	"time"

	"github.com/randalmurphal/gantt/internal/db/driver"
	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

const (
	// GanttDir is the default configuration directory.
	GanttDir = ".gantt"
	// ConfigName is the config file name without extension.
	ConfigName = "gantt"
	// EnvPrefix prefixes environment overrides (GANTT_STORAGE_BACKEND, ...).
	EnvPrefix = "GANTT"
)

// Display languages. The language picks spreadsheet headers and decides
// which column alias is tried first on import.
const (
	LanguageJapanese = "ja"
	LanguageEnglish  = "en"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DefaultRetention is how long history snapshots are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Config is the complete gantt configuration.
type Config struct {
	Language  string        `yaml:"language" mapstructure:"language"`
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`
	Storage   StorageConfig `yaml:"storage" mapstructure:"storage"`
	Metrics   MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// MarshalYAML writes Retention as a duration string ("720h0m0s") rather
// than a count of nanoseconds.
func (c Config) MarshalYAML() (any, error) {
	return struct {
		Language  string        `yaml:"language"`
		Retention string        `yaml:"retention"`
		Storage   StorageConfig `yaml:"storage"`
		Metrics   MetricsConfig `yaml:"metrics"`
	}{c.Language, c.Retention.String(), c.Storage, c.Metrics}, nil
}

// StorageConfig selects and locates the key-value backend.
type StorageConfig struct {
	// Backend is memory, file, or a SQL dialect name (sqlite, sqlite3,
	// postgres, postgresql, pg).
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Path is the directory for file and the database file for sqlite.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// MetricsConfig controls the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
	// Textfile is where the CLI writes the registry after each command, in
	// the node_exporter textfile format.
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Language:  LanguageJapanese,
		Retention: DefaultRetention,
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    GanttDir + "/gantt.db",
		},
		Metrics: MetricsConfig{
			Namespace: "gantt",
			Textfile:  GanttDir + "/metrics.prom",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Language {
	case LanguageJapanese, LanguageEnglish:
	default:
		return gerrors.ErrConfigInvalid("language", fmt.Sprintf("must be %q or %q, got %q", LanguageJapanese, LanguageEnglish, c.Language))
	}
	if c.Retention <= 0 {
		return gerrors.ErrConfigInvalid("retention", "must be a positive duration")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Storage.Path == "" {
			return gerrors.ErrConfigInvalid("storage.path", "required for the file backend")
		}
	default:
		// SQL backends accept the driver's dialect aliases (sqlite3, pg, ...).
		dialect, err := driver.ParseDialect(c.Storage.Backend)
		if err != nil {
			return gerrors.ErrConfigInvalid("storage.backend", fmt.Sprintf("unknown backend %q", c.Storage.Backend))
		}
		if dialect == driver.DialectPostgres && c.Storage.DSN == "" {
			return gerrors.ErrConfigInvalid("storage.dsn", "required for the postgres backend")
		}
		if dialect == driver.DialectSQLite && c.Storage.Path == "" {
			return gerrors.ErrConfigInvalid("storage.path", "required for the sqlite backend")
		}
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return gerrors.ErrConfigInvalid("metrics.namespace", "required when metrics are enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return gerrors.ErrConfigInvalid("metrics.textfile", "required when metrics are enabled")
	}
	return nil
}
