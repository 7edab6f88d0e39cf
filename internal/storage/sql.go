package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"

	"github.com/randalmurphal/gantt/internal/db/driver"
)

//go:embed schema
var schemaFS embed.FS

// SQLKV keeps keys in a single kv table over SQLite or PostgreSQL.
type SQLKV struct {
	drv    driver.Driver
	upsert string
	get    string
	del    string
	list   string
}

// OpenSQL opens the database named by dsn and applies the kv schema.
// For SQLite dsn is a file path or ":memory:".
func OpenSQL(ctx context.Context, dialect driver.Dialect, dsn string) (*SQLKV, error) {
	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}
	if dialect == driver.DialectSQLite && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	if err := drv.Open(dsn); err != nil {
		return nil, err
	}
	if err := drv.Migrate(ctx, schemaFS, "kv"); err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("migrate kv schema: %w", err)
	}
	return newSQLKV(drv), nil
}

func newSQLKV(drv driver.Driver) *SQLKV {
	p := drv.Placeholder
	now := "datetime('now')"
	if drv.Dialect() == driver.DialectPostgres {
		now = "now()"
	}
	return &SQLKV{
		drv: drv,
		upsert: fmt.Sprintf(`INSERT INTO kv (key, value) VALUES (%s, %s)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = %s`, p(1), p(2), now),
		get:  fmt.Sprintf("SELECT value FROM kv WHERE key = %s", p(1)),
		del:  fmt.Sprintf("DELETE FROM kv WHERE key = %s", p(1)),
		list: fmt.Sprintf("SELECT key FROM kv WHERE substr(key, 1, %s) = %s", p(1), p(2)),
	}
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.drv.QueryRow(ctx, s.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.drv.Exec(ctx, s.upsert, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Delete(ctx context.Context, key string) error {
	if _, err := s.drv.Exec(ctx, s.del, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// List filters by prefix in SQL and sorts in Go, since PostgreSQL's default
// collation does not order by byte value.
func (s *SQLKV) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.drv.Query(ctx, s.list, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys: %w", err)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *SQLKV) Close() error {
	return s.drv.Close()
}
