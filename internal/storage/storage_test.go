package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/gantt/internal/config"
)

// adapters returns a fresh instance of every KV implementation.
func adapters(t *testing.T) map[string]KV {
	t.Helper()
	fkv, err := NewFileKV(filepath.Join(t.TempDir(), "kv"))
	require.NoError(t, err)
	return map[string]KV{
		"memory": NewMemory(),
		"file":   fkv,
		"sqlite": NewTestKV(t),
	}
}

func TestKV_Contract(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, kv := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			_, err := kv.Get(ctx, "gantt-chart-tasks")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, kv.Set(ctx, "gantt-chart-tasks", []byte(`[]`)))
			got, err := kv.Get(ctx, "gantt-chart-tasks")
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(got))

			require.NoError(t, kv.Set(ctx, "gantt-chart-tasks", []byte(`[{"id":"task-1"}]`)))
			got, err = kv.Get(ctx, "gantt-chart-tasks")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"task-1"}]`, string(got), "set overwrites")

			require.NoError(t, kv.Delete(ctx, "gantt-chart-tasks"))
			_, err = kv.Get(ctx, "gantt-chart-tasks")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.NoError(t, kv.Delete(ctx, "gantt-chart-tasks"), "absent delete is a no-op")
		})
	}
}

func TestKV_List(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	keys := []string{
		"gantt-chart-tasks-history-2025-07-02T00:00:00Z",
		"gantt-chart-tasks",
		"gantt-chart-tasks-history-2025-07-01T00:00:00Z",
		"gantt-chart-tasks-history-index",
		"other/with slash",
	}

	for name, kv := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			for _, k := range keys {
				require.NoError(t, kv.Set(ctx, k, []byte("x")))
			}

			got, err := kv.List(ctx, "gantt-chart-tasks-history-")
			require.NoError(t, err)
			assert.Equal(t, []string{
				"gantt-chart-tasks-history-2025-07-01T00:00:00Z",
				"gantt-chart-tasks-history-2025-07-02T00:00:00Z",
				"gantt-chart-tasks-history-index",
			}, got)

			all, err := kv.List(ctx, "")
			require.NoError(t, err)
			assert.Len(t, all, len(keys))
			assert.Contains(t, all, "other/with slash")

			none, err := kv.List(ctx, "missing-")
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	v := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", v))
	v[0] = 'z'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	got[0] = 'y'

	again, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFileKV_IgnoresTempFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	f, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("partial"), 0644))
	require.NoError(t, f.Set(ctx, "gantt-chart-tasks", []byte("[]")))

	keys, err := f.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"gantt-chart-tasks"}, keys)
}

func TestFileKV_PersistsAcrossOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	f, err := NewFileKV(dir)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "a/b", []byte("1")))

	reopened, err := NewFileKV(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "a/b")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))

	_, err = NewFileKV("")
	assert.Error(t, err)
}

func TestSQLKV_PersistsToFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "gantt.db")

	kv, err := Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, Path: path})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "gantt-chart-tasks", []byte("[]")))
	require.NoError(t, kv.Close())

	kv, err = Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, Path: path})
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	got, err := kv.Get(ctx, "gantt-chart-tasks")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestOpen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	kv, err := Open(ctx, config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, kv)

	kv, err = Open(ctx, config.StorageConfig{Backend: config.BackendFile, Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	_, err = Open(ctx, config.StorageConfig{Backend: "redis"})
	assert.Error(t, err)
}

func TestOpen_AcceptsDialectAliases(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	kv, err := Open(ctx, config.StorageConfig{Backend: "sqlite3", Path: filepath.Join(t.TempDir(), "gantt.db")})
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()
	assert.IsType(t, &SQLKV{}, kv)
}
