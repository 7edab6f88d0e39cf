// Package history mirrors the task store into a key-value store as a
// canonical snapshot plus a retention-pruned history of timestamped
// snapshots, and picks the best source to repopulate the store on startup.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/metrics"
	"github.com/randalmurphal/gantt/internal/storage"
	"github.com/randalmurphal/gantt/internal/task"
)

// Storage keys. They match the layout older exports and browsers used, so
// data moved into a KV store stays readable.
const (
	CanonicalKey = "gantt-chart-tasks"
	HistoryKey   = CanonicalKey + "-history"
	IndexKey     = HistoryKey + "-index"
	blobPrefix   = HistoryKey + "-"
)

// DefaultRetention is how far back history entries are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Source identifies where Load found its tasks.
type Source string

const (
	SourceHistory   Source = "history"
	SourceCanonical Source = "canonical"
	SourceDefault   Source = "default"
)

// LoadResult is the outcome of startup resolution.
type LoadResult struct {
	Tasks  []task.Task
	Source Source
	// Entry is the history entry used when Source is SourceHistory.
	Entry Entry
}

// Manager persists task snapshots. It implements task.Mirror.
type Manager struct {
	kv        storage.KV
	now       func() time.Time
	retention time.Duration
	logger    *slog.Logger
	observer  metrics.Observer
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used to stamp and prune entries.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithRetention sets the history window. Non-positive values are ignored.
func WithRetention(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.retention = d
		}
	}
}

// WithLogger sets the logger for soft failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver sets the metrics observer.
func WithObserver(o metrics.Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

// NewManager creates a Manager over kv.
func NewManager(kv storage.KV, opts ...Option) *Manager {
	m := &Manager{
		kv:        kv,
		now:       time.Now,
		retention: DefaultRetention,
		logger:    slog.Default(),
		observer:  metrics.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mirror records tasks after a store mutation. A non-empty store is written
// as the canonical snapshot and appended to history; an empty store removes
// the canonical snapshot and leaves history alone.
func (m *Manager) Mirror(ctx context.Context, tasks []task.Task) (err error) {
	start := time.Now()
	defer func() { m.observer.RecordMirror(time.Since(start), len(tasks), err) }()

	if len(tasks) == 0 {
		if err := m.kv.Delete(ctx, CanonicalKey); err != nil {
			return fmt.Errorf("delete canonical snapshot: %w", err)
		}
		return nil
	}

	data, err := task.MarshalSnapshot(tasks)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := m.kv.Set(ctx, CanonicalKey, data); err != nil {
		return fmt.Errorf("write canonical snapshot: %w", err)
	}

	now := m.now().UTC()
	entry := newEntry(now)

	index, err := m.readIndex(ctx)
	if err != nil {
		return err
	}
	index = slices.DeleteFunc(index, func(e Entry) bool { return e.Key == entry.Key })
	index = append(index, entry)

	kept, evicted := partition(index, now.Add(-m.retention))
	for _, e := range evicted {
		if err := m.kv.Delete(ctx, e.Key); err != nil {
			m.logger.Warn("evict history snapshot", "key", e.Key, "error", err)
		}
	}
	m.observer.RecordEvictions(len(evicted))

	// Blob before index so the index never names a missing snapshot.
	if err := m.kv.Set(ctx, entry.Key, data); err != nil {
		return fmt.Errorf("write history snapshot: %w", err)
	}
	if err := m.writeIndex(ctx, kept); err != nil {
		return err
	}
	return nil
}

// Load resolves the startup task list: the newest history entry inside the
// retention window, else the canonical snapshot, else the built-in defaults.
// Candidates that fail to parse or lack required fields are skipped.
func (m *Manager) Load(ctx context.Context) (LoadResult, error) {
	res, err := m.load(ctx)
	if err == nil {
		m.observer.RecordLoad(string(res.Source))
	}
	return res, err
}

func (m *Manager) load(ctx context.Context) (LoadResult, error) {
	index, err := m.readIndex(ctx)
	if err != nil {
		return LoadResult{}, err
	}
	kept, _ := partition(index, m.now().UTC().Add(-m.retention))
	if len(kept) > 0 {
		latest := kept[len(kept)-1]
		tasks, err := m.Snapshot(ctx, latest)
		switch {
		case err == nil:
			return LoadResult{Tasks: tasks, Source: SourceHistory, Entry: latest}, nil
		case gerrors.HasCode(err, gerrors.CodeParse), gerrors.HasCode(err, gerrors.CodeHistoryMissing):
			m.logger.Warn("skip history snapshot", "key", latest.Key, "error", err)
		default:
			return LoadResult{}, err
		}
	}

	data, err := m.kv.Get(ctx, CanonicalKey)
	switch {
	case err == nil:
		tasks, perr := task.UnmarshalSnapshot(data)
		if perr == nil {
			return LoadResult{Tasks: tasks, Source: SourceCanonical}, nil
		}
		m.logger.Warn("skip canonical snapshot", "key", CanonicalKey, "error", perr)
	case errors.Is(err, storage.ErrNotFound):
	default:
		return LoadResult{}, gerrors.ErrStorage("read canonical snapshot", err)
	}

	return LoadResult{Tasks: task.DefaultTasks(), Source: SourceDefault}, nil
}

// List returns every indexed history entry, newest first.
func (m *Manager) List(ctx context.Context) ([]Entry, error) {
	index, err := m.readIndex(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(index)
	return index, nil
}

// Snapshot loads and shape-checks the tasks stored for e.
func (m *Manager) Snapshot(ctx context.Context, e Entry) ([]task.Task, error) {
	data, err := m.kv.Get(ctx, e.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, gerrors.ErrHistoryMissing(e.Key)
	}
	if err != nil {
		return nil, gerrors.ErrStorage("read history snapshot", err)
	}
	return task.UnmarshalSnapshot(data)
}
