// Package chart composes the task store, its persisted history and the
// spreadsheet codec into one session, and serializes imports and restores.
package chart

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/history"
	"github.com/randalmurphal/gantt/internal/interchange"
	"github.com/randalmurphal/gantt/internal/layout"
	"github.com/randalmurphal/gantt/internal/metrics"
	"github.com/randalmurphal/gantt/internal/storage"
	"github.com/randalmurphal/gantt/internal/task"
)

// Chart is one editing session over a key-value store.
type Chart struct {
	store    *task.Store
	history  *history.Manager
	decoder  *interchange.Decoder
	guard    *semaphore.Weighted
	lang     string
	now      func() time.Time
	logger   *slog.Logger
	observer metrics.Observer
	source   history.Source
}

type options struct {
	lang      string
	now       func() time.Time
	retention time.Duration
	logger    *slog.Logger
	observer  metrics.Observer
	newID     task.IDFunc
}

// Option configures a Chart.
type Option func(*options)

// WithLanguage sets the display language for exports and import headers.
func WithLanguage(lang string) Option {
	return func(o *options) { o.lang = lang }
}

// WithClock sets the time source for history and exports.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRetention sets the history window.
func WithRetention(d time.Duration) Option {
	return func(o *options) { o.retention = d }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver sets the metrics observer.
func WithObserver(obs metrics.Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithIDFunc sets the id generator for added tasks.
func WithIDFunc(fn task.IDFunc) Option {
	return func(o *options) { o.newID = fn }
}

// Open loads the best available task list from kv and starts a session.
// The loaded list is mirrored back like any other replacement.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Chart, error) {
	o := options{
		lang:      interchange.LanguageJapanese,
		now:       time.Now,
		retention: history.DefaultRetention,
		logger:    slog.Default(),
		observer:  metrics.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := history.NewManager(kv,
		history.WithClock(o.now),
		history.WithRetention(o.retention),
		history.WithLogger(o.logger),
		history.WithObserver(o.observer),
	)
	storeOpts := []task.StoreOption{task.WithMirror(m), task.WithLogger(o.logger)}
	if o.newID != nil {
		storeOpts = append(storeOpts, task.WithIDFunc(o.newID))
	}

	c := &Chart{
		store:   task.NewStore(storeOpts...),
		history: m,
		decoder: interchange.NewDecoder(
			interchange.WithLanguage(o.lang),
			interchange.WithLogger(o.logger),
		),
		guard:    semaphore.NewWeighted(1),
		lang:     o.lang,
		now:      o.now,
		logger:   o.logger,
		observer: o.observer,
	}

	res, err := m.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if err := c.store.ReplaceAll(ctx, res.Tasks); err != nil {
		return nil, fmt.Errorf("load tasks from %s: %w", res.Source, err)
	}
	c.source = res.Source
	c.logger.Debug("chart opened", "source", res.Source, "tasks", len(res.Tasks))
	return c, nil
}

// Source reports where Open found the tasks.
func (c *Chart) Source() history.Source {
	return c.source
}

// Tasks returns a copy of the current task list.
func (c *Chart) Tasks() []task.Task {
	return c.store.Tasks()
}

// Get returns a copy of one task.
func (c *Chart) Get(id string) (task.Task, bool) {
	return c.store.Get(id)
}

// Timeline lays out the current tasks at now.
func (c *Chart) Timeline(now time.Time) layout.Timeline {
	return layout.Compute(c.store.Tasks(), now)
}

// Language returns the display language.
func (c *Chart) Language() string {
	return c.lang
}

// exclusive runs fn while holding the in-flight guard, failing fast when an
// import or restore already holds it.
func (c *Chart) exclusive(op string, fn func() error) error {
	if !c.guard.TryAcquire(1) {
		return gerrors.ErrBusy(op)
	}
	defer c.guard.Release(1)
	return fn()
}

// Add creates a task.
func (c *Chart) Add(ctx context.Context, t task.Task) (task.Task, error) {
	var out task.Task
	err := c.exclusive("add task", func() (err error) {
		out, err = c.store.Add(ctx, t)
		return err
	})
	return out, err
}

// Update replaces a task's fields.
func (c *Chart) Update(ctx context.Context, id string, t task.Task) (task.Task, error) {
	var out task.Task
	err := c.exclusive("update task", func() (err error) {
		out, err = c.store.Update(ctx, id, t)
		return err
	})
	return out, err
}

// Patch edits individual fields of a task.
func (c *Chart) Patch(ctx context.Context, id string, p task.TaskPatch) (task.Task, error) {
	var out task.Task
	err := c.exclusive("edit task", func() (err error) {
		out, err = c.store.Patch(ctx, id, p)
		return err
	})
	return out, err
}

// Delete removes a task.
func (c *Chart) Delete(ctx context.Context, id string) error {
	return c.exclusive("delete task", func() error {
		return c.store.Delete(ctx, id)
	})
}

// SetCellOverride edits one day cell of a task.
func (c *Chart) SetCellOverride(ctx context.Context, taskID, date string, p task.OverridePatch) error {
	return c.exclusive("edit cell", func() error {
		return c.store.SetCellOverride(ctx, taskID, date, p)
	})
}

// Clear removes every task. History is kept.
func (c *Chart) Clear(ctx context.Context) error {
	return c.exclusive("clear tasks", func() error {
		return c.store.Clear(ctx)
	})
}

// Export writes the current tasks as an xlsx workbook.
func (c *Chart) Export(ctx context.Context, w io.Writer) (err error) {
	start := time.Now()
	defer func() { c.observer.RecordExport(time.Since(start), err) }()

	wb, err := interchange.Encode(c.store.Tasks(), c.now(), interchange.Options{Language: c.lang})
	if err != nil {
		return err
	}
	return interchange.WriteXLSX(w, wb)
}

// ExportFileName is the suggested name for an export made now.
func (c *Chart) ExportFileName() string {
	return interchange.FileName(c.now(), c.lang)
}
