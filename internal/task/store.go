package task

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// Mirror receives the full task list after every successful mutation.
// It is called synchronously, before the mutating call returns.
type Mirror interface {
	Mirror(ctx context.Context, tasks []Task) error
}

// TaskPatch carries the fields of an edit. Nil fields are left unchanged.
type TaskPatch struct {
	Name           *string
	StartDate      *string
	EndDate        *string
	FirstProofDate *string
	FinalProofDate *string
	Color          *string
}

// OverridePatch carries a cell edit. Nil fields are left unchanged.
type OverridePatch struct {
	Text  *string
	Color *string
}

// Store is the authoritative in-memory task list of one session.
type Store struct {
	mu     sync.RWMutex
	tasks  []Task
	mirror Mirror
	newID  IDFunc
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMirror sets the persistence hook run after each mutation.
func WithMirror(m Mirror) StoreOption {
	return func(s *Store) { s.mirror = m }
}

// WithIDFunc overrides id generation for Add.
func WithIDFunc(fn IDFunc) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{newID: NewTaskID}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Tasks returns a deep copy of the current tasks in order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns a copy of the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return Task{}, false
}

// Add validates t, assigns it a new id and appends it.
func (s *Store) Add(ctx context.Context, t Task) (Task, error) {
	if err := Validate(t); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t = normalize(t)
	t.ID = s.newID()
	for s.index(t.ID) >= 0 {
		t.ID = s.newID()
	}
	s.tasks = append(s.tasks, t)
	return t.Clone(), s.mirrorLocked(ctx, "add")
}

// Update replaces the task with the given id wholesale. The id is kept.
func (s *Store) Update(ctx context.Context, id string, t Task) (Task, error) {
	if err := Validate(t); err != nil {
		return Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return Task{}, gerrors.ErrTaskNotFound(id)
	}
	t = normalize(t)
	t.ID = id
	s.tasks[i] = t
	return t.Clone(), s.mirrorLocked(ctx, "update")
}

// Patch applies the non-nil fields of p and then behaves like Update.
func (s *Store) Patch(ctx context.Context, id string, p TaskPatch) (Task, error) {
	cur, ok := s.Get(id)
	if !ok {
		return Task{}, gerrors.ErrTaskNotFound(id)
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&cur.Name, p.Name)
	apply(&cur.StartDate, p.StartDate)
	apply(&cur.EndDate, p.EndDate)
	apply(&cur.FirstProofDate, p.FirstProofDate)
	apply(&cur.FinalProofDate, p.FinalProofDate)
	apply(&cur.Color, p.Color)
	return s.Update(ctx, id, cur)
}

// Delete removes the task with the given id. An unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	return s.mirrorLocked(ctx, "delete")
}

// SetCellOverride creates or updates the override for one day of a task.
// The day may lie outside the task's range. An override left with neither
// text nor color is removed.
func (s *Store) SetCellOverride(ctx context.Context, taskID, date string, p OverridePatch) error {
	if _, err := ParseDate(date); err != nil {
		return gerrors.ErrValidation("date", "cell date must be YYYY-MM-DD")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(taskID)
	if i < 0 {
		return gerrors.ErrTaskNotFound(taskID)
	}
	t := s.tasks[i].Clone()
	c := t.Cells[date]
	if p.Text != nil {
		c.Text = *p.Text
	}
	if p.Color != nil {
		c.Color = *p.Color
	}
	if c.IsZero() {
		delete(t.Cells, date)
	} else {
		t.Cells[date] = c
	}
	s.tasks[i] = t
	return s.mirrorLocked(ctx, "cell")
}

// ReplaceAll swaps in a whole new task list. Fields are not validated, the
// caller is expected to have done so, but a repeated id rejects the batch and
// leaves the store untouched.
func (s *Store) ReplaceAll(ctx context.Context, tasks []Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, dup := seen[t.ID]; dup {
			return gerrors.ErrDuplicateID(t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	next := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		next = append(next, normalize(t))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = next
	return s.mirrorLocked(ctx, "replace")
}

// Clear removes every task.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
	return s.mirrorLocked(ctx, "clear")
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.tasks, func(t Task) bool { return t.ID == id })
}

// mirrorLocked hands the post-mutation state to the mirror. Callers hold mu,
// so snapshots reach the mirror in mutation order.
func (s *Store) mirrorLocked(ctx context.Context, op string) error {
	if s.mirror == nil {
		return nil
	}
	if err := s.mirror.Mirror(ctx, cloneAll(s.tasks)); err != nil {
		s.logger.Warn("mirror task store", "op", op, "error", err)
		return gerrors.ErrStorage("mirror "+op, err)
	}
	return nil
}

func normalize(t Task) Task {
	t = t.Clone()
	if t.Color == "" {
		t.Color = DefaultColor
	}
	return t
}

func cloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
