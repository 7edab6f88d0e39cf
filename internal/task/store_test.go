package task

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// recordingMirror captures every snapshot handed to it.
type recordingMirror struct {
	snapshots [][]Task
	err       error
}

func (m *recordingMirror) Mirror(_ context.Context, tasks []Task) error {
	m.snapshots = append(m.snapshots, tasks)
	return m.err
}

func (m *recordingMirror) last() []Task {
	return m.snapshots[len(m.snapshots)-1]
}

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T) (*Store, *recordingMirror) {
	t.Helper()
	m := &recordingMirror{}
	return NewStore(WithMirror(m), WithIDFunc(sequentialIDs())), m
}

func TestStore_Add(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m := newTestStore(t)

	got, err := s.Add(ctx, Task{Name: "plan", StartDate: "2025-07-01", EndDate: "2025-07-05"})
	require.NoError(t, err)
	assert.Equal(t, "task-1", got.ID)
	assert.Equal(t, DefaultColor, got.Color)
	assert.NotNil(t, got.Cells)

	_, err = s.Add(ctx, Task{Name: "bad", StartDate: "2025-07-06", EndDate: "2025-07-05"})
	require.Error(t, err)
	assert.True(t, gerrors.HasCode(err, gerrors.CodeValidation))

	assert.Equal(t, 1, s.Len())
	require.Len(t, m.snapshots, 1, "rejected add must not mirror")
	assert.Equal(t, "task-1", m.last()[0].ID)
}

func TestStore_AddRegeneratesCollidingID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ids := []string{"dup", "dup", "fresh"}
	s := NewStore(WithIDFunc(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first, err := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	require.NoError(t, err)
	second, err := s.Add(ctx, Task{Name: "b", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	require.NoError(t, err)
	assert.Equal(t, "dup", first.ID)
	assert.Equal(t, "fresh", second.ID)
}

func TestStore_Update(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m := newTestStore(t)
	added, err := s.Add(ctx, Task{Name: "plan", StartDate: "2025-07-01", EndDate: "2025-07-05"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, added.ID, Task{ID: "ignored", Name: "plan v2", StartDate: "2025-07-02", EndDate: "2025-07-09", Color: "#000000"})
	require.NoError(t, err)
	assert.Equal(t, added.ID, updated.ID)
	assert.Equal(t, "plan v2", updated.Name)

	_, err = s.Update(ctx, "missing", Task{Name: "x", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeTaskNotFound))

	_, err = s.Update(ctx, added.ID, Task{Name: "", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeValidation))

	got, ok := s.Get(added.ID)
	require.True(t, ok)
	assert.Equal(t, "plan v2", got.Name)
	assert.Len(t, m.snapshots, 2)
}

func TestStore_Patch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	added, err := s.Add(ctx, Task{Name: "plan", StartDate: "2025-07-01", EndDate: "2025-07-05"})
	require.NoError(t, err)

	got, err := s.Patch(ctx, added.ID, TaskPatch{EndDate: strPtr("2025-07-10"), FirstProofDate: strPtr("2025-07-03")})
	require.NoError(t, err)
	assert.Equal(t, "plan", got.Name)
	assert.Equal(t, "2025-07-10", got.EndDate)
	assert.Equal(t, "2025-07-03", got.FirstProofDate)

	_, err = s.Patch(ctx, added.ID, TaskPatch{StartDate: strPtr("2025-08-01")})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeValidation))

	_, err = s.Patch(ctx, "nope", TaskPatch{})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeTaskNotFound))
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m := newTestStore(t)
	a, _ := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	_, _ = s.Add(ctx, Task{Name: "b", StartDate: "2025-07-01", EndDate: "2025-07-01"})

	require.NoError(t, s.Delete(ctx, a.ID))
	assert.Equal(t, 1, s.Len())
	assert.Len(t, m.snapshots, 3)

	require.NoError(t, s.Delete(ctx, "missing"))
	assert.Len(t, m.snapshots, 3, "deleting an unknown id is a no-op")
}

func TestStore_SetCellOverride(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	a, _ := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-10"})

	require.NoError(t, s.SetCellOverride(ctx, a.ID, "2025-07-03", OverridePatch{Text: strPtr("review")}))
	require.NoError(t, s.SetCellOverride(ctx, a.ID, "2025-07-03", OverridePatch{Color: strPtr("#FF0000")}))
	// Outside the range is allowed.
	require.NoError(t, s.SetCellOverride(ctx, a.ID, "2025-09-01", OverridePatch{Text: strPtr("later")}))

	got, _ := s.Get(a.ID)
	assert.Equal(t, CellOverride{Text: "review", Color: "#FF0000"}, got.Cells["2025-07-03"])
	assert.Equal(t, "later", got.Cells["2025-09-01"].Text)

	require.NoError(t, s.SetCellOverride(ctx, a.ID, "2025-09-01", OverridePatch{Text: strPtr("")}))
	got, _ = s.Get(a.ID)
	assert.NotContains(t, got.Cells, "2025-09-01")

	err := s.SetCellOverride(ctx, "missing", "2025-07-03", OverridePatch{Text: strPtr("x")})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeTaskNotFound))
	err = s.SetCellOverride(ctx, a.ID, "July 3", OverridePatch{Text: strPtr("x")})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeValidation))
}

func TestStore_ShrinkKeepsOrphanedOverrides(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	a, _ := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-10"})
	require.NoError(t, s.SetCellOverride(ctx, a.ID, "2025-07-09", OverridePatch{Text: strPtr("late")}))

	_, err := s.Patch(ctx, a.ID, TaskPatch{EndDate: strPtr("2025-07-05")})
	require.NoError(t, err)

	got, _ := s.Get(a.ID)
	assert.Equal(t, "late", got.Cells["2025-07-09"].Text)
}

func TestStore_ReplaceAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m := newTestStore(t)
	_, _ = s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})

	// Field validation is skipped.
	replacement := []Task{
		{ID: "x", Name: "x", StartDate: "2025-07-05", EndDate: "2025-07-01"},
		{ID: "y", Name: "y", StartDate: "2025-07-01", EndDate: "2025-07-02"},
	}
	require.NoError(t, s.ReplaceAll(ctx, replacement))
	assert.Equal(t, 2, s.Len())
	assert.Len(t, m.last(), 2)

	err := s.ReplaceAll(ctx, []Task{{ID: "z"}, {ID: "z"}})
	assert.True(t, gerrors.HasCode(err, gerrors.CodeDuplicateID))
	assert.Equal(t, []string{"x", "y"}, ids(s.Tasks()), "store unchanged after rejected batch")
	assert.Len(t, m.snapshots, 2)
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, m := newTestStore(t)
	_, _ = s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})

	require.NoError(t, s.Clear(ctx))
	assert.Zero(t, s.Len())
	assert.Empty(t, m.last())
}

func TestStore_MirrorFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := &recordingMirror{err: errors.New("disk full")}
	s := NewStore(WithMirror(m))

	_, err := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})
	require.Error(t, err)
	assert.True(t, gerrors.HasCode(err, gerrors.CodeStorage))
	assert.Equal(t, 1, s.Len(), "in-memory mutation stands")
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t)
	a, _ := s.Add(ctx, Task{Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-01"})

	list := s.Tasks()
	list[0].Name = "mutated"
	list[0].Cells["2025-07-01"] = CellOverride{Text: "x"}

	got, _ := s.Get(a.ID)
	assert.Equal(t, "a", got.Name)
	assert.Empty(t, got.Cells)
}

func ids(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
