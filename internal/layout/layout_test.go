package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/gantt/internal/task"
)

func date(s string) time.Time {
	d, err := task.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

var julyTasks = []task.Task{
	{ID: "task-1", Name: "a", StartDate: "2025-07-01", EndDate: "2025-07-05", FirstProofDate: "2025-07-03", FinalProofDate: "2025-07-05", Color: "#FF5733"},
	{ID: "task-2", Name: "b", StartDate: "2025-07-06", EndDate: "2025-07-15", Color: "#33FF57"},
}

func TestDateRange(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, time.February, 14, 15, 4, 0, 0, time.UTC)

	r := DateRange(julyTasks, now)
	assert.Equal(t, date("2025-07-01"), r.Start)
	assert.Equal(t, date("2025-07-15"), r.End)
	assert.Equal(t, 15, r.Days())
	assert.Len(t, Days(r), 15)

	empty := DateRange(nil, now)
	assert.Equal(t, date("2026-02-01"), empty.Start)
	assert.Equal(t, date("2026-02-28"), empty.End)

	invalid := DateRange([]task.Task{{StartDate: "soon", EndDate: ""}}, now)
	assert.Equal(t, empty, invalid, "no valid dates falls back to the month")

	partial := DateRange([]task.Task{{StartDate: "2025-03-10", EndDate: "junk"}}, now)
	assert.Equal(t, Range{Start: date("2025-03-10"), End: date("2025-03-10")}, partial)
}

func TestDays(t *testing.T) {
	t.Parallel()

	days := Days(Range{Start: date("2024-02-27"), End: date("2024-03-01")})
	require.Len(t, days, 4)
	assert.Equal(t, date("2024-02-29"), days[2])
	assert.Nil(t, Days(Range{Start: date("2024-03-02"), End: date("2024-03-01")}))
}

func TestBarFor(t *testing.T) {
	t.Parallel()
	days := Days(DateRange(julyTasks, time.Now()))

	b, ok := BarFor(julyTasks[0], days)
	require.True(t, ok)
	assert.Equal(t, 0, b.StartIndex)
	assert.Equal(t, 4, b.EndIndex)
	assert.InDelta(t, 0.0, b.Offset, 1e-9)
	assert.InDelta(t, 5.0/15, b.Width, 1e-9)

	b, ok = BarFor(julyTasks[1], days)
	require.True(t, ok)
	assert.InDelta(t, 5.0/15, b.Offset, 1e-9)
	assert.InDelta(t, 10.0/15, b.Width, 1e-9)
	assert.InDelta(t, 1.0, b.Offset+b.Width, 1e-9)

	// A task edited after the range was computed is clamped, not dropped.
	late := task.Task{StartDate: "2025-07-10", EndDate: "2025-08-20"}
	b, ok = BarFor(late, days)
	require.True(t, ok)
	assert.Equal(t, 14, b.EndIndex)
	assert.LessOrEqual(t, b.Offset+b.Width, 1.0+1e-9)

	early := task.Task{StartDate: "2025-06-01", EndDate: "2025-06-02"}
	b, ok = BarFor(early, days)
	require.True(t, ok)
	assert.Equal(t, 0, b.StartIndex)
	assert.Equal(t, 0, b.EndIndex)
	assert.GreaterOrEqual(t, b.Offset, 0.0)

	_, ok = BarFor(task.Task{StartDate: "x", EndDate: "2025-07-02"}, days)
	assert.False(t, ok)
	_, ok = BarFor(julyTasks[0], nil)
	assert.False(t, ok)
}

func TestMilestoneFor(t *testing.T) {
	t.Parallel()
	days := Days(DateRange(julyTasks, time.Now()))

	m, ok := MilestoneFor("2025-07-03", days)
	require.True(t, ok)
	assert.Equal(t, 2, m.Index)
	assert.InDelta(t, 2.5/15, m.Center, 1e-9)

	_, ok = MilestoneFor("2025-08-01", days)
	assert.False(t, ok, "outside the range renders nothing")
	_, ok = MilestoneFor("", days)
	assert.False(t, ok)
	_, ok = MilestoneFor("garbage", days)
	assert.False(t, ok)
}

func TestTodayFor(t *testing.T) {
	t.Parallel()
	days := Days(DateRange(julyTasks, time.Now()))

	m, ok := TodayFor(days, time.Date(2025, time.July, 15, 23, 59, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 14, m.Index)

	_, ok = TodayFor(days, time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestActiveAndCellEdge(t *testing.T) {
	t.Parallel()
	tk := julyTasks[0]

	assert.False(t, Active(tk, date("2025-06-30")))
	assert.True(t, Active(tk, date("2025-07-01")))
	assert.True(t, Active(tk, time.Date(2025, time.July, 5, 18, 0, 0, 0, time.UTC)))
	assert.False(t, Active(tk, date("2025-07-06")))

	assert.Equal(t, EdgeStart, CellEdge(tk, date("2025-07-01")))
	assert.Equal(t, EdgeNone, CellEdge(tk, date("2025-07-03")))
	assert.Equal(t, EdgeEnd, CellEdge(tk, date("2025-07-05")))
	assert.Equal(t, EdgeNone, CellEdge(tk, date("2025-07-09")))

	single := task.Task{StartDate: "2025-07-02", EndDate: "2025-07-02"}
	assert.Equal(t, EdgeBoth, CellEdge(single, date("2025-07-02")))

	// Active ignores any day sequence: a task outside the rendered range is
	// still active on its own days.
	outside := task.Task{StartDate: "2030-01-01", EndDate: "2030-01-03"}
	assert.True(t, Active(outside, date("2030-01-02")))
}

func TestCompute(t *testing.T) {
	t.Parallel()
	tasks := []task.Task{julyTasks[0].Clone(), julyTasks[1].Clone()}
	tasks[0].Cells["2025-07-02"] = task.CellOverride{Text: "作成", Color: "#FF7033"}
	tasks[0].Cells["2025-07-09"] = task.CellOverride{Text: "orphan"}

	tl := Compute(tasks, time.Date(2025, time.July, 3, 9, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, tl.Today)
	require.Len(t, tl.Rows, 2)

	row := tl.Rows[0]
	require.True(t, row.HasBar)
	require.NotNil(t, row.FirstProof)
	assert.Equal(t, 2, row.FirstProof.Index)
	require.NotNil(t, row.FinalProof)
	assert.Equal(t, 4, row.FinalProof.Index)
	require.Len(t, row.Cells, 15)

	assert.Equal(t, "作成", row.Cells[1].Text)
	assert.Equal(t, "#FF7033", row.Cells[1].Color)
	assert.Equal(t, "#FF5733", row.Cells[0].Color)
	assert.Equal(t, EdgeStart, row.Cells[0].Edge)
	assert.False(t, row.Cells[8].Active)
	assert.Empty(t, row.Cells[8].Text, "orphaned override is not rendered")

	assert.Nil(t, tl.Rows[1].FirstProof)

	empty := Compute(nil, time.Date(2025, time.July, 3, 0, 0, 0, 0, time.UTC))
	assert.Len(t, empty.Days, 31)
	assert.Equal(t, 2, empty.Today)
}
