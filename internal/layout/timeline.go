package layout

import (
	"time"

	"github.com/randalmurphal/gantt/internal/task"
)

// Timeline is everything a renderer needs for one frame.
type Timeline struct {
	Range Range
	Days  []time.Time
	// Today is the column of the current day, -1 when out of range.
	Today int
	Rows  []Row
}

// Row is the geometry of one task.
type Row struct {
	Task       task.Task
	Bar        Bar
	HasBar     bool
	FirstProof *Marker
	FinalProof *Marker
	Cells      []Cell
}

// Cell is one day column of a row. Text and Color are only populated for
// active days; overrides outside the task's range are kept but not shown.
type Cell struct {
	Date   time.Time
	Active bool
	Edge   Edge
	Text   string
	Color  string
}

// Compute lays out tasks for rendering at now.
func Compute(tasks []task.Task, now time.Time) Timeline {
	r := DateRange(tasks, now)
	days := Days(r)
	tl := Timeline{Range: r, Days: days, Today: -1, Rows: make([]Row, 0, len(tasks))}
	if m, ok := TodayFor(days, now); ok {
		tl.Today = m.Index
	}

	for _, t := range tasks {
		row := Row{Task: t, Cells: make([]Cell, len(days))}
		row.Bar, row.HasBar = BarFor(t, days)
		if m, ok := MilestoneFor(t.FirstProofDate, days); ok {
			row.FirstProof = &m
		}
		if m, ok := MilestoneFor(t.FinalProofDate, days); ok {
			row.FinalProof = &m
		}
		for i, d := range days {
			c := Cell{Date: d, Active: Active(t, d)}
			if c.Active {
				c.Edge = CellEdge(t, d)
				c.Color = t.Color
				if o, ok := t.Cell(task.FormatDate(d)); ok {
					c.Text = o.Text
					if o.Color != "" {
						c.Color = o.Color
					}
				}
			}
			row.Cells[i] = c
		}
		tl.Rows = append(tl.Rows, row)
	}
	return tl
}
