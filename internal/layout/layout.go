// Package layout derives timeline geometry from a task list.
//
// Every function is pure: results depend only on the tasks passed in and the
// explicit "now", so a host can recompute on every render.
package layout

import (
	"time"

	"github.com/randalmurphal/gantt/internal/task"
)

// MarkerWidthPx is the drawn width of milestone and today markers.
const MarkerWidthPx = 3

// Range is an inclusive span of calendar days at midnight UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of days in the range, counting both ends.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Bar is the horizontal placement of a task's band, in fractions of the
// whole range.
type Bar struct {
	StartIndex int
	EndIndex   int
	Offset     float64
	Width      float64
}

// Marker is a narrow vertical mark centred on one day column.
type Marker struct {
	Index  int
	Center float64
}

// Edge tells a renderer which sides of an active day cell are rounded.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeStart
	EdgeEnd
	EdgeBoth
)

// day truncates t to its calendar day in UTC.
func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange spans the earliest to the latest valid start or end date. With no
// valid dates at all it falls back to the whole calendar month of now.
func DateRange(tasks []task.Task, now time.Time) Range {
	var r Range
	found := false
	for _, t := range tasks {
		for _, s := range []string{t.StartDate, t.EndDate} {
			if s == "" {
				continue
			}
			d, err := task.ParseDate(s)
			if err != nil {
				continue
			}
			if !found || d.Before(r.Start) {
				r.Start = d
			}
			if !found || d.After(r.End) {
				r.End = d
			}
			found = true
		}
	}
	if found {
		return r
	}
	return MonthOf(now)
}

// MonthOf returns the first to last day of now's calendar month.
func MonthOf(now time.Time) Range {
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return Range{Start: first, End: first.AddDate(0, 1, -1)}
}

// Days lists every day of r in ascending order, both ends included.
func Days(r Range) []time.Time {
	if r.End.Before(r.Start) {
		return nil
	}
	days := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// IndexOf returns the position of date in days by calendar-date equality,
// or -1 when absent.
func IndexOf(days []time.Time, date time.Time) int {
	target := day(date)
	for i, d := range days {
		if d.Equal(target) {
			return i
		}
	}
	return -1
}

// clampIndex positions date in days, snapping to the nearest end when it
// falls outside the sequence.
func clampIndex(days []time.Time, date time.Time) int {
	if len(days) == 0 {
		return 0
	}
	date = day(date)
	if date.Before(days[0]) {
		return 0
	}
	last := len(days) - 1
	if date.After(days[last]) {
		return last
	}
	return int(date.Sub(days[0]).Hours() / 24)
}

// BarFor places a task's band. It reports false when the task's dates do not
// parse or there are no days.
func BarFor(t task.Task, days []time.Time) (Bar, bool) {
	if len(days) == 0 {
		return Bar{}, false
	}
	start, end, ok := span(t)
	if !ok {
		return Bar{}, false
	}

	total := float64(len(days))
	b := Bar{StartIndex: clampIndex(days, start), EndIndex: clampIndex(days, end)}
	if b.EndIndex < b.StartIndex {
		b.EndIndex = b.StartIndex
	}
	b.Offset = max(float64(b.StartIndex)/total, 0)
	b.Width = float64(b.EndIndex-b.StartIndex+1) / total
	if b.Offset+b.Width > 1 {
		b.Width = 1 - b.Offset
	}
	return b, true
}

// MilestoneFor locates a milestone date. Dates that are empty, invalid or
// outside days produce no marker.
func MilestoneFor(date string, days []time.Time) (Marker, bool) {
	if date == "" {
		return Marker{}, false
	}
	d, err := task.ParseDate(date)
	if err != nil {
		return Marker{}, false
	}
	return markerAt(IndexOf(days, d), len(days))
}

// TodayFor locates now in days.
func TodayFor(days []time.Time, now time.Time) (Marker, bool) {
	return markerAt(IndexOf(days, now), len(days))
}

func markerAt(idx, total int) (Marker, bool) {
	if idx < 0 || total == 0 {
		return Marker{}, false
	}
	return Marker{Index: idx, Center: (float64(idx) + 0.5) / float64(total)}, true
}

// span parses a task's start and end dates.
func span(t task.Task) (start, end time.Time, ok bool) {
	start, err := task.ParseDate(t.StartDate)
	if err != nil {
		return start, end, false
	}
	end, err = task.ParseDate(t.EndDate)
	if err != nil {
		return start, end, false
	}
	return start, end, true
}

// Active reports whether d falls within the task's own start..end at day
// granularity. It does not consult any day sequence.
func Active(t task.Task, d time.Time) bool {
	start, end, ok := span(t)
	if !ok {
		return false
	}
	d = day(d)
	return !d.Before(start) && !d.After(end)
}

// CellEdge returns which terminal edges of an active cell are rounded.
func CellEdge(t task.Task, d time.Time) Edge {
	start, end, ok := span(t)
	if !ok {
		return EdgeNone
	}
	d = day(d)
	if d.Before(start) || d.After(end) {
		return EdgeNone
	}
	first, last := d.Equal(start), d.Equal(end)
	switch {
	case first && last:
		return EdgeBoth
	case first:
		return EdgeStart
	case last:
		return EdgeEnd
	default:
		return EdgeNone
	}
}
