// Package task provides the task model and the authoritative in-memory task
// store for a gantt chart.
package task

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
)

// DateLayout is the calendar-date format used everywhere a date is stored.
const DateLayout = "2006-01-02"

// DefaultColor is the bar color used when none is given.
const DefaultColor = "#3B82F6"

// Task is one named, dated row of the chart.
//
// Cells holds per-day overrides keyed by calendar date. Entries are never
// required to fall inside StartDate..EndDate: when a range shrinks, overrides
// outside it are kept and simply not rendered.
type Task struct {
	ID             string
	Name           string
	StartDate      string
	EndDate        string
	FirstProofDate string
	FinalProofDate string
	Color          string
	Cells          map[string]CellOverride
}

// CellOverride is the text and color shown in one day cell of a task.
type CellOverride struct {
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// IsZero reports whether the override carries nothing.
func (c CellOverride) IsZero() bool {
	return c.Text == "" && c.Color == ""
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// FormatDate formats t as a YYYY-MM-DD calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	cp := t
	cp.Cells = make(map[string]CellOverride, len(t.Cells))
	maps.Copy(cp.Cells, t.Cells)
	return cp
}

// Cell returns the override for a day, if any.
func (t Task) Cell(date string) (CellOverride, bool) {
	c, ok := t.Cells[date]
	return c, ok
}

// HasRequiredFields reports whether id, name and both dates are non-empty.
// This is the shape check applied to persisted and imported snapshots.
func (t Task) HasRequiredFields() bool {
	return t.ID != "" && t.Name != "" && t.StartDate != "" && t.EndDate != ""
}

// Validate checks the fields a caller must supply on add and update.
func Validate(t Task) error {
	if strings.TrimSpace(t.Name) == "" {
		return gerrors.ErrValidation("name", "task name is required")
	}
	if t.StartDate == "" {
		return gerrors.ErrValidation("startDate", "start date is required")
	}
	if t.EndDate == "" {
		return gerrors.ErrValidation("endDate", "end date is required")
	}
	start, err := ParseDate(t.StartDate)
	if err != nil {
		return gerrors.ErrValidation("startDate", fmt.Sprintf("%q is not a YYYY-MM-DD date", t.StartDate))
	}
	end, err := ParseDate(t.EndDate)
	if err != nil {
		return gerrors.ErrValidation("endDate", fmt.Sprintf("%q is not a YYYY-MM-DD date", t.EndDate))
	}
	if start.After(end) {
		return gerrors.ErrValidation("endDate", "end date must not be before the start date")
	}
	return nil
}

// wireTask is the JSON form shared by persisted snapshots and spreadsheet
// payloads. Overrides travel as two flat maps keyed by composite cell keys.
type wireTask struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	StartDate      string            `json:"startDate"`
	EndDate        string            `json:"endDate"`
	FirstProofDate string            `json:"firstProofDate"`
	FinalProofDate string            `json:"finalProofDate"`
	Color          string            `json:"color"`
	CellTexts      map[string]string `json:"cellTexts"`
	CellColors     map[string]string `json:"cellColors"`
}

// MarshalJSON implements json.Marshaler.
func (t Task) MarshalJSON() ([]byte, error) {
	w := wireTask{
		ID:             t.ID,
		Name:           t.Name,
		StartDate:      t.StartDate,
		EndDate:        t.EndDate,
		FirstProofDate: t.FirstProofDate,
		FinalProofDate: t.FinalProofDate,
		Color:          t.Color,
		CellTexts:      make(map[string]string),
		CellColors:     make(map[string]string),
	}
	for date, c := range t.Cells {
		key := wireKey(t.ID, date)
		if c.Text != "" {
			w.CellTexts[key] = c.Text
		}
		if c.Color != "" {
			w.CellColors[key] = c.Color
		}
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Missing fields are left empty;
// callers apply HasRequiredFields or Validate as their context demands.
func (t *Task) UnmarshalJSON(data []byte) error {
	var w wireTask
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Task{
		ID:             w.ID,
		Name:           w.Name,
		StartDate:      w.StartDate,
		EndDate:        w.EndDate,
		FirstProofDate: w.FirstProofDate,
		FinalProofDate: w.FinalProofDate,
		Color:          w.Color,
		Cells:          make(map[string]CellOverride),
	}
	for key, text := range w.CellTexts {
		date := cellDate(w.ID, key)
		c := t.Cells[date]
		c.Text = text
		t.Cells[date] = c
	}
	for key, color := range w.CellColors {
		date := cellDate(w.ID, key)
		c := t.Cells[date]
		c.Color = color
		t.Cells[date] = c
	}
	return nil
}

// wireKey composes the composite key for a date. Keys kept verbatim because
// they carried no date are written back unchanged.
func wireKey(taskID, date string) string {
	if _, err := ParseDate(date); err != nil {
		return date
	}
	return CellKey{TaskID: taskID, Date: date}.String()
}

// cellDate extracts the day from a composite key. Keys that carry no
// recognizable date are kept verbatim so nothing is dropped.
func cellDate(taskID, composite string) string {
	if k, ok := ParseCellKey(taskID, composite); ok {
		return k.Date
	}
	return composite
}

// MarshalSnapshot encodes an ordered task sequence.
func MarshalSnapshot(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	return json.Marshal(tasks)
}

// UnmarshalSnapshot decodes an ordered task sequence and applies the shape
// check: every task must carry id, name, start and end.
func UnmarshalSnapshot(data []byte) ([]Task, error) {
	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, gerrors.ErrParse("decode task snapshot", err)
	}
	if tasks == nil {
		return nil, gerrors.ErrParse("decode task snapshot", fmt.Errorf("not a task list"))
	}
	for i, t := range tasks {
		if !t.HasRequiredFields() {
			return nil, gerrors.ErrParse("decode task snapshot",
				fmt.Errorf("task #%d is missing id, name, startDate or endDate", i+1))
		}
	}
	return tasks, nil
}
