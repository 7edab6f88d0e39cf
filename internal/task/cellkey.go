package task

import "strings"

// CellKey identifies one override cell: a task and a calendar day.
type CellKey struct {
	TaskID string
	Date   string
}

// String returns the composite "<taskID>-<YYYY-MM-DD>" wire form.
func (k CellKey) String() string {
	return k.TaskID + "-" + k.Date
}

// ParseCellKey splits a composite key. When taskID is known its prefix is
// stripped exactly, so ids containing '-' never confuse the split. Otherwise
// the trailing YYYY-MM-DD is taken as the date.
func ParseCellKey(taskID, composite string) (CellKey, bool) {
	if taskID != "" {
		if rest, ok := strings.CutPrefix(composite, taskID+"-"); ok {
			if _, err := ParseDate(rest); err == nil {
				return CellKey{TaskID: taskID, Date: rest}, true
			}
		}
	}

	n := len(DateLayout)
	if len(composite) < n+2 || composite[len(composite)-n-1] != '-' {
		return CellKey{}, false
	}
	date := composite[len(composite)-n:]
	if _, err := ParseDate(date); err != nil {
		return CellKey{}, false
	}
	return CellKey{TaskID: composite[:len(composite)-n-1], Date: date}, true
}
