package interchange

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/xuri/excelize/v2"

	"github.com/randalmurphal/gantt/internal/task"
)

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// maxSerial is 9999-12-31 in the 1900 date system.
const maxSerial = 2958465

// CoerceDate normalizes a spreadsheet date cell to YYYY-MM-DD. It accepts a
// valid calendar date unchanged, a day-count serial in the 1900 date system,
// or any text dateparse recognizes. Anything else yields "".
func CoerceDate(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}
	if isoDate.MatchString(s) {
		if _, err := task.ParseDate(s); err == nil {
			return s
		}
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 1 || n > maxSerial {
			return coerceText(s)
		}
		t, err := excelize.ExcelDateToTime(n, false)
		if err != nil {
			return ""
		}
		return task.FormatDate(t)
	}
	return coerceText(s)
}

func coerceText(s string) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return ""
	}
	return task.FormatDate(t)
}
