package interchange

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/tidwall/gjson"

	"github.com/randalmurphal/gantt/internal/task"
)

// TierName identifies a decode tier.
type TierName string

const (
	TierFullFidelity TierName = "full-fidelity"
	TierBackup       TierName = "backup"
	TierLegacy       TierName = "legacy"
)

// Rejection explains why a row or payload was not used.
type Rejection struct {
	Line   int
	Reason string
}

func (r Rejection) String() string {
	if r.Line > 0 {
		return fmt.Sprintf("row %d: %s", r.Line, r.Reason)
	}
	return r.Reason
}

// TierResult is the output of one tier function.
type TierResult struct {
	Tasks      []task.Task
	Rejections []Rejection
	// Attempted reports whether the workbook carried data in this tier's
	// shape at all.
	Attempted bool
}

// TierFunc decodes a workbook one way.
type TierFunc func(wb *Workbook, a Aliases) TierResult

// requiredFields are probed before a payload is unmarshalled.
var requiredFields = []string{"id", "name", "startDate", "endDate"}

// FullFidelity decodes the per-row payload column. Only rows with a payload
// take part; each must carry every required field and two parseable dates.
func FullFidelity(wb *Workbook, a Aliases) TierResult {
	var res TierResult
	sheet := wb.Main()
	if sheet == nil {
		return res
	}
	seen := make(map[string]bool)
	for _, row := range sheet.Rows {
		payload := row.Lookup(a.Columns[FieldPayload])
		if payload == "" {
			continue
		}
		res.Attempted = true

		t, reason := decodePayload(payload)
		if reason == "" && seen[t.ID] {
			reason = fmt.Sprintf("duplicate task id %s", t.ID)
		}
		if reason != "" {
			res.Rejections = append(res.Rejections, Rejection{Line: row.Line, Reason: reason})
			continue
		}
		seen[t.ID] = true
		res.Tasks = append(res.Tasks, t)
	}
	return res
}

func decodePayload(payload string) (task.Task, string) {
	if !gjson.Valid(payload) {
		return task.Task{}, "malformed task data"
	}
	fields := gjson.GetMany(payload, requiredFields...)
	for i, f := range fields {
		if strings.TrimSpace(f.String()) == "" {
			return task.Task{}, fmt.Sprintf("missing required field %s", requiredFields[i])
		}
	}

	var t task.Task
	if err := json.Unmarshal([]byte(payload), &t); err != nil {
		return task.Task{}, fmt.Sprintf("malformed task data: %v", err)
	}
	t.StartDate = CoerceDate(t.StartDate)
	t.EndDate = CoerceDate(t.EndDate)
	if t.StartDate == "" || t.EndDate == "" {
		return task.Task{}, "invalid date format"
	}
	t.FirstProofDate = CoerceDate(t.FirstProofDate)
	t.FinalProofDate = CoerceDate(t.FinalProofDate)
	if t.Color == "" {
		t.Color = task.DefaultColor
	}
	return t, ""
}

// Backup decodes the whole-store copy kept in the metadata sheet. Every task
// must carry the required fields or the backup is rejected as a whole.
func Backup(wb *Workbook, a Aliases) TierResult {
	var res TierResult
	sheet := wb.Sheet(a.MetaSheets)
	if sheet == nil || len(sheet.Rows) == 0 {
		return res
	}
	// A record too long for one cell continues in the rows below it.
	var b strings.Builder
	for _, row := range sheet.Rows {
		b.WriteString(row.Raw(a.MetaColumns))
	}
	meta := strings.TrimSpace(b.String())
	if meta == "" {
		return res
	}
	res.Attempted = true

	reject := func(reason string) TierResult {
		res.Rejections = append(res.Rejections, Rejection{Line: sheet.Rows[0].Line, Reason: "backup: " + reason})
		return res
	}
	if !gjson.Valid(meta) {
		return reject("malformed metadata")
	}
	backup := gjson.Get(meta, "allTasksBackup")
	if backup.String() == "" {
		return reject("no task backup in metadata")
	}

	tasks, err := task.UnmarshalSnapshot([]byte(backup.String()))
	if err != nil {
		return reject(err.Error())
	}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return reject(fmt.Sprintf("duplicate task id %s", t.ID))
		}
		seen[t.ID] = true
	}
	res.Tasks = tasks
	return res
}

// Legacy returns the flat-row tier. Each row gets a fresh id from newID,
// fields are resolved through the alias table and the date-keyed cell blocks
// are expanded back into overrides.
func Legacy(newID task.IDFunc, logger *slog.Logger) TierFunc {
	return func(wb *Workbook, a Aliases) TierResult {
		var res TierResult
		sheet := wb.Main()
		if sheet == nil {
			return res
		}
		for _, row := range sheet.Rows {
			res.Attempted = true
			t := task.Task{
				Name:           row.Lookup(a.Columns[FieldName]),
				StartDate:      CoerceDate(row.Lookup(a.Columns[FieldStart])),
				EndDate:        CoerceDate(row.Lookup(a.Columns[FieldEnd])),
				FirstProofDate: CoerceDate(row.Lookup(a.Columns[FieldFirstProof])),
				FinalProofDate: CoerceDate(row.Lookup(a.Columns[FieldFinalProof])),
				Color:          row.Lookup(a.Columns[FieldColor]),
				Cells:          make(map[string]task.CellOverride),
			}
			switch {
			case t.Name == "":
				res.Rejections = append(res.Rejections, Rejection{Line: row.Line, Reason: "missing task name"})
				continue
			case t.StartDate == "" || t.EndDate == "":
				res.Rejections = append(res.Rejections, Rejection{Line: row.Line, Reason: "missing or invalid start/end date"})
				continue
			}
			if t.Color == "" {
				t.Color = task.DefaultColor
			}
			t.ID = newID()

			for date, text := range expandBlock(row.Lookup(a.Columns[FieldCellTexts]), row.Line, logger) {
				c := t.Cells[date]
				c.Text = text
				t.Cells[date] = c
			}
			for date, color := range expandBlock(row.Lookup(a.Columns[FieldCellColors]), row.Line, logger) {
				c := t.Cells[date]
				c.Color = color
				t.Cells[date] = c
			}
			res.Tasks = append(res.Tasks, t)
		}
		return res
	}
}

// expandBlock parses a date-keyed JSON object. Malformed blocks are retried
// through jsonrepair and dropped if that fails too. Empty keys and falsy
// values are skipped.
func expandBlock(block string, line int, logger *slog.Logger) map[string]string {
	if block == "" {
		return nil
	}
	if !gjson.Valid(block) {
		repaired, err := jsonrepair.JSONRepair(block)
		if err != nil || !gjson.Valid(repaired) {
			logger.Warn("drop malformed cell block", "row", line, "error", err)
			return nil
		}
		logger.Debug("repaired cell block", "row", line)
		block = repaired
	}

	parsed := gjson.Parse(block)
	if !parsed.IsObject() {
		logger.Warn("drop cell block that is not an object", "row", line)
		return nil
	}
	out := make(map[string]string)
	parsed.ForEach(func(key, value gjson.Result) bool {
		if k := key.String(); k != "" && truthy(value) {
			out[k] = value.String()
		}
		return true
	})
	return out
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	default:
		return true
	}
}
