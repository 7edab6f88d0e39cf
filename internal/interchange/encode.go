package interchange

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	gerrors "github.com/randalmurphal/gantt/internal/errors"
	"github.com/randalmurphal/gantt/internal/layout"
	"github.com/randalmurphal/gantt/internal/task"
)

// FormatVersion is written to the metadata record.
const FormatVersion = "1.0"

// MaxCellChars is the most characters one spreadsheet cell holds. Longer
// strings are silently cut by spreadsheet writers, so Encode never produces
// them.
const MaxCellChars = excelize.TotalCellChars

// Options controls encoding.
type Options struct {
	// Language selects header and sheet names. Empty means Japanese.
	Language string
}

// metadata is the single record of the metadata sheet.
type metadata struct {
	Version        string    `json:"version"`
	ExportDate     string    `json:"exportDate"`
	TotalTasks     int       `json:"totalTasks"`
	DateRange      dateRange `json:"dateRange"`
	AllTasksBackup string    `json:"allTasksBackup"`
}

type dateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Encode builds the export workbook: a main sheet with one row per task and
// a metadata sheet carrying a backup of the whole store.
func Encode(tasks []task.Task, now time.Time, opts Options) (*Workbook, error) {
	lang := opts.Language
	main := Sheet{Name: mainSheet.header(lang)}
	for _, c := range columns {
		main.Header = append(main.Header, c.header(lang))
		main.Widths = append(main.Widths, c.width)
	}

	for i, t := range tasks {
		payload, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode task %s: %w", t.ID, err)
		}
		texts, colors := legacyBlocks(t)
		values := map[Field]string{
			FieldNo:         strconv.Itoa(i + 1),
			FieldName:       t.Name,
			FieldStart:      t.StartDate,
			FieldEnd:        t.EndDate,
			FieldFirstProof: t.FirstProofDate,
			FieldFinalProof: t.FinalProofDate,
			FieldColor:      t.Color,
			FieldCellTexts:  texts,
			FieldCellColors: colors,
			FieldPayload:    string(payload),
		}
		row := Row{Line: i + 2, Values: make(map[string]string, len(columns))}
		for _, c := range columns {
			v := values[c.field]
			if n := utf8.RuneCountInString(v); n > MaxCellChars {
				return nil, gerrors.ErrExportTooLarge(fmt.Sprintf("task %s (%s column)", t.ID, c.english), n, MaxCellChars)
			}
			row.Values[c.header(lang)] = v
		}
		main.Rows = append(main.Rows, row)
	}

	backup, err := task.MarshalSnapshot(tasks)
	if err != nil {
		return nil, fmt.Errorf("encode backup: %w", err)
	}
	r := layout.DateRange(tasks, now)
	meta, err := json.Marshal(metadata{
		Version:    FormatVersion,
		ExportDate: now.UTC().Format(time.RFC3339),
		TotalTasks: len(tasks),
		DateRange: dateRange{
			Start: r.Start.Format(time.RFC3339),
			End:   r.End.Format(time.RFC3339),
		},
		AllTasksBackup: string(backup),
	})
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	metaHeader := metaColumn.header(lang)
	chunks := splitCell(string(meta), MaxCellChars)
	metaRows := make([]Row, len(chunks))
	for i, chunk := range chunks {
		metaRows[i] = Row{Line: i + 2, Values: map[string]string{metaHeader: chunk}}
	}
	return &Workbook{Sheets: []Sheet{
		main,
		{
			Name:   metaSheet.header(lang),
			Header: []string{metaHeader},
			Rows:   metaRows,
			Widths: []float64{50},
		},
	}}, nil
}

// splitCell cuts s into pieces of at most n runes. The metadata record is
// continued down the column when it outgrows one cell; Backup joins the
// pieces back in row order.
func splitCell(s string, n int) []string {
	var out []string
	for utf8.RuneCountInString(s) > n {
		cut := 0
		for i := 0; i < n; i++ {
			_, size := utf8.DecodeRuneInString(s[cut:])
			cut += size
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	return append(out, s)
}

// legacyBlocks flattens overrides into the date-keyed text and color JSON
// objects older importers read. Keys that are not calendar dates are left
// out; they survive in the full payload.
func legacyBlocks(t task.Task) (texts, colors string) {
	tm := make(map[string]string)
	cm := make(map[string]string)
	for date, c := range t.Cells {
		if _, err := task.ParseDate(date); err != nil {
			continue
		}
		if c.Text != "" {
			tm[date] = c.Text
		}
		if c.Color != "" {
			cm[date] = c.Color
		}
	}
	return blockJSON(tm), blockJSON(cm)
}

func blockJSON(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	data, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(data)
}

// FileName returns the export file name for now.
func FileName(now time.Time, lang string) string {
	prefix := "ガントチャート"
	if lang == LanguageEnglish {
		prefix = "gantt"
	}
	return prefix + "_" + now.Format("2006-01-02_15-04-05") + ".xlsx"
}
