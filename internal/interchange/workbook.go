// Package interchange converts between the task store and spreadsheet
// workbooks: encoding an export with a full-fidelity payload per row and a
// whole-store backup, and decoding imports through three fallback tiers.
package interchange

import (
	"slices"
	"strings"
)

// Workbook is the surface-independent view of a spreadsheet file.
type Workbook struct {
	Sheets []Sheet
}

// Sheet is one named table. The first spreadsheet row is its header.
type Sheet struct {
	Name   string
	Header []string
	Rows   []Row
	// Widths are optional column widths in characters, by header position.
	Widths []float64
}

// Row is one data row keyed by header name.
type Row struct {
	// Line is the 1-based spreadsheet row number, header included.
	Line   int
	Values map[string]string
}

// Lookup returns the first non-blank value among names, trimmed.
func (r Row) Lookup(names []string) string {
	for _, n := range names {
		if v := strings.TrimSpace(r.Values[n]); v != "" {
			return v
		}
	}
	return ""
}

// Raw returns the first non-empty value among names as stored, for values
// split across cells where whitespace belongs to the content.
func (r Row) Raw(names []string) string {
	for _, n := range names {
		if v := r.Values[n]; v != "" {
			return v
		}
	}
	return ""
}

// Main returns the first sheet, which holds the task rows.
func (wb *Workbook) Main() *Sheet {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil
	}
	return &wb.Sheets[0]
}

// Sheet returns the first sheet whose name is in names.
func (wb *Workbook) Sheet(names []string) *Sheet {
	if wb == nil {
		return nil
	}
	for i := range wb.Sheets {
		if slices.Contains(names, strings.TrimSpace(wb.Sheets[i].Name)) {
			return &wb.Sheets[i]
		}
	}
	return nil
}

// sheetFromRecords builds a sheet from raw records whose first record is the
// header. Blank records are skipped; when a header repeats, the first column
// with that name wins.
func sheetFromRecords(name string, records [][]string) Sheet {
	s := Sheet{Name: name}
	if len(records) == 0 {
		return s
	}
	s.Header = make([]string, len(records[0]))
	for i, h := range records[0] {
		s.Header[i] = strings.TrimSpace(h)
	}

	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := Row{Line: i + 2, Values: make(map[string]string, len(s.Header))}
		for col, h := range s.Header {
			if h == "" || col >= len(rec) {
				continue
			}
			if _, seen := row.Values[h]; !seen {
				row.Values[h] = rec[col]
			}
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
