package interchange

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WriteXLSX writes wb as an Excel workbook.
func WriteXLSX(w io.Writer, wb *Workbook) error {
	if wb == nil || len(wb.Sheets) == 0 {
		return fmt.Errorf("write xlsx: workbook has no sheets")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, s := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("name sheet %s: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("add sheet %s: %w", s.Name, err)
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet) error {
	header := make([]any, len(s.Header))
	for i, h := range s.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", s.Name, err)
	}

	for i, r := range s.Rows {
		cells := make([]any, len(s.Header))
		for col, h := range s.Header {
			cells[col] = cellValue(r.Values[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.Name, cell, &cells); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.Name, i+2, err)
		}
	}

	for i, width := range s.Widths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, col, col, width); err != nil {
			return fmt.Errorf("set %s width: %w", s.Name, err)
		}
	}
	return nil
}

// cellValue writes plain integers as numbers, like the sequence column, and
// everything else as text.
func cellValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil && strconv.Itoa(n) == v {
		return n
	}
	return v
}

// ReadXLSX reads every sheet of an Excel workbook. Cells are read raw, so
// date cells arrive as serial numbers and go through CoerceDate.
func ReadXLSX(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		records, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, sheetFromRecords(name, records))
	}
	return wb, nil
}
