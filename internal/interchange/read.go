package interchange

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var zipMagic = []byte("PK\x03\x04")

// Read decodes a spreadsheet file into a workbook. The surface is chosen by
// the extension of name, falling back to sniffing the content.
func Read(r io.Reader, name string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ReadXLSX(bytes.NewReader(data))
	case ".csv":
		return ReadCSV(bytes.NewReader(data))
	}
	if bytes.HasPrefix(data, zipMagic) {
		return ReadXLSX(bytes.NewReader(data))
	}
	return ReadCSV(bytes.NewReader(data))
}

// ReadCSV reads a bare single-sheet table, the shape of older exports.
func ReadCSV(r io.Reader) (*Workbook, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return &Workbook{Sheets: []Sheet{sheetFromRecords("csv", records)}}, nil
}
