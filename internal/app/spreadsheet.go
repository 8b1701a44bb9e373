package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx/v2"
)

// Spreadsheet parsing: CSV and XLSX both land on []Row so the mapper never
// cares where a row came from. Cells are carried as strings; coercion is
// mapRow's job.

// maxSkipProbe bounds how many leading junk rows the multi-sheet scan will
// skip while hunting for a header row.
const maxSkipProbe = 10

// parseCSV reads a header-keyed CSV into loose rows. Ragged records are
// tolerated; fully empty lines are dropped.
func parseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("parse csv: no data rows")
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		empty := true
		for i, col := range header {
			if col == "" || i >= len(rec) {
				continue
			}
			v := strings.TrimSpace(rec[i])
			row[col] = v
			if v != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// parseXLSX reads the first sheet of a workbook.
func parseXLSX(data []byte) ([]Row, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("parse xlsx: workbook has no sheets")
	}
	rows := sheetToRows(f.Sheets[0], 0)
	if len(rows) == 0 {
		return nil, fmt.Errorf("parse xlsx: no data rows in sheet %q", f.Sheets[0].Name)
	}
	return rows, nil
}

// sheetNote describes what was found on one sheet of a multi-sheet scan.
type sheetNote struct {
	Name    string
	Rows    int
	Columns int
}

// parseWorkbook scans every sheet of a workbook, probing past up to
// maxSkipProbe leading junk rows per sheet until a header row yields data.
// Used by the Outscraper pipeline, whose exports sometimes carry preamble
// rows or split data across sheets.
func parseWorkbook(data []byte) ([]Row, []sheetNote, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parse workbook: %w", err)
	}

	var all []Row
	var notes []sheetNote
	for _, sheet := range f.Sheets {
		rows := sheetToRows(sheet, 0)
		for skip := 1; len(rows) == 0 && skip <= maxSkipProbe && skip < len(sheet.Rows); skip++ {
			rows = sheetToRows(sheet, skip)
		}
		if len(rows) == 0 {
			continue
		}
		notes = append(notes, sheetNote{Name: sheet.Name, Rows: len(rows), Columns: len(rows[0])})
		all = append(all, rows...)
	}
	return all, notes, nil
}

// sheetToRows converts a sheet to header-keyed rows, treating the row at
// index skip as the header.
func sheetToRows(sheet *xlsx.Sheet, skip int) []Row {
	if len(sheet.Rows) <= skip+1 {
		return nil
	}

	header := cellStrings(sheet.Rows[skip])
	known := 0
	for _, h := range header {
		if h != "" {
			known++
		}
	}
	if known == 0 {
		return nil
	}

	var rows []Row
	for _, xr := range sheet.Rows[skip+1:] {
		cells := cellStrings(xr)
		row := make(Row, len(header))
		empty := true
		for i, col := range header {
			if col == "" || i >= len(cells) {
				continue
			}
			row[col] = cells[i]
			if cells[i] != "" {
				empty = false
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}

func cellStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = strings.TrimSpace(cell.String())
	}
	return out
}
