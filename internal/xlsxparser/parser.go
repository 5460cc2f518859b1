// =============================================================================
// TaxEase Analyzer - XLSX Sales Parser
// =============================================================================
//
// Reads spreadsheet sales exports into a dataset. Workbooks often split a
// year across sheets ("Q1", "Q2", ...) with the same or similar headers, so
// every visible sheet is read and the rows are concatenated:
//   - Each sheet's first non-empty row is its header row
//   - Fields are the union of all sheet headers in first-seen order
//   - A "source_sheet" column records which sheet each row came from
//
// Hidden sheets usually hold lookups or pivots and are skipped unless
// include_hidden is set.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/taxease/internal/config"
	"github.com/ginjaninja78/taxease/internal/dataset"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads an XLSX file into a dataset.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//   - settings: Sheet selection from the main configuration.
//
// RETURNS:
//   - A dataset named after the file's base name, with the source_sheet
//     column appended.
//   - An error if the file cannot be opened or read.
func Parse(filePath string, settings config.XLSXSettings) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, filepath.Base(filePath), settings)
}

// ParseReader reads a workbook from r, e.g. an uploaded file.
func ParseReader(r io.Reader, name string, settings config.XLSXSettings) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readWorkbook(f, name, settings)
}

type sheetData struct {
	name    string
	headers []string
	rows    [][]string
}

func readWorkbook(f *excelize.File, source string, opts config.XLSXSettings) (*dataset.Dataset, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var (
		parsed  []sheetData
		matched int
	)
	for _, name := range sheets {
		if len(opts.Sheets) > 0 && !slices.Contains(opts.Sheets, name) {
			continue
		}
		matched++
		if !opts.IncludeHidden {
			visible, err := f.GetSheetVisible(name)
			if err != nil {
				return nil, fmt.Errorf("failed to read sheet visibility for %q: %w", name, err)
			}
			if !visible {
				continue
			}
		}

		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet %q: %w", name, err)
		}
		if sd, ok := splitSheet(name, rows); ok {
			parsed = append(parsed, sd)
		}
	}

	if matched == 0 {
		return nil, fmt.Errorf("workbook has none of the configured sheets (%s)", strings.Join(opts.Sheets, ", "))
	}
	return merge(source, parsed), nil
}

// splitSheet separates the header row from the data rows. Sheets with no
// non-empty row are dropped.
func splitSheet(name string, rows [][]string) (sheetData, bool) {
	for i, row := range rows {
		if isRowEmpty(row) {
			continue
		}
		return sheetData{
			name:    name,
			headers: dataset.CleanFields(row),
			rows:    rows[i+1:],
		}, true
	}
	return sheetData{}, false
}

// merge aligns every sheet onto the union of headers and appends the
// source_sheet tag column.
func merge(source string, sheets []sheetData) *dataset.Dataset {
	var fields []string
	index := make(map[string]int)
	for _, s := range sheets {
		for _, h := range s.headers {
			if _, ok := index[h]; !ok {
				index[h] = len(fields)
				fields = append(fields, h)
			}
		}
	}
	tagCol := len(fields)
	fields = append(fields, dataset.SourceSheetField)

	var records [][]string
	for _, s := range sheets {
		for _, row := range s.rows {
			if isRowEmpty(row) {
				continue
			}
			rec := make([]string, len(fields))
			for i, cell := range row {
				if i < len(s.headers) {
					rec[index[s.headers[i]]] = cell
				}
			}
			rec[tagCol] = s.name
			records = append(records, rec)
		}
	}

	return dataset.New(source, fields, records)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
