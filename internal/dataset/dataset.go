// Package dataset defines the in-memory tabular form every input adapter
// produces: ordered field names plus ordered rows keyed by field name.
package dataset

import "fmt"

// SourceSheetField is the tag column appended when several spreadsheet
// sheets are concatenated into one dataset.
const SourceSheetField = "source_sheet"

// Row maps a field name to its raw cell text.
type Row map[string]string

// Dataset is one fully materialized input table.
type Dataset struct {
	// Source names where the data came from (file name or upload name).
	Source string

	// Fields holds the column names in their original order.
	Fields []string

	// Rows holds the data rows in their original order.
	Rows []Row
}

// New builds a dataset from a header and raw records, padding short
// records with empty cells and ignoring cells past the header width.
func New(source string, fields []string, records [][]string) *Dataset {
	ds := &Dataset{Source: source, Fields: CleanFields(fields)}
	for _, rec := range records {
		ds.Append(rec)
	}
	return ds
}

// Append adds one raw record aligned to Fields. Records with only blank
// cells are skipped.
func (d *Dataset) Append(record []string) {
	if isBlank(record) {
		return
	}
	row := make(Row, len(d.Fields))
	for i, f := range d.Fields {
		if i < len(record) {
			row[f] = trim(record[i])
		} else {
			row[f] = ""
		}
	}
	d.Rows = append(d.Rows, row)
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Empty reports whether the dataset has no columns or no rows.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Fields) == 0 || len(d.Rows) == 0
}

// Head returns copies of the first n rows.
func (d *Dataset) Head(n int) []Row {
	if d == nil || n <= 0 {
		return nil
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	out := make([]Row, n)
	for i := 0; i < n; i++ {
		cp := make(Row, len(d.Rows[i]))
		for k, v := range d.Rows[i] {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// CleanFields trims header names, names blank headers after their
// position and de-duplicates repeated names with a numeric suffix.
func CleanFields(fields []string) []string {
	cleaned := make([]string, len(fields))
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		f = trim(f)
		if f == "" {
			f = fmt.Sprintf("Column_%d", i+1)
		}
		if n := seen[f]; n > 0 {
			seen[f] = n + 1
			f = fmt.Sprintf("%s_%d", f, n+1)
		} else {
			seen[f] = 1
		}
		cleaned[i] = f
	}
	return cleaned
}
