package dataset

import "strings"

// trim strips surrounding whitespace and a UTF-8 byte-order mark, which
// spreadsheet exports often leave on the first header cell.
func trim(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if trim(cell) != "" {
			return false
		}
	}
	return true
}
