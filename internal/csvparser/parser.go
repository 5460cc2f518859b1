// =============================================================================
// TaxEase Analyzer - CSV Parser Module
// =============================================================================
//
// This module turns exported sales reports in CSV form into a dataset. It
// handles the quirks of real-world exports:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers (a category row above the column names)
//   - Metadata rows between the header and the data
//   - Ragged rows and loosely quoted fields
//
// The parser does not interpret any cell. Column roles are inferred later
// by the columns package.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/taxease/internal/config"
	"github.com/ginjaninja78/taxease/internal/dataset"
)

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file and returns the parsed dataset.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: The CSV parsing settings from the main configuration.
//
// RETURNS:
//   - The dataset, named after the file's base name.
//   - An error if the file cannot be read or has no header.
func Parse(filePath string, settings config.CSVSettings) (*dataset.Dataset, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filepath.Base(filePath), settings)
}

// ParseReader parses CSV content from r. name is recorded as the dataset
// source.
//
// PARSING PROCESS:
//  1. Configure the CSV reader with the configured delimiter
//  2. Read and merge header rows (for multi-line headers)
//  3. Read data rows starting from the configured data start row
//  4. Align each row to the header
func ParseReader(r io.Reader, name string, settings config.CSVSettings) (*dataset.Dataset, error) {
	csvReader := csv.NewReader(bufio.NewReader(r))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	startIndex := settings.DataStartRow - 1
	if startIndex < settings.HeaderRows {
		startIndex = settings.HeaderRows
	}
	var records [][]string
	if startIndex < len(allRows) {
		records = allRows[startIndex:]
	}

	return dataset.New(name, headers, records), nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Exports are frequently ragged and loosely quoted.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//
//	Row 1: "Sale", "", "Ship To", ""
//	Row 2: "Date", "Amount", "State", "City"
//	Result: "Sale Date", "Amount", "Ship To State", "City"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	if settings.HeaderRows <= 0 {
		return nil, fmt.Errorf("header_rows must be at least 1")
	}

	if len(allRows) < settings.HeaderRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if settings.HeaderRows == 1 {
		return allRows[0], nil
	}

	maxCols := 0
	for i := 0; i < settings.HeaderRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < settings.HeaderRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return headers, nil
}
