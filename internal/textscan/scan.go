// =============================================================================
// TaxEase Analyzer - Text Flagging
// =============================================================================
//
// Free-form text (extracted statements, invoices pasted as text) has no
// columns to infer, so it never reaches the nexus engine. Instead every
// non-blank line that carries a currency marker and an amount above the
// threshold is flagged for review.
//
// EXAMPLE:
//   "Invoice 42 total $12,500.00 due"  -> flagged, amount 12500
//   "Paid USD 900"                     -> not flagged (below 10,000)
//   "Order 123456"                     -> not flagged (no marker)
//   "Order 20240115 paid $50"          -> not flagged (only $50 is an amount)
//
// =============================================================================

package textscan

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ginjaninja78/taxease/internal/types"
)

// DefaultThreshold is used when Scan is given a non-positive threshold.
const DefaultThreshold = 10000

// PreviewLength is the number of characters kept in TextResult.Preview.
const PreviewLength = 1000

// amountPattern matches a number only where a currency marker sits next to
// it: "$1,200", "USD 1200", "1200 USD". Exactly one group is set per match.
var amountPattern = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)|\busd\s*\$?\s*(\d[\d,]*(?:\.\d+)?)|(\d[\d,]*(?:\.\d+)?)\s*usd\b`)

// TextResult is the outcome of scanning one text document.
type TextResult struct {
	Source    string                  `json:"source"`
	Preview   string                  `json:"preview"`
	Lines     int                     `json:"lines"`
	Threshold float64                 `json:"threshold"`
	Flagged   []types.MonetaryMention `json:"flagged_lines"`
	Success   bool                    `json:"success"`
	Error     string                  `json:"error,omitempty"`
}

// Scan flags monetary mentions above threshold in text.
func Scan(text string, threshold float64) *TextResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	result := &TextResult{
		Preview:   preview(text),
		Threshold: threshold,
		Flagged:   make([]types.MonetaryMention, 0),
		Success:   true,
	}

	lineNum := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNum++

		amount, ok := largestAmount(line)
		if !ok || amount <= threshold {
			continue
		}
		result.Flagged = append(result.Flagged, types.MonetaryMention{
			LineNumber: lineNum,
			Content:    strings.TrimSpace(line),
			Amount:     amount,
		})
	}
	result.Lines = lineNum
	return result
}

// ScanReader reads r fully and scans it.
func ScanReader(r io.Reader, name string, threshold float64) (*TextResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read text: %w", err)
	}
	text := string(data)
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("failed to read text: %s is not valid UTF-8", name)
	}
	result := Scan(text, threshold)
	result.Source = name
	return result, nil
}

// largestAmount returns the largest currency-marked amount on a line.
// Bare numbers such as order IDs or dates are ignored.
func largestAmount(line string) (float64, bool) {
	found := false
	var largest float64
	for _, m := range amountPattern.FindAllStringSubmatch(line, -1) {
		var digits string
		for _, g := range m[1:] {
			if g != "" {
				digits = g
				break
			}
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
		if err != nil {
			continue
		}
		if !found || v > largest {
			largest = v
			found = true
		}
	}
	return largest, found
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:PreviewLength])
}
