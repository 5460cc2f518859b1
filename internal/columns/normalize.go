// =============================================================================
// TaxEase Analyzer - Value Normalization
// =============================================================================
//
// Raw cells arrive as text exactly as the export wrote them. This file turns
// them into the canonical values the analyzers group on:
//   - Amounts:        "$1,200.50", "(45.00)", " 300 " -> float64
//   - Jurisdictions:  " ca "        -> "CA"
//   - Localities:     "los ANGELES" -> "Los Angeles"
//   - Dates:          a handful of common export layouts -> time.Time
//
// =============================================================================

package columns

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// =============================================================================
// AMOUNTS
// =============================================================================

// ParseAmount parses a currency cell.
//
// EXAMPLES:
//
//	"1200"       -> 1200
//	"$1,200.50"  -> 1200.50
//	"USD 75"     -> 75
//	"(45.00)"    -> -45   (accounting negative)
//	"-45"        -> -45
//	""           -> not ok
//	"n/a"        -> not ok
func ParseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(s), "USD"))
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// =============================================================================
// NAMES
// =============================================================================

// NormalizeJurisdiction upper-cases and trims a jurisdiction code.
func NormalizeJurisdiction(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// NormalizeLocality collapses whitespace and title-cases a locality name.
//
// EXAMPLE:
//
//	"  san   FRANCISCO " -> "San Francisco"
func NormalizeLocality(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return ""
	}
	// A Caser is stateful and not safe for concurrent use.
	return cases.Title(language.English).String(strings.ToLower(s))
}

// =============================================================================
// DATES
// =============================================================================

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate tries the common export layouts in order.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
