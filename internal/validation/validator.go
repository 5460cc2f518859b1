// =============================================================================
// TaxEase Analyzer - Row Validation
// =============================================================================
//
// Turns resolved dataset rows into SaleRecords. A row must carry a parseable
// positive amount and a non-blank jurisdiction to take part in the analysis;
// rows that don't are skipped and reported as issues rather than failing the
// run.
//
// ISSUE SEVERITY:
//   - "error"   = the row was skipped
//   - "warning" = the row was kept but a secondary cell was unusable
//
// =============================================================================

package validation

import (
	"fmt"
	"os"
	"strings"

	"github.com/ginjaninja78/taxease/internal/classifier"
	"github.com/ginjaninja78/taxease/internal/columns"
	"github.com/ginjaninja78/taxease/internal/dataset"
	"github.com/ginjaninja78/taxease/internal/types"
)

const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleMissingAmount       = "missing_amount"
	RuleInvalidAmount       = "invalid_amount"
	RuleMissingJurisdiction = "missing_jurisdiction"
	RuleInvalidDate         = "invalid_date"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// Issue is a single row-level finding.
type Issue struct {
	Severity  string `json:"severity" xml:"severity,attr"`
	RowNumber int    `json:"row" xml:"row,attr"`
	Field     string `json:"field" xml:"field,attr"`
	Value     string `json:"value" xml:"value,attr"`
	Rule      string `json:"rule" xml:"rule,attr"`
	Message   string `json:"message" xml:",chardata"`
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] Row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(i.Severity),
		i.RowNumber,
		i.Field,
		i.Message,
		i.Value,
	)
}

// Result is the outcome of building records from a dataset.
type Result struct {
	// Records are the usable rows, in dataset order.
	Records []types.SaleRecord

	// Issues lists every skipped row and warning.
	Issues []*Issue

	// Revenue sums every parseable amount, whether or not the row was kept,
	// so refunds reduce it.
	Revenue float64

	// ErrorCount and WarningCount tally Issues by severity.
	ErrorCount   int
	WarningCount int
}

// =============================================================================
// RECORD BUILDING
// =============================================================================

// BuildRecords validates every row and returns the usable SaleRecords.
//
// PARAMETERS:
//   - ds: The dataset to read.
//   - r:  Column resolver inferred from ds.Fields.
//
// RETURNS:
//   - A Result; never nil.
func BuildRecords(ds *dataset.Dataset, r *columns.Resolver) *Result {
	result := &Result{
		Records: make([]types.SaleRecord, 0),
		Issues:  make([]*Issue, 0),
	}
	if ds.Empty() {
		return result
	}

	for i, row := range ds.Rows {
		rowNum := i + 1
		rec, issues := buildRecord(rowNum, row, r)

		for _, iss := range issues {
			result.Issues = append(result.Issues, iss)
			if iss.Severity == SeverityError {
				result.ErrorCount++
			} else {
				result.WarningCount++
			}
		}

		if amt, ok := r.Amount(row); ok {
			result.Revenue += amt
		}
		if rec != nil {
			result.Records = append(result.Records, *rec)
		}
	}

	return result
}

func buildRecord(rowNum int, row dataset.Row, r *columns.Resolver) (*types.SaleRecord, []*Issue) {
	var issues []*Issue

	// =========================================================================
	// AMOUNT
	// =========================================================================

	amountField := r.Field(columns.RoleAmount)
	rawAmount := r.RawAmount(row)
	amount, ok := r.Amount(row)
	if !ok || amount <= 0 {
		rule, msg := RuleInvalidAmount, fmt.Sprintf("Value '%s' is not a valid amount", rawAmount)
		switch {
		case rawAmount == "":
			rule, msg = RuleMissingAmount, "Amount is empty"
		case ok:
			// Refunds and zero lines are kept out of the sales totals.
			msg = fmt.Sprintf("Amount %s must be greater than zero", rawAmount)
		}
		issues = append(issues, &Issue{
			Severity:  SeverityError,
			RowNumber: rowNum,
			Field:     amountField,
			Value:     rawAmount,
			Rule:      rule,
			Message:   msg,
		})
	}

	// =========================================================================
	// JURISDICTION
	// =========================================================================

	code := r.Jurisdiction(row)
	if code == "" {
		issues = append(issues, &Issue{
			Severity:  SeverityError,
			RowNumber: rowNum,
			Field:     r.Field(columns.RoleJurisdiction),
			Rule:      RuleMissingJurisdiction,
			Message:   "Jurisdiction is empty",
		})
	}

	if len(issues) > 0 {
		return nil, issues
	}

	// =========================================================================
	// OPTIONAL CELLS
	// =========================================================================

	date, rawDate := r.Date(row)
	if rawDate != "" && date.IsZero() {
		issues = append(issues, &Issue{
			Severity:  SeverityWarning,
			RowNumber: rowNum,
			Field:     r.Field(columns.RoleDate),
			Value:     rawDate,
			Rule:      RuleInvalidDate,
			Message:   fmt.Sprintf("Value '%s' is not a valid date", rawDate),
		})
	}

	product := r.Product(row)
	return &types.SaleRecord{
		Row:          rowNum,
		Amount:       amount,
		Jurisdiction: code,
		Locality:     r.Locality(row),
		County:       r.County(row),
		Product:      product,
		Category:     classifier.Classify(product),
		Date:         date,
		RawDate:      rawDate,
	}, issues
}

// =============================================================================
// ISSUE FORMATTING
// =============================================================================

// FormatIssues formats issues for display or logging.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No validation issues."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Validation completed with %d issue(s):\n\n", len(issues)))
	for i, iss := range issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, iss.Error()))
	}
	return builder.String()
}

// WriteIssueLog writes FormatIssues output to filePath.
func WriteIssueLog(issues []*Issue, filePath string) error {
	if err := os.WriteFile(filePath, []byte(FormatIssues(issues)), 0644); err != nil {
		return fmt.Errorf("failed to write issue log: %w", err)
	}
	return nil
}
