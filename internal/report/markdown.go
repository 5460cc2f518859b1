package report

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/columns"
	"github.com/ginjaninja78/taxease/internal/textscan"
	"github.com/ginjaninja78/taxease/internal/types"
)

// maxIssueLines caps the issue list in human-readable reports.
const maxIssueLines = 50

// Markdown renders an analysis result as a markdown document.
func Markdown(res *analysis.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Sales Tax Nexus Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", cell(res.Source))
	fmt.Fprintf(&b, "- **Run ID:** %s\n", res.ID)
	fmt.Fprintf(&b, "- **Generated:** %s\n\n", res.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	if !res.Success {
		fmt.Fprintf(&b, "## Analysis failed\n\n%s\n", res.Error)
		return b.String()
	}

	// Summary
	s := res.Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Transactions | %d |\n", s.TotalTransactions)
	fmt.Fprintf(&b, "| Usable transactions | %d |\n", s.ValidTransactions)
	fmt.Fprintf(&b, "| Total revenue | %s |\n", money(s.TotalRevenue))
	fmt.Fprintf(&b, "| Jurisdictions with sales | %d |\n", s.StatesWithSales)
	fmt.Fprintf(&b, "| Jurisdictions with nexus | %d |\n", s.NexusStates)
	fmt.Fprintf(&b, "| Filings required | %d |\n", s.FilingRequired)
	fmt.Fprintf(&b, "| Row errors | %d |\n", s.ErrorIssues)
	fmt.Fprintf(&b, "| Row warnings | %d |\n\n", s.WarningIssues)

	// Columns
	b.WriteString("## Detected Columns\n\n")
	b.WriteString("| Role | Column |\n|---|---|\n")
	for _, role := range columns.Roles {
		field, ok := res.Columns[string(role)]
		if !ok {
			field = "_not found_ (looked for: " + strings.Join(columns.Keywords(role), ", ") + ")"
		}
		fmt.Fprintf(&b, "| %s | %s |\n", role, cell(field))
	}
	b.WriteString("\n")

	// Nexus
	b.WriteString("## Nexus Analysis\n\n")
	if len(res.NexusAnalysis) == 0 {
		b.WriteString("No recognized jurisdictions in the data.\n\n")
	} else {
		b.WriteString("| Jurisdiction | Sales | Threshold | Nexus | Excess | Base rate | Avg local rate | Combined rate |\n")
		b.WriteString("|---|---:|---:|:---:|---:|---:|---:|---:|\n")
		for _, code := range slices.Sorted(maps.Keys(res.NexusAnalysis)) {
			n := res.NexusAnalysis[code]
			fmt.Fprintf(&b, "| %s (%s) | %s | %s | %s | %s | %s | %s | %s |\n",
				cell(n.Name), n.Code, money(n.TotalSales), threshold(n.Threshold), yesNo(n.HasNexus),
				money(n.ExcessAmount), pct(n.BaseRate), pct(n.AvgLocalRate), pct(n.CombinedRate))
		}
		b.WriteString("\n")
	}

	// Obligations
	b.WriteString("## Tax Obligations\n\n")
	if len(res.TaxObligations) == 0 {
		b.WriteString("No tax obligations computed.\n\n")
	} else {
		b.WriteString("| Jurisdiction | Sales | Taxable | Non-taxable | State tax | Local tax | Total tax |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
		for _, code := range slices.Sorted(maps.Keys(res.TaxObligations)) {
			o := res.TaxObligations[code]
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				o.Code, money(o.TotalSales), money(o.TaxableSales), money(o.NonTaxableSales),
				money(o.JurisdictionTax), money(o.LocalTax), money(o.TotalTax))
		}
		b.WriteString("\n### By Category\n\n")
		b.WriteString("| Jurisdiction | Category | Taxable | Sales | Tax owed |\n|---|---|:---:|---:|---:|\n")
		for _, code := range slices.Sorted(maps.Keys(res.TaxObligations)) {
			o := res.TaxObligations[code]
			for _, cat := range types.Categories {
				co, ok := o.Categories[cat]
				if !ok {
					continue
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", code, cat, yesNo(co.Taxable), money(co.Sales), money(co.TaxOwed))
			}
		}
		b.WriteString("\n")
	}

	// Filing
	b.WriteString("## Filing Requirements\n\n")
	if len(res.FilingRequirements) == 0 {
		b.WriteString("No filing requirements.\n\n")
	} else {
		b.WriteString("| Jurisdiction | Frequency | Next due | Estimated tax | Priority | Status |\n")
		b.WriteString("|---|---|---|---:|---|---|\n")
		for _, f := range res.FilingRequirements {
			fmt.Fprintf(&b, "| %s (%s) | %s | %s | %s | %s | %s |\n",
				cell(f.Name), f.Code, f.Frequency, f.DueDate.Format("2006-01-02"), money(f.EstimatedTax), f.Priority, f.Status)
		}
		b.WriteString("\n")
	}

	// Compliance
	c := res.ComplianceStatus
	b.WriteString("## Compliance\n\n")
	fmt.Fprintf(&b, "- Jurisdictions with sales: %d\n", c.StatesWithSales)
	fmt.Fprintf(&b, "- Jurisdictions with nexus: %d\n", c.NexusStates)
	if c.RegistrationTracking == types.RegistrationNotTracked {
		b.WriteString("- Registrations: not tracked\n\n")
	} else {
		fmt.Fprintf(&b, "- Registered: %d (%.1f%%)\n\n", c.RegisteredStates, c.CompliancePercentage)
	}

	// Flagged
	if len(res.FlaggedTransactions) > 0 {
		fmt.Fprintf(&b, "## High-Value Transactions (over %s)\n\n", money(res.FlagThreshold))
		b.WriteString("| Row | Amount |\n|---:|---:|\n")
		for _, f := range res.FlaggedTransactions {
			fmt.Fprintf(&b, "| %d | %s |\n", f.Row, money(f.Amount))
		}
		b.WriteString("\n")
	}

	// Issues
	if len(res.Issues) > 0 {
		fmt.Fprintf(&b, "## Skipped Rows and Warnings (%d)\n\n", len(res.Issues))
		for i, iss := range res.Issues {
			if i == maxIssueLines {
				fmt.Fprintf(&b, "- ... %d more\n", len(res.Issues)-maxIssueLines)
				break
			}
			fmt.Fprintf(&b, "- %s\n", cell(iss.Error()))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// TextMarkdown renders a text-scan result as a markdown document.
func TextMarkdown(res *textscan.TextResult) string {
	var b strings.Builder

	b.WriteString("# Text Scan Report\n\n")
	fmt.Fprintf(&b, "- **Source:** %s\n", cell(res.Source))
	fmt.Fprintf(&b, "- **Lines:** %d\n", res.Lines)
	fmt.Fprintf(&b, "- **Threshold:** %s\n\n", money(res.Threshold))

	if !res.Success {
		fmt.Fprintf(&b, "## Scan failed\n\n%s\n", res.Error)
		return b.String()
	}

	b.WriteString("## Flagged Lines\n\n")
	if len(res.Flagged) == 0 {
		b.WriteString("No lines above the threshold.\n\n")
	} else {
		b.WriteString("| Line | Amount | Content |\n|---:|---:|---|\n")
		for _, m := range res.Flagged {
			fmt.Fprintf(&b, "| %d | %s | %s |\n", m.LineNumber, money(m.Amount), cell(m.Content))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Preview\n\n```\n")
	b.WriteString(strings.ReplaceAll(res.Preview, "```", "'''"))
	b.WriteString("\n```\n")
	return b.String()
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}
	if neg {
		return "-$" + grouped.String() + frac
	}
	return "$" + grouped.String() + frac
}

func pct(rate float64) string {
	return fmt.Sprintf("%.3f%%", rate*100)
}

func threshold(v float64) string {
	if v == 0 {
		return "none"
	}
	return money(v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// cell escapes text for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
