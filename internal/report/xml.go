// =============================================================================
// TaxEase Analyzer - XML Report
// =============================================================================
//
// XML STRUCTURE:
//
//   <?xml version="1.0" encoding="UTF-8"?>
//   <nexusReport id="..." source="sales.csv" generatedAt="..." success="true">
//     <summary totalTransactions="7" totalRevenue="..." .../>
//     <columns>
//       <column role="amount" field="Sale Amount"/>
//     </columns>
//     <jurisdiction code="CA" name="California">
//       <nexus>...</nexus>                  <!-- NexusResult -->
//       <obligation totalSales="..." ...>
//         <category name="software" .../>
//       </obligation>
//     </jurisdiction>
//     <filing code="CA" name="California">...</filing>
//     <compliance>...</compliance>
//     <flagged row="1" amount="400000"/>
//     <issue severity="error" row="6" ...>Jurisdiction is empty</issue>
//   </nexusReport>
//
// The engine types hold maps, which encoding/xml cannot marshal, so the
// document is built from dedicated element structs.
//
// =============================================================================

package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/columns"
	"github.com/ginjaninja78/taxease/internal/textscan"
	"github.com/ginjaninja78/taxease/internal/types"
	"github.com/ginjaninja78/taxease/internal/validation"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
	}
}

// =============================================================================
// ELEMENTS
// =============================================================================

type xmlReport struct {
	XMLName     xml.Name `xml:"nexusReport"`
	ID          string   `xml:"id,attr"`
	Source      string   `xml:"source,attr"`
	GeneratedAt string   `xml:"generatedAt,attr"`
	Success     bool     `xml:"success,attr"`

	Summary       *xmlSummary               `xml:"summary,omitempty"`
	Columns       []xmlColumn               `xml:"columns>column"`
	Jurisdictions []xmlJurisdiction         `xml:"jurisdiction"`
	Filings       []types.FilingRequirement `xml:"filing"`
	Compliance    *types.ComplianceStatus   `xml:"compliance,omitempty"`
	Flagged       []xmlFlagged              `xml:"flagged"`
	Issues        []*validation.Issue       `xml:"issue"`
	Error         string                    `xml:"error,omitempty"`
}

type xmlSummary struct {
	TotalTransactions int     `xml:"totalTransactions,attr"`
	ValidTransactions int     `xml:"validTransactions,attr"`
	TotalRevenue      float64 `xml:"totalRevenue,attr"`
	StatesWithSales   int     `xml:"statesWithSales,attr"`
	NexusStates       int     `xml:"nexusStates,attr"`
	FilingRequired    int     `xml:"filingRequired,attr"`
	ErrorIssues       int     `xml:"errorIssues,attr"`
	WarningIssues     int     `xml:"warningIssues,attr"`
}

type xmlColumn struct {
	Role  string `xml:"role,attr"`
	Field string `xml:"field,attr"`
}

type xmlJurisdiction struct {
	Code       string             `xml:"code,attr"`
	Name       string             `xml:"name,attr"`
	Nexus      *types.NexusResult `xml:"nexus,omitempty"`
	Obligation *xmlObligation     `xml:"obligation,omitempty"`
}

type xmlObligation struct {
	TotalSales      float64                    `xml:"totalSales,attr"`
	TaxableSales    float64                    `xml:"taxableSales,attr"`
	NonTaxableSales float64                    `xml:"nonTaxableSales,attr"`
	JurisdictionTax float64                    `xml:"jurisdictionTax,attr"`
	LocalTax        float64                    `xml:"localTax,attr"`
	TotalTax        float64                    `xml:"totalTax,attr"`
	Categories      []xmlCategory              `xml:"category"`
	Localities      []types.LocalityObligation `xml:"locality"`
}

type xmlCategory struct {
	Name string `xml:"name,attr"`
	types.CategoryObligation
}

type xmlFlagged struct {
	Row    int     `xml:"row,attr"`
	Amount float64 `xml:"amount,attr"`
}

type xmlTextScan struct {
	XMLName   xml.Name     `xml:"textScan"`
	Source    string       `xml:"source,attr"`
	Lines     int          `xml:"lines,attr"`
	Threshold float64      `xml:"threshold,attr"`
	Success   bool         `xml:"success,attr"`
	Mentions  []xmlMention `xml:"mention"`
	Preview   string       `xml:"preview"`
	Error     string       `xml:"error,omitempty"`
}

type xmlMention struct {
	Line    int     `xml:"line,attr"`
	Amount  float64 `xml:"amount,attr"`
	Content string  `xml:",chardata"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// WriteXML writes an analysis result as XML with the default options.
func WriteXML(w io.Writer, res *analysis.Result) error {
	return WriteXMLWithOptions(w, res, DefaultXMLOptions())
}

// WriteXMLWithOptions writes an analysis result as XML.
func WriteXMLWithOptions(w io.Writer, res *analysis.Result, options XMLOptions) error {
	return encode(w, buildReport(res), options)
}

// WriteTextXML writes a text-scan result as XML.
func WriteTextXML(w io.Writer, res *textscan.TextResult) error {
	doc := xmlTextScan{
		Source:    res.Source,
		Lines:     res.Lines,
		Threshold: res.Threshold,
		Success:   res.Success,
		Preview:   res.Preview,
		Error:     res.Error,
	}
	for _, m := range res.Flagged {
		doc.Mentions = append(doc.Mentions, xmlMention{Line: m.LineNumber, Amount: m.Amount, Content: m.Content})
	}
	return encode(w, doc, DefaultXMLOptions())
}

func encode(w io.Writer, doc any, options XMLOptions) error {
	if options.IncludeXMLDeclaration {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return fmt.Errorf("failed to write XML: %w", err)
		}
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", options.Indent)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to marshal XML: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

// buildReport constructs the XML document structure.
func buildReport(res *analysis.Result) xmlReport {
	doc := xmlReport{
		ID:          res.ID,
		Source:      res.Source,
		GeneratedAt: res.GeneratedAt.Format(time.RFC3339),
		Success:     res.Success,
		Error:       res.Error,
		Filings:     res.FilingRequirements,
		Issues:      res.Issues,
	}
	if !res.Success {
		return doc
	}

	s := res.Summary
	doc.Summary = &xmlSummary{
		TotalTransactions: s.TotalTransactions,
		ValidTransactions: s.ValidTransactions,
		TotalRevenue:      s.TotalRevenue,
		StatesWithSales:   s.StatesWithSales,
		NexusStates:       s.NexusStates,
		FilingRequired:    s.FilingRequired,
		ErrorIssues:       s.ErrorIssues,
		WarningIssues:     s.WarningIssues,
	}
	compliance := res.ComplianceStatus
	doc.Compliance = &compliance

	for _, role := range columns.Roles {
		if field, ok := res.Columns[string(role)]; ok {
			doc.Columns = append(doc.Columns, xmlColumn{Role: string(role), Field: field})
		}
	}

	codes := make(map[string]struct{})
	for code := range res.NexusAnalysis {
		codes[code] = struct{}{}
	}
	for code := range res.TaxObligations {
		codes[code] = struct{}{}
	}
	for _, code := range slices.Sorted(maps.Keys(codes)) {
		doc.Jurisdictions = append(doc.Jurisdictions, buildJurisdiction(code, res))
	}

	for _, f := range res.FlaggedTransactions {
		doc.Flagged = append(doc.Flagged, xmlFlagged{Row: f.Row, Amount: f.Amount})
	}
	return doc
}

func buildJurisdiction(code string, res *analysis.Result) xmlJurisdiction {
	j := xmlJurisdiction{Code: code}

	if n, ok := res.NexusAnalysis[code]; ok {
		j.Name = n.Name
		j.Nexus = &n
	}
	if o, ok := res.TaxObligations[code]; ok {
		j.Name = o.Name
		xo := &xmlObligation{
			TotalSales:      o.TotalSales,
			TaxableSales:    o.TaxableSales,
			NonTaxableSales: o.NonTaxableSales,
			JurisdictionTax: o.JurisdictionTax,
			LocalTax:        o.LocalTax,
			TotalTax:        o.TotalTax,
			Localities:      o.Localities,
		}
		for _, cat := range types.Categories {
			if co, ok := o.Categories[cat]; ok {
				xo.Categories = append(xo.Categories, xmlCategory{Name: string(cat), CategoryObligation: co})
			}
		}
		j.Obligation = xo
	}
	return j
}
