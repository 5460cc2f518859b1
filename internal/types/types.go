// =============================================================================
// TaxEase Analyzer - Shared Types
// =============================================================================
//
// This package contains the data model shared by the analyzer stages. Types
// defined here are produced and consumed by:
//   - columns / validation (SaleRecord)
//   - nexus (NexusResult)
//   - obligation (TaxObligation)
//   - filing (FilingRequirement)
//   - compliance (ComplianceStatus)
//   - report / server (everything, for rendering)
//
// Keeping them in one leaf package avoids import cycles between the stages.
//
// =============================================================================

package types

import "time"

// =============================================================================
// PRODUCT CATEGORIES
// =============================================================================

// Category is one of the closed set of product categories used by the
// taxability matrix.
type Category string

const (
	CategorySoftware      Category = "software"
	CategorySaaS          Category = "saas"
	CategoryPhysicalGoods Category = "physical_goods"
	CategoryConsulting    Category = "consulting"
)

// Categories lists every category in a stable display order.
var Categories = []Category{
	CategorySoftware,
	CategorySaaS,
	CategoryPhysicalGoods,
	CategoryConsulting,
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategorySoftware, CategorySaaS, CategoryPhysicalGoods, CategoryConsulting:
		return true
	}
	return false
}

// =============================================================================
// INPUT TYPES
// =============================================================================

// SaleRecord is one usable input row after column resolution.
type SaleRecord struct {
	// Row is the 1-based data row number in the source dataset.
	Row int

	// Amount is the sale amount in the single supported currency.
	Amount float64

	// Jurisdiction is the upper-cased jurisdiction code, e.g. "CA".
	Jurisdiction string

	// Locality is the title-cased city/municipality, or "" when unknown.
	Locality string

	// County is the title-cased county name, or "" when unknown.
	County string

	// Product is the raw product description.
	Product string

	// Category is the classified product category.
	Category Category

	// Date is the parsed sale date; zero when absent or unparseable.
	Date time.Time

	// RawDate is the date cell as it appeared in the input.
	RawDate string
}

// =============================================================================
// REFERENCE TYPES
// =============================================================================

// Jurisdiction is static metadata for one taxing jurisdiction.
type Jurisdiction struct {
	Code string `json:"code" yaml:"code" xml:"code,attr"`
	Name string `json:"name" yaml:"name" xml:"name,attr"`

	// Rate is the base sales-tax rate as a fraction (0.0725 = 7.25%).
	Rate float64 `json:"rate" yaml:"rate" xml:"rate,attr"`

	// Threshold is the economic-nexus sales threshold. Zero means the
	// jurisdiction has no sales-tax regime, not that every seller is registered.
	Threshold float64 `json:"threshold" yaml:"threshold" xml:"threshold,attr"`
}

// LocalityRates holds the additive local rates for one locality.
type LocalityRates struct {
	City     float64 `json:"city" yaml:"city" xml:"city,attr"`
	County   float64 `json:"county" yaml:"county" xml:"county,attr"`
	District float64 `json:"district" yaml:"district" xml:"district,attr"`
}

// Total returns the combined local add-on rate.
func (r LocalityRates) Total() float64 {
	return r.City + r.County + r.District
}

// =============================================================================
// NEXUS TYPES
// =============================================================================

// LocalitySales is one locality's contribution to a jurisdiction's sales.
type LocalitySales struct {
	Locality  string        `json:"locality" xml:"locality,attr"`
	Sales     float64       `json:"sales" xml:"sales,attr"`
	Rates     LocalityRates `json:"rates" xml:"rates"`
	LocalRate float64       `json:"local_rate" xml:"localRate,attr"`
}

// NexusResult is the per-jurisdiction outcome of the nexus analysis.
type NexusResult struct {
	Code         string          `json:"code" xml:"code,attr"`
	Name         string          `json:"name" xml:"name,attr"`
	TotalSales   float64         `json:"total_sales" xml:"totalSales"`
	Threshold    float64         `json:"threshold" xml:"threshold"`
	HasNexus     bool            `json:"has_nexus" xml:"hasNexus"`
	ExcessAmount float64         `json:"excess_amount" xml:"excessAmount"`
	BaseRate     float64         `json:"base_rate" xml:"baseRate"`
	AvgLocalRate float64         `json:"avg_local_rate" xml:"avgLocalRate"`
	CombinedRate float64         `json:"combined_rate" xml:"combinedRate"`
	Localities   []LocalitySales `json:"localities" xml:"locality"`
}

// =============================================================================
// OBLIGATION TYPES
// =============================================================================

// CategoryObligation aggregates one product category within a jurisdiction.
type CategoryObligation struct {
	Sales        float64 `json:"sales" xml:"sales,attr"`
	TaxableSales float64 `json:"taxable_sales" xml:"taxableSales,attr"`
	TaxOwed      float64 `json:"tax_owed" xml:"taxOwed,attr"`
	Taxable      bool    `json:"taxable" xml:"taxable,attr"`
}

// LocalityObligation is one (locality, category) grouping within a jurisdiction.
type LocalityObligation struct {
	Locality        string   `json:"locality" xml:"locality,attr"`
	Category        Category `json:"category" xml:"category,attr"`
	Taxable         bool     `json:"taxable" xml:"taxable,attr"`
	Sales           float64  `json:"sales" xml:"sales,attr"`
	LocalRate       float64  `json:"local_rate" xml:"localRate,attr"`
	JurisdictionTax float64  `json:"jurisdiction_tax" xml:"jurisdictionTax,attr"`
	LocalTax        float64  `json:"local_tax" xml:"localTax,attr"`
}

// TaxObligation is the per-jurisdiction tax computation.
type TaxObligation struct {
	Code            string                          `json:"code"`
	Name            string                          `json:"name"`
	TotalSales      float64                         `json:"total_sales"`
	TaxableSales    float64                         `json:"taxable_sales"`
	NonTaxableSales float64                         `json:"non_taxable_sales"`
	JurisdictionTax float64                         `json:"jurisdiction_tax"`
	LocalTax        float64                         `json:"local_tax"`
	TotalTax        float64                         `json:"total_tax"`
	Categories      map[Category]CategoryObligation `json:"categories"`
	Localities      []LocalityObligation            `json:"localities"`
}

// =============================================================================
// FILING AND COMPLIANCE TYPES
// =============================================================================

// Frequency is a filing frequency tier.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyQuarterly Frequency = "Quarterly"
	FrequencyAnnual    Frequency = "Annual"
)

// Priority is a filing priority tier.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
)

// FilingRequirement is a derived filing obligation for a nexus jurisdiction.
type FilingRequirement struct {
	Code         string    `json:"code" xml:"code,attr"`
	Name         string    `json:"name" xml:"name,attr"`
	Frequency    Frequency `json:"frequency" xml:"frequency"`
	DueDate      time.Time `json:"due_date" xml:"dueDate"`
	EstimatedTax float64   `json:"estimated_tax" xml:"estimatedTax"`
	Status       string    `json:"status" xml:"status"`
	Priority     Priority  `json:"priority" xml:"priority"`
	TotalSales   float64   `json:"total_sales" xml:"totalSales"`
	CombinedRate float64   `json:"combined_rate" xml:"combinedRate"`
}

// RegistrationNotTracked marks compliance figures that are not computed
// because registrations are not recorded anywhere.
const RegistrationNotTracked = "not_tracked"

// ComplianceStatus summarizes registration exposure across jurisdictions.
type ComplianceStatus struct {
	StatesWithSales      int     `json:"states_with_sales" xml:"statesWithSales"`
	NexusStates          int     `json:"nexus_states" xml:"nexusStates"`
	RegisteredStates     int     `json:"registered_states" xml:"registeredStates"`
	CompliancePercentage float64 `json:"compliance_percentage" xml:"compliancePercentage"`
	RegistrationTracking string  `json:"registration_tracking" xml:"registrationTracking"`
}

// =============================================================================
// TEXT FLAGGING TYPES
// =============================================================================

// MonetaryMention is a line of free text that mentions a large amount.
type MonetaryMention struct {
	LineNumber int     `json:"line_number"`
	Content    string  `json:"content_line"`
	Amount     float64 `json:"amount"`
}
