package reference

import "github.com/ginjaninja78/taxease/internal/types"

// defaultJurisdictions carries base rates and economic-nexus thresholds.
// A zero threshold marks a jurisdiction without a statewide sales tax.
var defaultJurisdictions = []types.Jurisdiction{
	{Code: "AK", Name: "Alaska", Rate: 0, Threshold: 0},
	{Code: "AZ", Name: "Arizona", Rate: 0.056, Threshold: 100000},
	{Code: "CA", Name: "California", Rate: 0.0725, Threshold: 500000},
	{Code: "CO", Name: "Colorado", Rate: 0.029, Threshold: 100000},
	{Code: "DE", Name: "Delaware", Rate: 0, Threshold: 0},
	{Code: "FL", Name: "Florida", Rate: 0.06, Threshold: 100000},
	{Code: "GA", Name: "Georgia", Rate: 0.04, Threshold: 100000},
	{Code: "IL", Name: "Illinois", Rate: 0.0625, Threshold: 100000},
	{Code: "IN", Name: "Indiana", Rate: 0.07, Threshold: 100000},
	{Code: "MA", Name: "Massachusetts", Rate: 0.0625, Threshold: 100000},
	{Code: "MI", Name: "Michigan", Rate: 0.06, Threshold: 100000},
	{Code: "MN", Name: "Minnesota", Rate: 0.06875, Threshold: 100000},
	{Code: "MT", Name: "Montana", Rate: 0, Threshold: 0},
	{Code: "NC", Name: "North Carolina", Rate: 0.0475, Threshold: 100000},
	{Code: "NH", Name: "New Hampshire", Rate: 0, Threshold: 0},
	{Code: "NJ", Name: "New Jersey", Rate: 0.06625, Threshold: 100000},
	{Code: "NY", Name: "New York", Rate: 0.04, Threshold: 500000},
	{Code: "OH", Name: "Ohio", Rate: 0.0575, Threshold: 100000},
	{Code: "OR", Name: "Oregon", Rate: 0, Threshold: 0},
	{Code: "PA", Name: "Pennsylvania", Rate: 0.06, Threshold: 100000},
	{Code: "TN", Name: "Tennessee", Rate: 0.07, Threshold: 100000},
	{Code: "TX", Name: "Texas", Rate: 0.0625, Threshold: 500000},
	{Code: "VA", Name: "Virginia", Rate: 0.053, Threshold: 100000},
	{Code: "WA", Name: "Washington", Rate: 0.065, Threshold: 100000},
}

type localityRow struct {
	code     string
	locality string
	rates    types.LocalityRates
}

var defaultLocalities = []localityRow{
	{"CA", "Los Angeles", types.LocalityRates{County: 0.0025, District: 0.01}},
	{"CA", "San Francisco", types.LocalityRates{County: 0.0025, District: 0.01375}},
	{"CA", "San Diego", types.LocalityRates{County: 0.0025, District: 0.005}},
	{"CA", "San Jose", types.LocalityRates{County: 0.0025, District: 0.0175}},
	{"NY", "New York", types.LocalityRates{City: 0.045, District: 0.00375}},
	{"NY", "Buffalo", types.LocalityRates{County: 0.0475}},
	{"TX", "Houston", types.LocalityRates{City: 0.01, District: 0.01}},
	{"TX", "Dallas", types.LocalityRates{City: 0.01, District: 0.01}},
	{"TX", "Austin", types.LocalityRates{City: 0.01, District: 0.01}},
	{"FL", "Miami", types.LocalityRates{County: 0.01}},
	{"FL", "Orlando", types.LocalityRates{County: 0.005}},
	{"FL", "Tampa", types.LocalityRates{County: 0.015}},
	{"WA", "Seattle", types.LocalityRates{City: 0.0215, County: 0.001, District: 0.016}},
	{"WA", "Spokane", types.LocalityRates{City: 0.002, County: 0.0019, District: 0.0104}},
	{"IL", "Chicago", types.LocalityRates{City: 0.0125, County: 0.0175, District: 0.01}},
	{"PA", "Philadelphia", types.LocalityRates{City: 0.02}},
	{"PA", "Pittsburgh", types.LocalityRates{County: 0.01}},
	{"OH", "Columbus", types.LocalityRates{County: 0.0175}},
	{"OH", "Cleveland", types.LocalityRates{County: 0.025}},
	{"GA", "Atlanta", types.LocalityRates{City: 0.015, County: 0.03, District: 0.0}},
	{"CO", "Denver", types.LocalityRates{City: 0.04812, District: 0.011}},
	{"AZ", "Phoenix", types.LocalityRates{City: 0.023, County: 0.007}},
	{"TN", "Nashville", types.LocalityRates{County: 0.0225}},
	{"MN", "Minneapolis", types.LocalityRates{City: 0.005, County: 0.0015, District: 0.0115}},
}

type taxabilityRow struct {
	code     string
	category types.Category
	taxable  bool
}

// defaultTaxability lists only the exceptions to DefaultTaxable plus a few
// explicit confirmations.
var defaultTaxability = []taxabilityRow{
	{"CA", types.CategorySaaS, false},
	{"CA", types.CategoryConsulting, false},
	{"CO", types.CategorySaaS, false},
	{"FL", types.CategorySaaS, false},
	{"FL", types.CategoryConsulting, false},
	{"GA", types.CategorySaaS, false},
	{"GA", types.CategoryConsulting, false},
	{"IL", types.CategorySaaS, false},
	{"IL", types.CategoryConsulting, false},
	{"IN", types.CategorySaaS, false},
	{"IN", types.CategoryConsulting, false},
	{"MA", types.CategorySaaS, true},
	{"MA", types.CategoryConsulting, false},
	{"MI", types.CategorySaaS, false},
	{"MI", types.CategoryConsulting, false},
	{"MN", types.CategorySaaS, false},
	{"MN", types.CategoryConsulting, false},
	{"NC", types.CategorySaaS, false},
	{"NC", types.CategoryConsulting, false},
	{"NJ", types.CategorySaaS, false},
	{"NJ", types.CategoryConsulting, false},
	{"NY", types.CategorySaaS, true},
	{"NY", types.CategoryConsulting, false},
	{"OH", types.CategorySaaS, true},
	{"OH", types.CategoryConsulting, false},
	{"PA", types.CategorySaaS, true},
	{"PA", types.CategoryConsulting, false},
	{"TN", types.CategorySaaS, true},
	{"TN", types.CategoryConsulting, false},
	{"TX", types.CategorySaaS, true},
	{"TX", types.CategoryConsulting, false},
	{"VA", types.CategorySaaS, false},
	{"VA", types.CategoryConsulting, false},
	{"WA", types.CategorySaaS, true},
	{"WA", types.CategoryConsulting, true},
	{"AZ", types.CategoryConsulting, false},
}

// Default returns the built-in reference tables.
func Default() *Tables {
	b := NewBuilder()
	for _, j := range defaultJurisdictions {
		b.Jurisdiction(j)
	}
	for _, l := range defaultLocalities {
		b.Locality(l.code, l.locality, l.rates)
	}
	for _, t := range defaultTaxability {
		b.Taxable(t.code, t.category, t.taxable)
	}
	return b.Build()
}
