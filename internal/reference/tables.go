// =============================================================================
// TaxEase Analyzer - Reference Tables
// =============================================================================
//
// Static reference data used by every analyzer stage:
//   1. Jurisdictions: base tax rate and economic-nexus threshold
//   2. Localities:    additive city/county/district rates
//   3. Taxability:    (jurisdiction, category) -> taxable flag
//
// A Tables value is built once at startup (Default or LoadFile) and then
// shared read-only between analysis runs. Nothing in this package mutates a
// Tables value after construction.
//
// =============================================================================

package reference

import (
	"slices"
	"strings"

	"github.com/ginjaninja78/taxease/internal/types"
)

// DefaultTaxable is the taxability assumed for (jurisdiction, category)
// pairs that the matrix does not list. Unlisted pairs are taxed.
const DefaultTaxable = true

// Tables is the immutable set of reference data.
type Tables struct {
	jurisdictions map[string]types.Jurisdiction
	localities    map[localityKey]localityValue
	taxability    map[taxabilityKey]bool
}

type localityKey struct {
	code     string
	locality string
}

type localityValue struct {
	name  string
	rates types.LocalityRates
}

type taxabilityKey struct {
	code     string
	category types.Category
}

// Builder accumulates reference data before freezing it into Tables.
type Builder struct {
	t *Tables
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{t: &Tables{
		jurisdictions: make(map[string]types.Jurisdiction),
		localities:    make(map[localityKey]localityValue),
		taxability:    make(map[taxabilityKey]bool),
	}}
}

// Jurisdiction adds or replaces a jurisdiction.
func (b *Builder) Jurisdiction(j types.Jurisdiction) *Builder {
	j.Code = normalizeCode(j.Code)
	b.t.jurisdictions[j.Code] = j
	return b
}

// Locality adds or replaces a locality's add-on rates.
func (b *Builder) Locality(code, locality string, rates types.LocalityRates) *Builder {
	name := strings.Join(strings.Fields(locality), " ")
	b.t.localities[localityKey{normalizeCode(code), normalizeLocality(locality)}] = localityValue{name: name, rates: rates}
	return b
}

// Taxable records the taxability of a category in a jurisdiction.
func (b *Builder) Taxable(code string, category types.Category, taxable bool) *Builder {
	b.t.taxability[taxabilityKey{normalizeCode(code), category}] = taxable
	return b
}

// Build returns the finished tables. The builder must not be used afterwards.
func (b *Builder) Build() *Tables {
	t := b.t
	b.t = nil
	return t
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Jurisdiction returns the jurisdiction for a code, if known.
func (t *Tables) Jurisdiction(code string) (types.Jurisdiction, bool) {
	j, ok := t.jurisdictions[normalizeCode(code)]
	return j, ok
}

// Jurisdictions returns every jurisdiction sorted by code.
func (t *Tables) Jurisdictions() []types.Jurisdiction {
	out := make([]types.Jurisdiction, 0, len(t.jurisdictions))
	for _, j := range t.jurisdictions {
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b types.Jurisdiction) int { return strings.Compare(a.Code, b.Code) })
	return out
}

// LocalityRates returns the add-on rates for a locality. Unknown localities
// (and the empty locality) have all-zero rates.
func (t *Tables) LocalityRates(code, locality string) types.LocalityRates {
	if locality == "" {
		return types.LocalityRates{}
	}
	return t.localities[localityKey{normalizeCode(code), normalizeLocality(locality)}].rates
}

// LocalityEntry is one row of the locality table, used for listing.
type LocalityEntry struct {
	Code     string              `json:"code" yaml:"code"`
	Locality string              `json:"locality" yaml:"locality"`
	Rates    types.LocalityRates `json:"rates" yaml:"rates"`
}

// Localities returns every locality entry sorted by code then name.
func (t *Tables) Localities() []LocalityEntry {
	out := make([]LocalityEntry, 0, len(t.localities))
	for k, v := range t.localities {
		out = append(out, LocalityEntry{Code: k.code, Locality: v.name, Rates: v.rates})
	}
	slices.SortFunc(out, func(a, b LocalityEntry) int {
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(a.Locality, b.Locality)
	})
	return out
}

// IsTaxable reports whether a category is taxable in a jurisdiction,
// falling back to DefaultTaxable for unlisted pairs.
func (t *Tables) IsTaxable(code string, category types.Category) bool {
	if taxable, ok := t.taxability[taxabilityKey{normalizeCode(code), category}]; ok {
		return taxable
	}
	return DefaultTaxable
}

// TaxabilityEntry is one explicit row of the taxability matrix.
type TaxabilityEntry struct {
	Code     string         `json:"code" yaml:"code"`
	Category types.Category `json:"category" yaml:"category"`
	Taxable  bool           `json:"taxable" yaml:"taxable"`
}

// Taxability returns the explicit matrix entries sorted by code then category.
func (t *Tables) Taxability() []TaxabilityEntry {
	out := make([]TaxabilityEntry, 0, len(t.taxability))
	for k, v := range t.taxability {
		out = append(out, TaxabilityEntry{Code: k.code, Category: k.category, Taxable: v})
	}
	slices.SortFunc(out, func(a, b TaxabilityEntry) int {
		if c := strings.Compare(a.Code, b.Code); c != 0 {
			return c
		}
		return strings.Compare(string(a.Category), string(b.Category))
	})
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Locality keys compare case-insensitively so that "los angeles" in a
// reference file matches "Los Angeles" coming out of the column resolver.
func normalizeLocality(locality string) string {
	return strings.ToLower(strings.Join(strings.Fields(locality), " "))
}
