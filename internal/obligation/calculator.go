// Package obligation computes per-jurisdiction tax obligations from sale
// records, splitting sales by product category and locality and applying
// the taxability matrix to each group.
package obligation

import (
	"errors"
	"slices"
	"strings"

	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
)

// ErrNoTables is returned when Calculate is called without reference tables.
var ErrNoTables = errors.New("reference tables are required")

type groupKey struct {
	code     string
	locality string
	category types.Category
}

// Calculate returns one TaxObligation per recognized jurisdiction, keyed by
// code. Unknown jurisdictions and non-positive amounts are skipped.
func Calculate(records []types.SaleRecord, tables *reference.Tables) (map[string]types.TaxObligation, error) {
	if tables == nil {
		return nil, ErrNoTables
	}

	groups := make(map[groupKey]float64)
	for _, rec := range records {
		if rec.Amount <= 0 {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(rec.Jurisdiction))
		if _, ok := tables.Jurisdiction(code); !ok {
			continue
		}
		cat := rec.Category
		if !cat.Valid() {
			cat = types.CategoryPhysicalGoods
		}
		groups[groupKey{code, rec.Locality, cat}] += rec.Amount
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)

	obligations := make(map[string]types.TaxObligation)
	for _, k := range keys {
		sales := groups[k]
		j, _ := tables.Jurisdiction(k.code)

		ob, ok := obligations[k.code]
		if !ok {
			ob = types.TaxObligation{
				Code:       j.Code,
				Name:       j.Name,
				Categories: make(map[types.Category]types.CategoryObligation),
				Localities: make([]types.LocalityObligation, 0),
			}
		}

		taxable := tables.IsTaxable(k.code, k.category)
		localRate := tables.LocalityRates(k.code, k.locality).Total()

		var jurisdictionTax, localTax float64
		if taxable {
			jurisdictionTax = sales * j.Rate
			localTax = sales * localRate
		}

		ob.TotalSales += sales
		ob.JurisdictionTax += jurisdictionTax
		ob.LocalTax += localTax

		co := ob.Categories[k.category]
		co.Taxable = taxable
		co.Sales += sales
		co.TaxOwed += jurisdictionTax + localTax
		if taxable {
			ob.TaxableSales += sales
			co.TaxableSales += sales
		}
		ob.Categories[k.category] = co

		if k.locality != "" {
			ob.Localities = append(ob.Localities, types.LocalityObligation{
				Locality:        k.locality,
				Category:        k.category,
				Taxable:         taxable,
				Sales:           sales,
				LocalRate:       localRate,
				JurisdictionTax: jurisdictionTax,
				LocalTax:        localTax,
			})
		}

		obligations[k.code] = ob
	}

	for code, ob := range obligations {
		ob.NonTaxableSales = ob.TotalSales - ob.TaxableSales
		ob.TotalTax = ob.JurisdictionTax + ob.LocalTax
		obligations[code] = ob
	}

	return obligations, nil
}

func compareKeys(a, b groupKey) int {
	if c := strings.Compare(a.code, b.code); c != 0 {
		return c
	}
	if c := strings.Compare(a.locality, b.locality); c != 0 {
		return c
	}
	return strings.Compare(string(a.category), string(b.category))
}
