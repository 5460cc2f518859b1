package obligation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
)

func sale(code, locality string, cat types.Category, amount float64) types.SaleRecord {
	return types.SaleRecord{Jurisdiction: code, Locality: locality, Category: cat, Amount: amount}
}

func TestCalculateFloridaSaaSNotTaxable(t *testing.T) {
	obs, err := Calculate([]types.SaleRecord{sale("FL", "", types.CategorySaaS, 10000)}, reference.Default())
	require.NoError(t, err)

	fl := obs["FL"]
	assert.InDelta(t, 10000, fl.TotalSales, 1e-9)
	assert.Zero(t, fl.TaxableSales)
	assert.Zero(t, fl.TotalTax)
	assert.InDelta(t, 10000, fl.NonTaxableSales, 1e-9)

	saas := fl.Categories[types.CategorySaaS]
	assert.False(t, saas.Taxable)
	assert.InDelta(t, 10000, saas.Sales, 1e-9)
	assert.Zero(t, saas.TaxOwed)
}

func TestCalculateMixedCategoriesAndLocalities(t *testing.T) {
	records := []types.SaleRecord{
		sale("CA", "Los Angeles", types.CategoryPhysicalGoods, 1000),
		sale("CA", "Los Angeles", types.CategoryPhysicalGoods, 1000),
		sale("CA", "Los Angeles", types.CategorySaaS, 500),
		sale("CA", "", types.CategorySoftware, 400),
	}
	obs, err := Calculate(records, reference.Default())
	require.NoError(t, err)

	ca := obs["CA"]
	assert.Equal(t, "California", ca.Name)
	assert.InDelta(t, 2900, ca.TotalSales, 1e-9)
	assert.InDelta(t, 2400, ca.TaxableSales, 1e-9)
	assert.InDelta(t, 500, ca.NonTaxableSales, 1e-9)

	wantState := 2400 * 0.0725
	wantLocal := 2000 * 0.0125
	assert.InDelta(t, wantState, ca.JurisdictionTax, 1e-9)
	assert.InDelta(t, wantLocal, ca.LocalTax, 1e-9)
	assert.InDelta(t, wantState+wantLocal, ca.TotalTax, 1e-9)

	goods := ca.Categories[types.CategoryPhysicalGoods]
	assert.True(t, goods.Taxable)
	assert.InDelta(t, 2000*(0.0725+0.0125), goods.TaxOwed, 1e-9)

	require.Len(t, ca.Localities, 2, "blank-locality groups are not listed")
	assert.Equal(t, types.CategoryPhysicalGoods, ca.Localities[0].Category)
	assert.InDelta(t, 2000, ca.Localities[0].Sales, 1e-9)
	assert.Equal(t, types.CategorySaaS, ca.Localities[1].Category)
	assert.False(t, ca.Localities[1].Taxable)
	assert.Zero(t, ca.Localities[1].LocalTax)
}

func TestCalculateTaxabilityPerJurisdiction(t *testing.T) {
	// saas is exempt in FL but taxable in NY; the lookup must not leak across.
	obs, err := Calculate([]types.SaleRecord{
		sale("FL", "", types.CategorySaaS, 100),
		sale("NY", "", types.CategorySaaS, 100),
	}, reference.Default())
	require.NoError(t, err)
	assert.Zero(t, obs["FL"].TaxableSales)
	assert.InDelta(t, 100, obs["NY"].TaxableSales, 1e-9)
	assert.InDelta(t, 4, obs["NY"].JurisdictionTax, 1e-9)
}

func TestCalculateTaxableNeverExceedsTotal(t *testing.T) {
	records := []types.SaleRecord{
		sale("WA", "Seattle", types.CategoryConsulting, 300),
		sale("WA", "Spokane", types.CategorySoftware, 200),
		sale("TX", "Houston", types.CategoryConsulting, 700),
		sale("TX", "", types.CategoryPhysicalGoods, 50),
	}
	obs, err := Calculate(records, reference.Default())
	require.NoError(t, err)

	for code, ob := range obs {
		var taxable float64
		for _, c := range ob.Categories {
			taxable += c.TaxableSales
		}
		assert.LessOrEqual(t, taxable, ob.TotalSales+1e-9, code)
	}
	// Every WA category here is taxable, so the sums agree.
	assert.InDelta(t, obs["WA"].TotalSales, obs["WA"].TaxableSales, 1e-9)
}

func TestCalculateSkipsNonPositiveAmounts(t *testing.T) {
	obs, err := Calculate([]types.SaleRecord{
		sale("FL", "", types.CategorySaaS, -5000),
		sale("FL", "", types.CategoryPhysicalGoods, 10000),
		sale("CA", "San Francisco", types.CategoryPhysicalGoods, 0),
	}, reference.Default())
	require.NoError(t, err)

	fl := obs["FL"]
	assert.InDelta(t, 10000, fl.TotalSales, 1e-9)
	assert.InDelta(t, 10000, fl.TaxableSales, 1e-9)
	assert.LessOrEqual(t, fl.TaxableSales, fl.TotalSales)
	assert.Contains(t, fl.Categories, types.CategoryPhysicalGoods)
	assert.NotContains(t, fl.Categories, types.CategorySaaS)
	assert.NotContains(t, obs, "CA")
}

func TestCalculateUnlistedPairDefaultsTaxable(t *testing.T) {
	tables := reference.NewBuilder().
		Jurisdiction(types.Jurisdiction{Code: "ZZ", Name: "Test", Rate: 0.05, Threshold: 1}).
		Build()
	obs, err := Calculate([]types.SaleRecord{sale("ZZ", "", types.CategoryConsulting, 100)}, tables)
	require.NoError(t, err)
	assert.True(t, obs["ZZ"].Categories[types.CategoryConsulting].Taxable)
	assert.InDelta(t, 5, obs["ZZ"].TotalTax, 1e-9)
}

func TestCalculateSkipsUnknownJurisdictions(t *testing.T) {
	obs, err := Calculate([]types.SaleRecord{sale("ZZ", "", types.CategorySaaS, 100)}, reference.Default())
	require.NoError(t, err)
	assert.Empty(t, obs)
}

func TestCalculateRequiresTables(t *testing.T) {
	_, err := Calculate(nil, nil)
	assert.ErrorIs(t, err, ErrNoTables)
}
