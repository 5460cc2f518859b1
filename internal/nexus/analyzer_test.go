package nexus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
)

func rec(code, locality string, amount float64) types.SaleRecord {
	return types.SaleRecord{Jurisdiction: code, Locality: locality, Amount: amount, Category: types.CategoryPhysicalGoods}
}

func TestAnalyzeCaliforniaOverThreshold(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{rec("CA", "", 400000), rec("CA", "", 200000)}, reference.Default(), Options{})
	require.NoError(t, err)

	ca, ok := results["CA"]
	require.True(t, ok)
	assert.Equal(t, "California", ca.Name)
	assert.True(t, ca.HasNexus)
	assert.InDelta(t, 600000, ca.TotalSales, 1e-9)
	assert.InDelta(t, 100000, ca.ExcessAmount, 1e-9)
	assert.InDelta(t, 0.0725, ca.CombinedRate, 1e-12)
	assert.Zero(t, ca.AvgLocalRate)
	assert.Empty(t, ca.Localities)
}

func TestAnalyzeZeroThresholdNeverNexus(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{rec("DE", "", 1_000_000)}, reference.Default(), Options{})
	require.NoError(t, err)

	de := results["DE"]
	assert.False(t, de.HasNexus)
	assert.Zero(t, de.ExcessAmount)
	assert.InDelta(t, 1_000_000, de.TotalSales, 1e-9)
}

func TestAnalyzeBelowThreshold(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{rec("FL", "", 99_999.99)}, reference.Default(), Options{})
	require.NoError(t, err)
	assert.False(t, results["FL"].HasNexus)
	assert.Zero(t, results["FL"].ExcessAmount)

	results, err = Analyze([]types.SaleRecord{rec("FL", "", 100_000)}, reference.Default(), Options{})
	require.NoError(t, err)
	assert.True(t, results["FL"].HasNexus, "threshold is inclusive")
	assert.Zero(t, results["FL"].ExcessAmount)
}

func TestAnalyzeWeightedLocalRate(t *testing.T) {
	records := []types.SaleRecord{
		rec("CA", "Los Angeles", 60000),
		rec("CA", "Los Angeles", 40000),
		rec("CA", "San Francisco", 50000),
		rec("CA", "", 25000),
	}
	results, err := Analyze(records, reference.Default(), Options{})
	require.NoError(t, err)

	ca := results["CA"]
	assert.InDelta(t, 175000, ca.TotalSales, 1e-9, "blank locality still counts toward total")
	require.Len(t, ca.Localities, 2)
	assert.Equal(t, "Los Angeles", ca.Localities[0].Locality)
	assert.InDelta(t, 100000, ca.Localities[0].Sales, 1e-9)
	assert.InDelta(t, 0.0125, ca.Localities[0].LocalRate, 1e-12)

	sf := ca.Localities[1].LocalRate
	want := (100000*0.0125 + 50000*sf) / 150000
	assert.InDelta(t, want, ca.AvgLocalRate, 1e-12)
	assert.InDelta(t, 0.0725+want, ca.CombinedRate, 1e-12)

	// Composite rate lies between the smallest and largest locality rate.
	assert.GreaterOrEqual(t, ca.AvgLocalRate, min(0.0125, sf))
	assert.LessOrEqual(t, ca.AvgLocalRate, max(0.0125, sf))
}

func TestAnalyzeUnknownLocalityHasZeroRate(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{rec("CA", "Nowhere", 1000)}, reference.Default(), Options{})
	require.NoError(t, err)
	require.Len(t, results["CA"].Localities, 1)
	assert.Zero(t, results["CA"].Localities[0].LocalRate)
	assert.Zero(t, results["CA"].AvgLocalRate)
}

func TestAnalyzeDropsUnknownJurisdictions(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{rec("ZZ", "", 1e9), rec("tx", "", 10)}, reference.Default(), Options{})
	require.NoError(t, err)
	assert.NotContains(t, results, "ZZ")
	assert.Contains(t, results, "TX")
}

func TestAnalyzeRequiresTables(t *testing.T) {
	_, err := Analyze(nil, nil, Options{})
	assert.ErrorIs(t, err, ErrNoTables)
}

func TestWeightedLocalRate(t *testing.T) {
	assert.Zero(t, WeightedLocalRate(nil))
	assert.Zero(t, WeightedLocalRate([]types.LocalitySales{{Sales: 0, LocalRate: 0.05}}))
	assert.InDelta(t, 0.02, WeightedLocalRate([]types.LocalitySales{
		{Sales: 100, LocalRate: 0.01},
		{Sales: 100, LocalRate: 0.03},
	}), 1e-12)
}

func TestAnalyzeIgnoresNonPositiveAmounts(t *testing.T) {
	results, err := Analyze([]types.SaleRecord{
		rec("FL", "", -5000),
		rec("FL", "", 10000),
		rec("CA", "Los Angeles", 100),
		rec("CA", "San Francisco", -50),
		rec("CA", "San Francisco", 0),
		rec("TX", "", -1),
	}, reference.Default(), Options{})
	require.NoError(t, err)

	assert.InDelta(t, 10000, results["FL"].TotalSales, 1e-9)
	assert.NotContains(t, results, "TX")

	ca := results["CA"]
	assert.InDelta(t, 100, ca.TotalSales, 1e-9)
	require.Len(t, ca.Localities, 1)
	assert.Equal(t, "Los Angeles", ca.Localities[0].Locality)
	assert.InDelta(t, 0.0125, ca.AvgLocalRate, 1e-12)
}

func TestWeightedLocalRateStaysWithinLocalityRates(t *testing.T) {
	tests := []struct {
		name       string
		localities []types.LocalitySales
		want       float64
	}{
		{
			name: "negative locality carries no weight",
			localities: []types.LocalitySales{
				{Locality: "Los Angeles", Sales: 100, LocalRate: 0.0125},
				{Locality: "San Francisco", Sales: -50, LocalRate: 0.01625},
			},
			want: 0.0125,
		},
		{
			name: "zero locality carries no weight",
			localities: []types.LocalitySales{
				{Locality: "Seattle", Sales: 0, LocalRate: 0.04},
				{Locality: "Spokane", Sales: 300, LocalRate: 0.02},
			},
			want: 0.02,
		},
		{
			name: "only non-positive sales",
			localities: []types.LocalitySales{
				{Locality: "Houston", Sales: -10, LocalRate: 0.02},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedLocalRate(tt.localities)
			assert.InDelta(t, tt.want, got, 1e-12)

			lo, hi := tt.localities[0].LocalRate, tt.localities[0].LocalRate
			for _, l := range tt.localities {
				lo, hi = min(lo, l.LocalRate), max(hi, l.LocalRate)
			}
			if got != 0 {
				assert.GreaterOrEqual(t, got, lo)
				assert.LessOrEqual(t, got, hi)
			}
		})
	}
}
