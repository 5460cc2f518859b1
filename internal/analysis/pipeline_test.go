package analysis

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/dataset"
	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
)

var fixedNow = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func newTestAnalyzer(opts Options) *Analyzer {
	opts.Now = func() time.Time { return fixedNow }
	return New(reference.Default(), opts, zap.NewNop())
}

func TestRunEndToEnd(t *testing.T) {
	ds := dataset.New("sales.csv",
		[]string{"Order Date", "State", "City", "Product Description", "Sale Amount"},
		[][]string{
			{"2024-01-02", "ca", "Los Angeles", "Steel widget", "$400,000"},
			{"2024-01-03", "CA", "San Francisco", "Annual Software License", "200000"},
			{"2024-01-04", "FL", "", "SaaS subscription", "10000"},
			{"2024-01-05", "DE", "", "Widget", "1,000,000"},
			{"2024-01-06", "ZZ", "", "Widget", "50"},
			{"2024-01-07", "", "", "Widget", "70"},
			{"2024-01-08", "TX", "", "Widget", "n/a"},
		})

	res := newTestAnalyzer(Options{PreviewRows: 3}).Run(ds)
	require.True(t, res.Success, res.Error)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "sales.csv", res.Source)
	assert.True(t, fixedNow.Equal(res.GeneratedAt))

	assert.Equal(t, 7, res.Summary.TotalTransactions)
	assert.Equal(t, 5, res.Summary.ValidTransactions)
	assert.InDelta(t, 400000+200000+10000+1000000+50+70, res.Summary.TotalRevenue, 1e-6)
	assert.Equal(t, 3, res.Summary.StatesWithSales)
	assert.Equal(t, 1, res.Summary.NexusStates)
	assert.Equal(t, 1, res.Summary.FilingRequired)
	assert.Equal(t, 2, res.Summary.ErrorIssues)
	assert.Zero(t, res.Summary.WarningIssues)

	assert.Equal(t, map[string]string{
		"amount":       "Sale Amount",
		"jurisdiction": "State",
		"locality":     "City",
		"product":      "Product Description",
		"date":         "Order Date",
	}, res.Columns)

	ca := res.NexusAnalysis["CA"]
	assert.True(t, ca.HasNexus)
	assert.InDelta(t, 100000, ca.ExcessAmount, 1e-6)
	assert.NotContains(t, res.NexusAnalysis, "ZZ")
	assert.False(t, res.NexusAnalysis["DE"].HasNexus)

	fl := res.TaxObligations["FL"]
	assert.Zero(t, fl.TaxableSales)
	assert.InDelta(t, 10000, fl.TotalSales, 1e-9)

	require.Len(t, res.FilingRequirements, 1)
	assert.Equal(t, "CA", res.FilingRequirements[0].Code)
	assert.Equal(t, types.FrequencyMonthly, res.FilingRequirements[0].Frequency)
	assert.Equal(t, types.PriorityHigh, res.FilingRequirements[0].Priority)

	assert.Equal(t, types.RegistrationNotTracked, res.ComplianceStatus.RegistrationTracking)
	assert.Len(t, res.Preview, 3)
	assert.Len(t, res.Issues, 2)

	require.Len(t, res.FlaggedTransactions, 3)
	assert.Equal(t, 1, res.FlaggedTransactions[0].Row)
	assert.Equal(t, 4, res.FlaggedTransactions[2].Row)
	assert.InDelta(t, 1000000, res.FlaggedTransactions[2].Amount, 1e-9)
}

func TestRunCaliforniaScenario(t *testing.T) {
	ds := dataset.New("ca.csv", []string{"state", "amount"}, [][]string{{"CA", "600000"}})
	res := newTestAnalyzer(Options{}).Run(ds)
	require.True(t, res.Success)

	ca := res.NexusAnalysis["CA"]
	assert.True(t, ca.HasNexus)
	assert.InDelta(t, 100000, ca.ExcessAmount, 1e-9)
	assert.InDelta(t, 0.0725, ca.CombinedRate, 1e-12)
	require.Len(t, res.FilingRequirements, 1)
	assert.Equal(t, types.FrequencyMonthly, res.FilingRequirements[0].Frequency)
	assert.Equal(t, types.PriorityHigh, res.FilingRequirements[0].Priority)
}

func TestRunWeightedLocalityScenario(t *testing.T) {
	ds := dataset.New("ca.csv", []string{"state", "city", "amount"}, [][]string{
		{"CA", "Los Angeles", "100000"},
		{"CA", "San Francisco", "50000"},
	})
	res := newTestAnalyzer(Options{}).Run(ds)
	require.True(t, res.Success)

	ca := res.NexusAnalysis["CA"]
	require.Len(t, ca.Localities, 2)
	sf := ca.Localities[1].LocalRate
	assert.InDelta(t, (100000*0.0125+50000*sf)/150000, ca.AvgLocalRate, 1e-12)
	assert.False(t, ca.HasNexus)
	assert.Empty(t, res.FilingRequirements)
}

func TestRunRefundRowsAreSkipped(t *testing.T) {
	ds := dataset.New("mixed.csv", []string{"state", "city", "product", "amount"}, [][]string{
		{"FL", "", "SaaS seat", "(5,000)"},
		{"FL", "", "Widget", "10000"},
		{"CA", "Los Angeles", "Widget", "100"},
		{"CA", "San Francisco", "Widget", "(50)"},
	})
	res := newTestAnalyzer(Options{}).Run(ds)
	require.True(t, res.Success, res.Error)

	assert.Equal(t, 2, res.Summary.ValidTransactions)
	assert.Equal(t, 2, res.Summary.ErrorIssues)
	assert.InDelta(t, 10000+100-5000-50, res.Summary.TotalRevenue, 1e-9)

	for code, ob := range res.TaxObligations {
		assert.LessOrEqual(t, ob.TaxableSales, ob.TotalSales, code)
	}
	ca := res.NexusAnalysis["CA"]
	require.Len(t, ca.Localities, 1)
	assert.InDelta(t, ca.Localities[0].LocalRate, ca.AvgLocalRate, 1e-12)
}

func TestRunNoColumnsResolved(t *testing.T) {
	ds := dataset.New("odd.csv", []string{"foo", "bar"}, [][]string{{"1", "2"}})
	res := newTestAnalyzer(Options{}).Run(ds)
	require.True(t, res.Success)
	assert.Empty(t, res.Columns)
	assert.Empty(t, res.NexusAnalysis)
	assert.Empty(t, res.FlaggedTransactions)
	assert.Equal(t, 1, res.Summary.TotalTransactions)
	assert.Len(t, res.Issues, 2, "missing amount and missing jurisdiction")
}

func TestRunEmptyDataset(t *testing.T) {
	a := newTestAnalyzer(Options{})

	for name, ds := range map[string]*dataset.Dataset{
		"nil":     nil,
		"no rows": dataset.New("x.csv", []string{"state", "amount"}, nil),
	} {
		t.Run(name, func(t *testing.T) {
			res := a.Run(ds)
			assert.False(t, res.Success)
			assert.ErrorIs(t, res.Err, ErrEmptyDataset)
			assert.Equal(t, ErrEmptyDataset.Error(), res.Error)
			assert.Empty(t, res.NexusAnalysis)
			assert.Empty(t, res.FilingRequirements)
			assert.Zero(t, res.ComplianceStatus.StatesWithSales)
		})
	}
}

func TestRunNoTables(t *testing.T) {
	res := New(nil, Options{}, nil).Run(dataset.New("x", []string{"state"}, [][]string{{"CA"}}))
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, ErrNoReferenceTables)
}

func TestRunRecoversPanics(t *testing.T) {
	// An Analyzer built without New has no filing generator.
	a := &Analyzer{tables: reference.Default(), opts: Options{}.withDefaults(), logger: zap.NewNop()}
	res := a.Run(dataset.New("x", []string{"state", "amount"}, [][]string{{"CA", "1"}}))
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "analysis failed")
	assert.Error(t, res.Err)
}

func TestRunFlagThreshold(t *testing.T) {
	var records [][]string
	for i := 1; i <= 5; i++ {
		records = append(records, []string{"WA", fmt.Sprint(i * 100)})
	}
	ds := dataset.New("wa.csv", []string{"state", "amount"}, records)

	res := newTestAnalyzer(Options{FlagThreshold: 300}).Run(ds)
	require.True(t, res.Success)
	require.Len(t, res.FlaggedTransactions, 2)
	assert.Equal(t, float64(300), res.FlagThreshold)
	assert.Equal(t, "400", res.FlaggedTransactions[0].Values["amount"])
}
