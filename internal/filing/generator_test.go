package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/taxease/internal/types"
)

var fixedNow = time.Date(2024, time.March, 10, 15, 30, 0, 0, time.UTC)

func newTestGenerator() *Generator {
	return NewGenerator(DefaultPolicy(), WithClock(func() time.Time { return fixedNow }))
}

func TestPolicyFrequency(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		sales float64
		want  types.Frequency
	}{
		{1_000_000, types.FrequencyMonthly},
		{500_000.01, types.FrequencyMonthly},
		{500_000, types.FrequencyQuarterly},
		{250_000.01, types.FrequencyQuarterly},
		{250_000, types.FrequencyAnnual},
		{0, types.FrequencyAnnual},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Frequency(tt.sales), "sales=%v", tt.sales)
	}
}

func TestPolicyFrequencyMonotonic(t *testing.T) {
	p := DefaultPolicy()
	rank := map[types.Frequency]int{types.FrequencyAnnual: 0, types.FrequencyQuarterly: 1, types.FrequencyMonthly: 2}
	prev := -1
	for sales := 0.0; sales <= 1_000_000; sales += 12_500 {
		r := rank[p.Frequency(sales)]
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestPolicyValidate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.MonthlyThreshold = 100
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.AnnualLeadDays = -1
	assert.Error(t, p.Validate())
}

func TestGenerateCaliforniaScenario(t *testing.T) {
	results := map[string]types.NexusResult{
		"CA": {Code: "CA", Name: "California", TotalSales: 600000, Threshold: 500000, HasNexus: true,
			ExcessAmount: 100000, BaseRate: 0.0725, CombinedRate: 0.0725},
	}

	reqs := newTestGenerator().Generate(results)
	require.Len(t, reqs, 1)

	r := reqs[0]
	assert.Equal(t, "CA", r.Code)
	assert.Equal(t, types.FrequencyMonthly, r.Frequency)
	assert.Equal(t, types.PriorityHigh, r.Priority)
	assert.Equal(t, StatusRegistrationRequired, r.Status)
	assert.InDelta(t, 600000*0.0725, r.EstimatedTax, 1e-6)
	assert.True(t, time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC).Equal(r.DueDate), "due date %v", r.DueDate)
}

func TestGenerateSkipsNonNexus(t *testing.T) {
	results := map[string]types.NexusResult{
		"DE": {Code: "DE", TotalSales: 1_000_000, Threshold: 0, HasNexus: false},
		"TX": {Code: "TX", TotalSales: 10, Threshold: 500000, HasNexus: false},
		// A malformed result claiming nexus with no threshold is still skipped.
		"OR": {Code: "OR", TotalSales: 10, Threshold: 0, HasNexus: true},
	}
	assert.Empty(t, newTestGenerator().Generate(results))
}

func TestGenerateTiersAndOrder(t *testing.T) {
	results := map[string]types.NexusResult{
		"WA": {Code: "WA", TotalSales: 300000, Threshold: 100000, HasNexus: true, BaseRate: 0.065, CombinedRate: 0.1035},
		"FL": {Code: "FL", TotalSales: 120000, Threshold: 100000, HasNexus: true, BaseRate: 0.06},
	}

	reqs := newTestGenerator().Generate(results)
	require.Len(t, reqs, 2)

	assert.Equal(t, "FL", reqs[0].Code)
	assert.Equal(t, types.FrequencyAnnual, reqs[0].Frequency)
	assert.Equal(t, types.PriorityMedium, reqs[0].Priority)
	assert.True(t, fixedNow.AddDate(0, 0, 90).Truncate(24*time.Hour).Equal(reqs[0].DueDate), "due date %v", reqs[0].DueDate)
	assert.InDelta(t, 120000*0.06, reqs[0].EstimatedTax, 1e-6, "falls back to base rate")

	assert.Equal(t, "WA", reqs[1].Code)
	assert.Equal(t, types.FrequencyQuarterly, reqs[1].Frequency)
	assert.True(t, time.Date(2024, time.April, 24, 0, 0, 0, 0, time.UTC).Equal(reqs[1].DueDate), "due date %v", reqs[1].DueDate)
	assert.InDelta(t, 300000*0.1035, reqs[1].EstimatedTax, 1e-6)
}

func TestGenerateCustomLeadTimes(t *testing.T) {
	p := Policy{MonthlyLeadDays: 1}
	g := NewGenerator(p, WithClock(func() time.Time { return fixedNow }))
	reqs := g.Generate(map[string]types.NexusResult{
		"CA": {Code: "CA", TotalSales: 900000, Threshold: 500000, HasNexus: true, CombinedRate: 0.08},
	})
	require.Len(t, reqs, 1)
	assert.True(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC).Equal(reqs[0].DueDate), "due date %v", reqs[0].DueDate)
}
