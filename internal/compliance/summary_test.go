package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ginjaninja78/taxease/internal/types"
)

func TestSummarize(t *testing.T) {
	status := Summarize(map[string]types.NexusResult{
		"CA": {TotalSales: 600000, HasNexus: true},
		"DE": {TotalSales: 1000000},
		"TX": {TotalSales: 0},
	})

	assert.Equal(t, 2, status.StatesWithSales)
	assert.Equal(t, 1, status.NexusStates)
	assert.Zero(t, status.RegisteredStates)
	assert.Zero(t, status.CompliancePercentage)
	assert.Equal(t, types.RegistrationNotTracked, status.RegistrationTracking)
}

func TestSummarizeEmpty(t *testing.T) {
	status := Summarize(nil)
	assert.Zero(t, status.StatesWithSales)
	assert.Equal(t, types.RegistrationNotTracked, status.RegistrationTracking)
}
