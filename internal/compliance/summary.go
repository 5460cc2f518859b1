// Package compliance summarizes nexus results into an overall compliance
// status. Registrations are not tracked, so the registered count and the
// compliance percentage are always zero and flagged as not tracked.
package compliance

import "github.com/ginjaninja78/taxease/internal/types"

// Summarize counts jurisdictions with sales and jurisdictions with nexus.
func Summarize(results map[string]types.NexusResult) types.ComplianceStatus {
	status := types.ComplianceStatus{
		RegistrationTracking: types.RegistrationNotTracked,
	}
	for _, r := range results {
		if r.TotalSales > 0 {
			status.StatesWithSales++
		}
		if r.HasNexus {
			status.NexusStates++
		}
	}
	return status
}
