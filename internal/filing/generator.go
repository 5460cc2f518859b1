// =============================================================================
// TaxEase Analyzer - Filing Requirement Generator
// =============================================================================
//
// Derives a filing obligation for every jurisdiction where nexus has been
// established:
//   - Frequency tier from total sales (Monthly / Quarterly / Annual)
//   - Next due date as a fixed lead time per tier from today
//   - Estimated liability at the combined rate
//   - Priority tier
//
// The lead times are a placeholder policy, not a jurisdiction filing
// calendar. They live in Policy so they can be tuned from config.yaml.
//
// =============================================================================

package filing

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/types"
)

// StatusRegistrationRequired labels every generated requirement.
const StatusRegistrationRequired = "Registration Required"

// =============================================================================
// POLICY
// =============================================================================

// Policy holds the tier thresholds and lead times.
type Policy struct {
	// MonthlyThreshold: sales strictly above this file monthly.
	// Default: 500000
	MonthlyThreshold float64 `yaml:"monthly_threshold"`

	// QuarterlyThreshold: sales strictly above this (and not monthly)
	// file quarterly. Everything else files annually.
	// Default: 250000
	QuarterlyThreshold float64 `yaml:"quarterly_threshold"`

	// HighPriorityThreshold: sales strictly above this are High priority.
	// Default: 500000
	HighPriorityThreshold float64 `yaml:"high_priority_threshold"`

	// Lead times in days from today per tier.
	// Defaults: 20 / 45 / 90
	MonthlyLeadDays   int `yaml:"monthly_lead_days"`
	QuarterlyLeadDays int `yaml:"quarterly_lead_days"`
	AnnualLeadDays    int `yaml:"annual_lead_days"`
}

// DefaultPolicy returns the standard tiers.
func DefaultPolicy() Policy {
	return Policy{}.WithDefaults()
}

// WithDefaults fills every unset field with its default.
func (p Policy) WithDefaults() Policy {
	if p.MonthlyThreshold == 0 {
		p.MonthlyThreshold = 500000
	}
	if p.QuarterlyThreshold == 0 {
		p.QuarterlyThreshold = 250000
	}
	if p.HighPriorityThreshold == 0 {
		p.HighPriorityThreshold = 500000
	}
	if p.MonthlyLeadDays == 0 {
		p.MonthlyLeadDays = 20
	}
	if p.QuarterlyLeadDays == 0 {
		p.QuarterlyLeadDays = 45
	}
	if p.AnnualLeadDays == 0 {
		p.AnnualLeadDays = 90
	}
	return p
}

// Validate checks that the tiers are ordered and lead times positive.
func (p Policy) Validate() error {
	if p.QuarterlyThreshold <= 0 || p.MonthlyThreshold <= 0 {
		return fmt.Errorf("tier thresholds must be positive")
	}
	if p.MonthlyThreshold < p.QuarterlyThreshold {
		return fmt.Errorf("monthly_threshold (%v) must not be below quarterly_threshold (%v)", p.MonthlyThreshold, p.QuarterlyThreshold)
	}
	if p.MonthlyLeadDays <= 0 || p.QuarterlyLeadDays <= 0 || p.AnnualLeadDays <= 0 {
		return fmt.Errorf("lead days must be positive")
	}
	return nil
}

// Frequency returns the filing tier for a sales total.
func (p Policy) Frequency(totalSales float64) types.Frequency {
	switch {
	case totalSales > p.MonthlyThreshold:
		return types.FrequencyMonthly
	case totalSales > p.QuarterlyThreshold:
		return types.FrequencyQuarterly
	default:
		return types.FrequencyAnnual
	}
}

// LeadDays returns the lead time for a tier.
func (p Policy) LeadDays(f types.Frequency) int {
	switch f {
	case types.FrequencyMonthly:
		return p.MonthlyLeadDays
	case types.FrequencyQuarterly:
		return p.QuarterlyLeadDays
	default:
		return p.AnnualLeadDays
	}
}

// Priority returns the priority tier for a sales total.
func (p Policy) Priority(totalSales float64) types.Priority {
	if totalSales > p.HighPriorityThreshold {
		return types.PriorityHigh
	}
	return types.PriorityMedium
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator turns nexus results into filing requirements.
type Generator struct {
	policy Policy
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGenerator returns a generator for the given policy.
func NewGenerator(policy Policy, opts ...Option) *Generator {
	g := &Generator{
		policy: policy.WithDefaults(),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns one requirement per jurisdiction with nexus and a
// positive threshold, ordered by jurisdiction code.
func (g *Generator) Generate(results map[string]types.NexusResult) []types.FilingRequirement {
	today := startOfDay(g.now())

	requirements := make([]types.FilingRequirement, 0)
	for _, r := range results {
		if !r.HasNexus || r.Threshold <= 0 {
			continue
		}

		freq := g.policy.Frequency(r.TotalSales)
		rate := r.CombinedRate
		if rate == 0 {
			rate = r.BaseRate
		}

		requirements = append(requirements, types.FilingRequirement{
			Code:         r.Code,
			Name:         r.Name,
			Frequency:    freq,
			DueDate:      today.AddDate(0, 0, g.policy.LeadDays(freq)),
			EstimatedTax: r.TotalSales * rate,
			Status:       StatusRegistrationRequired,
			Priority:     g.policy.Priority(r.TotalSales),
			TotalSales:   r.TotalSales,
			CombinedRate: rate,
		})
	}

	slices.SortFunc(requirements, func(a, b types.FilingRequirement) int {
		return strings.Compare(a.Code, b.Code)
	})

	g.logger.Debug("filing requirements generated", zap.Int("count", len(requirements)))
	return requirements
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
