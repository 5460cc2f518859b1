// =============================================================================
// TaxEase Analyzer - Economic Nexus
// =============================================================================
//
// Aggregates sales per jurisdiction and per locality, compares each
// jurisdiction's total against its economic-nexus threshold and derives the
// combined (base + sales-weighted local) rate.
//
// AGGREGATION:
//   1. Sum amounts per (jurisdiction, locality). Records without a locality
//      only count toward the jurisdiction total.
//   2. Roll up per jurisdiction, keeping the locality breakdown.
//   3. Jurisdictions missing from the reference tables are dropped.
//
// =============================================================================

package nexus

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
)

// ErrNoTables is returned when Analyze is called without reference tables.
var ErrNoTables = errors.New("reference tables are required")

// Options configures Analyze.
type Options struct {
	Logger *zap.Logger
}

type bucket struct {
	total      float64
	localities map[string]float64
}

// Analyze returns one NexusResult per recognized jurisdiction, keyed by code.
// Records without a positive amount are ignored.
func Analyze(records []types.SaleRecord, tables *reference.Tables, opts Options) (map[string]types.NexusResult, error) {
	if tables == nil {
		return nil, ErrNoTables
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	buckets := make(map[string]*bucket)
	for _, rec := range records {
		code := strings.ToUpper(strings.TrimSpace(rec.Jurisdiction))
		if code == "" || rec.Amount <= 0 {
			continue
		}
		b, ok := buckets[code]
		if !ok {
			b = &bucket{localities: make(map[string]float64)}
			buckets[code] = b
		}
		b.total += rec.Amount

		if rec.Locality != "" {
			b.localities[rec.Locality] += rec.Amount
		}
	}

	results := make(map[string]types.NexusResult, len(buckets))
	for code, b := range buckets {
		j, ok := tables.Jurisdiction(code)
		if !ok {
			logger.Debug("dropping unknown jurisdiction",
				zap.String("jurisdiction", code),
				zap.Float64("sales", b.total),
			)
			continue
		}
		results[code] = evaluate(j, b, tables)
	}

	logger.Debug("nexus analysis complete",
		zap.Int("jurisdictions", len(results)),
		zap.Int("records", len(records)),
	)
	return results, nil
}

func evaluate(j types.Jurisdiction, b *bucket, tables *reference.Tables) types.NexusResult {
	r := types.NexusResult{
		Code:       j.Code,
		Name:       j.Name,
		TotalSales: b.total,
		Threshold:  j.Threshold,
		BaseRate:   j.Rate,
		Localities: make([]types.LocalitySales, 0, len(b.localities)),
	}

	// A zero threshold means no sales-tax regime.
	if j.Threshold > 0 {
		r.HasNexus = b.total >= j.Threshold
		r.ExcessAmount = max(0, b.total-j.Threshold)
	}

	for _, name := range slices.Sorted(maps.Keys(b.localities)) {
		rates := tables.LocalityRates(j.Code, name)
		r.Localities = append(r.Localities, types.LocalitySales{
			Locality:  name,
			Sales:     b.localities[name],
			Rates:     rates,
			LocalRate: rates.Total(),
		})
	}

	r.AvgLocalRate = WeightedLocalRate(r.Localities)
	r.CombinedRate = r.BaseRate + r.AvgLocalRate
	return r
}

// WeightedLocalRate returns the sales-weighted mean local rate. Localities
// without positive sales carry no weight; the result is 0 when none have any.
func WeightedLocalRate(localities []types.LocalitySales) float64 {
	var weighted, sales float64
	for _, l := range localities {
		if l.Sales <= 0 {
			continue
		}
		weighted += l.LocalRate * l.Sales
		sales += l.Sales
	}
	if sales == 0 {
		return 0
	}
	return weighted / sales
}
