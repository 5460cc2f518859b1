// =============================================================================
// TaxEase Analyzer - Analysis Pipeline
// =============================================================================
//
// Orchestrates one analysis run over an in-memory dataset and returns a
// single result envelope.
//
// PIPELINE:
//   1. Reject empty datasets
//   2. Infer column roles from the field names
//   3. Build sale records (rows that cannot be used become issues)
//   4. Nexus analysis
//   5. Tax obligations
//   6. Filing requirements
//   7. Compliance summary
//   8. Preview and high-value flagging
//
// A failing stage stops the run; later stages never see partial data.
// Errors and panics inside a stage become a Result with Success=false.
//
// CONCURRENCY:
//   An Analyzer holds only read-only state and may be shared across
//   goroutines. Each Run works on its own dataset.
//
// =============================================================================

package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/columns"
	"github.com/ginjaninja78/taxease/internal/compliance"
	"github.com/ginjaninja78/taxease/internal/dataset"
	"github.com/ginjaninja78/taxease/internal/filing"
	"github.com/ginjaninja78/taxease/internal/nexus"
	"github.com/ginjaninja78/taxease/internal/obligation"
	"github.com/ginjaninja78/taxease/internal/reference"
	"github.com/ginjaninja78/taxease/internal/types"
	"github.com/ginjaninja78/taxease/internal/validation"
)

var (
	// ErrEmptyDataset is returned for nil datasets and datasets without
	// columns or rows.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrNoReferenceTables is returned when the Analyzer has no tables.
	ErrNoReferenceTables = errors.New("no reference tables configured")
)

// Defaults for Options.
const (
	DefaultPreviewRows   = 10
	DefaultFlagThreshold = 10000
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Summary holds the headline figures of a run.
type Summary struct {
	TotalTransactions int     `json:"total_transactions"`
	ValidTransactions int     `json:"valid_transactions"`
	TotalRevenue      float64 `json:"total_revenue"`
	StatesWithSales   int     `json:"states_with_sales"`
	NexusStates       int     `json:"nexus_states"`
	FilingRequired    int     `json:"filing_required"`

	// ErrorIssues and WarningIssues count Issues by severity.
	ErrorIssues   int `json:"error_issues"`
	WarningIssues int `json:"warning_issues"`
}

// FlaggedTransaction is a row whose amount exceeds the flag threshold.
type FlaggedTransaction struct {
	Row    int         `json:"row"`
	Amount float64     `json:"amount"`
	Values dataset.Row `json:"values"`
}

// Result is the envelope returned by Run.
type Result struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Source      string    `json:"source"`

	Summary            Summary                        `json:"summary"`
	Columns            map[string]string              `json:"columns"`
	NexusAnalysis      map[string]types.NexusResult   `json:"nexus_analysis"`
	TaxObligations     map[string]types.TaxObligation `json:"tax_obligations"`
	ComplianceStatus   types.ComplianceStatus         `json:"compliance_status"`
	FilingRequirements []types.FilingRequirement      `json:"filing_requirements"`

	Preview             []dataset.Row        `json:"preview"`
	FlaggedTransactions []FlaggedTransaction `json:"flagged_transactions"`
	FlagThreshold       float64              `json:"flag_threshold"`
	Issues              []*validation.Issue  `json:"issues"`

	// ProcessingTime is the wall time of the run.
	ProcessingTime time.Duration `json:"processing_time_ns"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Err is the underlying error when Success is false.
	Err error `json:"-"`
}

func (r *Result) fail(err error) *Result {
	r.Success = false
	r.Err = err
	r.Error = err.Error()
	return r
}

// =============================================================================
// ANALYZER
// =============================================================================

// Options tunes a run.
type Options struct {
	// PreviewRows is the number of leading rows copied into Result.Preview.
	// Default: 10
	PreviewRows int

	// FlagThreshold marks rows with a larger amount as flagged.
	// Default: 10000
	FlagThreshold float64

	// Filing is the filing frequency and lead-time policy.
	Filing filing.Policy

	// Now overrides the clock used for due dates and GeneratedAt.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	if o.FlagThreshold <= 0 {
		o.FlagThreshold = DefaultFlagThreshold
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Filing = o.Filing.WithDefaults()
	return o
}

// Analyzer runs the analysis pipeline against fixed reference tables.
type Analyzer struct {
	tables *reference.Tables
	opts   Options
	logger *zap.Logger
	filer  *filing.Generator
}

// New creates an Analyzer. A nil logger disables logging.
func New(tables *reference.Tables, opts Options, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	return &Analyzer{
		tables: tables,
		opts:   opts,
		logger: logger,
		filer:  filing.NewGenerator(opts.Filing, filing.WithClock(opts.Now), filing.WithLogger(logger)),
	}
}

// Tables returns the reference tables the analyzer uses.
func (a *Analyzer) Tables() *reference.Tables {
	return a.tables
}

// Run executes the pipeline for one dataset. It never returns nil.
func (a *Analyzer) Run(ds *dataset.Dataset) (result *Result) {
	start := time.Now()
	result = &Result{
		ID:                  uuid.New().String(),
		GeneratedAt:         a.opts.Now(),
		FlagThreshold:       a.opts.FlagThreshold,
		Columns:             map[string]string{},
		NexusAnalysis:       map[string]types.NexusResult{},
		TaxObligations:      map[string]types.TaxObligation{},
		FilingRequirements:  []types.FilingRequirement{},
		Preview:             []dataset.Row{},
		FlaggedTransactions: []FlaggedTransaction{},
		Issues:              []*validation.Issue{},
	}
	if ds != nil {
		result.Source = ds.Source
	}

	log := a.logger.With(zap.String("run_id", result.ID), zap.String("source", result.Source))

	defer func() {
		result.ProcessingTime = time.Since(start)
		if rec := recover(); rec != nil {
			log.Error("analysis panicked", zap.Any("panic", rec))
			result.fail(fmt.Errorf("analysis failed: %v", rec))
		}
	}()

	if err := a.run(ds, result, log); err != nil {
		log.Warn("analysis failed", zap.Error(err))
		return result.fail(err)
	}

	result.Success = true
	log.Info("analysis complete",
		zap.Int("rows", result.Summary.TotalTransactions),
		zap.Int("nexus_states", result.Summary.NexusStates),
		zap.Int("issues", len(result.Issues)),
	)
	return result
}

func (a *Analyzer) run(ds *dataset.Dataset, result *Result, log *zap.Logger) error {
	// =========================================================================
	// STEP 1: PRECONDITIONS
	// =========================================================================

	if a.tables == nil {
		return ErrNoReferenceTables
	}
	if ds.Empty() {
		return ErrEmptyDataset
	}

	// =========================================================================
	// STEP 2-3: COLUMNS AND RECORDS
	// =========================================================================

	mapping := columns.Infer(ds.Fields)
	resolver := mapping.Resolver()
	result.Columns = mapping.Resolved()
	for _, role := range columns.Roles {
		if !resolver.Has(role) {
			log.Debug("column role unresolved", zap.String("role", string(role)))
		}
	}

	built := validation.BuildRecords(ds, resolver)
	result.Issues = built.Issues
	result.Summary.TotalTransactions = ds.Len()
	result.Summary.ValidTransactions = len(built.Records)
	result.Summary.TotalRevenue = built.Revenue
	result.Summary.ErrorIssues = built.ErrorCount
	result.Summary.WarningIssues = built.WarningCount

	// =========================================================================
	// STEP 4-7: ENGINE
	// =========================================================================

	nexusResults, err := nexus.Analyze(built.Records, a.tables, nexus.Options{Logger: log})
	if err != nil {
		return fmt.Errorf("failed to analyze nexus: %w", err)
	}
	result.NexusAnalysis = nexusResults

	obligations, err := obligation.Calculate(built.Records, a.tables)
	if err != nil {
		return fmt.Errorf("failed to calculate obligations: %w", err)
	}
	result.TaxObligations = obligations

	result.FilingRequirements = a.filer.Generate(nexusResults)
	result.ComplianceStatus = compliance.Summarize(nexusResults)

	result.Summary.StatesWithSales = result.ComplianceStatus.StatesWithSales
	result.Summary.NexusStates = result.ComplianceStatus.NexusStates
	result.Summary.FilingRequired = len(result.FilingRequirements)

	// =========================================================================
	// STEP 8: PREVIEW AND FLAGGING
	// =========================================================================

	result.Preview = ds.Head(a.opts.PreviewRows)
	result.FlaggedTransactions = a.flag(ds, resolver)
	return nil
}

func (a *Analyzer) flag(ds *dataset.Dataset, r *columns.Resolver) []FlaggedTransaction {
	flagged := make([]FlaggedTransaction, 0)
	if !r.Has(columns.RoleAmount) {
		return flagged
	}
	for i, row := range ds.Rows {
		amt, ok := r.Amount(row)
		if !ok || amt <= a.opts.FlagThreshold {
			continue
		}
		values := make(dataset.Row, len(row))
		for k, v := range row {
			values[k] = v
		}
		flagged = append(flagged, FlaggedTransaction{Row: i + 1, Amount: amt, Values: values})
	}
	return flagged
}
