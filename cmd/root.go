// =============================================================================
// TaxEase Analyzer - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every sub-command
// is attached to it in its own init().
//
// COBRA CLI STRUCTURE:
//   rootCmd (taxease)
//   ├── analyzeCmd (taxease analyze)
//   ├── scanCmd    (taxease scan)
//   ├── serveCmd   (taxease serve)
//   ├── tablesCmd  (taxease tables)
//   └── versionCmd (taxease version)
//
// CONFIGURATION:
//   Commands that need it call setup(), which:
//   1. Loads .env into the process environment (if present)
//   2. Loads config.yaml (or --config) with TAXEASE_* overrides
//   3. Builds the zap logger
//   4. Loads the reference tables (built-in or reference_file)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/config"
	"github.com/ginjaninja78/taxease/internal/ingest"
	"github.com/ginjaninja78/taxease/internal/logger"
	"github.com/ginjaninja78/taxease/internal/reference"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose switches logging to debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "taxease",
	Short: "TaxEase Analyzer - sales-tax nexus and obligation analysis",
	Long: `TaxEase Analyzer reads sales exports (CSV, XLSX or HTML tables), works out
in which jurisdictions you have crossed the economic-nexus threshold, what tax
you owe there, and when you need to file.

Key Features:
  - Column roles (amount, state, city, product, date) inferred from headers
  - Product lines classified into taxability categories
  - State and local rates with sales-weighted locality averages
  - Filing frequency, due date and priority per nexus jurisdiction
  - JSON, Markdown, HTML and XML reports
  - Upload server for one-off analyses

Example Usage:
  taxease analyze sales.csv                 # Write a JSON report to ./output
  taxease analyze exports/ --format html    # Analyze every supported file
  taxease analyze sales.xlsx --stdout       # Print the report instead
  taxease scan notes.txt --threshold 5000   # Flag large amounts in free text
  taxease serve --addr :8080                # Start the upload server`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// app bundles what every command needs after setup.
type app struct {
	cfg    *config.MainConfig
	logger *zap.Logger
	tables *reference.Tables
}

// setup loads the environment, configuration, logger and reference tables.
//
// PARAMETERS:
//   - jsonLogs: Forces JSON log output regardless of log_json.
//
// RETURNS:
//   - The initialized app.
//   - An error if any step fails.
func setup(jsonLogs bool) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// The default config.yaml is optional; an explicit --config is not.
	cfg, err := config.LoadMainConfig(cfgFile, rootCmd.PersistentFlags().Changed("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Config{Level: level, JSON: cfg.LogJSON || jsonLogs})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	tables := reference.Default()
	if cfg.ReferenceFile != "" {
		tables, err = reference.LoadFile(cfg.ReferenceFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load reference tables: %w", err)
		}
		log.Debug("loaded reference tables", zap.String("file", cfg.ReferenceFile))
	}

	return &app{cfg: cfg, logger: log, tables: tables}, nil
}

// analyzer builds the analysis pipeline from the loaded configuration.
func (a *app) analyzer() *analysis.Analyzer {
	return analysis.New(a.tables, analysis.Options{
		PreviewRows:   a.cfg.PreviewRows,
		FlagThreshold: a.cfg.FlagThreshold,
		Filing:        a.cfg.Filing,
	}, a.logger)
}

// ingestOptions returns the adapter settings from the configuration.
func (a *app) ingestOptions() ingest.Options {
	return ingest.Options{
		CSV:           a.cfg.CSV,
		XLSX:          a.cfg.XLSX,
		TextThreshold: a.cfg.FlagThreshold,
	}
}
