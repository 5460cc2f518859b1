// =============================================================================
// TaxEase Analyzer - Analyze Command
// =============================================================================
//
// This file defines the 'analyze' command, the main entry point for running
// the nexus analysis over sales exports.
//
// COMMAND USAGE:
//   taxease analyze <file|directory> [flags]
//
// FLAGS:
//   --format   : Report format (json, markdown, html, xml)
//   --out      : Report directory (default: output_dir from config)
//   --stdout   : Print the report instead of writing a file (single file only)
//   --archive  : Move analyzed inputs to archive_dir on success (under a
//                YYYY/MM/DD subdirectory when archive_by_date is set)
//
// PROCESSING PIPELINE:
//   1. Load configuration, logger and reference tables
//   2. Collect the input files (one file, or every supported file in a directory)
//   3. For each file (concurrently):
//      a. Load it with the adapter matching its extension
//      b. Run the analysis (or the text scan for .txt)
//      c. Render and write the report (plus an issue log for skipped rows)
//      d. Archive the input when requested
//   4. Print a summary; directory runs also write a summary log
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/ingest"
	"github.com/ginjaninja78/taxease/internal/report"
	"github.com/ginjaninja78/taxease/internal/validation"
	"github.com/ginjaninja78/taxease/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	analyzeFormat  string
	analyzeOutDir  string
	analyzeStdout  bool
	analyzeArchive bool
)

// =============================================================================
// ANALYZE COMMAND DEFINITION
// =============================================================================

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file|directory>",
	Short: "Analyze sales exports for nexus, tax owed and filing requirements",
	Long: `The analyze command loads a sales export (CSV, XLSX, HTML table or plain
text), infers which columns hold the amount, state, city and product, and runs
the nexus analysis against the reference tables.

Given a directory, every supported file directly inside it is analyzed
concurrently. Each file is processed independently; a failure in one file
does not stop the others.

On success:
  - The report is written to the output directory (or stdout with --stdout)
  - The input is moved to the archive directory when --archive is set

On error:
  - The error is printed and recorded in the summary log
  - The input stays where it is`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAnalyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "", "Report format: json, markdown, html or xml (default from config)")
	analyzeCmd.Flags().StringVarP(&analyzeOutDir, "out", "o", "", "Directory for reports (default from config)")
	analyzeCmd.Flags().BoolVar(&analyzeStdout, "stdout", false, "Print the report to stdout instead of writing a file")
	analyzeCmd.Flags().BoolVar(&analyzeArchive, "archive", false, "Move analyzed inputs to the archive directory")
}

// fileResult is the outcome of analyzing one input file.
type fileResult struct {
	path   string
	report string
	err    error
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runAnalyze(cmd *cobra.Command, target string) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: SETUP
	// =========================================================================

	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	formatName := a.cfg.ReportFormat
	if analyzeFormat != "" {
		formatName = analyzeFormat
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: COLLECT INPUT FILES
	// =========================================================================

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	batch := info.IsDir()

	inputFiles := []string{target}
	if batch {
		inputFiles, err = utils.DiscoverInputFiles(target, ingest.Supported)
		if err != nil {
			return err
		}
		if len(inputFiles) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No supported files found in %s.\n", target)
			return nil
		}
	} else if _, err := ingest.KindOf(target); err != nil {
		return err
	}

	if analyzeStdout && len(inputFiles) > 1 {
		return fmt.Errorf("--stdout needs a single input file, found %d", len(inputFiles))
	}

	// Status lines go to stderr when the report itself goes to stdout.
	status := cmd.OutOrStdout()
	if analyzeStdout {
		status = cmd.ErrOrStderr()
	}

	outDir := a.cfg.OutputDir
	if analyzeOutDir != "" {
		outDir = analyzeOutDir
	}
	archiveDir := ""
	if analyzeArchive {
		archiveDir = a.cfg.ArchiveDir
	}
	fm := utils.NewFileManager(outDir, archiveDir, a.cfg.OutputNameFormat)
	fm.UseTimestampSubdirs = a.cfg.ArchiveByDate
	if !analyzeStdout {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	analyzer := a.analyzer()
	opts := a.ingestOptions()

	var wg sync.WaitGroup
	results := make(chan fileResult, len(inputFiles))

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			results <- analyzeFile(path, analyzer, opts, format, fm, cmd.OutOrStdout(), a.logger)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND SUMMARIZE
	// =========================================================================

	summary := utils.ProcessingSummary{
		StartTime:      startTime,
		FilesProcessed: len(inputFiles),
		Failures:       make(map[string]string),
	}

	for result := range results {
		name := filepath.Base(result.path)
		if result.err != nil {
			summary.FilesFailed++
			summary.Failures[name] = result.err.Error()
			fmt.Fprintf(status, "  ✗ %s: %v\n", name, result.err)
			continue
		}
		summary.FilesSucceeded++
		if result.report != "" {
			summary.Reports = append(summary.Reports, result.report)
			fmt.Fprintf(status, "  ✓ %s -> %s\n", name, result.report)
		}
	}
	summary.EndTime = time.Now()

	if batch {
		fmt.Fprintln(status, "\n=== Analysis Complete ===")
		fmt.Fprintf(status, "Total files:     %d\n", summary.FilesProcessed)
		fmt.Fprintf(status, "Successful:      %d\n", summary.FilesSucceeded)
		fmt.Fprintf(status, "Errors:          %d\n", summary.FilesFailed)
		fmt.Fprintf(status, "Time elapsed:    %s\n", summary.EndTime.Sub(startTime).Round(time.Millisecond))

		logPath, err := utils.WriteSummaryLog(summary, outDir)
		if err != nil {
			a.logger.Warn("failed to write summary log", zap.Error(err))
		} else {
			fmt.Fprintf(status, "Summary log:     %s\n", logPath)
		}
	}

	if summary.FilesFailed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FilesFailed, summary.FilesProcessed)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// analyzeFile loads, analyzes and reports on a single input.
//
// PARAMETERS:
//   - path: The input file.
//   - stdout: Destination for the report when --stdout is set.
//
// RETURNS:
//   - A fileResult with the report path, or the error that stopped the file.
func analyzeFile(path string, analyzer *analysis.Analyzer, opts ingest.Options, format report.Format,
	fm *utils.FileManager, stdout io.Writer, log *zap.Logger) fileResult {
	result := fileResult{path: path}

	in, err := ingest.Load(path, opts)
	if err != nil {
		result.err = err
		return result
	}

	var (
		runID  string
		issues []*validation.Issue
		render func(io.Writer) error
	)
	if in.Tabular() {
		res := analyzer.Run(in.Dataset)
		if !res.Success {
			result.err = res.Err
			return result
		}
		runID = res.ID
		issues = res.Issues
		render = func(w io.Writer) error { return report.Render(w, format, res) }
	} else {
		log.Info("text scan complete",
			zap.String("source", in.Name),
			zap.Int("lines", in.Text.Lines),
			zap.Int("flagged", len(in.Text.Flagged)),
		)
		render = func(w io.Writer) error { return report.RenderText(w, format, in.Text) }
	}

	if analyzeStdout {
		result.err = render(stdout)
		return result
	}

	result.report, err = fm.WriteReport(path, runID, format.Extension(), render)
	if err != nil {
		result.err = err
		return result
	}

	// Skipped rows are listed next to the report.
	if len(issues) > 0 {
		issuePath := strings.TrimSuffix(result.report, filepath.Ext(result.report)) + "_issues.txt"
		if err := validation.WriteIssueLog(issues, issuePath); err != nil {
			log.Warn("failed to write issue log", zap.String("file", issuePath), zap.Error(err))
		}
	}

	if fm.ArchiveDir != "" {
		archived, err := fm.ArchiveInputFile(path)
		if err != nil {
			log.Warn("failed to archive input", zap.String("file", path), zap.Error(err))
		} else {
			log.Debug("archived input", zap.String("file", path), zap.String("archive", archived))
		}
	}

	return result
}
