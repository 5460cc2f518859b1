// =============================================================================
// TaxEase Analyzer - Scan Command
// =============================================================================
//
// This file defines the 'scan' command, which flags lines of free text that
// mention a monetary amount above a threshold.
//
// COMMAND USAGE:
//   taxease scan <file> [--threshold 10000] [--format markdown]
//
// The file is read as UTF-8 text whatever its extension, so notes, e-mail
// exports and invoice dumps can all be scanned.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ginjaninja78/taxease/internal/report"
	"github.com/ginjaninja78/taxease/internal/textscan"
)

var (
	scanThreshold float64
	scanFormat    string
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Flag large monetary amounts mentioned in a text file",
	Long: `The scan command reads a text file and lists every line that carries a
currency marker ($ or USD) and an amount above the threshold. The report is
printed to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Float64VarP(&scanThreshold, "threshold", "t", 0, "Flag amounts above this value (default flag_threshold from config)")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "markdown", "Report format: json, markdown, html or xml")
}

func runScan(cmd *cobra.Command, path string) error {
	a, err := setup(false)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	format, err := report.ParseFormat(scanFormat)
	if err != nil {
		return err
	}

	threshold := a.cfg.FlagThreshold
	if cmd.Flags().Changed("threshold") {
		if scanThreshold < 0 {
			return fmt.Errorf("threshold must be non-negative, got %g", scanThreshold)
		}
		threshold = scanThreshold
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	res, err := textscan.ScanReader(f, filepath.Base(path), threshold)
	if err != nil {
		return err
	}
	a.logger.Debug("text scan complete",
		zap.String("source", res.Source),
		zap.Int("lines", res.Lines),
		zap.Int("flagged", len(res.Flagged)),
	)

	return report.RenderText(cmd.OutOrStdout(), format, res)
}
