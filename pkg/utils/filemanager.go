// =============================================================================
// TaxEase Analyzer - File Manager Utility
// =============================================================================
//
// File management for the CLI:
//   - Input discovery (a directory of exports)
//   - Report naming and writing
//   - Input archival (moving analyzed files)
//   - Batch summary logs
//
// ARCHIVAL STRATEGY:
//   - Archival is opt-in (analyze --archive)
//   - Inputs are moved only after their report was written
//   - Failed inputs remain in their original location
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles report and archive file operations.
type FileManager struct {
	// OutputDir is the directory where reports are written.
	OutputDir string

	// ArchiveDir is the directory for archived input files.
	ArchiveDir string

	// NameFormat is the report file name format, see GenerateOutputFileName.
	NameFormat string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/sales.csv
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, archiveDir, nameFormat string) *FileManager {
	if nameFormat == "" {
		nameFormat = "{source}_{timestamp}_{uuid}.{ext}"
	}
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		NameFormat: nameFormat,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory and, when set, the archive
// directory.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files directly inside dir that pass accept,
// sorted by path. Dot files are skipped.
//
// PARAMETERS:
//   - dir: The directory to scan (not recursive).
//   - accept: Filter on the file name; nil accepts everything.
func DiscoverInputFiles(dir string, accept func(name string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if accept != nil && !accept(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// =============================================================================
// REPORT OUTPUT
// =============================================================================

// WriteReport writes a report into OutputDir.
//
// PARAMETERS:
//   - sourcePath: The analyzed input, used for {source}.
//   - runID: The analysis run ID, used for {uuid}.
//   - ext: The report extension without the dot.
//   - write: Renders the report body.
//
// RETURNS:
//   - The path of the written report.
func (fm *FileManager) WriteReport(sourcePath, runID, ext string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	source := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	name := GenerateOutputFileName(fm.NameFormat, map[string]string{
		"source": source,
		"uuid":   runID,
		"ext":    ext,
	})
	path := filepath.Join(fm.OutputDir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := write(writer); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Move the file.
	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := time.Now()
		return filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - The "uuid" param, or a random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//     {source}    - Input file name without extension
//     {ext}       - Report extension
//   - params: A map of placeholder values.
//
// EXAMPLE:
//
//	format: "{source}_{timestamp}_{uuid}.{ext}"
//	params: {"source": "sales_q1", "ext": "json"}
//	output: "sales_q1_20240115_143022_a1b2c3d4-e5f6-7890-abcd-ef1234567890.json"
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	id := params["uuid"]
	if id == "" {
		id = uuid.New().String()
	}

	replacements := map[string]string{
		"{uuid}":      id,
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		if key == "uuid" {
			continue
		}
		replacements["{"+key+"}"] = sanitizeFileName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// sanitizeFileName replaces characters that are unsafe in file names.
func sanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary describes one batch run of the analyze command.
type ProcessingSummary struct {
	StartTime      time.Time
	EndTime        time.Time
	FilesProcessed int
	FilesSucceeded int
	FilesFailed    int
	Reports        []string
	Failures       map[string]string
}

// WriteSummaryLog writes a batch summary into outputDir.
//
// RETURNS:
//   - The path to the summary file.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", summary.EndTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "TaxEase Analyzer - Processing Summary\n"+
		"================================================================================\n"+
		"Start Time:       %s\n"+
		"End Time:         %s\n"+
		"Duration:         %s\n"+
		"Files Processed:  %d\n"+
		"Files Succeeded:  %d\n"+
		"Files Failed:     %d\n"+
		"================================================================================\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond),
		summary.FilesProcessed,
		summary.FilesSucceeded,
		summary.FilesFailed,
	)

	if len(summary.Reports) > 0 {
		writer.WriteString("\nReports:\n")
		for _, r := range summary.Reports {
			fmt.Fprintf(writer, "  %s\n", r)
		}
	}

	if len(summary.Failures) > 0 {
		writer.WriteString("\nFailures:\n")
		names := make([]string, 0, len(summary.Failures))
		for name := range summary.Failures {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(writer, "  %s: %s\n", name, summary.Failures[name])
		}
	}

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to write summary log: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
