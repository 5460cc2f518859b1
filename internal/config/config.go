// =============================================================================
// TaxEase Analyzer - Configuration Module
// =============================================================================
//
// This module loads the main application configuration (config.yaml). The
// configuration is optional: every setting has a default, and a missing
// default config file is not an error.
//
// PRECEDENCE (lowest to highest):
//   1. Built-in defaults
//   2. config.yaml values
//   3. TAXEASE_* environment variables (a .env file is loaded by cmd/root.go)
//   4. Command-line flags (applied by the individual commands)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/taxease/internal/filing"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where rendered reports are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives analyzed input files when archiving is enabled.
	// Default: "./input_archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveByDate files archived inputs under YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// OutputNameFormat defines report file names.
	// Placeholders:
	//   {uuid}      - The analysis run ID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {source}    - Input file name without extension
	//   {ext}       - Report format extension
	// Default: "{source}_{timestamp}_{uuid}.{ext}"
	OutputNameFormat string `yaml:"output_name_format"`

	// ReportFormat is the default report format: json, markdown, html or xml.
	// Default: "json"
	ReportFormat string `yaml:"report_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls verbosity: "debug", "info", "warn", "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogJSON switches the console encoder for the JSON encoder.
	LogJSON bool `yaml:"log_json"`

	// =========================================================================
	// ANALYSIS SETTINGS
	// =========================================================================

	// ReferenceFile optionally points at a YAML file that overrides or
	// replaces the built-in reference tables.
	ReferenceFile string `yaml:"reference_file"`

	// PreviewRows is how many input rows are echoed in the result.
	// Default: 10
	PreviewRows int `yaml:"preview_rows"`

	// FlagThreshold marks single transactions (and text mentions) above
	// this amount as high value.
	// Default: 10000
	FlagThreshold float64 `yaml:"flag_threshold"`

	// CSV contains settings for parsing CSV input.
	CSV CSVSettings `yaml:"csv"`

	// XLSX selects the workbook sheets that are read.
	XLSX XLSXSettings `yaml:"xlsx"`

	// Filing holds the filing-frequency tiers and due-date lead times.
	Filing filing.Policy `yaml:"filing"`

	// Server holds the HTTP upload server settings.
	Server ServerConfig `yaml:"server"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter separates fields: ",", "|", "\t"/"tab", ";".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows; several rows are merged.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// DataStartRow is the 1-based row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row"`
}

// XLSXSettings contains settings for reading workbooks.
type XLSXSettings struct {
	// Sheets restricts reading to the named sheets. Empty means all.
	Sheets []string `yaml:"sheets"`

	// IncludeHidden also reads hidden sheets.
	// Default: false
	IncludeHidden bool `yaml:"include_hidden"`
}

// =============================================================================
// SERVER SETTINGS STRUCTURE
// =============================================================================

// ServerConfig contains the upload server settings.
type ServerConfig struct {
	// Addr is the listen address.
	// Default: ":8080"
	Addr string `yaml:"addr"`

	// MaxUploadBytes caps the accepted upload size.
	// Default: 10 MiB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Mode is the gin mode: "debug", "release" or "test".
	// Default: "release"
	Mode string `yaml:"mode"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - required:   Whether a missing file is an error. The default
//     config.yaml is optional; an explicitly passed --config is not.
//
// RETURNS:
//   - A pointer to the MainConfig struct with defaults and environment
//     overrides applied.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, required bool) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyEnvOverrides(&config, os.Getenv)
	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset option.
func applyMainConfigDefaults(config *MainConfig) {
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./input_archive"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{source}_{timestamp}_{uuid}.{ext}"
	}
	if config.ReportFormat == "" {
		config.ReportFormat = "json"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.PreviewRows == 0 {
		config.PreviewRows = 10
	}
	if config.FlagThreshold == 0 {
		config.FlagThreshold = 10000
	}

	if config.CSV.Delimiter == "" {
		config.CSV.Delimiter = ","
	}
	if config.CSV.HeaderRows == 0 {
		config.CSV.HeaderRows = 1
	}
	if config.CSV.DataStartRow == 0 {
		config.CSV.DataStartRow = config.CSV.HeaderRows + 1
	}

	config.Filing = config.Filing.WithDefaults()

	if config.Server.Addr == "" {
		config.Server.Addr = ":8080"
	}
	if config.Server.MaxUploadBytes == 0 {
		config.Server.MaxUploadBytes = 10 << 20
	}
	if config.Server.Mode == "" {
		config.Server.Mode = "release"
	}
}

// applyEnvOverrides lets TAXEASE_* variables override file values.
func applyEnvOverrides(config *MainConfig, getenv func(string) string) {
	if v := getenv("TAXEASE_OUTPUT_DIR"); v != "" {
		config.OutputDir = v
	}
	if v := getenv("TAXEASE_REPORT_FORMAT"); v != "" {
		config.ReportFormat = v
	}
	if v := getenv("TAXEASE_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := getenv("TAXEASE_LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.LogJSON = b
		}
	}
	if v := getenv("TAXEASE_ARCHIVE_BY_DATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.ArchiveByDate = b
		}
	}
	if v := getenv("TAXEASE_REFERENCE_FILE"); v != "" {
		config.ReferenceFile = v
	}
	if v := getenv("TAXEASE_SERVER_ADDR"); v != "" {
		config.Server.Addr = v
	}
}

// ReportFormats lists the accepted report formats.
var ReportFormats = []string{"json", "markdown", "html", "xml"}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	config.ReportFormat = strings.ToLower(config.ReportFormat)
	if !validFormat(config.ReportFormat) {
		return fmt.Errorf("report_format must be one of %s, got %q", strings.Join(ReportFormats, ", "), config.ReportFormat)
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level %q is not recognized", config.LogLevel)
	}

	if config.PreviewRows < 0 {
		return fmt.Errorf("preview_rows must not be negative")
	}
	if config.FlagThreshold < 0 {
		return fmt.Errorf("flag_threshold must not be negative")
	}
	if config.CSV.DataStartRow <= config.CSV.HeaderRows {
		return fmt.Errorf("csv.data_start_row must come after the header rows")
	}
	if err := config.Filing.Validate(); err != nil {
		return fmt.Errorf("filing: %w", err)
	}
	if config.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}

	return nil
}

func validFormat(format string) bool {
	for _, f := range ReportFormats {
		if f == format {
			return true
		}
	}
	return false
}
