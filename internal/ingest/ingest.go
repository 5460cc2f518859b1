// =============================================================================
// TaxEase Analyzer - Input Dispatch
// =============================================================================
//
// Chooses the input adapter from the file extension:
//
//   .csv          -> csvparser  (tabular)
//   .xlsx         -> xlsxparser (tabular, all visible sheets)
//   .html / .htm  -> htmltable  (tabular, first table)
//   .txt          -> textscan   (monetary-mention flagging only)
//
// Anything else is rejected with ErrUnsupportedType before any bytes are read.
//
// =============================================================================

package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/taxease/internal/config"
	"github.com/ginjaninja78/taxease/internal/csvparser"
	"github.com/ginjaninja78/taxease/internal/dataset"
	"github.com/ginjaninja78/taxease/internal/htmltable"
	"github.com/ginjaninja78/taxease/internal/textscan"
	"github.com/ginjaninja78/taxease/internal/xlsxparser"
)

// ErrUnsupportedType is returned for file extensions with no adapter.
var ErrUnsupportedType = errors.New("unsupported file type")

// Kind is the adapter family for an input.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindXLSX Kind = "xlsx"
	KindHTML Kind = "html"
	KindText Kind = "text"
)

var kinds = map[string]Kind{
	".csv":  KindCSV,
	".xlsx": KindXLSX,
	".html": KindHTML,
	".htm":  KindHTML,
	".txt":  KindText,
}

// AllowedExtensions lists the accepted extensions in display order.
var AllowedExtensions = []string{".csv", ".xlsx", ".html", ".htm", ".txt"}

// Options configures the adapters.
type Options struct {
	CSV  config.CSVSettings
	XLSX config.XLSXSettings

	// TextThreshold is the flagging threshold for text input.
	TextThreshold float64
}

// Input is one loaded file. Exactly one of Dataset and Text is set.
type Input struct {
	Name    string
	Kind    Kind
	Dataset *dataset.Dataset
	Text    *textscan.TextResult
}

// Tabular reports whether the input goes through the nexus engine.
func (in *Input) Tabular() bool {
	return in.Dataset != nil
}

// KindOf returns the adapter family for a file name.
func KindOf(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if k, ok := kinds[ext]; ok {
		return k, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return "", fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedType, ext, strings.Join(AllowedExtensions, ", "))
}

// Supported reports whether a file name has an accepted extension.
func Supported(name string) bool {
	_, err := KindOf(name)
	return err == nil
}

// Load parses a file from disk. Tabular files go through the path-based
// parsers; text is streamed.
func Load(path string, opts Options) (*Input, error) {
	kind, err := KindOf(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	in := &Input{Name: name, Kind: kind}

	switch kind {
	case KindCSV:
		in.Dataset, err = csvparser.Parse(path, opts.csvSettings())
	case KindXLSX:
		in.Dataset, err = xlsxparser.Parse(path, opts.XLSX)
	case KindHTML:
		in.Dataset, err = htmltable.Parse(path)
	case KindText:
		var f *os.File
		if f, err = os.Open(path); err == nil {
			in.Text, err = textscan.ScanReader(f, name, opts.TextThreshold)
			f.Close()
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return in, nil
}

// LoadReader parses r using the adapter chosen from name's extension.
func LoadReader(r io.Reader, name string, opts Options) (*Input, error) {
	kind, err := KindOf(name)
	if err != nil {
		return nil, err
	}
	in := &Input{Name: name, Kind: kind}

	switch kind {
	case KindCSV:
		in.Dataset, err = csvparser.ParseReader(r, name, opts.csvSettings())
	case KindXLSX:
		in.Dataset, err = xlsxparser.ParseReader(r, name, opts.XLSX)
	case KindHTML:
		in.Dataset, err = htmltable.ParseReader(r, name)
	case KindText:
		in.Text, err = textscan.ScanReader(r, name, opts.TextThreshold)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	return in, nil
}

// csvSettings fills in a single header row for zero-value options.
func (o Options) csvSettings() config.CSVSettings {
	settings := o.CSV
	if settings.HeaderRows <= 0 {
		settings.HeaderRows = 1
	}
	return settings
}
