// =============================================================================
// TaxEase Analyzer - Report Rendering
// =============================================================================
//
// Renders analysis results (and text-scan results) for people and tools:
//
//   json      machine-readable result envelope
//   markdown  human-readable summary tables
//   html      the markdown report converted by goldmark, wrapped in a page
//   xml       element-per-jurisdiction document for downstream importers
//
// =============================================================================

package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ginjaninja78/taxease/internal/analysis"
	"github.com/ginjaninja78/taxease/internal/textscan"
)

// Format is an output format name.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatXML      Format = "xml"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatMarkdown, FormatHTML, FormatXML}

// ParseFormat validates a format name. "md" is accepted for markdown.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	if f == "md" {
		f = FormatMarkdown
	}
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown report format %q (supported: json, markdown, html, xml)", name)
	}
	return f, nil
}

// Extension returns the file extension for a format, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// ContentType returns the HTTP content type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatXML:
		return "application/xml; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}

// Render writes an analysis result in the given format.
func Render(w io.Writer, f Format, res *analysis.Result) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(res))
		return err
	case FormatHTML:
		return WriteHTML(w, "Nexus analysis: "+res.Source, Markdown(res))
	case FormatXML:
		return WriteXML(w, res)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// RenderText writes a text-scan result in the given format.
func RenderText(w io.Writer, f Format, res *textscan.TextResult) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatMarkdown:
		_, err := io.WriteString(w, TextMarkdown(res))
		return err
	case FormatHTML:
		return WriteHTML(w, "Text scan: "+res.Source, TextMarkdown(res))
	case FormatXML:
		return WriteTextXML(w, res)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}
