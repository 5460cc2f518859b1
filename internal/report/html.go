package report

import (
	"bytes"
	"fmt"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// markdownRenderer converts report markdown with GFM tables. Raw HTML in
// the input is not rendered, so cell values from uploads stay inert.
var markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:72rem;padding:0 1rem;color:#1f2933}
table{border-collapse:collapse;margin:1rem 0;width:100%}
th,td{border:1px solid #cbd2d9;padding:.35rem .6rem}
th{background:#f0f4f8;text-align:left}
tr:nth-child(even){background:#f9fafb}
pre{background:#f0f4f8;padding:1rem;overflow:auto}`

// MarkdownToHTML converts markdown to an HTML fragment.
func MarkdownToHTML(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteHTML writes a standalone HTML page for a markdown body.
func WriteHTML(w io.Writer, title, md string) error {
	body, err := MarkdownToHTML(md)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(title), pageStyle, body)
	if err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}
