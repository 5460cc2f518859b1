// Package htmltable reads sales data out of HTML report exports. Many
// storefront and accounting tools export "reports" as a bare HTML page with
// a single <table>; the first table that has a header row and at least one
// data row becomes the dataset.
package htmltable

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ginjaninja78/taxease/internal/dataset"
)

// ErrNoTable is returned when the document contains no usable table.
var ErrNoTable = errors.New("no table with a header row found")

// maxColSpan caps colspan attributes so a malformed page cannot blow up a row.
const maxColSpan = 64

// Parse reads an HTML file into a dataset.
func Parse(filePath string) (*dataset.Dataset, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open HTML file: %w", err)
	}
	defer f.Close()

	return ParseReader(f, filepath.Base(filePath))
}

// ParseReader reads an HTML document from r into a dataset.
func ParseReader(r io.Reader, name string) (*dataset.Dataset, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var ds *dataset.Dataset
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header, body := splitTable(table)
		if len(header) == 0 || len(body) == 0 {
			return true
		}
		ds = dataset.New(name, header, body)
		return ds.Empty()
	})

	if ds.Empty() {
		return nil, ErrNoTable
	}
	return ds, nil
}

// splitTable returns the header cells and the data rows of one table.
// Nested tables are ignored. A <thead> row wins; otherwise the first row
// is the header.
func splitTable(table *goquery.Selection) ([]string, [][]string) {
	var rows [][]string
	headerIdx := -1

	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		if tr.ParentsFiltered("table").First().Get(0) != table.Get(0) {
			return
		}
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		if headerIdx < 0 && tr.ParentsFiltered("thead").Length() > 0 {
			headerIdx = len(rows)
		}
		rows = append(rows, cells)
	})

	if len(rows) == 0 {
		return nil, nil
	}
	if headerIdx < 0 {
		headerIdx = 0
	}

	body := make([][]string, 0, len(rows)-1)
	for i, r := range rows {
		if i != headerIdx {
			body = append(body, r)
		}
	}
	return rows[headerIdx], body
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
		text := strings.Join(strings.Fields(cell.Text()), " ")
		span, _ := strconv.Atoi(cell.AttrOr("colspan", "1"))
		span = min(max(span, 1), maxColSpan)
		for range span {
			cells = append(cells, text)
		}
	})
	return cells
}
