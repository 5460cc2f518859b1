package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/taxease/internal/config"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"sales.csv", KindCSV},
		{"SALES.CSV", KindCSV},
		{"book.xlsx", KindXLSX},
		{"report.html", KindHTML},
		{"report.htm", KindHTML},
		{"notes.txt", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := KindOf(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, k)
			assert.True(t, Supported(tt.name))
		})
	}

	for _, bad := range []string{"scan.pdf", "photo.png", "noext", "old.xls"} {
		_, err := KindOf(bad)
		assert.ErrorIs(t, err, ErrUnsupportedType, bad)
		assert.False(t, Supported(bad))
	}
}

func TestLoadReaderCSV(t *testing.T) {
	in, err := LoadReader(strings.NewReader("State,Amount\nCA,100\n"), "sales.csv", Options{})
	require.NoError(t, err)
	assert.True(t, in.Tabular())
	assert.Equal(t, KindCSV, in.Kind)
	assert.Equal(t, 1, in.Dataset.Len())
	assert.Nil(t, in.Text)
}

func TestLoadReaderHTML(t *testing.T) {
	html := "<table><tr><th>State</th><th>Amount</th></tr><tr><td>TX</td><td>5</td></tr></table>"
	in, err := LoadReader(strings.NewReader(html), "r.html", Options{})
	require.NoError(t, err)
	assert.Equal(t, "TX", in.Dataset.Rows[0]["State"])
}

func TestLoadReaderText(t *testing.T) {
	in, err := LoadReader(strings.NewReader("Wire $50,000"), "notes.txt", Options{TextThreshold: 100})
	require.NoError(t, err)
	assert.False(t, in.Tabular())
	require.NotNil(t, in.Text)
	assert.Len(t, in.Text.Flagged, 1)
	assert.Equal(t, float64(100), in.Text.Threshold)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"State", "Amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"WA", 42}))
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))

	in, err := Load(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx", in.Name)
	assert.Equal(t, "book.xlsx", in.Dataset.Source)
	assert.Equal(t, "42", in.Dataset.Rows[0]["Amount"])

	_, err = Load(path, Options{XLSX: config.XLSXSettings{Sheets: []string{"Missing"}}})
	assert.Error(t, err, "no selected sheet has rows")
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		opts    Options
		check   func(t *testing.T, in *Input)
	}{
		{
			name:    "sales.csv",
			content: "State|Amount\nCA|100\n",
			opts:    Options{CSV: config.CSVSettings{Delimiter: "|"}},
			check: func(t *testing.T, in *Input) {
				assert.Equal(t, "CA", in.Dataset.Rows[0]["State"])
				assert.Equal(t, "sales.csv", in.Dataset.Source)
			},
		},
		{
			name:    "report.htm",
			content: "<table><tr><th>State</th><th>Amount</th></tr><tr><td>NV</td><td>9</td></tr></table>",
			check: func(t *testing.T, in *Input) {
				assert.Equal(t, "NV", in.Dataset.Rows[0]["State"])
				assert.Equal(t, "report.htm", in.Dataset.Source)
			},
		},
		{
			name:    "notes.txt",
			content: "Wire $50,000\nLunch $12\n",
			opts:    Options{TextThreshold: 1000},
			check: func(t *testing.T, in *Input) {
				assert.False(t, in.Tabular())
				assert.Len(t, in.Text.Flagged, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			in, err := Load(path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.name, in.Name)
			tt.check(t, in)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("scan.pdf", Options{})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	_, err = Load(path, Options{})
	assert.Error(t, err)
}
