package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Submitted", "Q1", "Comments"},
		Rows: []map[string]string{
			{"Submitted": "2026-01-02", "Q1": "5", "Comments": "Great, \"really\" clear"},
			{"Submitted": "2026-01-01", "Q1": "3"},
		},
		Widths: []float64{2, 1, 6},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Submitted", "Q1", "Comments"}, records[0])
	assert.Equal(t, "Great, \"really\" clear", records[1][2])
	assert.Equal(t, "", records[2][2])
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Q1", "Comments"},
		Rows: []map[string]string{
			{"Q1": "4", "Comments": "=HYPERLINK(\"http://x\")"},
			{"Q1": "5", "Comments": "@SUM(A1)"},
			{"Q1": "3", "Comments": "-fine, really"},
			{"Q1": "2", "Comments": "plain"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "'=HYPERLINK(\"http://x\")", records[1][1])
	assert.Equal(t, "'@SUM(A1)", records[2][1])
	assert.Equal(t, "'-fine, really", records[3][1])
	assert.Equal(t, "plain", records[4][1])
	assert.Equal(t, "4", records[1][0])
}

func TestCSVExporterBOM(t *testing.T) {
	out, err := (&CSVExporter{BOM: true}).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, utf8BOM))
	assert.True(t, bytes.Contains(out, []byte("\r\n")))

	plain, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.False(t, bytes.HasPrefix(plain, utf8BOM))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Feedback: Algebra")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFallBackToEqualSplit(t *testing.T) {
	widths := columnWidths(Dataset{Headers: []string{"a", "b"}, Widths: []float64{1}})
	assert.InDelta(t, pageWidth/2, widths[0], 1e-9)

	weighted := columnWidths(sampleDataset())
	assert.InDelta(t, pageWidth, sum(weighted), 1e-9)
	assert.Greater(t, weighted[2], weighted[0])
}
