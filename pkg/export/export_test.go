package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterPadsShortRows(t *testing.T) {
	data := Dataset{Headers: []string{"semester", "course", "sks"}}
	data.AddRow("1", "Kalkulus", "3")
	data.AddRow("2")

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "semester,course,sks\n1,Kalkulus,3\n2,,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	table := Dataset{Headers: []string{"Course", "SKS", "Grade"}}
	table.AddRow("Kalkulus", "3", "A (4.0)")
	doc := Document{
		Title:        "Academic Transcript",
		Summary:      []string{"IPK: 4.00"},
		ColumnWidths: []float64{3, 1, 1},
		Sections: []Section{
			{Heading: "Semester 1", Table: table},
			{Heading: "Semester 2", Table: Dataset{Headers: table.Headers}, EmptyText: "No courses yet"},
		},
		Footer: "generated",
	}

	out, err := NewPDFExporter().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestColumnWidthsFallback(t *testing.T) {
	widths := columnWidths(2, []float64{1})
	assert.Equal(t, []float64{95, 95}, widths)
}
