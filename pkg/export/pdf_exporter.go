package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Section is a headed table inside a Document.
type Section struct {
	Heading    string
	Subheading string
	Table      Dataset
	// EmptyText is printed instead of the table when it has no rows.
	EmptyText string
}

// Document is a titled report with summary lines followed by sections.
type Document struct {
	Title   string
	Summary []string
	// ColumnWidths are relative weights; equal widths are used when empty.
	ColumnWidths []float64
	Sections     []Section
	Footer       string
}

// PDFExporter renders documents into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const pageWidth = 190.0

// Render creates a PDF with the title, summary block and one table per section.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(strings.ToUpper(doc.Title)), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	if len(doc.Summary) > 0 {
		pdf.SetFont("Arial", "", 10)
		for _, line := range doc.Summary {
			pdf.CellFormat(0, 6, tr(line), "", 1, "", false, 0, "")
		}
		pdf.Ln(4)
	}

	for _, section := range doc.Sections {
		if err := renderSection(pdf, tr, section, doc.ColumnWidths); err != nil {
			return nil, err
		}
	}

	if doc.Footer != "" {
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, tr(doc.Footer), "", 1, "C", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderSection(pdf *gofpdf.Fpdf, tr func(string) string, section Section, weights []float64) error {
	if len(section.Table.Headers) == 0 {
		return fmt.Errorf("pdf section %q requires at least one header", section.Heading)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "", false, 0, "")
	if section.Subheading != "" {
		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 6, tr(section.Subheading), "", 1, "", false, 0, "")
	}

	if len(section.Table.Rows) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 7, tr(section.EmptyText), "", 1, "", false, 0, "")
		pdf.Ln(4)
		return nil
	}

	widths := columnWidths(len(section.Table.Headers), weights)
	pdf.SetFont("Arial", "B", 10)
	for i, header := range section.Table.Headers {
		pdf.CellFormat(widths[i], 8, tr(header), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range section.Table.Rows {
		for i, value := range section.Table.record(row) {
			align := ""
			if i > 0 {
				align = "C"
			}
			pdf.CellFormat(widths[i], 7, tr(value), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
	return nil
}

func columnWidths(n int, weights []float64) []float64 {
	widths := make([]float64, n)
	if len(weights) != n {
		for i := range widths {
			widths[i] = pageWidth / float64(n)
		}
		return widths
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	for i, w := range weights {
		widths[i] = pageWidth * w / total
	}
	return widths
}
