package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ipk-calculator/internal/models"
	appErrors "github.com/noah-isme/ipk-calculator/pkg/errors"
	"github.com/noah-isme/ipk-calculator/pkg/export"
)

const (
	reportTitle   = "ACADEMIC TRANSCRIPT"
	reportFooter  = "Generated by IPK Calculator"
	reportRule    = 50
	courseNamePad = 30
	noCoursesText = "No courses yet"
	reportDateFmt = "02/01/2006 15:04"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ReportService renders the transcript as text, CSV or PDF and writes the
// result into the export directory.
type ReportService struct {
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{storage: storage, csv: csv, pdf: pdf, logger: logger}
}

// TranscriptText renders the plain-text transcript. An empty transcript still
// produces the header block.
func TranscriptText(t *models.Transcript, now time.Time) string {
	summary := models.RecomputeTranscript(t)
	rule := strings.Repeat("=", reportRule)
	var b strings.Builder

	b.WriteString(rule + "\n")
	b.WriteString(reportTitle + "\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "IPK: %s\n", models.FormatGPA(summary.IPK))
	fmt.Fprintf(&b, "Total SKS: %d\n", summary.TotalSKS)
	fmt.Fprintf(&b, "Predicate: %s\n", summary.Predicate.Label())
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format(reportDateFmt))
	b.WriteString(rule + "\n\n")

	if t != nil {
		for _, s := range t.Semesters {
			fmt.Fprintf(&b, "SEMESTER %d\n", s.Number)
			fmt.Fprintf(&b, "IP: %s | SKS: %d\n", s.IP, s.TotalSKS)
			b.WriteString(strings.Repeat("-", reportRule) + "\n")
			if s.IsEmpty() {
				b.WriteString(noCoursesText + "\n")
			}
			for _, c := range s.Courses {
				fmt.Fprintf(&b, "%-*s %d SKS  %s (%s)\n", courseNamePad, c.Name, c.SKS, c.GradeLetter, c.Grade)
			}
			if s.Note != "" {
				fmt.Fprintf(&b, "Note: %s\n", s.Note)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(rule + "\n")
	b.WriteString(reportFooter + "\n")
	return b.String()
}

// Export renders the transcript in the requested format and stores it as
// transcript_<unix millis>.<ext>.
func (s *ReportService) Export(ctx context.Context, t *models.Transcript, format models.ReportFormat, now time.Time) (*models.ExportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if t.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no semesters to export")
	}

	var (
		payload []byte
		err     error
	)
	switch format {
	case models.ReportFormatText:
		payload = []byte(TranscriptText(t, now))
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(transcriptDataset(t))
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(transcriptDocument(t, now))
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "render transcript")
	}

	filename := fmt.Sprintf("transcript_%d.%s", now.UnixMilli(), format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, wrapStorage(err, "failed to write export")
	}
	s.logger.Info("transcript exported",
		zap.String("format", string(format)),
		zap.String("path", relPath),
		zap.Int("bytes", len(payload)),
	)
	return &models.ExportResult{
		RelativePath: relPath,
		Path:         s.storage.Path(relPath),
		Format:       format,
		Size:         len(payload),
		GeneratedAt:  now,
	}, nil
}

// transcriptDataset flattens every course into one row; empty semesters keep a
// row with blank course columns so the semester still shows up.
func transcriptDataset(t *models.Transcript) export.Dataset {
	data := export.Dataset{Headers: []string{"semester", "semester_ip", "course", "sks", "grade", "grade_point"}}
	for _, s := range t.Semesters {
		number := strconv.Itoa(s.Number)
		if s.IsEmpty() {
			data.AddRow(number, s.IP.String())
			continue
		}
		for _, c := range s.Courses {
			data.AddRow(number, s.IP.String(), c.Name, strconv.Itoa(c.SKS), c.GradeLetter, c.Grade.String())
		}
	}
	return data
}

func transcriptDocument(t *models.Transcript, now time.Time) export.Document {
	summary := models.RecomputeTranscript(t)
	doc := export.Document{
		Title: reportTitle,
		Summary: []string{
			"IPK: " + models.FormatGPA(summary.IPK),
			"Total SKS: " + strconv.Itoa(summary.TotalSKS),
			"Predicate: " + summary.Predicate.Label(),
			"Date: " + now.Format(reportDateFmt),
		},
		ColumnWidths: []float64{5, 1, 1, 1},
		Footer:       reportFooter,
	}
	for _, s := range t.Semesters {
		table := export.Dataset{Headers: []string{"Course", "SKS", "Grade", "Point"}}
		for _, c := range s.Courses {
			table.AddRow(c.Name, strconv.Itoa(c.SKS), c.GradeLetter, c.Grade.String())
		}
		doc.Sections = append(doc.Sections, export.Section{
			Heading:    fmt.Sprintf("Semester %d", s.Number),
			Subheading: fmt.Sprintf("IP: %s | SKS: %d", s.IP, s.TotalSKS),
			Table:      table,
			EmptyText:  noCoursesText,
		})
	}
	return doc
}
