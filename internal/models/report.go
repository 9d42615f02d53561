package models

import (
	"fmt"
	"strings"
	"time"
)

// ReportFormat enumerates supported transcript export formats.
type ReportFormat string

const (
	ReportFormatText ReportFormat = "txt"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ParseReportFormat maps user input onto a known format.
func ParseReportFormat(raw string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ReportFormatText, "text", "":
		return ReportFormatText, nil
	case ReportFormatCSV:
		return ReportFormatCSV, nil
	case ReportFormatPDF:
		return ReportFormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported format %q", raw)
	}
}

// ExportResult captures a written export.
type ExportResult struct {
	RelativePath string       `json:"relativePath"`
	Path         string       `json:"path"`
	Format       ReportFormat `json:"format"`
	Size         int          `json:"size"`
	GeneratedAt  time.Time    `json:"generatedAt"`
}
