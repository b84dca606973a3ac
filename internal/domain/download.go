package domain

import "time"

// ExportFormat is a supported export rendering of a generated document.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "pdf"
	FormatDOCX ExportFormat = "docx"
	FormatHTML ExportFormat = "html"
	FormatJSON ExportFormat = "json"
)

// ParseExportFormat validates an export format string.
func ParseExportFormat(s string) (ExportFormat, bool) {
	switch ExportFormat(s) {
	case FormatPDF, FormatDOCX, FormatHTML, FormatJSON:
		return ExportFormat(s), true
	}
	return "", false
}

// DownloadRecord describes a cached export artifact. It is valid only while
// the file at FilePath still exists; otherwise the export is regenerated.
type DownloadRecord struct {
	FileID          string       `json:"file_id"`
	Format          ExportFormat `json:"format"`
	DocumentationID string       `json:"documentation_id"`
	FilePath        string       `json:"file_path"`
	DownloadURL     string       `json:"download_url"`
	ExpiryTime      time.Time    `json:"expiry_time"`
}
