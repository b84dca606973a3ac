package domain

import (
	"strings"
	"time"
)

// DocumentType is the kind of business document generated from a transcript.
type DocumentType string

const (
	DocumentTypeBRD DocumentType = "BRD"
	DocumentTypeSOW DocumentType = "SOW"
	DocumentTypeFRD DocumentType = "FRD"
)

// ParseDocumentType validates a document type string. Matching is
// case-insensitive; the canonical value is returned.
func ParseDocumentType(s string) (DocumentType, bool) {
	for _, dt := range []DocumentType{DocumentTypeBRD, DocumentTypeSOW, DocumentTypeFRD} {
		if strings.EqualFold(s, string(dt)) {
			return dt, true
		}
	}
	return "", false
}

// DocumentationLevel is the detail tier of a generated document.
type DocumentationLevel string

const (
	LevelSimple       DocumentationLevel = "Simple"
	LevelIntermediate DocumentationLevel = "Intermediate"
	LevelAdvanced     DocumentationLevel = "Advanced"
)

// ParseDocumentationLevel validates a level string. Matching is
// case-insensitive; the canonical value is returned.
func ParseDocumentationLevel(s string) (DocumentationLevel, bool) {
	for _, lv := range []DocumentationLevel{LevelSimple, LevelIntermediate, LevelAdvanced} {
		if strings.EqualFold(s, string(lv)) {
			return lv, true
		}
	}
	return "", false
}

// QualityMetrics summarizes the structural quality of generated content.
type QualityMetrics struct {
	WordCount             int     `json:"word_count"`
	SectionCount          int     `json:"section_count"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	QualityScore          float64 `json:"quality_score"`
	CompletenessScore     float64 `json:"completeness_score"`
}

// DocumentationMetadata carries generation provenance.
type DocumentationMetadata struct {
	GeneratedAt      time.Time      `json:"generated_at"`
	QualityMetrics   QualityMetrics `json:"quality_metrics"`
	ValidationIssues []string       `json:"validation_issues,omitempty"`
}

// DocumentationRecord is the generated document and its provenance. At most
// one current record exists per file; regeneration replaces it.
type DocumentationRecord struct {
	DocumentationID string                `json:"documentation_id"`
	FileID          string                `json:"file_id"`
	Title           string                `json:"title"`
	Content         string                `json:"content"`
	DocumentType    DocumentType          `json:"document_type"`
	Level           DocumentationLevel    `json:"documentation_level"`
	Metadata        DocumentationMetadata `json:"metadata"`
}
