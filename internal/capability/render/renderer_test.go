package render

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/domain"
)

func testRecord() *domain.DocumentationRecord {
	return &domain.DocumentationRecord{
		DocumentationID: "d1",
		FileID:          "f1",
		Title:           "Sprint Review SOW",
		Content:         "# Executive Summary\n\nScope of work for the platform migration.\n\n## Deliverables\n\nPhase one artifacts.",
		DocumentType:    domain.DocumentTypeSOW,
		Level:           domain.LevelSimple,
	}
}

func TestRenderJSON(t *testing.T) {
	r := NewFileRenderer(Config{OutputDir: t.TempDir()}, zap.NewNop())
	result, err := r.Render(context.Background(), testRecord(), domain.FormatJSON)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	var decoded domain.DocumentationRecord
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("artifact is not valid JSON: %v", err)
	}
	if decoded.DocumentationID != "d1" {
		t.Fatalf("decoded record %+v", decoded)
	}
}

func TestRenderHTML(t *testing.T) {
	r := NewFileRenderer(Config{OutputDir: t.TempDir()}, zap.NewNop())
	result, err := r.Render(context.Background(), testRecord(), domain.FormatHTML)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	raw, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	page := string(raw)
	if !strings.Contains(page, "<h1>Executive Summary</h1>") {
		t.Fatalf("heading missing from html:\n%s", page)
	}
	if !strings.Contains(page, "<title>Sprint Review SOW</title>") {
		t.Fatalf("title missing from html:\n%s", page)
	}
}

func TestRenderPDFWithoutConverter(t *testing.T) {
	r := NewFileRenderer(Config{OutputDir: t.TempDir()}, zap.NewNop())
	_, err := r.Render(context.Background(), testRecord(), domain.FormatPDF)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("want ErrUnsupportedFormat, got %v", err)
	}
}
