package repository

import (
	"context"
	"testing"
	"time"

	"github.com/briefkit/briefkit/internal/domain"
	"github.com/briefkit/briefkit/internal/ledger"
)

func TestFilesRoundTrip(t *testing.T) {
	ctx := context.Background()
	files := NewFiles(ledger.NewMemory())

	record := &domain.FileRecord{
		FileID:           "f1",
		OriginalFilename: "standup.mp4",
		FileSize:         2048,
		FileType:         "mp4",
		UploadTime:       time.Now().UTC(),
	}
	if err := files.Create(ctx, record); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := files.Get(ctx, "f1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.OriginalFilename != "standup.mp4" || got.FileSize != 2048 {
		t.Fatalf("Get returned %+v", got)
	}

	missing, err := files.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing file, got %+v", missing)
	}
}

func TestDocumentsDoubleIndex(t *testing.T) {
	ctx := context.Background()
	docs := NewDocuments(ledger.NewMemory())

	record := &domain.DocumentationRecord{
		DocumentationID: "d1",
		FileID:          "f1",
		Title:           "Quarterly Planning BRD",
		Content:         "# Executive Summary",
		DocumentType:    domain.DocumentTypeBRD,
		Level:           domain.LevelSimple,
	}
	if err := docs.Save(ctx, record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	byID, err := docs.Get(ctx, "d1")
	if err != nil || byID == nil {
		t.Fatalf("Get by id: %+v err=%v", byID, err)
	}
	byFile, err := docs.GetByFileID(ctx, "f1")
	if err != nil || byFile == nil {
		t.Fatalf("Get by file: %+v err=%v", byFile, err)
	}
	if byFile.DocumentationID != "d1" {
		t.Fatalf("file index points at %q", byFile.DocumentationID)
	}
}

func TestDocumentsSaveReplacesPrior(t *testing.T) {
	ctx := context.Background()
	docs := NewDocuments(ledger.NewMemory())

	for _, id := range []string{"d1", "d2", "d3"} {
		record := &domain.DocumentationRecord{
			DocumentationID: id,
			FileID:          "f1",
			DocumentType:    domain.DocumentTypeSOW,
			Level:           domain.LevelIntermediate,
		}
		if err := docs.Save(ctx, record); err != nil {
			t.Fatalf("Save %s: %v", id, err)
		}
	}

	current, err := docs.GetByFileID(ctx, "f1")
	if err != nil || current == nil {
		t.Fatalf("GetByFileID: %+v err=%v", current, err)
	}
	if current.DocumentationID != "d3" {
		t.Fatalf("current record is %q, want d3", current.DocumentationID)
	}

	// superseded records are gone
	for _, id := range []string{"d1", "d2"} {
		stale, err := docs.Get(ctx, id)
		if err != nil {
			t.Fatalf("Get %s: %v", id, err)
		}
		if stale != nil {
			t.Fatalf("superseded record %s still retrievable", id)
		}
	}
}

func TestDownloadsCompositeKey(t *testing.T) {
	ctx := context.Background()
	downloads := NewDownloads(ledger.NewMemory())

	pdf := &domain.DownloadRecord{FileID: "f1", Format: domain.FormatPDF, DownloadURL: "/downloads/f1.pdf"}
	html := &domain.DownloadRecord{FileID: "f1", Format: domain.FormatHTML, DownloadURL: "/downloads/f1.html"}
	if err := downloads.Save(ctx, pdf); err != nil {
		t.Fatalf("Save pdf: %v", err)
	}
	if err := downloads.Save(ctx, html); err != nil {
		t.Fatalf("Save html: %v", err)
	}

	got, err := downloads.Get(ctx, "f1", domain.FormatHTML)
	if err != nil || got == nil {
		t.Fatalf("Get html: %+v err=%v", got, err)
	}
	if got.DownloadURL != "/downloads/f1.html" {
		t.Fatalf("format collision: got %q", got.DownloadURL)
	}

	if err := downloads.Delete(ctx, "f1", domain.FormatPDF); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, _ := downloads.Get(ctx, "f1", domain.FormatPDF)
	if gone != nil {
		t.Fatal("deleted pdf record still present")
	}
	kept, _ := downloads.Get(ctx, "f1", domain.FormatHTML)
	if kept == nil {
		t.Fatal("deleting pdf removed html record")
	}
}
