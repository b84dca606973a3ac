// Package render implements the Renderer capability. HTML and JSON exports
// are produced natively; PDF and DOCX shell out to a configured converter
// (pandoc-compatible: converter input -o output) when one is available.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/briefkit/briefkit/internal/capability"
	"github.com/briefkit/briefkit/internal/domain"
)

// Config configures the file renderer.
type Config struct {
	// OutputDir receives rendered artifacts, one file per (document, format).
	OutputDir string
	// ConverterPath is an optional binary for pdf/docx conversion.
	ConverterPath string
}

// FileRenderer writes export artifacts to the local filesystem.
type FileRenderer struct {
	cfg    Config
	logger *zap.Logger
}

// NewFileRenderer creates a renderer writing into cfg.OutputDir.
func NewFileRenderer(cfg Config, logger *zap.Logger) *FileRenderer {
	return &FileRenderer{cfg: cfg, logger: logger}
}

// Render produces the requested export for a documentation record and
// returns the artifact path. Formats the renderer cannot produce surface
// domain.ErrUnsupportedFormat.
func (r *FileRenderer) Render(ctx context.Context, record *domain.DocumentationRecord, format domain.ExportFormat) (capability.RenderResult, error) {
	if err := os.MkdirAll(r.cfg.OutputDir, 0755); err != nil {
		return capability.RenderResult{}, fmt.Errorf("create output dir: %w", err)
	}

	outPath := filepath.Join(r.cfg.OutputDir, fmt.Sprintf("%s.%s", record.DocumentationID, format))

	switch format {
	case domain.FormatJSON:
		payload, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return capability.RenderResult{}, fmt.Errorf("encode record: %w", err)
		}
		if err := os.WriteFile(outPath, payload, 0644); err != nil {
			return capability.RenderResult{}, fmt.Errorf("write json export: %w", err)
		}

	case domain.FormatHTML:
		if err := os.WriteFile(outPath, renderHTML(record), 0644); err != nil {
			return capability.RenderResult{}, fmt.Errorf("write html export: %w", err)
		}

	case domain.FormatPDF, domain.FormatDOCX:
		if r.cfg.ConverterPath == "" {
			return capability.RenderResult{}, fmt.Errorf("%w: %s (no converter configured)", domain.ErrUnsupportedFormat, format)
		}
		if err := r.convert(ctx, record, outPath); err != nil {
			return capability.RenderResult{}, err
		}

	default:
		return capability.RenderResult{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, format)
	}

	r.logger.Info("export rendered",
		zap.String("documentation_id", record.DocumentationID),
		zap.String("format", string(format)),
		zap.String("path", outPath),
	)
	return capability.RenderResult{Path: outPath}, nil
}

func (r *FileRenderer) convert(ctx context.Context, record *domain.DocumentationRecord, outPath string) error {
	srcPath := outPath + ".md"
	if err := os.WriteFile(srcPath, []byte(record.Content), 0644); err != nil {
		return fmt.Errorf("write converter input: %w", err)
	}
	defer os.Remove(srcPath)

	cmd := exec.CommandContext(ctx, r.cfg.ConverterPath, srcPath, "-o", outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("converter failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// renderHTML wraps the markdown content in a minimal standalone page.
// Headings become h1-h3, everything else stays preformatted paragraphs.
func renderHTML(record *domain.DocumentationRecord) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", html.EscapeString(record.Title))

	for _, line := range strings.Split(record.Content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			fmt.Fprintf(&buf, "<h3>%s</h3>\n", html.EscapeString(strings.TrimPrefix(trimmed, "### ")))
		case strings.HasPrefix(trimmed, "## "):
			fmt.Fprintf(&buf, "<h2>%s</h2>\n", html.EscapeString(strings.TrimPrefix(trimmed, "## ")))
		case strings.HasPrefix(trimmed, "# "):
			fmt.Fprintf(&buf, "<h1>%s</h1>\n", html.EscapeString(strings.TrimPrefix(trimmed, "# ")))
		case trimmed == "":
			// skip blank lines
		default:
			fmt.Fprintf(&buf, "<p>%s</p>\n", html.EscapeString(trimmed))
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}
