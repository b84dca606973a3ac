// Package prompt builds the generation prompts for each document type and
// detail level. The wording is deliberately plain and swappable; the
// pipeline only depends on BuildPrompt's contract.
package prompt

import (
	"fmt"
	"strings"

	"github.com/briefkit/briefkit/internal/docval"
	"github.com/briefkit/briefkit/internal/domain"
)

var systemPrompts = map[domain.DocumentType]string{
	domain.DocumentTypeBRD: "You are a senior business analyst. You turn meeting transcripts into Business Requirements Documents that stakeholders can act on.",
	domain.DocumentTypeSOW: "You are a senior engagement manager. You turn meeting transcripts into Statements of Work with clear deliverables, scope boundaries and acceptance criteria.",
	domain.DocumentTypeFRD: "You are a senior systems analyst. You turn meeting transcripts into Functional Requirements Documents precise enough for an engineering team to implement.",
}

var levelGuidance = map[domain.DocumentationLevel]string{
	domain.LevelSimple:       "Keep the document concise and accessible to a non-technical reader. Target 1500-3000 words.",
	domain.LevelIntermediate: "Provide working-level detail including current state analysis, solution architecture and risk assessment. Target 4000-8000 words.",
	domain.LevelAdvanced:     "Provide executive-grade depth including strategic analysis, investment analysis, governance framework and risk management. Target 6000-12000 words.",
}

// SystemPrompt returns the persona for a document type.
func SystemPrompt(docType domain.DocumentType) string {
	return systemPrompts[docType]
}

// BuildPrompt composes the user prompt for one generation call from the
// transcript and the target document shape.
func BuildPrompt(docType domain.DocumentType, level domain.DocumentationLevel, transcript string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a complete %s in markdown based on the meeting transcript below.\n\n", docType)
	b.WriteString(levelGuidance[level])
	b.WriteString("\n\nThe document must contain the following sections, each as a markdown heading:\n")
	for _, section := range docval.RequiredSections(level) {
		b.WriteString("- " + section + "\n")
	}
	b.WriteString("\nGround every statement in the transcript; do not invent facts that the meeting does not support.\n")
	b.WriteString("\n--- TRANSCRIPT ---\n")
	b.WriteString(transcript)
	b.WriteString("\n--- END TRANSCRIPT ---\n")

	return b.String()
}

// Title derives a document title from the type and source filename.
func Title(docType domain.DocumentType, filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	if name == "" {
		name = "Meeting"
	}
	return fmt.Sprintf("%s: %s", docType, name)
}
