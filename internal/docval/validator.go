// Package docval scores generated document content: required-section
// coverage plus word-count banding per documentation level. The score is a
// heuristic; whether a low score blocks pipeline completion is the
// orchestrator's policy, not this package's.
package docval

import (
	"strings"

	"github.com/briefkit/briefkit/internal/domain"
)

// ValidThreshold is the minimum quality score considered valid.
const ValidThreshold = 70.0

// minContentLength rejects near-empty content outright.
const minContentLength = 100

var baseSections = []string{
	"Executive Summary",
	"Business Objectives",
	"Requirements",
	"Implementation",
}

var intermediateSections = []string{
	"Current State Analysis",
	"Solution Architecture",
	"Risk Assessment",
}

var advancedSections = []string{
	"Strategic Analysis",
	"Investment Analysis",
	"Governance Framework",
	"Risk Management",
}

type wordRange struct {
	min, max int
}

var expectedWords = map[domain.DocumentationLevel]wordRange{
	domain.LevelSimple:       {1500, 3000},
	domain.LevelIntermediate: {4000, 8000},
	domain.LevelAdvanced:     {6000, 12000},
}

// RequiredSections returns the section headings a document at the given
// level must contain. Tiers nest: Simple ⊂ Intermediate ⊂ Advanced.
func RequiredSections(level domain.DocumentationLevel) []string {
	sections := append([]string{}, baseSections...)
	switch level {
	case domain.LevelIntermediate:
		sections = append(sections, intermediateSections...)
	case domain.LevelAdvanced:
		sections = append(sections, advancedSections...)
	}
	return sections
}

// Result carries the outcome of a content validation.
type Result struct {
	IsValid      bool
	QualityScore float64
	// SectionScore is the required-section coverage, also reported as the
	// completeness score on quality metrics.
	SectionScore float64
	WordCount    int
	Issues       []string
}

// Validate scores content against the level's required sections and word
// band. Content shorter than 100 characters is rejected with score 0.
func Validate(content string, level domain.DocumentationLevel) Result {
	if len(strings.TrimSpace(content)) < minContentLength {
		return Result{
			IsValid:      false,
			QualityScore: 0,
			Issues:       []string{"Content too short or empty"},
		}
	}

	required := RequiredSections(level)
	lower := strings.ToLower(content)

	var issues []string
	found := 0
	for _, section := range required {
		if strings.Contains(lower, strings.ToLower(section)) {
			found++
		} else {
			issues = append(issues, "Missing section: "+section)
		}
	}
	sectionScore := float64(found) / float64(len(required)) * 100

	wordCount := len(strings.Fields(content))
	band := expectedWords[level]
	var wordScore float64
	if wordCount >= band.min && wordCount <= band.max {
		wordScore = 100
	} else {
		diff := wordCount - band.min
		if diff < 0 {
			diff = -diff
		}
		wordScore = 100 - float64(diff)/float64(band.min)*50
		if wordScore < 0 {
			wordScore = 0
		}
	}

	quality := (sectionScore + wordScore) / 2

	return Result{
		IsValid:      quality >= ValidThreshold,
		QualityScore: quality,
		SectionScore: sectionScore,
		WordCount:    wordCount,
		Issues:       issues,
	}
}
