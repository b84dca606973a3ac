package docval

import (
	"strings"
	"testing"

	"github.com/briefkit/briefkit/internal/domain"
)

// document builds markdown with the given headings padded to wordCount words.
func document(headings []string, wordCount int) string {
	var b strings.Builder
	for _, h := range headings {
		b.WriteString("# " + h + "\n\n")
	}
	words := wordCount - len(strings.Fields(b.String()))
	for i := 0; i < words; i++ {
		b.WriteString("word ")
	}
	return b.String()
}

func TestValidateFullSimpleDocument(t *testing.T) {
	content := document(RequiredSections(domain.LevelSimple), 1800)
	result := Validate(content, domain.LevelSimple)

	if !result.IsValid {
		t.Fatalf("complete document judged invalid: %+v", result)
	}
	if result.QualityScore != 100 {
		t.Fatalf("quality score %.1f, want 100", result.QualityScore)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", result.Issues)
	}
}

func TestValidatePartialDocumentScoresBetween(t *testing.T) {
	// half the required sections, half the expected minimum word count
	content := document(RequiredSections(domain.LevelSimple)[:2], 750)
	result := Validate(content, domain.LevelSimple)

	if result.IsValid {
		t.Fatalf("partial document judged valid: %+v", result)
	}
	if result.QualityScore <= 0 || result.QualityScore >= 100 {
		t.Fatalf("quality score %.1f, want strictly between 0 and 100", result.QualityScore)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("want 2 missing-section issues, got %v", result.Issues)
	}
}

func TestValidateShortContentRejectedOutright(t *testing.T) {
	result := Validate("too short", domain.LevelAdvanced)
	if result.IsValid || result.QualityScore != 0 {
		t.Fatalf("short content not rejected: %+v", result)
	}
}

func TestValidateSectionMatchingIsCaseInsensitive(t *testing.T) {
	content := document([]string{
		"EXECUTIVE SUMMARY",
		"business objectives",
		"Requirements",
		"implementation",
	}, 2000)
	result := Validate(content, domain.LevelSimple)
	if result.SectionScore != 100 {
		t.Fatalf("section score %.1f, want 100: issues %v", result.SectionScore, result.Issues)
	}
}

func TestRequiredSectionsTiersNest(t *testing.T) {
	simple := RequiredSections(domain.LevelSimple)
	intermediate := RequiredSections(domain.LevelIntermediate)
	advanced := RequiredSections(domain.LevelAdvanced)

	if len(simple) != 4 || len(intermediate) != 7 || len(advanced) != 8 {
		t.Fatalf("tier sizes %d/%d/%d", len(simple), len(intermediate), len(advanced))
	}
	for i, s := range simple {
		if intermediate[i] != s || advanced[i] != s {
			t.Fatalf("base sections not shared across tiers")
		}
	}
}
