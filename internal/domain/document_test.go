package domain

import "testing"

func TestParseDocumentTypeCaseInsensitive(t *testing.T) {
	cases := map[string]DocumentType{
		"BRD": DocumentTypeBRD,
		"brd": DocumentTypeBRD,
		"Sow": DocumentTypeSOW,
		"frd": DocumentTypeFRD,
	}
	for in, want := range cases {
		got, ok := ParseDocumentType(in)
		if !ok || got != want {
			t.Errorf("ParseDocumentType(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}

	for _, in := range []string{"", "PRD", "brdx"} {
		if _, ok := ParseDocumentType(in); ok {
			t.Errorf("ParseDocumentType(%q) accepted", in)
		}
	}
}

func TestParseDocumentationLevelCaseInsensitive(t *testing.T) {
	cases := map[string]DocumentationLevel{
		"Simple":       LevelSimple,
		"simple":       LevelSimple,
		"INTERMEDIATE": LevelIntermediate,
		"advanced":     LevelAdvanced,
	}
	for in, want := range cases {
		got, ok := ParseDocumentationLevel(in)
		if !ok || got != want {
			t.Errorf("ParseDocumentationLevel(%q) = %q, %v; want %q", in, got, ok, want)
		}
		// canonical value comes back regardless of input casing
		if string(got) != string(want) {
			t.Errorf("ParseDocumentationLevel(%q) returned non-canonical %q", in, got)
		}
	}

	for _, in := range []string{"", "expert", "simpleX"} {
		if _, ok := ParseDocumentationLevel(in); ok {
			t.Errorf("ParseDocumentationLevel(%q) accepted", in)
		}
	}
}
