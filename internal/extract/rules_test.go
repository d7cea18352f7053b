package extract

import (
	"context"
	"testing"

	"github.com/dgallion1/copextract/internal/doctree"
	"github.com/dgallion1/copextract/internal/record"
)

func textDoc(lines ...string) *doctree.Document {
	doc := &doctree.Document{}
	for _, l := range lines {
		doc.Lines = append(doc.Lines, doctree.Line{Page: 1, Cells: []doctree.Cell{{Text: l}}})
	}
	return doc
}

func TestRuleStrategy_SingleWarningLine(t *testing.T) {
	doc := textDoc("Do not seal the ridge vent")
	set, err := RuleStrategy{}.Structure(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(set.Warnings))
	}
	w := set.Warnings[0]
	if w.Level != record.LevelCaution {
		t.Errorf("expected caution, got %q", w.Level)
	}
	if w.Message != "Do not seal the ridge vent" {
		t.Errorf("unexpected message %q", w.Message)
	}
	if w.DetailCode != "" {
		t.Errorf("expected no detail association, got %q", w.DetailCode)
	}
	if len(set.Details) != 0 {
		t.Errorf("rule strategy must not produce details, got %d", len(set.Details))
	}
}

func TestMatchWarnings_Keywords(t *testing.T) {
	text := "  CAUTION: sharp edges  \nFix every rib.\nFasteners must not be over-driven.\nEarly failure of the coating\nThis line has warning and caution."
	warnings := MatchWarnings(text)
	want := []string{
		"CAUTION: sharp edges",
		"Fasteners must not be over-driven.",
		"Early failure of the coating",
		"This line has warning and caution.",
	}
	if len(warnings) != len(want) {
		t.Fatalf("expected %d warnings, got %d: %+v", len(want), len(warnings), warnings)
	}
	for i, w := range want {
		if warnings[i].Message != w {
			t.Errorf("warning[%d]: expected %q, got %q", i, w, warnings[i].Message)
		}
	}
}

func TestMatchStandards(t *testing.T) {
	text := "Comply with AS/NZS 2728 and NZS 3604.\nSee AS 1397:2011 for coatings, and NZS\n4203.\nHAS 12 is not a standard."
	got := MatchStandards(text)
	want := []string{"AS/NZS 2728", "NZS 3604", "AS 1397:2011", "NZS 4203"}
	if len(got) != len(want) {
		t.Fatalf("expected %d standards, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Code != w {
			t.Errorf("standard[%d]: expected %q, got %q", i, w, got[i].Code)
		}
		if got[i].Title != "" || got[i].Clause != "" {
			t.Errorf("standard[%d]: expected empty title/clause, got %+v", i, got[i])
		}
	}
}

func TestMatchStandards_RepeatedCitations(t *testing.T) {
	got := MatchStandards("NZS 3604 applies. Refer again to NZS 3604.")
	if len(got) != 2 {
		t.Fatalf("expected one candidate per occurrence, got %d", len(got))
	}
}
