package writer

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/copextract/internal/record"
)

func ptr(f float64) *float64 { return &f }

func TestSQLString(t *testing.T) {
	tests := map[string]string{
		"":          "NULL",
		"O'Brien":   "'O''Brien'",
		"plain":     "'plain'",
		"it''s":     "'it''''s'",
		"line\nend": "'line\nend'",
	}
	for in, want := range tests {
		if got := SQLString(in); got != want {
			t.Errorf("SQLString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSQLNumber(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, "NULL"},
		{"zero", ptr(0), "0"},
		{"integer", ptr(3), "3"},
		{"fraction", ptr(2.5), "2.5"},
		{"nan", ptr(math.NaN()), "NULL"},
		{"inf", ptr(math.Inf(1)), "NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SQLNumber(tt.in); got != tt.want {
				t.Errorf("SQLNumber() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSeedStatements(t *testing.T) {
	set := &record.Set{
		Details: []record.Detail{{
			Code:           "F07",
			Name:           "Ridge Flashing",
			Description:    "Don't seal",
			Category:       "flashings",
			MinPitch:       ptr(3),
			Specifications: record.Attributes{"material": record.String("0.55mm steel")},
		}},
		Standards: []record.Standard{{Code: "NZS 3604", Title: "Timber-framed Buildings"}},
		Warnings:  []record.Warning{{Message: "ignored"}},
	}
	stmts, err := SeedStatements(set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	d := stmts[0]
	for _, want := range []string{
		"INSERT INTO details (id, code, name, description, substrate_id, category_id,",
		"'F07',\n    'F07',\n    'Ridge Flashing',\n    'Don''t seal',\n    'profiled-metal',\n    'flashings',\n    3,\n    NULL,",
		`'{"material":"0.55mm steel"}'::jsonb`,
		"'[]'::jsonb",
		"true\n);",
	} {
		if !strings.Contains(d, want) {
			t.Errorf("detail insert missing %q:\n%s", want, d)
		}
	}

	s := stmts[1]
	want := "INSERT INTO standards (code, title, clause)\nVALUES (\n    'NZS 3604',\n    'Timber-framed Buildings',\n    NULL\n)\nON CONFLICT (code) DO NOTHING;"
	if s != want {
		t.Errorf("standard insert:\n%s\nwant:\n%s", s, want)
	}
}

func TestSeedStatements_QuotesJSONPayloads(t *testing.T) {
	set := &record.Set{Details: []record.Detail{{
		Code:  "F01",
		Name:  "Apron",
		Steps: []record.Step{{Step: 1, Instruction: "Turn the apron's edge"}},
	}}}
	stmts, err := SeedStatements(set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stmts[0], `"instruction":"Turn the apron''s edge"`) {
		t.Errorf("expected quote doubled inside jsonb literal:\n%s", stmts[0])
	}
}

func TestRenderSeed_Layout(t *testing.T) {
	set := &record.Set{
		Details:   []record.Detail{{Code: "F01", Name: "A"}, {Code: "F02", Name: "B"}},
		Standards: []record.Standard{{Code: "E2/AS1"}},
	}
	out, err := RenderSeed(set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "-- Master Roofers COP - Seed Data\n-- Extracted from MRM Code of Practice\n\n-- Details\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	di := strings.Index(out, "-- Details")
	si := strings.Index(out, "-- Standards")
	if di < 0 || si < di {
		t.Fatalf("sections out of order:\n%s", out)
	}
	if n := strings.Count(out[di:si], "INSERT INTO details"); n != 2 {
		t.Errorf("expected 2 detail inserts, got %d", n)
	}
	if n := strings.Count(out[si:], "INSERT INTO standards"); n != 1 {
		t.Errorf("expected 1 standard insert, got %d", n)
	}
}

func TestWriter_WriteSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	set := &record.Set{
		Details:  []record.Detail{{Code: "F01", Name: "Apron"}},
		Warnings: []record.Warning{{Level: record.LevelCaution, Message: "Do not seal"}},
	}
	paths, err := w.WriteSet(set)
	if err != nil {
		t.Fatalf("WriteSet: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %v", paths)
	}

	raw, err := os.ReadFile(filepath.Join(dir, DetailsFile))
	if err != nil {
		t.Fatalf("read details: %v", err)
	}
	if !strings.HasPrefix(string(raw), "[\n  {\n    \"code\": \"F01\"") {
		t.Errorf("expected 2-space indented array, got:\n%s", raw)
	}
	var details []map[string]any
	if err := json.Unmarshal(raw, &details); err != nil {
		t.Fatalf("details not valid JSON: %v", err)
	}
	if details[0]["substrate"] != record.DefaultSubstrate {
		t.Errorf("expected default substrate, got %v", details[0]["substrate"])
	}
	if _, ok := details[0]["steps"].([]any); !ok {
		t.Errorf("expected steps to be an array, got %T", details[0]["steps"])
	}

	raw, err = os.ReadFile(filepath.Join(dir, StandardsFile))
	if err != nil {
		t.Fatalf("read standards: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Errorf("expected empty standards array, got %q", raw)
	}

	raw, err = os.ReadFile(filepath.Join(dir, WarningsFile))
	if err != nil {
		t.Fatalf("read warnings: %v", err)
	}
	if !strings.Contains(string(raw), `"condition": {}`) {
		t.Errorf("expected empty condition object, got:\n%s", raw)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriter_WriteJSONOverwrites(t *testing.T) {
	w, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := w.WriteJSON(ManifestFile, map[string]int{"a": 1}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	p, err := w.WriteJSON(ManifestFile, map[string]int{"b": 2})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	raw, _ := os.ReadFile(p)
	if strings.Contains(string(raw), `"a"`) || !strings.Contains(string(raw), `"b": 2`) {
		t.Errorf("expected file replaced, got %s", raw)
	}
}
