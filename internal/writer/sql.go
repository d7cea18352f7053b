package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/copextract/internal/record"
)

const seedHeader = "-- Master Roofers COP - Seed Data\n-- Extracted from MRM Code of Practice\n"

// SQLString renders s as a single-quoted SQL literal. Empty strings become NULL.
func SQLString(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// SQLNumber renders f as a decimal literal. nil, NaN and infinities become NULL.
func SQLNumber(f *float64) string {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return "NULL"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// SQLJSON renders v as a quoted jsonb literal.
func SQLJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	raw := strings.TrimSuffix(buf.String(), "\n")
	return "'" + strings.ReplaceAll(raw, "'", "''") + "'::jsonb", nil
}

func detailInsert(d record.Detail) (string, error) {
	d.Normalize()
	var payloads [4]string
	for i, v := range []any{d.Specifications, d.Steps, d.StandardsRefs, d.VentilationChecks} {
		lit, err := SQLJSON(v)
		if err != nil {
			return "", fmt.Errorf("detail %s: %w", d.Code, err)
		}
		payloads[i] = lit
	}
	return fmt.Sprintf(`INSERT INTO details (id, code, name, description, substrate_id, category_id,
                     min_pitch, max_pitch, specifications, steps,
                     standards_refs, ventilation_checks, is_published)
VALUES (
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    %s,
    true
);`,
		SQLString(d.Code), SQLString(d.Code), SQLString(d.Name), SQLString(d.Description),
		SQLString(d.Substrate), SQLString(d.Category),
		SQLNumber(d.MinPitch), SQLNumber(d.MaxPitch),
		payloads[0], payloads[1], payloads[2], payloads[3],
	), nil
}

func standardInsert(s record.Standard) string {
	return fmt.Sprintf(`INSERT INTO standards (code, title, clause)
VALUES (
    %s,
    %s,
    %s
)
ON CONFLICT (code) DO NOTHING;`, SQLString(s.Code), SQLString(s.Title), SQLString(s.Clause))
}

// SeedStatements returns one INSERT per Detail followed by one per Standard.
// Warnings are not seeded.
func SeedStatements(set *record.Set) ([]string, error) {
	stmts := make([]string, 0, len(set.Details)+len(set.Standards))
	for _, d := range set.Details {
		stmt, err := detailInsert(d)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	for _, s := range set.Standards {
		stmts = append(stmts, standardInsert(s))
	}
	return stmts, nil
}

// RenderSeed renders the complete seed script.
func RenderSeed(set *record.Set) (string, error) {
	stmts, err := SeedStatements(set)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(seedHeader)
	b.WriteString("\n-- Details\n")
	for _, stmt := range stmts[:len(set.Details)] {
		b.WriteString("\n")
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	b.WriteString("\n-- Standards\n")
	for _, stmt := range stmts[len(set.Details):] {
		b.WriteString("\n")
		b.WriteString(stmt)
		b.WriteString("\n")
	}
	return b.String(), nil
}
