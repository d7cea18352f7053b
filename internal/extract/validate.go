package extract

import (
	"strings"

	"github.com/dgallion1/copextract/internal/record"
)

// NormalizeSet trims and defaults candidate records in place. Standards
// without a code cannot be keyed and are dropped. It returns the raw levels
// that were not recognized and fell back to caution.
func NormalizeSet(set *record.Set) []string {
	for i := range set.Details {
		set.Details[i].Normalize()
	}

	standards := set.Standards[:0]
	for _, s := range set.Standards {
		s.Code = NormalizeCode(s.Code)
		s.Title = strings.TrimSpace(s.Title)
		s.Clause = strings.TrimSpace(s.Clause)
		s.URL = strings.TrimSpace(s.URL)
		if s.Code == "" {
			continue
		}
		standards = append(standards, s)
	}
	set.Standards = standards

	var unknown []string
	for i := range set.Warnings {
		raw := string(set.Warnings[i].Level)
		if !set.Warnings[i].Normalize() {
			unknown = append(unknown, raw)
		}
	}
	return unknown
}

// NormalizeCode collapses internal whitespace so "NZS\n3604" and
// "NZS  3604" key the same standard.
func NormalizeCode(code string) string {
	return strings.Join(strings.Fields(code), " ")
}
