package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/dgallion1/copextract/internal/doctree"
	"github.com/dgallion1/copextract/internal/record"
)

var standardPattern = regexp.MustCompile(`\b(AS/NZS|NZS|AS)\s+(\d+[:\-]?\d*)`)

var warningKeywords = []string{"warning", "caution", "must not", "do not", "failure"}

// RuleStrategy structures partitions with fixed pattern matching. It never
// produces Details.
type RuleStrategy struct{}

func (RuleStrategy) Name() string { return "rules" }

func (RuleStrategy) Structure(ctx context.Context, doc *doctree.Document) (record.Set, error) {
	text := doc.Text()
	return record.Set{
		Standards: MatchStandards(text),
		Warnings:  MatchWarnings(text),
	}, nil
}

// MatchStandards returns one Standard per citation occurrence, in order.
func MatchStandards(text string) []record.Standard {
	var out []record.Standard
	for _, m := range standardPattern.FindAllString(text, -1) {
		out = append(out, record.Standard{Code: NormalizeCode(m)})
	}
	return out
}

// MatchWarnings returns a caution for every line mentioning a warning keyword.
func MatchWarnings(text string) []record.Warning {
	var out []record.Warning
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, kw := range warningKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, record.Warning{
					Level:   record.LevelCaution,
					Message: strings.TrimSpace(line),
				})
				break
			}
		}
	}
	return out
}
