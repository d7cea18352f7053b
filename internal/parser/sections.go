package parser

import (
	"regexp"
	"strings"

	"github.com/dgallion1/copextract/internal/doctree"
)

// sectionPattern matches numbered headings like "8.5.4 Ridge" or "8-5-4 Ridge".
var sectionPattern = regexp.MustCompile(`^(\d+[.-]\d+[.-]\d+)\s+(.+)$`)

// DetectSections splits text into numbered sections. Every line after a
// heading belongs to that heading's body until the next heading. Lines
// before the first heading are not part of any section.
func DetectSections(text string) []doctree.Section {
	var sections []doctree.Section
	var current *doctree.Section
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.Join(body, "\n")
		sections = append(sections, *current)
	}

	for _, line := range strings.Split(text, "\n") {
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			flush()
			current = &doctree.Section{
				Code:  strings.ReplaceAll(m[1], "-", "."),
				Title: strings.TrimSpace(m[2]),
			}
			body = nil
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()
	return sections
}
