// Package merge accumulates candidate records across partitions and applies
// the run-wide dedup and code-format checks.
package merge

import (
	"regexp"

	"github.com/dgallion1/copextract/internal/record"
)

var codePattern = regexp.MustCompile(`^[A-Z]+[0-9]+$`)

// ValidCode reports whether code is one or more uppercase letters followed
// by one or more digits.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Report summarizes what Finalize changed or flagged.
type Report struct {
	DuplicatesDropped int      `json:"duplicates_dropped"`
	EmptyCodesDropped int      `json:"empty_codes_dropped"`
	InvalidCodes      []string `json:"invalid_codes"`
}

// Collector owns the run-wide record collections. It is not safe for
// concurrent use.
type Collector struct {
	set       record.Set
	standards map[string]struct{}
}

func NewCollector() *Collector {
	return &Collector{standards: make(map[string]struct{})}
}

// Add merges one partition's candidates. Standards already seen by code are
// skipped so the first title and clause win.
func (c *Collector) Add(part record.Set) {
	c.set.Details = append(c.set.Details, part.Details...)
	for _, s := range part.Standards {
		if _, ok := c.standards[s.Code]; ok {
			continue
		}
		c.standards[s.Code] = struct{}{}
		c.set.Standards = append(c.set.Standards, s)
	}
	c.set.Warnings = append(c.set.Warnings, part.Warnings...)
}

// Finalize deduplicates Details by code, keeping the earliest, and drops
// Details with an empty code. Surviving codes that do not match the
// expected format are reported but kept as-is.
func (c *Collector) Finalize() Report {
	rep := Report{InvalidCodes: []string{}}
	seen := make(map[string]struct{}, len(c.set.Details))
	kept := make([]record.Detail, 0, len(c.set.Details))
	for _, d := range c.set.Details {
		if d.Code == "" {
			rep.EmptyCodesDropped++
			continue
		}
		if _, ok := seen[d.Code]; ok {
			rep.DuplicatesDropped++
			continue
		}
		seen[d.Code] = struct{}{}
		kept = append(kept, d)
		if !ValidCode(d.Code) {
			rep.InvalidCodes = append(rep.InvalidCodes, d.Code)
		}
	}
	c.set.Details = kept
	if c.set.Standards == nil {
		c.set.Standards = []record.Standard{}
	}
	if c.set.Warnings == nil {
		c.set.Warnings = []record.Warning{}
	}
	return rep
}

// Set returns the collector's records. The writer and cleanup stages work
// on it in place.
func (c *Collector) Set() *record.Set {
	return &c.set
}
