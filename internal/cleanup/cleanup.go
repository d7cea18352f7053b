// Package cleanup removes PDF artifacts from extracted records and fills in
// values that can be derived from the text.
package cleanup

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/copextract/internal/record"
)

var footerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)This is a controlled document\. This copy of the Code Of Practice was issued.*?prevails over any saved or printed version\.`),
	regexp.MustCompile(`(?s)\d+\nThis is a controlled document.*$`),
	regexp.MustCompile(`(?s)The Online version of this document is the most up-to-date.*$`),
}

// footerMark stands in for a removed footer so that page and section
// numbers printed next to it can be found.
const footerMark = "\x00"

var (
	numbersBeforeFooter = regexp.MustCompile(`(?m)^[ \t]*(?:\d+(?:\.\d+)*[A-Z]?[ \t]*\n[ \t]*)+\x00`)
	numbersAfterFooter  = regexp.MustCompile(`\x00\s*(?:\d+(?:\.\d+)*[A-Z]?[ \t]*(?:\n|$)\s*)+`)
	blankRuns           = regexp.MustCompile(`\n{3,}`)
	spaceRuns           = regexp.MustCompile(`[ \t]+`)
)

var garbageSteps = []*regexp.Regexp{
	regexp.MustCompile(`^\d+(?:\.\d+)*[A-Z]?$`),
	regexp.MustCompile(`(?i)^(?:ROOF DRAINAGE|ROOF JUNCTIONS|PENETRATIONS|FLASHINGS|VENTILATION)$`),
	regexp.MustCompile(`^\d+(?:\.\d+)* [A-Z][A-Z ]*$`),
}

const minStepLen = 10

var pitchPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)minimum\s+(?:roof\s+)?pitch\s+(?:of\s+)?(\d+)\s*(?:degrees|deg|°)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:degrees|deg|°)\s+minimum`),
	regexp.MustCompile(`(?i)pitch\s+(?:of\s+)?(\d+)\s*(?:degrees|deg|°)`),
	regexp.MustCompile(`(?i)(\d+)\s*(?:degrees|deg|°)\s+pitch`),
}

// knownStandards is ordered so that refs found in a description come out
// in a stable order.
var knownStandards = []struct {
	Code  string
	Title string
}{
	{"E1/AS1", "Surface Water - Acceptable Solution"},
	{"E2/AS1", "External Moisture - Acceptable Solution"},
	{"E3/AS1", "Internal Moisture - Acceptable Solution"},
	{"B1/AS1", "Structure - Acceptable Solution"},
	{"B2/AS1", "Durability - Acceptable Solution"},
	{"NZS 3604", "Timber-framed Buildings"},
	{"AS/NZS 1562", "Design and Installation of Sheet Roof and Wall Cladding"},
	{"AS/NZS 2179", "Rainwater Goods"},
}

var knownTitles = func() map[string]string {
	m := make(map[string]string, len(knownStandards))
	for _, s := range knownStandards {
		m[s.Code] = s.Title
	}
	return m
}()

// conditionRule derives a Warning from keywords in a detail description.
type conditionRule struct {
	keywords []string
	category string
	kind     string
	value    string
	level    record.Level
	message  string
}

var conditionRules = []conditionRule{
	{
		keywords: []string{"wind", "cyclone", "exposed"},
		kind:     "wind_zone",
		value:    "VH,EH",
		level:    record.LevelWarning,
		message:  "Additional fixing requirements may apply in Very High and Extra High wind zones",
	},
	{
		keywords: []string{"corrosion", "coastal", "marine"},
		kind:     "corrosion_zone",
		value:    "C,D,E",
		level:    record.LevelWarning,
		message:  "Enhanced corrosion protection required in severe marine environments",
	},
	{
		keywords: []string{"low pitch", "minimum pitch"},
		kind:     "pitch",
		value:    "<8",
		level:    record.LevelWarning,
		message:  "Low pitch roofs require specific drainage and waterproofing considerations",
	},
	{
		category: "penetrations",
		kind:     "other",
		value:    "all",
		level:    record.LevelCaution,
		message:  "Ensure penetration flashing extends minimum 150mm under roof cladding on upslope side",
	},
	{
		keywords: []string{"valley"},
		kind:     "other",
		value:    "all",
		level:    record.LevelCaution,
		message:  "Valley capacity must be calculated based on catchment area and rainfall intensity",
	},
}

// Stats counts the changes made by Apply.
type Stats struct {
	DescriptionsCleaned int `json:"descriptions_cleaned"`
	StepsRemoved        int `json:"steps_removed"`
	PitchesInferred     int `json:"pitches_inferred"`
	TitlesFilled        int `json:"titles_filled"`
	StandardsLinked     int `json:"standards_linked"`
	WarningsDerived     int `json:"warnings_derived"`
}

// Apply cleans set in place and appends warnings derived from detail
// descriptions. Codes, order and the number of Details and Standards are
// left unchanged.
func Apply(set *record.Set) Stats {
	var st Stats
	var derived []record.Warning
	for i := range set.Details {
		d := &set.Details[i]

		if cleaned := CleanDescription(d.Description); cleaned != d.Description {
			d.Description = cleaned
			st.DescriptionsCleaned++
		}

		steps, removed := FilterSteps(d.Steps)
		d.Steps = steps
		st.StepsRemoved += removed

		if d.MinPitch == nil {
			if lo, hi, ok := InferPitch(d.Description); ok {
				d.MinPitch = &lo
				if d.MaxPitch == nil && hi > lo {
					d.MaxPitch = &hi
				}
				st.PitchesInferred++
			}
		}

		refs, added := LinkStandards(d.StandardsRefs, d.Description)
		d.StandardsRefs = refs
		st.StandardsLinked += added

		for j := range d.StandardsRefs {
			ref := &d.StandardsRefs[j]
			if ref.Title == "" {
				if title, ok := KnownTitle(ref.Code); ok {
					ref.Title = title
					st.TitlesFilled++
				}
			}
		}

		derived = append(derived, DeriveWarnings(*d)...)
	}

	for i := range set.Standards {
		s := &set.Standards[i]
		if s.Title == "" {
			if title, ok := KnownTitle(s.Code); ok {
				s.Title = title
				st.TitlesFilled++
			}
		}
	}

	set.Warnings = append(set.Warnings, derived...)
	st.WarningsDerived = len(derived)
	return st
}

// CleanDescription strips document footers and the page or section numbers
// printed next to them, then normalizes whitespace. Number-only lines away
// from a footer are kept.
func CleanDescription(desc string) string {
	if desc == "" {
		return ""
	}
	cleaned := desc
	for _, re := range footerPatterns {
		cleaned = re.ReplaceAllString(cleaned, footerMark)
	}
	cleaned = numbersBeforeFooter.ReplaceAllString(cleaned, footerMark)
	cleaned = numbersAfterFooter.ReplaceAllString(cleaned, footerMark+"\n")
	cleaned = strings.ReplaceAll(cleaned, footerMark, "")
	cleaned = spaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = blankRuns.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// IsGarbageStep reports whether an instruction is a section number, a bare
// heading or too short to be useful.
func IsGarbageStep(instruction string) bool {
	trimmed := strings.TrimSpace(instruction)
	for _, re := range garbageSteps {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return utf8.RuneCountInString(trimmed) < minStepLen
}

// FilterSteps drops garbage steps and renumbers the rest from 1.
func FilterSteps(steps []record.Step) ([]record.Step, int) {
	out := make([]record.Step, 0, len(steps))
	for _, s := range steps {
		if IsGarbageStep(s.Instruction) {
			continue
		}
		s.Step = len(out) + 1
		out = append(out, s)
	}
	return out, len(steps) - len(out)
}

// InferPitch finds roof pitch phrases in desc and returns the smallest and
// largest plausible values.
func InferPitch(desc string) (lo, hi float64, ok bool) {
	for _, re := range pitchPatterns {
		for _, m := range re.FindAllStringSubmatch(desc, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n <= 0 || n >= 90 {
				continue
			}
			p := float64(n)
			if !ok {
				lo, hi, ok = p, p, true
				continue
			}
			lo = min(lo, p)
			hi = max(hi, p)
		}
	}
	return lo, hi, ok
}

// KnownTitle returns the published title of a commonly cited standard.
func KnownTitle(code string) (string, bool) {
	title, ok := knownTitles[code]
	return title, ok
}

// StandardsInText returns a ref for every well-known standard named in
// desc, in table order.
func StandardsInText(desc string) []record.StandardRef {
	var out []record.StandardRef
	for _, s := range knownStandards {
		if strings.Contains(desc, s.Code) {
			out = append(out, record.StandardRef{Code: s.Code, Title: s.Title})
		}
	}
	return out
}

// LinkStandards appends refs for standards named in desc that refs does
// not already cite, and reports how many were added.
func LinkStandards(refs []record.StandardRef, desc string) ([]record.StandardRef, int) {
	have := make(map[string]bool, len(refs))
	for _, r := range refs {
		have[r.Code] = true
	}
	added := 0
	for _, r := range StandardsInText(desc) {
		if have[r.Code] {
			continue
		}
		refs = append(refs, r)
		have[r.Code] = true
		added++
	}
	return refs, added
}

// DeriveWarnings returns the conditional warnings implied by a detail's
// description and category.
func DeriveWarnings(d record.Detail) []record.Warning {
	desc := strings.ToLower(d.Description)
	var out []record.Warning
	for _, r := range conditionRules {
		if !r.matches(desc, d.Category) {
			continue
		}
		out = append(out, record.Warning{
			DetailCode: d.Code,
			Level:      r.level,
			Message:    r.message,
			Condition: record.Attributes{
				"type":  record.String(r.kind),
				"value": record.String(r.value),
			},
		})
	}
	return out
}

func (r conditionRule) matches(desc, category string) bool {
	if r.category != "" {
		return category == r.category
	}
	for _, kw := range r.keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
