package record

import "strings"

// DefaultSubstrate is applied to details the extractor left without one.
const DefaultSubstrate = "profiled-metal"

// Level is the severity of a Warning.
type Level string

const (
	LevelCaution Level = "caution"
	LevelWarning Level = "warning"
	LevelFailure Level = "failure"
)

// ParseLevel maps a free-form severity onto the closed Level set.
// The bool is false when the input was not recognized and fell back to caution.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "caution":
		return LevelCaution, true
	case "warning":
		return LevelWarning, true
	case "failure", "critical":
		return LevelFailure, true
	default:
		return LevelCaution, false
	}
}

// Detail is a structured installation record for one roofing element.
type Detail struct {
	Code              string             `json:"code"`
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Category          string             `json:"category"`
	Substrate         string             `json:"substrate"`
	MinPitch          *float64           `json:"min_pitch"`
	MaxPitch          *float64           `json:"max_pitch"`
	Specifications    Attributes         `json:"specifications"`
	Steps             []Step             `json:"steps"`
	StandardsRefs     []StandardRef      `json:"standards_refs"`
	VentilationChecks []VentilationCheck `json:"ventilation_checks"`
}

// Step is one ordered installation instruction.
type Step struct {
	Step        int    `json:"step"`
	Instruction string `json:"instruction"`
	Note        string `json:"note"`
}

// StandardRef cites a standard from within a Detail.
type StandardRef struct {
	Code   string `json:"code"`
	Clause string `json:"clause"`
	Title  string `json:"title,omitempty"`
}

// VentilationCheck is a yes/no check attached to a Detail.
type VentilationCheck struct {
	Check    string `json:"check"`
	Required bool   `json:"required"`
}

// Standard is a citation to an external normative document.
type Standard struct {
	Code   string `json:"code"`
	Title  string `json:"title"`
	Clause string `json:"clause"`
	URL    string `json:"url"`
}

// Warning is a safety or compliance caution loosely tied to a Detail.
type Warning struct {
	DetailCode string     `json:"detail_code"`
	Level      Level      `json:"level"`
	Message    string     `json:"message"`
	Condition  Attributes `json:"condition"`
	NZBCRef    string     `json:"nzbc_ref"`
}

// Set groups the three record kinds. Strategies emit one per partition and
// the merge collector owns the run-wide one.
type Set struct {
	Details   []Detail
	Standards []Standard
	Warnings  []Warning
}

// Len returns the total number of records across all kinds.
func (s Set) Len() int {
	return len(s.Details) + len(s.Standards) + len(s.Warnings)
}

// Normalize fills defaults so that every collection serializes as an empty
// array or object rather than null.
func (d *Detail) Normalize() {
	d.Code = strings.TrimSpace(d.Code)
	if d.Substrate == "" {
		d.Substrate = DefaultSubstrate
	}
	if d.Specifications == nil {
		d.Specifications = Attributes{}
	}
	if d.Steps == nil {
		d.Steps = []Step{}
	}
	if d.StandardsRefs == nil {
		d.StandardsRefs = []StandardRef{}
	}
	if d.VentilationChecks == nil {
		d.VentilationChecks = []VentilationCheck{}
	}
}

// Normalize fills defaults for a Warning. The returned bool reports whether
// the level was recognized.
func (w *Warning) Normalize() bool {
	lvl, ok := ParseLevel(string(w.Level))
	w.Level = lvl
	w.Message = strings.TrimSpace(w.Message)
	if w.Condition == nil {
		w.Condition = Attributes{}
	}
	return ok
}
