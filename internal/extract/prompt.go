package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/copextract/internal/doctree"
)

// DefaultMaxPromptChars bounds the document excerpt sent to the model.
const DefaultMaxPromptChars = 15000

const truncatedMarker = "\n... [truncated]"

const extractionPrompt = `Parse this section of the MRM Metal Roof and Wall Cladding Code of Practice.

Extract structured data for:

1. **Roofing Details** - Specific installation details (e.g., flashings, penetrations)
   - Assign codes like F01, F02 for flashings, P01, P02 for penetrations
   - Extract specifications, requirements, and installation steps

2. **Standards References** - Citations to NZS, AS/NZS standards
   - Include clause numbers where mentioned

3. **Warnings** - Safety cautions, limitations, or failure conditions
   - Classify as 'caution', 'warning', or 'critical'

4. **Technical Specifications** - Minimum pitch, wind zones, clearances, etc.

Sections detected:
%s

Content:
%s

Tables found: %d

Return JSON matching this schema:
{
  "details": [
    {
      "code": "F07",
      "name": "Ridge Flashing",
      "category": "flashings",
      "description": "...",
      "min_pitch": 3.0,
      "specifications": {"material": "0.55mm steel", "coverage": "150mm each side"},
      "steps": [{"step": 1, "instruction": "...", "note": "..."}],
      "standards_refs": [{"code": "AS/NZS 2728", "clause": "2.8"}],
      "ventilation_checks": [{"check": "Ensure ridge vent installed", "required": true}]
    }
  ],
  "standards": [
    {
      "code": "AS/NZS 2728",
      "title": "Prefinished/prepainted sheet metal products",
      "clause": "Section 2.8"
    }
  ],
  "warnings": [
    {
      "detail_code": "F07",
      "level": "warning",
      "message": "Do not seal ridge vent - ventilation required",
      "nzbc_ref": "E2/AS1"
    }
  ]
}

Return ONLY valid JSON, no explanation text.`

// Excerpt hard-truncates text past maxChars runes.
func Excerpt(text string, maxChars int) (string, bool) {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	return string(runes[:maxChars]) + truncatedMarker, true
}

// BuildPrompt renders the fixed instruction template for one partition.
func BuildPrompt(doc *doctree.Document, maxChars int) (string, bool, error) {
	sections := doc.Sections
	if sections == nil {
		sections = []doctree.Section{}
	}
	sectionsJSON, err := json.MarshalIndent(sections, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("marshal sections: %w", err)
	}
	excerpt, truncated := Excerpt(doc.Text(), maxChars)
	return fmt.Sprintf(extractionPrompt, sectionsJSON, excerpt, len(doc.Tables)), truncated, nil
}

// EstimateTokens gives a rough token count for logging prompt sizes.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
