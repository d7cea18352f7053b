package parser

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/copextract/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// glyph is a positioned run of text on one baseline.
type glyph struct {
	X    float64
	Y    float64
	W    float64
	Size float64
	S    string
}

const (
	defaultFontSize = 10.0
	// Gaps and tolerances are measured in multiples of the font size.
	spaceGap = 0.15
	cellGap  = 1.5
	// runSlack is how far a glyph may sit from where the previous one ended
	// and still continue the same run.
	runSlack = 0.1
	// rowSlack is the baseline difference tolerated within one line.
	rowSlack = 0.3
	// avgGlyphWidth estimates the advance of a glyph from a font without
	// widths, for which the library reports zero.
	avgGlyphWidth = 0.5
)

func sizeOf(size float64) float64 {
	if size <= 0 {
		return defaultFontSize
	}
	return size
}

// textRuns merges consecutive glyphs into runs. A run ends where the
// baseline moves or the next glyph does not start where the previous one
// ended.
func textRuns(texts []pdflib.Text) []glyph {
	var runs []glyph
	var cursor float64
	for _, t := range texts {
		if isControl(t.S) {
			continue
		}
		size := sizeOf(t.FontSize)
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			if math.Abs(t.Y-last.Y) <= rowSlack*size && math.Abs(t.X-cursor) <= runSlack*size {
				last.S += t.S
				last.W += t.W
				cursor = t.X + t.W
				continue
			}
		}
		runs = append(runs, glyph{X: t.X, Y: t.Y, W: t.W, Size: size, S: t.S})
		cursor = t.X + t.W
	}
	for i := range runs {
		if runs[i].W <= 0 {
			runs[i].W = float64(utf8.RuneCountInString(runs[i].S)) * avgGlyphWidth * runs[i].Size
		}
	}
	return runs
}

func isControl(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// groupLines clusters runs by baseline, top of the page first, and turns
// each cluster into a line of cells.
func groupLines(runs []glyph, page int) []doctree.Line {
	sorted := make([]glyph, len(runs))
	copy(sorted, runs)
	// PDF y grows upward.
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Y > sorted[b].Y })

	var lines []doctree.Line
	var row []glyph
	emit := func() {
		if cells := buildCells(row); len(cells) > 0 {
			lines = append(lines, doctree.Line{Page: page, Cells: cells})
		}
		row = row[:0]
	}
	rowY := 0.0
	for _, g := range sorted {
		if len(row) > 0 && rowY-g.Y > rowSlack*g.Size {
			emit()
		}
		if len(row) == 0 {
			rowY = g.Y
		}
		row = append(row, g)
	}
	emit()
	return lines
}

// buildCells merges a row of glyphs into cells. Glyphs closer than a space
// are concatenated, wider gaps insert a space, and gaps wider than cellGap
// start a new cell.
func buildCells(glyphs []glyph) []doctree.Cell {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var cells []doctree.Cell
	var cur strings.Builder
	curX := 0.0
	end := 0.0

	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			cells = append(cells, doctree.Cell{X: curX, Text: collapseSpaces(t)})
		}
		cur.Reset()
	}

	for i, g := range sorted {
		size := sizeOf(g.Size)
		if i == 0 {
			curX = g.X
		} else {
			gap := g.X - end
			switch {
			case gap > cellGap*size:
				flush()
				curX = g.X
			case gap > spaceGap*size:
				cur.WriteByte(' ')
			}
		}
		cur.WriteString(g.S)
		end = max(end, g.X+g.W)
	}
	flush()
	return cells
}

var multiSpace = regexp.MustCompile(`[ \t]+`)

func collapseSpaces(s string) string {
	return multiSpace.ReplaceAllString(s, " ")
}

// columnGap separates columns in pdftotext -layout output.
var columnGap = regexp.MustCompile(`\S(?:.*?\S)?(?:\s{3,}|$)`)

// linesFromLayoutText converts pdftotext -layout pages into lines, treating
// runs of three or more spaces as cell boundaries.
func linesFromLayoutText(pages []string, firstPage int) []doctree.Line {
	var lines []doctree.Line
	for i, page := range pages {
		for _, raw := range strings.Split(page, "\n") {
			raw = strings.TrimRight(raw, " \t\r")
			if strings.TrimSpace(raw) == "" {
				continue
			}
			var cells []doctree.Cell
			for _, loc := range columnGap.FindAllStringIndex(raw, -1) {
				text := strings.TrimSpace(raw[loc[0]:loc[1]])
				if text == "" {
					continue
				}
				cells = append(cells, doctree.Cell{X: float64(loc[0]), Text: collapseSpaces(text)})
			}
			if len(cells) > 0 {
				lines = append(lines, doctree.Line{Page: firstPage + i, Cells: cells})
			}
		}
	}
	return lines
}

// DetectTables groups consecutive multi-cell lines on the same page with a
// matching cell count into tables. The first row is the header. Runs of
// fewer than two rows are discarded.
func DetectTables(lines []doctree.Line) []doctree.Table {
	var tables []doctree.Table
	var run []doctree.Line

	flush := func() {
		if len(run) >= 2 {
			t := doctree.Table{
				Headers: cellTexts(run[0]),
				Page:    run[0].Page,
			}
			for _, l := range run[1:] {
				t.Rows = append(t.Rows, cellTexts(l))
			}
			tables = append(tables, t)
		}
		run = nil
	}

	for _, l := range lines {
		if len(l.Cells) < 2 {
			flush()
			continue
		}
		if len(run) > 0 {
			prev := run[len(run)-1]
			if prev.Page != l.Page || len(prev.Cells) != len(l.Cells) {
				flush()
			}
		}
		run = append(run, l)
	}
	flush()
	return tables
}

func cellTexts(l doctree.Line) []string {
	out := make([]string, len(l.Cells))
	for i, c := range l.Cells {
		out[i] = c.Text
	}
	return out
}
