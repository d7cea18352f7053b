package doctree

import "strings"

// Document is the rendered content of one page partition.
type Document struct {
	Path      string    // Chunk file the content was read from
	FirstPage int       // Absolute page number of the chunk's first page
	LastPage  int       // Absolute page number of the chunk's last page
	Lines     []Line    // Non-empty lines in reading order
	Tables    []Table   // Detected tables (two or more rows)
	Sections  []Section // Numbered sections, e.g. "8.5.4 Ridge Flashings"
}

// Line is one visual row of text on a page.
type Line struct {
	Page  int    // Absolute page number
	Cells []Cell // Horizontal runs of text, left to right
}

// Cell is a run of text separated from its neighbours by a wide gap.
type Cell struct {
	X    float64
	Text string
}

// Text joins the line's cells with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Cells))
	for _, c := range l.Cells {
		if t := strings.TrimSpace(c.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Table is a header row plus body rows found on a single page.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Page    int        `json:"page"`
}

// Section is a numbered heading with the body text that follows it.
type Section struct {
	Code    string `json:"code"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Text renders the document as newline-joined lines.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, l := range d.Lines {
		t := l.Text()
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t)
	}
	return sb.String()
}
