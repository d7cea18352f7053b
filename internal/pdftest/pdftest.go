// Package pdftest builds small uncompressed PDFs for parser and splitter tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Doc is a PDF with one content stream per page, all drawn in a single
// Helvetica font resource named /F1.
type Doc struct {
	Pages []string
	// MonoWidths gives every printable ASCII glyph a width of 500/1000 em.
	// Without it the font has no Widths array, like an unembedded base-14 font.
	MonoWidths bool
}

// Lines draws one line per entry, 11pt, starting at (72, 720) and moving
// down 16pt with Td.
func Lines(lines ...string) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 11 Tf\n72 720 Td\n")
	for i, l := range lines {
		if i > 0 {
			b.WriteString("0 -16 Td\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", Escape(l))
	}
	b.WriteString("ET\n")
	return b.String()
}

// Placed is a string drawn at an absolute position with Tm.
type Placed struct {
	X, Y float64
	S    string
}

// At draws each item at its own text matrix, 10pt.
func At(items ...Placed) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 10 Tf\n")
	for _, it := range items {
		fmt.Fprintf(&b, "1 0 0 1 %g %g Tm\n(%s) Tj\n", it.X, it.Y, Escape(it.S))
	}
	b.WriteString("ET\n")
	return b.String()
}

// Escape quotes a string for a PDF literal.
func Escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Bytes renders the document with a classic xref table.
func (d Doc) Bytes() []byte {
	// Objects: 1 catalog, 2 pages, 3 font, then a page and its content per page.
	n := len(d.Pages)
	objs := make([]string, 3+2*n)

	kids := make([]string, n)
	for i := range d.Pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)

	font := "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding"
	if d.MonoWidths {
		w := strings.TrimSpace(strings.Repeat("500 ", 126-32+1))
		font += fmt.Sprintf(" /FirstChar 32 /LastChar 126 /Widths [%s]", w)
	}
	objs[2] = font + " >>"

	for i, content := range d.Pages {
		pageNum, contentNum := 4+2*i, 5+2*i
		objs[pageNum-1] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
			"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentNum)
		objs[contentNum-1] = fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

// Write saves the document to path.
func (d Doc) Write(path string) error {
	return os.WriteFile(path, d.Bytes(), 0o644)
}
