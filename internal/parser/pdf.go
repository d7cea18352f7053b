package parser

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgallion1/copextract/internal/doctree"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF partitions. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(path string, firstPage int) (*doctree.Document, error) {
	if firstPage < 1 {
		firstPage = 1
	}
	lines, pages, err := extractPDFLines(path, firstPage)
	if err != nil && p.FallbackPdftotext {
		lines, pages, err = extractPdftotext(path, firstPage)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &doctree.Document{
		Path:      path,
		FirstPage: firstPage,
		LastPage:  firstPage + max(pages, 1) - 1,
		Lines:     lines,
	}
	Render(doc)
	return doc, nil
}

// extractPDFLines reads each page's positioned text and rebuilds visual
// lines from it. A page whose content cannot be interpreted is skipped; if
// no page could be read the last page error is returned.
func extractPDFLines(path string, firstPage int) ([]doctree.Line, int, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var lines []doctree.Line
	var pageErr error
	read := 0
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		texts, err := pageTexts(page)
		if err != nil {
			pageErr = fmt.Errorf("page %d: %w", i, err)
			continue
		}
		read++
		lines = append(lines, groupLines(textRuns(texts), firstPage+i-1)...)
	}
	if read == 0 && pageErr != nil {
		return nil, 0, pageErr
	}
	return lines, numPages, nil
}

// pageTexts returns the page's glyphs in drawing order. The library panics
// on malformed content streams.
func pageTexts(page pdflib.Page) (texts []pdflib.Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read content: %v", r)
		}
	}()
	return page.Content().Text, nil
}

func extractPdftotext(path string, firstPage int) ([]doctree.Line, int, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, 0, fmt.Errorf("pdftotext: %w", err)
	}
	pages := splitPages(strings.TrimRight(string(out), "\f"))
	return linesFromLayoutText(pages, firstPage), len(pages), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
