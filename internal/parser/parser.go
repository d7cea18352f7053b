package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/copextract/internal/doctree"
)

// Parser renders one page partition into a Document.
type Parser interface {
	Parse(path string, firstPage int) (*doctree.Document, error)
}

// SupportedExtensions lists input extensions this tool can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, fallbackPdftotext bool) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: fallbackPdftotext}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Render fills the derived parts of a document from its lines.
func Render(doc *doctree.Document) {
	doc.Tables = DetectTables(doc.Lines)
	doc.Sections = DetectSections(doc.Text())
}
