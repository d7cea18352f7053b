package chunker

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Keep pdfcpu from creating a config directory under $HOME.
	api.DisableConfigDir()
}

// PDFCPUTool implements PageTool with pdfcpu.
type PDFCPUTool struct {
	conf *model.Configuration
}

func NewPDFCPUTool() *PDFCPUTool {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUTool{conf: conf}
}

func (t *PDFCPUTool) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu page count: %w", err)
	}
	return n, nil
}

// ExtractPages writes the pages in r from in to a new PDF at out.
func (t *PDFCPUTool) ExtractPages(in, out string, r PageRange) error {
	sel := []string{fmt.Sprintf("%d-%d", r.Start, r.End)}
	if r.Start == r.End {
		sel = []string{fmt.Sprintf("%d", r.Start)}
	}
	if err := api.TrimFile(in, out, sel, t.conf); err != nil {
		return fmt.Errorf("pdfcpu trim %v: %w", sel, err)
	}
	return nil
}
