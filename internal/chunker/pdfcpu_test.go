package chunker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/copextract/internal/pdftest"
)

func writeSample(t *testing.T, pages int) string {
	t.Helper()
	var content []string
	for i := 1; i <= pages; i++ {
		content = append(content, pdftest.Lines(fmt.Sprintf("Page %d", i)))
	}
	path := filepath.Join(t.TempDir(), "cop.pdf")
	if err := (pdftest.Doc{Pages: content}).Write(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPDFCPUTool_PageCountAndExtract(t *testing.T) {
	input := writeSample(t, 5)
	tool := NewPDFCPUTool()

	n, err := tool.PageCount(input)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 pages, got %d", n)
	}

	tests := []struct {
		r    PageRange
		want int
	}{
		{PageRange{1, 2}, 2},
		{PageRange{5, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(ChunkName(tt.r), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), ChunkName(tt.r))
			if err := tool.ExtractPages(input, out, tt.r); err != nil {
				t.Fatalf("extract: %v", err)
			}
			got, err := tool.PageCount(out)
			if err != nil {
				t.Fatalf("page count of chunk: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d pages, got %d", tt.want, got)
			}
		})
	}
}

func TestPDFCPUTool_SplitRealDocument(t *testing.T) {
	input := writeSample(t, 5)
	s := &Splitter{Tool: NewPDFCPUTool(), Dir: filepath.Join(t.TempDir(), "chunks")}
	chunks, err := s.Split(context.Background(), input, 2)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"chunk_0001_0002.pdf", "chunk_0003_0004.pdf", "chunk_0005_0005.pdf"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, c := range chunks {
		if filepath.Base(c.Path) != want[i] {
			t.Errorf("chunk %d: expected %s, got %s", i, want[i], filepath.Base(c.Path))
		}
	}
}

func TestPDFCPUTool_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cop.pdf")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPDFCPUTool().PageCount(path); err == nil {
		t.Fatal("expected error for a non-pdf file")
	}
}
