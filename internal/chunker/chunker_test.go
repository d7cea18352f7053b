package chunker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPageRanges_ContiguousCoverage(t *testing.T) {
	for total := 0; total <= 130; total++ {
		for size := 1; size <= 60; size++ {
			ranges, err := PageRanges(total, size)
			if err != nil {
				t.Fatalf("PageRanges(%d, %d): unexpected error: %v", total, size, err)
			}
			next := 1
			for i, r := range ranges {
				if r.Start != next {
					t.Fatalf("PageRanges(%d, %d)[%d]: expected start %d, got %d", total, size, i, next, r.Start)
				}
				if r.End < r.Start {
					t.Fatalf("PageRanges(%d, %d)[%d]: empty range %+v", total, size, i, r)
				}
				if r.Pages() > size {
					t.Fatalf("PageRanges(%d, %d)[%d]: %d pages exceeds size", total, size, i, r.Pages())
				}
				if i < len(ranges)-1 && r.Pages() != size {
					t.Fatalf("PageRanges(%d, %d)[%d]: only the last range may be short", total, size, i)
				}
				next = r.End + 1
			}
			if next != total+1 {
				t.Fatalf("PageRanges(%d, %d): coverage ends at %d", total, size, next-1)
			}
		}
	}
}

func TestPageRanges_ExampleDocument(t *testing.T) {
	ranges, err := PageRanges(120, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []PageRange{{1, 50}, {51, 100}, {101, 120}}
	if len(ranges) != len(want) {
		t.Fatalf("expected %d ranges, got %d", len(want), len(ranges))
	}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("range[%d]: expected %+v, got %+v", i, want[i], ranges[i])
		}
	}
}

func TestPageRanges_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		if _, err := PageRanges(10, size); err == nil {
			t.Errorf("expected error for size %d", size)
		}
	}
}

func TestChunkName(t *testing.T) {
	if got := ChunkName(PageRange{Start: 101, End: 120}); got != "chunk_0101_0120.pdf" {
		t.Errorf("unexpected chunk name %q", got)
	}
}

type fakeTool struct {
	pages    int
	openErr  error
	failAt   int
	extracts []PageRange
}

func (f *fakeTool) PageCount(path string) (int, error) {
	return f.pages, f.openErr
}

func (f *fakeTool) ExtractPages(in, out string, r PageRange) error {
	if f.failAt > 0 && r.Start == f.failAt {
		return errors.New("disk full")
	}
	f.extracts = append(f.extracts, r)
	return os.WriteFile(out, []byte("%PDF-1.7\n"), 0o644)
}

func TestSplitter_WritesChunks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chunks")
	tool := &fakeTool{pages: 120}
	s := &Splitter{Tool: tool, Dir: dir}

	chunks, err := s.Split(context.Background(), "cop.pdf", 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	wantNames := []string{"chunk_0001_0050.pdf", "chunk_0051_0100.pdf", "chunk_0101_0120.pdf"}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, c.Index)
		}
		if filepath.Base(c.Path) != wantNames[i] {
			t.Errorf("chunk %d: expected %s, got %s", i, wantNames[i], filepath.Base(c.Path))
		}
		if _, err := os.Stat(c.Path); err != nil {
			t.Errorf("chunk %d: file not written: %v", i, err)
		}
	}
	if len(tool.extracts) != 3 {
		t.Errorf("expected 3 extract calls, got %d", len(tool.extracts))
	}
}

func TestSplitter_OpenFailureIsFatal(t *testing.T) {
	s := &Splitter{Tool: &fakeTool{openErr: errors.New("not a pdf")}, Dir: t.TempDir()}
	if _, err := s.Split(context.Background(), "broken.pdf", 50); err == nil {
		t.Fatal("expected error when the source cannot be opened")
	}
}

func TestSplitter_WriteFailureIsFatal(t *testing.T) {
	s := &Splitter{Tool: &fakeTool{pages: 120, failAt: 51}, Dir: t.TempDir()}
	if _, err := s.Split(context.Background(), "cop.pdf", 50); err == nil {
		t.Fatal("expected error when a chunk cannot be written")
	}
}

func TestSplitter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &Splitter{Tool: &fakeTool{pages: 10}, Dir: t.TempDir()}
	if _, err := s.Split(ctx, "cop.pdf", 5); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
