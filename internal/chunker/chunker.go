package chunker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// PageRange is a 1-based inclusive span of pages.
type PageRange struct {
	Start int
	End   int
}

// Pages returns the number of pages covered by the range.
func (r PageRange) Pages() int {
	return r.End - r.Start + 1
}

// Chunk is a partition of the source document written to disk.
type Chunk struct {
	Index int
	Range PageRange
	Path  string
}

// PageTool is the subset of PDF manipulation the splitter needs.
type PageTool interface {
	PageCount(path string) (int, error)
	ExtractPages(in, out string, r PageRange) error
}

// PageRanges partitions pages 1..total into contiguous, non-overlapping
// ranges of at most size pages. The last range may be shorter.
func PageRanges(total, size int) ([]PageRange, error) {
	if size < 1 {
		return nil, fmt.Errorf("partition size must be at least 1, got %d", size)
	}
	if total < 0 {
		return nil, fmt.Errorf("negative page count %d", total)
	}
	ranges := make([]PageRange, 0, (total+size-1)/size)
	for start := 1; start <= total; start += size {
		end := min(start+size-1, total)
		ranges = append(ranges, PageRange{Start: start, End: end})
	}
	return ranges, nil
}

// ChunkName encodes the page span in the partition filename.
func ChunkName(r PageRange) string {
	return fmt.Sprintf("chunk_%04d_%04d.pdf", r.Start, r.End)
}

// Splitter writes page partitions of a PDF into Dir.
type Splitter struct {
	Tool PageTool
	Dir  string
}

// Split partitions input into chunks of size pages. Any failure to open the
// source or write a chunk aborts the split.
func (s *Splitter) Split(ctx context.Context, input string, size int) ([]Chunk, error) {
	total, err := s.Tool.PageCount(input)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", input, err)
	}
	ranges, err := PageRanges(total, size)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	chunks := make([]Chunk, 0, len(ranges))
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out := filepath.Join(s.Dir, ChunkName(r))
		if err := s.Tool.ExtractPages(input, out, r); err != nil {
			return nil, fmt.Errorf("write chunk %s: %w", filepath.Base(out), err)
		}
		chunks = append(chunks, Chunk{Index: i, Range: r, Path: out})
	}
	return chunks, nil
}
