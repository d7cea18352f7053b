package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/copextract/internal/chunker"
	"github.com/dgallion1/copextract/internal/doctree"
	"github.com/dgallion1/copextract/internal/extract"
	"github.com/dgallion1/copextract/internal/parser"
	"github.com/dgallion1/copextract/internal/record"
)

// ParserFactory picks the renderer for a partition file.
type ParserFactory func(path string) (parser.Parser, error)

// Outcome is the result of processing one partition. Degraded is set when
// structuring failed and Set is empty as a result.
type Outcome struct {
	Set           record.Set
	Degraded      error
	UnknownLevels []string
	Doc           *doctree.Document
}

// Worker renders and structures a single partition.
type Worker struct {
	parsers  ParserFactory
	strategy extract.Strategy
	log      *slog.Logger
}

func NewWorker(parsers ParserFactory, strategy extract.Strategy, log *slog.Logger) *Worker {
	return &Worker{parsers: parsers, strategy: strategy, log: log}
}

// Process renders chunk and hands it to the strategy. Render failures and
// cancellation are returned as errors; strategy failures degrade the
// partition to an empty set.
func (w *Worker) Process(ctx context.Context, c chunker.Chunk) (Outcome, error) {
	log := w.log.With("partition", c.Index, "pages", pageSpan(c.Range))

	p, err := w.parsers(c.Path)
	if err != nil {
		return Outcome{}, err
	}
	doc, err := p.Parse(c.Path, c.Range.Start)
	if err != nil {
		return Outcome{}, fmt.Errorf("render partition %d: %w", c.Index, err)
	}
	log.Debug("rendered partition",
		"lines", len(doc.Lines),
		"tables", len(doc.Tables),
		"sections", len(doc.Sections),
	)

	set, err := w.strategy.Structure(ctx, doc)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Outcome{}, ctxErr
		}
		log.Warn("structuring failed, using empty set", "strategy", w.strategy.Name(), "error", err)
		return Outcome{Degraded: err, Doc: doc}, nil
	}

	unknown := extract.NormalizeSet(&set)
	for _, lvl := range unknown {
		log.Warn("unknown warning level, using caution", "level", lvl)
	}
	return Outcome{Set: set, UnknownLevels: unknown, Doc: doc}, nil
}

func pageSpan(r chunker.PageRange) string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
