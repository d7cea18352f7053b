package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dgallion1/copextract/internal/chunker"
	"github.com/dgallion1/copextract/internal/cleanup"
	"github.com/dgallion1/copextract/internal/extract"
	"github.com/dgallion1/copextract/internal/merge"
	"github.com/dgallion1/copextract/internal/metrics"
	"github.com/dgallion1/copextract/internal/parser"
	"github.com/dgallion1/copextract/internal/record"
	"github.com/dgallion1/copextract/internal/writer"
)

// ChunkDir is the subdirectory of the output directory holding partitions.
const ChunkDir = "chunks"

// ErrInput marks problems with the input file detected before any work.
var ErrInput = errors.New("invalid input")

// Seeder applies seed statements to a database.
type Seeder interface {
	Apply(ctx context.Context, stmts []string) error
}

// Publisher uploads output files for a run.
type Publisher interface {
	Publish(ctx context.Context, runID string, files []string) ([]string, error)
}

// Deps are the collaborators of an Orchestrator. Seeder and Publisher are
// optional.
type Deps struct {
	PageTool  chunker.PageTool
	Parsers   ParserFactory
	Strategy  extract.Strategy
	Seeder    Seeder
	Publisher Publisher
	Metrics   *metrics.Metrics
	Log       *slog.Logger
}

// Options describe one run.
type Options struct {
	Input       string
	OutputDir   string
	ChunkPages  int
	Clean       bool
	MetricsFile string
}

// Result is what a completed run produced.
type Result struct {
	Manifest Manifest
	Set      *record.Set
}

// Orchestrator runs the extraction stages strictly in sequence.
type Orchestrator struct {
	deps Deps
	log  *slog.Logger
}

func NewOrchestrator(deps Deps) *Orchestrator {
	if deps.Log == nil {
		deps.Log = slog.New(slog.DiscardHandler)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Parsers == nil {
		deps.Parsers = func(path string) (parser.Parser, error) { return parser.ForFile(path, true) }
	}
	return &Orchestrator{deps: deps, log: deps.Log}
}

// CheckInput verifies the input exists and is a supported document.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInput, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInput, path)
	}
	if !parser.IsSupportedExtension(path) {
		return fmt.Errorf("%w: %s is not a PDF", ErrInput, path)
	}
	return nil
}

// Run processes opts.Input end to end. Partition structuring failures are
// absorbed; everything else aborts the run and is returned.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	if err := CheckInput(opts.Input); err != nil {
		return nil, err
	}
	if opts.ChunkPages < 1 {
		return nil, fmt.Errorf("partition size must be at least 1, got %d", opts.ChunkPages)
	}
	out, err := writer.New(opts.OutputDir)
	if err != nil {
		return nil, err
	}

	run := NewRun(uuid.NewString(), opts.Input, o.deps.Strategy.Name())
	log := o.log.With("run_id", run.ID)
	m := o.deps.Metrics

	defer func() {
		if opts.MetricsFile == "" {
			return
		}
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			log.Warn("metrics export failed", "path", opts.MetricsFile, "error", err)
		}
	}()

	fail := func(err error) (*Result, error) {
		phase := run.Status
		run.Fail(err)
		log.Error("run failed", "phase", phase, "error", err)
		if _, werr := out.WriteJSON(writer.ManifestFile, run.Manifest()); werr != nil {
			log.Warn("manifest write failed", "error", werr)
		}
		return nil, err
	}

	hash, err := HashFile(opts.Input)
	if err != nil {
		return fail(fmt.Errorf("hash input: %w", err))
	}
	run.ContentHash = hash
	log.Info("run started", "input", opts.Input, "strategy", run.Strategy, "content_hash", hash)

	// Phase 1: split.
	run.SetStatus(StatusSplitting)
	splitter := &chunker.Splitter{Tool: o.deps.PageTool, Dir: filepath.Join(opts.OutputDir, ChunkDir)}
	chunks, err := splitter.Split(ctx, opts.Input, opts.ChunkPages)
	if err != nil {
		return fail(fmt.Errorf("split: %w", err))
	}
	run.SetTotalPartitions(len(chunks))
	log.Info("split document", "partitions", len(chunks), "pages_per_partition", opts.ChunkPages)

	// Phase 2: render and structure each partition in order.
	run.SetStatus(StatusStructuring)
	worker := NewWorker(o.deps.Parsers, o.deps.Strategy, log)
	collector := merge.NewCollector()
	for _, c := range chunks {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		res, err := worker.Process(ctx, c)
		if err != nil {
			return fail(err)
		}
		run.IncrPartitionsProcessed()
		m.ObservePartition(res.Degraded != nil)
		if res.Degraded != nil {
			run.MarkDegraded(c.Index, pageSpan(c.Range), res.Degraded)
			continue
		}
		m.ObserveCandidates(res.Set)
		run.Counts.CandidateDetails += len(res.Set.Details)
		run.Counts.CandidateStandards += len(res.Set.Standards)
		run.Counts.CandidateWarnings += len(res.Set.Warnings)
		collector.Add(res.Set)
		log.Info("partition structured",
			"partition", c.Index,
			"progress", fmt.Sprintf("%d/%d", run.Progress.PartitionsProcessed, run.Progress.TotalPartitions),
			"records", res.Set.Len(),
			"details", len(res.Set.Details),
			"standards", len(res.Set.Standards),
			"warnings", len(res.Set.Warnings),
		)
	}

	// Phase 3: merge and validate.
	run.SetStatus(StatusMerging)
	rep := collector.Finalize()
	run.Merge = rep
	if rep.DuplicatesDropped > 0 {
		log.Warn("duplicate detail codes dropped", "count", rep.DuplicatesDropped)
	}
	if rep.EmptyCodesDropped > 0 {
		log.Warn("details without a code dropped", "count", rep.EmptyCodesDropped)
	}
	if len(rep.InvalidCodes) > 0 {
		log.Warn("detail codes do not match the expected format", "codes", rep.InvalidCodes)
		m.ObserveInvalidCodes(len(rep.InvalidCodes))
	}
	set := collector.Set()

	// Phase 4: clean.
	if opts.Clean {
		run.SetStatus(StatusCleaning)
		st := cleanup.Apply(set)
		run.Cleanup = &st
		log.Info("cleanup applied",
			"descriptions", st.DescriptionsCleaned,
			"steps_removed", st.StepsRemoved,
			"pitches", st.PitchesInferred,
			"titles", st.TitlesFilled,
			"standards_linked", st.StandardsLinked,
			"warnings_derived", st.WarningsDerived,
		)
	}

	// Phase 5: write.
	run.SetStatus(StatusWriting)
	files, err := out.WriteSet(set)
	run.Files = files
	if err != nil {
		return fail(err)
	}
	run.Counts.Details = len(set.Details)
	run.Counts.Standards = len(set.Standards)
	run.Counts.Warnings = len(set.Warnings)
	m.ObserveWritten(set)
	log.Info("outputs written",
		"dir", opts.OutputDir,
		"details", run.Counts.Details,
		"standards", run.Counts.Standards,
		"warnings", run.Counts.Warnings,
	)

	// Phase 6: seed.
	if o.deps.Seeder != nil {
		run.SetStatus(StatusSeeding)
		stmts, err := writer.SeedStatements(set)
		if err != nil {
			return fail(fmt.Errorf("seed statements: %w", err))
		}
		if err := o.deps.Seeder.Apply(ctx, stmts); err != nil {
			return fail(err)
		}
	}

	// Phase 7: publish.
	if o.deps.Publisher != nil {
		run.SetStatus(StatusPublishing)
		keys, err := o.deps.Publisher.Publish(ctx, run.ID, files)
		run.Published = keys
		if err != nil {
			return fail(err)
		}
	}

	run.SetStatus(StatusCompleted)
	manifestPath, err := out.WriteJSON(writer.ManifestFile, run.Manifest())
	if err != nil {
		return fail(err)
	}
	if o.deps.Publisher != nil {
		keys, err := o.deps.Publisher.Publish(ctx, run.ID, []string{manifestPath})
		if err != nil {
			return fail(err)
		}
		run.Published = append(run.Published, keys...)
	}

	log.Info("run completed",
		"partitions", run.Progress.TotalPartitions,
		"degraded", len(run.Progress.Degraded),
	)
	return &Result{Manifest: run.Manifest(), Set: set}, nil
}
