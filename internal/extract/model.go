package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/copextract/internal/doctree"
	"github.com/dgallion1/copextract/internal/record"
)

// ModelStrategy structures partitions through an external language model.
type ModelStrategy struct {
	client   Completer
	maxChars int
	log      *slog.Logger
	observer CallObserver
}

func NewModelStrategy(client Completer, maxChars int, log *slog.Logger, observer CallObserver) *ModelStrategy {
	if maxChars <= 0 {
		maxChars = DefaultMaxPromptChars
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &ModelStrategy{client: client, maxChars: maxChars, log: log, observer: observer}
}

func (s *ModelStrategy) Name() string { return "claude" }

// Structure sends one request per partition. Request and decode failures
// are returned to the caller, which decides how to degrade.
func (s *ModelStrategy) Structure(ctx context.Context, doc *doctree.Document) (record.Set, error) {
	prompt, truncated, err := BuildPrompt(doc, s.maxChars)
	if err != nil {
		return record.Set{}, err
	}
	s.log.Debug("model request",
		"path", doc.Path,
		"sections", len(doc.Sections),
		"tables", len(doc.Tables),
		"truncated", truncated,
		"est_tokens", EstimateTokens(prompt),
	)

	start := time.Now()
	text, err := s.client.Complete(ctx, prompt)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		s.observer.ObserveModelCall("request_error", elapsed)
		return record.Set{}, fmt.Errorf("model request: %w", err)
	}

	set, err := DecodeResponse(text)
	if err != nil {
		s.observer.ObserveModelCall("parse_error", elapsed)
		return record.Set{}, err
	}
	s.observer.ObserveModelCall("ok", elapsed)
	return set, nil
}
