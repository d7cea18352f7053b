package extract

import (
	"context"

	"github.com/dgallion1/copextract/internal/doctree"
	"github.com/dgallion1/copextract/internal/record"
)

// Strategy turns a rendered partition into candidate records. One strategy
// is chosen per run and applied to every partition.
type Strategy interface {
	Name() string
	Structure(ctx context.Context, doc *doctree.Document) (record.Set, error)
}

// CallObserver records the outcome and latency of model calls.
type CallObserver interface {
	ObserveModelCall(outcome string, seconds float64)
}

type nopObserver struct{}

func (nopObserver) ObserveModelCall(string, float64) {}
