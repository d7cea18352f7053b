package pipeline

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dgallion1/copextract/internal/cleanup"
	"github.com/dgallion1/copextract/internal/merge"
)

// RunStatus is the phase an extraction run is in.
type RunStatus string

const (
	StatusPending     RunStatus = "pending"
	StatusSplitting   RunStatus = "splitting"
	StatusStructuring RunStatus = "structuring"
	StatusMerging     RunStatus = "merging"
	StatusCleaning    RunStatus = "cleaning"
	StatusWriting     RunStatus = "writing"
	StatusSeeding     RunStatus = "seeding"
	StatusPublishing  RunStatus = "publishing"
	StatusCompleted   RunStatus = "completed"
	StatusFailed      RunStatus = "failed"
)

// Run tracks one pass over an input document. It is owned by the
// orchestrator goroutine.
type Run struct {
	ID          string
	Input       string
	Strategy    string
	ContentHash string

	Status   RunStatus
	Progress Progress
	phases   []PhaseTiming

	Merge     merge.Report
	Cleanup   *cleanup.Stats
	Counts    Counts
	Files     []string
	Published []string

	CreatedAt  time.Time
	UpdatedAt  time.Time
	phaseStart time.Time
	errors     []string
}

// Progress tracks partition processing.
type Progress struct {
	TotalPartitions     int                 `json:"total_partitions"`
	PartitionsProcessed int                 `json:"partitions_processed"`
	Degraded            []DegradedPartition `json:"degraded"`
	Errors              []string            `json:"errors"`
}

// DegradedPartition is a partition whose structuring failed and contributed
// no records.
type DegradedPartition struct {
	Index int    `json:"index"`
	Pages string `json:"pages"`
	Error string `json:"error"`
}

// PhaseTiming is the wall time spent in one phase.
type PhaseTiming struct {
	Phase   RunStatus `json:"phase"`
	Seconds float64   `json:"seconds"`
}

// Counts holds candidate totals before merging and record totals after.
type Counts struct {
	CandidateDetails   int `json:"candidate_details"`
	CandidateStandards int `json:"candidate_standards"`
	CandidateWarnings  int `json:"candidate_warnings"`
	Details            int `json:"details"`
	Standards          int `json:"standards"`
	Warnings           int `json:"warnings"`
}

func NewRun(id, input, strategy string) *Run {
	now := time.Now()
	return &Run{
		ID:         id,
		Input:      input,
		Strategy:   strategy,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
		phaseStart: now,
	}
}

// SetStatus moves the run to a new phase and closes the timing of the
// previous one.
func (r *Run) SetStatus(status RunStatus) {
	now := time.Now()
	if r.Status != StatusPending && r.Status != status {
		r.phases = append(r.phases, PhaseTiming{Phase: r.Status, Seconds: now.Sub(r.phaseStart).Seconds()})
	}
	if r.Status != status {
		r.phaseStart = now
	}
	r.Status = status
	r.UpdatedAt = now
}

// AddError records an error.
func (r *Run) AddError(err string) {
	r.errors = append(r.errors, err)
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// Fail records err and marks the run failed.
func (r *Run) Fail(err error) {
	r.AddError(err.Error())
	r.SetStatus(StatusFailed)
}

// MarkDegraded records a partition that fell back to an empty record set.
func (r *Run) MarkDegraded(index int, pages string, err error) {
	r.Progress.Degraded = append(r.Progress.Degraded, DegradedPartition{Index: index, Pages: pages, Error: err.Error()})
	r.UpdatedAt = time.Now()
}

// IncrPartitionsProcessed increments partitions processed.
func (r *Run) IncrPartitionsProcessed() {
	r.Progress.PartitionsProcessed++
	r.UpdatedAt = time.Now()
}

// SetTotalPartitions records total partition count.
func (r *Run) SetTotalPartitions(n int) {
	r.Progress.TotalPartitions = n
	r.UpdatedAt = time.Now()
}

// Manifest is the JSON-safe record of a run written to run.json.
type Manifest struct {
	ID          string         `json:"run_id"`
	Input       string         `json:"input"`
	ContentHash string         `json:"content_hash"`
	Strategy    string         `json:"strategy"`
	Status      RunStatus      `json:"status"`
	Progress    Progress       `json:"progress"`
	Phases      []PhaseTiming  `json:"phases"`
	Counts      Counts         `json:"counts"`
	Merge       merge.Report   `json:"merge"`
	Cleanup     *cleanup.Stats `json:"cleanup,omitempty"`
	Files       []string       `json:"files"`
	Published   []string       `json:"published,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Manifest returns a copy of the run state with every list non-nil.
func (r *Run) Manifest() Manifest {
	nonNil := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return append([]string(nil), s...)
	}
	degraded := append([]DegradedPartition{}, r.Progress.Degraded...)
	phases := append([]PhaseTiming{}, r.phases...)
	rep := r.Merge
	rep.InvalidCodes = nonNil(rep.InvalidCodes)

	return Manifest{
		ID:          r.ID,
		Input:       r.Input,
		ContentHash: r.ContentHash,
		Strategy:    r.Strategy,
		Status:      r.Status,
		Progress: Progress{
			TotalPartitions:     r.Progress.TotalPartitions,
			PartitionsProcessed: r.Progress.PartitionsProcessed,
			Degraded:            degraded,
			Errors:              nonNil(r.Progress.Errors),
		},
		Phases:    phases,
		Counts:    r.Counts,
		Merge:     rep,
		Cleanup:   r.Cleanup,
		Files:     nonNil(r.Files),
		Published: r.Published,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// HashFile streams the file at path through SHA-256.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
