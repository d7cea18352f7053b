// Package metrics records per-run counters on a private Prometheus registry.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dgallion1/copextract/internal/record"
)

const namespace = "copextract"

// Metrics holds the run's collectors. The zero value is not usable; call New.
type Metrics struct {
	Registry *prometheus.Registry

	partitions    *prometheus.CounterVec
	candidates    *prometheus.CounterVec
	modelRequests *prometheus.CounterVec
	modelLatency  prometheus.Histogram
	invalidCodes  prometheus.Counter
	written       *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partitions_total",
			Help:      "Partitions processed, by outcome.",
		}, []string{"outcome"}),
		candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_total",
			Help:      "Candidate records produced by the structuring strategy, by kind.",
		}, []string{"kind"}),
		modelRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_requests_total",
			Help:      "Model requests, by outcome.",
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_request_duration_seconds",
			Help:      "Latency of model requests.",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 90, 120},
		}),
		invalidCodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_codes_total",
			Help:      "Detail codes that failed the format check.",
		}),
		written: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_written",
			Help:      "Records written in the final output, by kind.",
		}, []string{"kind"}),
	}
	m.Registry.MustRegister(m.partitions, m.candidates, m.modelRequests, m.modelLatency, m.invalidCodes, m.written)
	return m
}

// ObservePartition counts one processed partition.
func (m *Metrics) ObservePartition(degraded bool) {
	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	m.partitions.WithLabelValues(outcome).Inc()
}

// ObserveCandidates counts one partition's candidates.
func (m *Metrics) ObserveCandidates(set record.Set) {
	m.candidates.WithLabelValues("detail").Add(float64(len(set.Details)))
	m.candidates.WithLabelValues("standard").Add(float64(len(set.Standards)))
	m.candidates.WithLabelValues("warning").Add(float64(len(set.Warnings)))
}

// ObserveModelCall implements extract.CallObserver.
func (m *Metrics) ObserveModelCall(outcome string, seconds float64) {
	m.modelRequests.WithLabelValues(outcome).Inc()
	m.modelLatency.Observe(seconds)
}

func (m *Metrics) ObserveInvalidCodes(n int) {
	m.invalidCodes.Add(float64(n))
}

// ObserveWritten records final output sizes.
func (m *Metrics) ObserveWritten(set *record.Set) {
	m.written.WithLabelValues("detail").Set(float64(len(set.Details)))
	m.written.WithLabelValues("standard").Set(float64(len(set.Standards)))
	m.written.WithLabelValues("warning").Set(float64(len(set.Warnings)))
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
