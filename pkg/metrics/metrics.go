// Package metrics records index and stretch activity as prometheus metrics.
//
// A Metrics value owns its registry, so independent runs never share counters.
// After a command finishes the registry can be dumped in the node exporter
// textfile format with WriteTextfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FilesDiscovered prometheus.Counter
	FilesIndexed    prometheus.Counter
	FilesSkipped    prometheus.Counter
	IndexRuns       *prometheus.CounterVec
	IndexDuration   prometheus.Histogram
	ImagesStretched *prometheus.CounterVec
}

// New creates a Metrics with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FilesDiscovered: factory.NewCounter(prometheus.CounterOpts{
			Name: "plateindex_files_discovered_total",
			Help: "Image files found by the directory walk",
		}),
		FilesIndexed: factory.NewCounter(prometheus.CounterOpts{
			Name: "plateindex_files_indexed_total",
			Help: "Image files parsed into index rows",
		}),
		FilesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "plateindex_files_skipped_total",
			Help: "Image files whose names did not match the expected pattern",
		}),
		IndexRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plateindex_index_runs_total",
			Help: "Index builder runs by outcome",
		}, []string{"status"}),
		IndexDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "plateindex_index_duration_seconds",
			Help:    "Wall time of index builder runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		ImagesStretched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plateindex_images_stretched_total",
			Help: "Contrast stretch operations by outcome",
		}, []string{"status"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Discovered counts one walked file.
func (m *Metrics) Discovered() {
	if m != nil {
		m.FilesDiscovered.Inc()
	}
}

// Indexed counts one parsed file.
func (m *Metrics) Indexed() {
	if m != nil {
		m.FilesIndexed.Inc()
	}
}

// Skipped counts one file rejected by the parser.
func (m *Metrics) Skipped() {
	if m != nil {
		m.FilesSkipped.Inc()
	}
}

// RunFinished records the outcome and duration of an index run.
func (m *Metrics) RunFinished(err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.IndexRuns.WithLabelValues(status(err)).Inc()
	m.IndexDuration.Observe(elapsed.Seconds())
}

// Stretched records the outcome of a contrast stretch.
func (m *Metrics) Stretched(err error) {
	if m != nil {
		m.ImagesStretched.WithLabelValues(status(err)).Inc()
	}
}

// WriteTextfile writes every collected metric to filename.
func (m *Metrics) WriteTextfile(filename string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(filename, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
