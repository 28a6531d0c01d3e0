package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File results recorded in FilesTotal.
const (
	ResultAnnotated = "annotated"
	ResultUnchanged = "unchanged"
	ResultFailed    = "failed"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pyannotate_parse_seconds",
		Help:    "Time spent parsing a Python source file.",
		Buckets: prometheus.DefBuckets,
	})

	AnnotationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyannotate_annotations_total",
		Help: "Total number of disable/enable pairs inserted.",
	}, []string{"rule"})

	FilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pyannotate_files_total",
		Help: "Total number of files processed, by result.",
	}, []string{"result"})

	PylintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pyannotate_pylint_seconds",
		Help:    "Time spent waiting for pylint on a single file.",
		Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)

// WriteTextfile flushes the default registry in the node_exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
