// Package metrics counts rule matches and pass outcomes with Prometheus
// collectors and exports them as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/teranos/fundlink/errors"
	"github.com/teranos/fundlink/relate"
)

const namespace = "fundlink"

// Recorder is a relate.Observer that counts matches per rule. It is safe for
// concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	matches      *prometheus.CounterVec
	records      *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration prometheus.Histogram
	lastPass     prometheus.Gauge
	similarity   prometheus.Histogram
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		matches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_matches_total",
			Help:      "Dataset/target pairs a rule matched.",
		}, []string{"relationship", "rule"}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationship_records_total",
			Help:      "Relationship records produced.",
		}, []string{"relationship"}),
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Evaluation passes by outcome.",
		}, []string{"outcome"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Wall time of an evaluation pass.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		lastPass: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_pass_timestamp_seconds",
			Help:      "Unix time the last successful pass finished.",
		}),
		similarity: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "description_similarity",
			Help:      "Cosine similarity of description matches.",
			Buckets:   prometheus.LinearBuckets(0.6, 0.05, 8),
		}),
	}
}

// Observe implements relate.Observer.
func (r *Recorder) Observe(e relate.Event) {
	r.matches.WithLabelValues(string(e.Relationship), string(e.Rule)).Inc()
	if e.Similarity != 0 {
		r.similarity.Observe(e.Similarity)
	}
}

// PassSucceeded records a finished pass and its record counts.
func (r *Recorder) PassSucceeded(res *relate.Result, d time.Duration) {
	r.passes.WithLabelValues("success").Inc()
	r.passDuration.Observe(d.Seconds())
	r.lastPass.SetToCurrentTime()
	r.records.WithLabelValues(string(relate.RelationshipProgram)).Add(float64(len(res.Programs)))
	r.records.WithLabelValues(string(relate.RelationshipProject)).Add(float64(len(res.Projects)))
	r.records.WithLabelValues(string(relate.RelationshipGrant)).Add(float64(len(res.Grants)))
}

// PassFailed records a pass that returned an error.
func (r *Recorder) PassFailed(d time.Duration) {
	r.passes.WithLabelValues("failure").Inc()
	r.passDuration.Observe(d.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes every metric in the text exposition format,
// atomically replacing path.
func (r *Recorder) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, r.registry), "write metrics to %s", path)
}
