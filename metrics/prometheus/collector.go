// Package prometheus exports monitor metrics as Prometheus collectors.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/patternmon"
)

const namespace = "patternmon"

// Collector implements patternmon.MetricsCollector on top of Prometheus
// counters and histograms.
type Collector struct {
	messages       *prometheus.CounterVec
	fields         prometheus.Histogram
	messageLatency prometheus.Histogram
	writes         *prometheus.CounterVec
	writeBytes     *prometheus.HistogramVec
	searches       *prometheus.CounterVec
	searchResults  prometheus.Histogram
	searchLatency  prometheus.Histogram
}

var _ patternmon.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Handled messages by outcome.",
		}, []string{"outcome"}),
		fields: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_fields",
			Help:      "Encoded fields per message.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		messageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_duration_seconds",
			Help:      "End-to-end handling time per message.",
			Buckets:   prometheus.DefBuckets,
		}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Key-value writes by kind and status.",
		}, []string{"kind", "status"}),
		writeBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "write_bytes",
			Help:      "Serialized vector size per successful write.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}, []string{"kind"}),
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_checks_total",
			Help:      "Retrieval self-checks by status.",
		}, []string{"status"}),
		searchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_results",
			Help:      "Results returned per retrieval self-check.",
			Buckets:   prometheus.LinearBuckets(0, 1, 8),
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval self-check latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, col := range []prometheus.Collector{
		c.messages, c.fields, c.messageLatency,
		c.writes, c.writeBytes,
		c.searches, c.searchResults, c.searchLatency,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordMessage implements patternmon.MetricsCollector.
func (c *Collector) RecordMessage(outcome patternmon.Outcome, fields int, duration time.Duration) {
	c.messages.WithLabelValues(string(outcome)).Inc()
	c.messageLatency.Observe(duration.Seconds())
	if outcome != patternmon.OutcomeSkipped {
		c.fields.Observe(float64(fields))
	}
}

// RecordWrite implements patternmon.MetricsCollector.
func (c *Collector) RecordWrite(kind patternmon.WriteKind, bytes int, err error) {
	if err != nil {
		c.writes.WithLabelValues(string(kind), "error").Inc()
		return
	}
	c.writes.WithLabelValues(string(kind), "ok").Inc()
	c.writeBytes.WithLabelValues(string(kind)).Observe(float64(bytes))
}

// RecordSearch implements patternmon.MetricsCollector.
func (c *Collector) RecordSearch(results int, duration time.Duration, err error) {
	c.searchLatency.Observe(duration.Seconds())
	if err != nil {
		c.searches.WithLabelValues("error").Inc()
		return
	}
	c.searches.WithLabelValues("ok").Inc()
	c.searchResults.Observe(float64(results))
}
