package patternmon

import (
	"sync/atomic"
	"time"
)

// Outcome classifies how a message ended.
type Outcome string

const (
	// OutcomeStored means every planned write succeeded.
	OutcomeStored Outcome = "stored"
	// OutcomeSkipped means the body produced no writes.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means an error was returned to the caller.
	OutcomeFailed Outcome = "failed"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus; see the metrics/prometheus package.
type MetricsCollector interface {
	// RecordMessage is called once per handled message.
	// fields is the number of encoded fields, duration the end-to-end time.
	RecordMessage(outcome Outcome, fields int, duration time.Duration)

	// RecordWrite is called after each key-value write.
	// bytes is the serialized size, err is nil if successful.
	RecordWrite(kind WriteKind, bytes int, err error)

	// RecordSearch is called after each retrieval self-check.
	RecordSearch(results int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordMessage(Outcome, int, time.Duration) {}
func (NoopMetricsCollector) RecordWrite(WriteKind, int, error)         {}
func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicMetricsCollector struct {
	MessagesStored    atomic.Int64
	MessagesSkipped   atomic.Int64
	MessagesFailed    atomic.Int64
	FieldsEncoded     atomic.Int64
	MessageTotalNanos atomic.Int64
	SemanticWrites    atomic.Int64
	BundleWrites      atomic.Int64
	WriteErrors       atomic.Int64
	BytesWritten      atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchResults     atomic.Int64
	SearchTotalNanos  atomic.Int64
}

// RecordMessage implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMessage(outcome Outcome, fields int, duration time.Duration) {
	switch outcome {
	case OutcomeStored:
		b.MessagesStored.Add(1)
	case OutcomeSkipped:
		b.MessagesSkipped.Add(1)
	default:
		b.MessagesFailed.Add(1)
	}
	b.FieldsEncoded.Add(int64(fields))
	b.MessageTotalNanos.Add(duration.Nanoseconds())
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(kind WriteKind, bytes int, err error) {
	if err != nil {
		b.WriteErrors.Add(1)
		return
	}
	if kind == WriteBundle {
		b.BundleWrites.Add(1)
	} else {
		b.SemanticWrites.Add(1)
	}
	b.BytesWritten.Add(int64(bytes))
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(results int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
		return
	}
	b.SearchResults.Add(int64(results))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		MessagesStored:  b.MessagesStored.Load(),
		MessagesSkipped: b.MessagesSkipped.Load(),
		MessagesFailed:  b.MessagesFailed.Load(),
		FieldsEncoded:   b.FieldsEncoded.Load(),
		MessageAvgNanos: b.getAvgMessageNanos(),
		SemanticWrites:  b.SemanticWrites.Load(),
		BundleWrites:    b.BundleWrites.Load(),
		WriteErrors:     b.WriteErrors.Load(),
		BytesWritten:    b.BytesWritten.Load(),
		SearchCount:     b.SearchCount.Load(),
		SearchErrors:    b.SearchErrors.Load(),
		SearchResults:   b.SearchResults.Load(),
		SearchAvgNanos:  b.getAvgSearchNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgMessageNanos() int64 {
	count := b.MessagesStored.Load() + b.MessagesSkipped.Load() + b.MessagesFailed.Load()
	if count == 0 {
		return 0
	}
	return b.MessageTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	MessagesStored  int64
	MessagesSkipped int64
	MessagesFailed  int64
	FieldsEncoded   int64
	MessageAvgNanos int64
	SemanticWrites  int64
	BundleWrites    int64
	WriteErrors     int64
	BytesWritten    int64
	SearchCount     int64
	SearchErrors    int64
	SearchResults   int64
	SearchAvgNanos  int64
}
