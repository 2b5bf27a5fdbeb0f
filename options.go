package patternmon

import (
	"log/slog"

	"github.com/hupe1980/patternmon/codec"
	"github.com/hupe1980/patternmon/retrieval"
	"github.com/hupe1980/patternmon/vsa"
)

const (
	// DefaultBucket is the bucket every message is persisted into.
	DefaultBucket = "pattern-monitor-vectors"
	// DefaultSearchK caps the results of the retrieval self-check.
	DefaultSearchK = 5
)

type options struct {
	bucket           string
	codec            codec.Codec
	vsaConfig        vsa.Config
	searchConfig     retrieval.SearchConfig
	searchK          int
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Monitor.
type Option func(*options)

// WithBucket sets the bucket name opened for every message.
func WithBucket(name string) Option {
	return func(o *options) {
		o.bucket = name
	}
}

// WithCodec configures the codec used to serialize persisted vectors.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithVSAConfig sets the hypervector encoding configuration.
//
// Changing the dimension, sparsity or version produces vectors that are not
// comparable with those already stored under the v1 key space.
func WithVSAConfig(cfg vsa.Config) Option {
	return func(o *options) {
		o.vsaConfig = cfg
	}
}

// WithSearchConfig tunes the candidate shortlist of the retrieval self-check.
func WithSearchConfig(cfg retrieval.SearchConfig) Option {
	return func(o *options) {
		o.searchConfig = cfg
	}
}

// WithSearchK sets the result cap of the retrieval self-check.
func WithSearchK(k int) Option {
	return func(o *options) {
		o.searchK = k
	}
}

// WithMetricsCollector enables metrics collection.
//
// Example with basic in-memory metrics:
//
//	metrics := &patternmon.BasicMetricsCollector{}
//	mon, _ := patternmon.New(store, patternmon.WithMetricsCollector(metrics))
//	// ... handle messages ...
//	stats := metrics.GetStats()
//	fmt.Printf("Stored: %d, Bytes written: %d\n", stats.MessagesStored, stats.BytesWritten)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := patternmon.NewJSONLogger(os.Stderr, slog.LevelInfo)
//	mon, _ := patternmon.New(store, patternmon.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger on stderr with the specified level.
// Convenience wrapper for WithLogger(NewTextLogger(os.Stderr, level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(stderr, level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		bucket:           DefaultBucket,
		codec:            codec.Default,
		vsaConfig:        vsa.DefaultConfig(),
		searchConfig:     retrieval.DefaultSearchConfig(),
		searchK:          DefaultSearchK,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
