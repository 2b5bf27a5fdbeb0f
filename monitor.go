package patternmon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/patternmon/encoder"
	"github.com/hupe1980/patternmon/kv"
	"github.com/hupe1980/patternmon/retrieval"
	"github.com/hupe1980/patternmon/vsa"
)

var (
	// ErrNilStore is returned by New when no store is supplied.
	ErrNilStore = errors.New("patternmon: store is nil")
	// ErrInvalidSearchK is returned by New for a non-positive search cap.
	ErrInvalidSearchK = errors.New("patternmon: search k must be positive")
	// ErrRetrievalPanic wraps a panic raised by the retrieval self-check.
	ErrRetrievalPanic = errors.New("patternmon: retrieval panicked")
)

// unknownField names the query field when id 0 carries no name.
const unknownField = "unknown"

type searchFunc func(query *vsa.SparseVec, idx *retrieval.TernaryInvertedIndex, vectors map[int]*vsa.SparseVec, cfg retrieval.SearchConfig, k int) ([]retrieval.Result, error)

// Monitor encodes messages into hypervectors and persists them.
//
// A Monitor holds no per-message state and is safe for concurrent use; each
// call to Handle is an independent sequential unit of work.
type Monitor struct {
	store  kv.Store
	opts   options
	search searchFunc
}

// New creates a Monitor writing into store.
func New(store kv.Store, optFns ...Option) (*Monitor, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	o := applyOptions(optFns)
	if err := o.vsaConfig.Validate(); err != nil {
		return nil, err
	}
	if o.searchK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSearchK, o.searchK)
	}
	return &Monitor{
		store:  store,
		opts:   o,
		search: retrieval.TwoStageSearch,
	}, nil
}

// Bucket returns the bucket name messages are persisted into.
func (m *Monitor) Bucket() string { return m.opts.bucket }

// Handle processes one message to completion.
//
// Malformed or empty bodies are logged and acknowledged with a nil error.
// The first store failure aborts the remaining writes and is returned; it
// matches kv.ErrNoSuchStore, kv.ErrAccessDenied or *kv.OtherError. A failing
// retrieval self-check is logged and never returned.
func (m *Monitor) Handle(ctx context.Context, msg Message) error {
	start := time.Now()
	log := m.opts.logger.With("subject", msg.Subject, "invocation_id", uuid.NewString())
	log.LogReceived(ctx, msg.Subject, len(msg.Body))

	plan, err := m.Process(msg)
	if err != nil {
		log.WarnContext(ctx, "encoding failed", "error", err)
		m.opts.metricsCollector.RecordMessage(OutcomeFailed, 0, time.Since(start))
		return err
	}
	for _, ev := range plan.Events {
		log.LogAttrs(ctx, ev.Level, ev.Msg, ev.Attrs...)
	}
	if plan.Skipped() {
		m.opts.metricsCollector.RecordMessage(OutcomeSkipped, 0, time.Since(start))
		return nil
	}

	if err := m.persist(ctx, log, plan); err != nil {
		m.opts.metricsCollector.RecordMessage(OutcomeFailed, plan.FieldCount(), time.Since(start))
		return err
	}

	if plan.FieldCount() > 1 {
		_ = m.demonstrateRetrieval(ctx, log, plan.Fields)
	}

	m.opts.metricsCollector.RecordMessage(OutcomeStored, plan.FieldCount(), time.Since(start))
	return nil
}

// HandleMessage implements transport.Handler.
func (m *Monitor) HandleMessage(ctx context.Context, msg Message) error {
	return m.Handle(ctx, msg)
}

// persist opens the bucket once and executes the planned writes in order.
func (m *Monitor) persist(ctx context.Context, log *Logger, plan *Plan) error {
	bucket, err := m.store.Open(ctx, m.opts.bucket)
	if err != nil {
		serr := newStoreError("open", m.opts.bucket, "", err)
		log.WarnContext(ctx, "cannot open bucket", "bucket", m.opts.bucket, "error", serr)
		return serr
	}

	for _, w := range plan.Writes {
		if err := bucket.Set(ctx, w.Key, w.Value); err != nil {
			serr := newStoreError("set", m.opts.bucket, w.Key, err)
			m.opts.metricsCollector.RecordWrite(w.Kind, len(w.Value), serr)
			log.LogWriteFailed(ctx, w.Key, serr)
			return serr
		}
		m.opts.metricsCollector.RecordWrite(w.Kind, len(w.Value), nil)

		if w.Kind == WriteBundle {
			log.LogBundle(ctx, w.Name, w.Key, plan.FieldCount(), len(w.Value))
		} else {
			log.LogStored(ctx, w.Name, w.Key, len(w.Value))
		}
	}
	return nil
}

// demonstrateRetrieval queries the message's own index with field 0.
func (m *Monitor) demonstrateRetrieval(ctx context.Context, log *Logger, fields *encoder.EncodedFields) (err error) {
	start := time.Now()
	name, ok := fields.Names[0]
	if !ok {
		name = unknownField
	}

	var results []retrieval.Result
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRetrievalPanic, r)
		}
		m.opts.metricsCollector.RecordSearch(len(results), time.Since(start), err)
		log.LogRetrieval(ctx, name, m.opts.searchK, len(results), err)
	}()

	query, ok := fields.Vectors[0]
	if !ok {
		return errors.New("patternmon: no vector for field id 0")
	}
	results, err = m.search(query, fields.Index, fields.Vectors, m.opts.searchConfig, m.opts.searchK)
	return err
}
