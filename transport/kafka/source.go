// Package kafka implements transport.Source on Kafka consumer groups using
// segmentio/kafka-go.
//
// The subject of a message is the value of its "subject" header when
// present, otherwise the topic it was read from. Ack commits the message
// offset; Nack leaves it uncommitted so the message is redelivered after a
// restart or rebalance, unless a later message on the same partition is
// committed first.
package kafka

import (
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"

	"github.com/hupe1980/patternmon/transport"
)

// SubjectHeader overrides the topic as message subject.
const SubjectHeader = "subject"

// Reader is the subset of *kafka.Reader used by Source.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config configures a consumer group reader.
type Config struct {
	Brokers []string
	Topics  []string
	GroupID string
	// MinBytes and MaxBytes bound fetch sizes. Zero selects 1 byte and 10MB.
	MinBytes int
	MaxBytes int
}

// Source reads messages from Kafka.
type Source struct {
	reader Reader
}

// NewSource creates a consumer group reader for cfg.
func NewSource(cfg Config) (*Source, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if len(cfg.Topics) == 0 {
		return nil, errors.New("kafka: no topics configured")
	}
	if cfg.GroupID == "" {
		return nil, errors.New("kafka: group id is required")
	}
	minBytes, maxBytes := cfg.MinBytes, cfg.MaxBytes
	if minBytes <= 0 {
		minBytes = 1
	}
	if maxBytes <= 0 {
		maxBytes = 10e6
	}
	return NewSourceFromReader(kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    minBytes,
		MaxBytes:    maxBytes,
	})), nil
}

// NewSourceFromReader wraps an existing reader.
func NewSourceFromReader(r Reader) *Source {
	return &Source{reader: r}
}

// Receive implements transport.Source.
func (s *Source) Receive(ctx context.Context) (transport.Delivery, error) {
	m, err := s.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return transport.Delivery{}, io.EOF
		}
		return transport.Delivery{}, err
	}

	msg := transport.Message{Subject: subjectOf(m), Body: m.Value}
	return transport.NewDelivery(msg,
		func(ctx context.Context) error { return s.reader.CommitMessages(ctx, m) },
		nil,
	), nil
}

// Close closes the underlying reader.
func (s *Source) Close() error { return s.reader.Close() }

func subjectOf(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == SubjectHeader && len(h.Value) > 0 {
			return string(h.Value)
		}
	}
	return m.Topic
}
