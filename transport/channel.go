package transport

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// ChannelSource is an in-process Source backed by a Go channel. It is used
// by tests and by the CLI to feed single messages.
type ChannelSource struct {
	ch        chan Message
	closeOnce sync.Once

	acked  atomic.Int64
	nacked atomic.Int64
}

// NewChannelSource creates a source buffering up to size messages.
func NewChannelSource(size int) *ChannelSource {
	return &ChannelSource{ch: make(chan Message, size)}
}

// Publish enqueues msg. It blocks while the buffer is full.
// Publishing after Close panics.
func (s *ChannelSource) Publish(ctx context.Context, msg Message) error {
	select {
	case s.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive implements Source.
func (s *ChannelSource) Receive(ctx context.Context) (Delivery, error) {
	select {
	case msg, ok := <-s.ch:
		if !ok {
			return Delivery{}, io.EOF
		}
		return NewDelivery(msg,
			func(context.Context) error { s.acked.Add(1); return nil },
			func(context.Context, error) error { s.nacked.Add(1); return nil },
		), nil
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	}
}

// Close stops accepting messages. Buffered messages are still delivered.
func (s *ChannelSource) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}

// Acked returns the number of acknowledged deliveries.
func (s *ChannelSource) Acked() int64 { return s.acked.Load() }

// Nacked returns the number of negatively acknowledged deliveries.
func (s *ChannelSource) Nacked() int64 { return s.nacked.Load() }
