package transport

import "context"

// Message is one inbound unit of work.
type Message struct {
	// Subject names the stream the message arrived on.
	Subject string
	// Body is the raw payload.
	Body []byte
}

// Handler processes a single message.
type Handler interface {
	HandleMessage(ctx context.Context, msg Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg Message) error

// HandleMessage calls f.
func (f HandlerFunc) HandleMessage(ctx context.Context, msg Message) error { return f(ctx, msg) }

// Delivery is a received message together with its acknowledgement hooks.
type Delivery struct {
	Message

	ack  func(ctx context.Context) error
	nack func(ctx context.Context, cause error) error
}

// NewDelivery builds a Delivery. Nil hooks are no-ops.
func NewDelivery(msg Message, ack func(context.Context) error, nack func(context.Context, error) error) Delivery {
	return Delivery{Message: msg, ack: ack, nack: nack}
}

// Ack confirms that the message was processed.
func (d Delivery) Ack(ctx context.Context) error {
	if d.ack == nil {
		return nil
	}
	return d.ack(ctx)
}

// Nack reports that processing failed with cause. The source decides
// whether the message is redelivered.
func (d Delivery) Nack(ctx context.Context, cause error) error {
	if d.nack == nil {
		return nil
	}
	return d.nack(ctx, cause)
}

// Source yields deliveries until it is exhausted.
type Source interface {
	// Receive blocks until the next delivery is available. It returns io.EOF
	// once the source is drained or closed.
	Receive(ctx context.Context) (Delivery, error)
	Close() error
}
