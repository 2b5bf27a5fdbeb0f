package transport

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Dispatcher pulls deliveries from a Source and runs a Handler on each.
//
// Every message is handled sequentially by a single goroutine; at most
// Concurrency messages are in flight. Handler failures are logged and
// nacked and never stop the loop.
type Dispatcher struct {
	Source  Source
	Handler Handler
	// Concurrency bounds the messages in flight. Values below 1 mean 1.
	Concurrency int
	Logger      *slog.Logger
}

// Run dispatches until the source returns io.EOF or ctx is cancelled. It
// waits for in-flight messages before returning. A drained source yields a
// nil error; cancellation yields ctx.Err().
func (d *Dispatcher) Run(ctx context.Context) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	g := new(errgroup.Group)
	g.SetLimit(max(d.Concurrency, 1))

	var runErr error
	for {
		del, err := d.Source.Receive(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				runErr = err
			}
			break
		}

		g.Go(func() error {
			d.dispatch(ctx, logger, del)
			return nil
		})
	}

	_ = g.Wait()
	if runErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return runErr
}

func (d *Dispatcher) dispatch(ctx context.Context, logger *slog.Logger, del Delivery) {
	err := d.Handler.HandleMessage(ctx, del.Message)
	if err != nil {
		logger.WarnContext(ctx, "message handling failed",
			"subject", del.Subject,
			"error", err,
		)
		if nerr := del.Nack(ctx, err); nerr != nil {
			logger.WarnContext(ctx, "nack failed", "subject", del.Subject, "error", nerr)
		}
		return
	}
	if aerr := del.Ack(ctx); aerr != nil {
		logger.WarnContext(ctx, "ack failed", "subject", del.Subject, "error", aerr)
	}
}
