// Package patternmon encodes JSON event messages into sparse ternary
// hypervectors and persists them in a key-value store.
//
// Every top-level field of a message becomes a semantic vector, the binding
// of its key vector with its value vector. All semantic vectors of a message
// are bundled into one vector that represents the whole message. Vectors are
// written under two key spaces:
//
//	semantic:v1:{field}   last value seen for a field name
//	bundle:v1:{subject}   last message seen on a subject
//
// # Quick Start
//
//	store := kv.NewMemoryStore(patternmon.DefaultBucket)
//	mon, _ := patternmon.New(store, patternmon.WithLogger(patternmon.NewTextLogger(os.Stderr, slog.LevelDebug)))
//	err := mon.Handle(ctx, patternmon.Message{
//	    Subject: "quakes",
//	    Body:    []byte(`{"event":"quake","magnitude":"6.2"}`),
//	})
//
// # Processing Model
//
// Process is pure: it returns a Plan with the ordered writes and the log
// events a message produces. Handle executes a Plan against the store,
// opening the bucket once, aborting on the first failed write, and finally
// runs a retrieval self-check over the message's own fields.
//
// Malformed JSON, non-object bodies and empty objects are skipped with a
// warning and never retried. Store failures are returned so the transport
// can redeliver.
//
// # Concurrency
//
// A Monitor is stateless between messages. Handle may be called from many
// goroutines; see transport.Dispatcher. Concurrent messages touching the same
// field name or subject race with last-write-wins semantics.
package patternmon
