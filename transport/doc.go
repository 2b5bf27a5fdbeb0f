// Package transport delivers inbound messages to a Handler.
//
// A Source yields Deliveries; the Dispatcher hands each one to the Handler
// and acknowledges it on success or negatively acknowledges it on failure.
// Messages are processed one per goroutine with a configurable number in
// flight.
package transport
