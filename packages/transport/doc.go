// Package transport provides the non-blocking TCP primitive consumed by the
// request engine.
//
// It provides:
//   - A Transport interface with connect/send/receive/close over one connection
//   - A Socket implementation backed by a raw non-blocking descriptor
//   - A Subsystem guard that owns process-wide socket setup and teardown
//
// Every Socket operation returns immediately. Send and Receive report
// ErrWouldBlock when the descriptor is not ready, so callers poll them in a loop.
package transport
