// Package http provides a non-blocking HTTP/1.1 request engine.
//
// The engine writes hand-built requests over a transport.Transport and collects
// the raw response incrementally:
//   - URL decomposition into host and path
//   - Request serialization with form, JSON, XML and text bodies
//   - A poll-driven state machine that never blocks the caller
//   - End-of-response detection by a quiescence window instead of framing
//
// Callers arm the engine with Get or Post and then call Advance in a loop
// (or hand it to Run) until it reports completion. The result, or an error
// sentinel, is delivered through the completion callback exactly once.
package http
