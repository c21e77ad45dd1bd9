package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/asynchttp/packages/transport"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPort is the only port URLs can address
	DefaultPort = 80
	// FirstByteTimeout bounds the wait for any response data after the request is sent
	FirstByteTimeout = 5000 * time.Millisecond
	// QuiescenceTimeout is the gap after the latest bytes that ends a response
	QuiescenceTimeout = 50 * time.Millisecond
	// ReceiveBufferSize is the scratch buffer size for one receive attempt
	ReceiveBufferSize = 4096
)

// State is the lifecycle position of the engine's current request.
type State int

const (
	StateIdle State = iota
	StateArmed
	StateSending
	StateReceiving
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateSending:
		return "sending"
	case StateReceiving:
		return "receiving"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// InFlight reports whether a request is armed and not yet finished.
func (s State) InFlight() bool {
	return s == StateArmed || s == StateSending || s == StateReceiving
}

// Callback receives the raw response text or an error sentinel.
type Callback func(response string)

// Engine runs one request at a time over a single transport connection.
// It is not safe for concurrent use.
type Engine struct {
	transport transport.Transport
	headers   *HeaderSet
	port      uint16
	now       func() time.Time
	newID     func() string
	log       logrus.FieldLogger

	state    State
	pending  []byte
	response bytes.Buffer
	scratch  []byte
	deadline time.Time
	callback Callback

	id           string
	err          error
	recvFailures int
}

type EngineOption func(*Engine)

// WithPort overrides the TCP port every request connects to
func WithPort(port uint16) EngineOption {
	return func(e *Engine) {
		e.port = port
	}
}

// WithClock sets the time source sampled on every poll
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger enables debug logging of lifecycle transitions
func WithLogger(l logrus.FieldLogger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithIDGenerator sets how request IDs are produced
func WithIDGenerator(gen func() string) EngineOption {
	return func(e *Engine) {
		e.newID = gen
	}
}

func NewEngine(t transport.Transport, opts ...EngineOption) *Engine {
	e := &Engine{
		transport: t,
		headers:   NewHeaderSet(),
		port:      DefaultPort,
		now:       time.Now,
		newID:     uuid.NewString,
		scratch:   make([]byte, ReceiveBufferSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		e.log = silent
	}
	return e
}

func (e *Engine) SetHeader(name, value string) {
	e.headers.Set(name, value)
}

func (e *Engine) RemoveHeader(name string) {
	e.headers.Remove(name)
}

func (e *Engine) ClearHeaders() {
	e.headers.Clear()
}

// Header returns the configured value for name, or "".
func (e *Engine) Header(name string) string {
	return e.headers.Get(name)
}

func (e *Engine) State() State {
	return e.state
}

// RequestID identifies the most recently armed request.
func (e *Engine) RequestID() string {
	return e.id
}

// Err reports why the most recent request ended without a response, or nil.
func (e *Engine) Err() error {
	return e.err
}

// Get arms a GET request. Failures to decompose the URL or connect are
// reported to cb before Get returns. A URL without "://" is always reported
// as invalid, even while another request is in flight.
//
// Get does not wait for the TCP handshake, but a host name is resolved
// synchronously during the call and may block for up to the subsystem's
// resolve timeout. IPv4 literals never block.
func (e *Engine) Get(rawURL string, cb Callback) {
	e.start(MethodGet, rawURL, cb, OctetStream, "")
}

// Post arms a POST request with body classified as ct. URL and name
// resolution behave as for Get.
func (e *Engine) Post(rawURL string, cb Callback, ct ContentType, body string) {
	e.start(MethodPost, rawURL, cb, ct, body)
}

func (e *Engine) start(method, rawURL string, cb Callback, ct ContentType, body string) {
	req, err := NewRequest(method, rawURL, e.headers)
	if err != nil {
		// Err belongs to the request in flight, if any
		if !e.state.InFlight() {
			e.err = err
		}
		reject(cb, err)
		return
	}

	if e.state.InFlight() {
		e.log.WithFields(logrus.Fields{
			"request_id": e.id,
			"state":      e.state.String(),
		}).Debug("rejecting request while another is in flight")
		reject(cb, ErrBusy)
		return
	}
	if method == MethodPost {
		req.SetBody(ct, body)
	}

	if err := e.transport.Connect(req.Host, e.port); err != nil {
		e.err = fmt.Errorf("%w: %w", ErrConnectionFailed, err)
		e.log.WithError(err).WithField("host", req.Host).Debug("connect failed")
		reject(cb, e.err)
		return
	}

	e.pending = req.Bytes()
	e.response.Reset()
	e.callback = cb
	e.id = e.newID()
	e.err = nil
	e.recvFailures = 0
	e.deadline = time.Time{}
	e.transition(StateArmed)
}

func reject(cb Callback, err error) {
	if cb != nil {
		cb(SentinelFor(err))
	}
}

// Advance performs one send or one receive attempt and reports whether the
// request has completed. It never blocks. With nothing in flight it reports true.
func (e *Engine) Advance() bool {
	switch e.state {
	case StateArmed, StateSending:
		e.send()
		return false
	case StateReceiving:
		return e.receive()
	default:
		return true
	}
}

func (e *Engine) send() {
	if err := e.transport.Send(e.pending); err != nil {
		if e.state != StateSending {
			e.transition(StateSending)
		}
		return
	}
	e.deadline = e.now().Add(FirstByteTimeout)
	e.log.WithFields(logrus.Fields{
		"request_id": e.id,
		"bytes":      len(e.pending),
	}).Debug("request sent")
	e.transition(StateReceiving)
}

func (e *Engine) receive() bool {
	n, err := e.transport.Receive(e.scratch)
	if n > 0 {
		e.response.Write(e.scratch[:n])
		clear(e.scratch[:n])
		e.deadline = e.now().Add(QuiescenceTimeout)
	} else if isStall(err) {
		e.recvFailures++
	}

	if e.now().Before(e.deadline) {
		return false
	}
	e.finish()
	return true
}

// isStall reports receive errors other than "nothing yet" and an orderly close.
func isStall(err error) bool {
	return err != nil && !errors.Is(err, transport.ErrWouldBlock) && !errors.Is(err, io.EOF)
}

func (e *Engine) finish() {
	response := e.response.String()
	if response == "" {
		e.err = ErrNoData
		if e.recvFailures > 0 {
			e.err = fmt.Errorf("%w: %w", ErrNoData, ErrTransportStall)
		}
		response = ResponseNoData
	}

	e.complete(response)
}

// Cancel abandons the in-flight request, closing its connection and
// delivering ResponseCancelled. It is a no-op when nothing is in flight.
func (e *Engine) Cancel() {
	if !e.state.InFlight() {
		return
	}
	e.err = ErrCancelled
	e.complete(ResponseCancelled)
}

// complete closes the connection before the callback runs so the callback
// may arm the next request.
func (e *Engine) complete(response string) {
	if err := e.transport.Close(); err != nil {
		e.log.WithError(err).WithField("request_id", e.id).Debug("close failed")
	}
	cb := e.callback
	e.callback = nil
	e.pending = nil
	e.transition(StateDone)

	e.log.WithFields(logrus.Fields{
		"request_id": e.id,
		"bytes":      e.response.Len(),
		"stalls":     e.recvFailures,
	}).Debug("request complete")

	if cb != nil {
		cb(response)
	}
}

func (e *Engine) transition(to State) {
	e.log.WithFields(logrus.Fields{
		"request_id": e.id,
		"from":       e.state.String(),
		"to":         to.String(),
	}).Debug("state change")
	e.state = to
}
