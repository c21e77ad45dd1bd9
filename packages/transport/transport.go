package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

const (
	// DefaultResolveTimeout bounds host name resolution during Connect
	DefaultResolveTimeout = 5 * time.Second
)

var (
	// ErrWouldBlock is returned when the descriptor is not ready for the requested operation
	ErrWouldBlock = errors.New("transport: operation would block")
	// ErrNotConnected is returned by operations on a socket without an open descriptor
	ErrNotConnected = errors.New("transport: not connected")
	// ErrShutdown is returned once the owning subsystem has been shut down
	ErrShutdown = errors.New("transport: subsystem shut down")
	// ErrUnsupported is returned on platforms without a non-blocking socket implementation
	ErrUnsupported = errors.New("transport: unsupported platform")
)

// Transport is a single non-blocking TCP connection.
//
// Connect must return without waiting for the handshake; a connection still
// in progress counts as success. Host names are resolved synchronously
// inside Connect, so a name lookup may block up to the resolve timeout.
//
// Send has whole-buffer semantics: it returns nil only once every byte of
// data has been written. Until then it returns ErrWouldBlock and the caller
// passes the same buffer again. Receive fails both on real errors and when
// no data is available yet.
type Transport interface {
	Connect(host string, port uint16) error
	Send(data []byte) error
	Receive(buf []byte) (int, error)
	Close() error
}

// Subsystem is the process-wide socket guard. Create it once at startup with
// Init and release it with Shutdown; sockets are handed out by NewSocket.
type Subsystem struct {
	mu             sync.Mutex
	resolver       *net.Resolver
	resolveTimeout time.Duration
	open           map[*Socket]struct{}
	closed         bool
}

type SubsystemOption func(*Subsystem)

// WithResolver sets the resolver used to look up host names
func WithResolver(r *net.Resolver) SubsystemOption {
	return func(s *Subsystem) {
		s.resolver = r
	}
}

// WithResolveTimeout sets how long Connect may spend resolving a host name
func WithResolveTimeout(d time.Duration) SubsystemOption {
	return func(s *Subsystem) {
		s.resolveTimeout = d
	}
}

// Init performs platform socket initialization and returns the guard.
func Init(opts ...SubsystemOption) (*Subsystem, error) {
	s := &Subsystem{
		resolver:       net.DefaultResolver,
		resolveTimeout: DefaultResolveTimeout,
		open:           make(map[*Socket]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := initPlatform(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSocket returns an unconnected socket owned by the subsystem.
func (s *Subsystem) NewSocket() *Socket {
	return &Socket{sys: s, fd: -1}
}

// OpenSockets reports how many descriptors are currently open.
func (s *Subsystem) OpenSockets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// Shutdown closes every socket still open and tears down the platform layer.
// It is safe to call more than once.
func (s *Subsystem) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	leaked := make([]*Socket, 0, len(s.open))
	for sock := range s.open {
		leaked = append(leaked, sock)
	}
	s.mu.Unlock()

	var errs []error
	for _, sock := range leaked {
		if err := sock.Close(); err != nil && !errors.Is(err, ErrNotConnected) {
			errs = append(errs, err)
		}
	}
	if err := shutdownPlatform(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *Subsystem) track(sock *Socket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrShutdown
	}
	s.open[sock] = struct{}{}
	return nil
}

func (s *Subsystem) forget(sock *Socket) {
	s.mu.Lock()
	delete(s.open, sock)
	s.mu.Unlock()
}

func (s *Subsystem) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// lookupIPv4 resolves host to its first IPv4 address. Literal addresses skip the resolver.
func (s *Subsystem) lookupIPv4(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, &net.AddrError{Err: "not an IPv4 address", Addr: host}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.resolveTimeout)
	defer cancel()

	ips, err := s.resolver.LookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, &net.DNSError{Err: "no IPv4 address", Name: host, IsNotFound: true}
}

// Socket is one non-blocking TCP connection. A Socket may be reconnected
// after Close; Connect on an open socket closes the previous descriptor first.
type Socket struct {
	sys *Subsystem
	fd  int

	// unsent is the tail of a buffer Send has only partly written
	unsent []byte
}

var _ Transport = (*Socket)(nil)
