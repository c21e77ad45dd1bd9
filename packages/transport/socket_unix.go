//go:build linux || darwin || freebsd || netbsd || openbsd

package transport

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

func initPlatform() error {
	return nil
}

func shutdownPlatform() error {
	return nil
}

// Connect opens a non-blocking descriptor and starts the handshake with host:port.
func (s *Socket) Connect(host string, port uint16) error {
	if s.sys.isClosed() {
		return ErrShutdown
	}
	if s.fd >= 0 {
		_ = s.Close()
	}

	ip, err := s.sys.lookupIPv4(host)
	if err != nil {
		return fmt.Errorf("transport: resolve %s: %w", host, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return fmt.Errorf("transport: socket: %w", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return fmt.Errorf("transport: set non-blocking: %w", err)
	}

	addr := &unix.SockaddrInet4{Port: int(port)}
	copy(addr.Addr[:], ip)

	if err := unix.Connect(fd, addr); err != nil && !errors.Is(err, unix.EINPROGRESS) {
		_ = unix.Close(fd)
		return fmt.Errorf("transport: connect %s:%d: %w", host, port, err)
	}

	if err := s.sys.track(s); err != nil {
		_ = unix.Close(fd)
		return err
	}
	s.fd = fd
	return nil
}

// Send writes data once the descriptor is writable. A partial write keeps
// the remainder on the socket and reports ErrWouldBlock; later calls drain
// the remainder and return nil once the last byte is written. data is only
// read on the first call for a buffer.
func (s *Socket) Send(data []byte) error {
	if s.fd < 0 {
		return ErrNotConnected
	}

	ready, err := s.poll(unix.POLLOUT)
	if err != nil {
		return err
	}
	if !ready {
		return ErrWouldBlock
	}

	if s.unsent == nil {
		s.unsent = append(make([]byte, 0, len(data)), data...)
	}

	for len(s.unsent) > 0 {
		n, err := unix.Write(s.fd, s.unsent)
		if n > 0 {
			s.unsent = s.unsent[n:]
		}
		if err != nil {
			if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
				return ErrWouldBlock
			}
			s.unsent = nil
			return fmt.Errorf("transport: send: %w", err)
		}
		if n == 0 {
			return ErrWouldBlock
		}
	}
	s.unsent = nil
	return nil
}

// Receive reads whatever is available into buf. io.EOF reports an orderly
// shutdown by the peer.
func (s *Socket) Receive(buf []byte) (int, error) {
	if s.fd < 0 {
		return 0, ErrNotConnected
	}

	ready, err := s.poll(unix.POLLIN)
	if err != nil {
		return 0, err
	}
	if !ready {
		return 0, ErrWouldBlock
	}

	n, err := unix.Read(s.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			return 0, ErrWouldBlock
		}
		return 0, fmt.Errorf("transport: receive: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Close releases the descriptor.
func (s *Socket) Close() error {
	if s.fd < 0 {
		return ErrNotConnected
	}
	fd := s.fd
	s.fd = -1
	s.unsent = nil
	s.sys.forget(s)

	if err := unix.Close(fd); err != nil {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}

// poll checks readiness without waiting.
func (s *Socket) poll(events int16) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: events}}
	n, err := unix.Poll(fds, 0)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, fmt.Errorf("transport: poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	revents := fds[0].Revents
	if revents&(unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, s.socketError()
	}
	return revents&(events|unix.POLLHUP) != 0, nil
}

func (s *Socket) socketError() error {
	code, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("transport: socket error: %w", err)
	}
	if code == 0 {
		return errors.New("transport: socket error")
	}
	return fmt.Errorf("transport: socket error: %w", unix.Errno(code))
}
