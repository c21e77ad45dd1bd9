//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transport

func initPlatform() error {
	return nil
}

func shutdownPlatform() error {
	return nil
}

func (s *Socket) Connect(host string, port uint16) error {
	return ErrUnsupported
}

func (s *Socket) Send(data []byte) error {
	return ErrNotConnected
}

func (s *Socket) Receive(buf []byte) (int, error) {
	return 0, ErrNotConnected
}

func (s *Socket) Close() error {
	return ErrNotConnected
}
