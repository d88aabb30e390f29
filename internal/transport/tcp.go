package transport

import (
	"net"
	"sync"

	"codeberg.org/mikkl/hwmond/internal/logger"
)

// TCPSource accepts the host producer's stream on a listening socket.
// One peer at a time; a new connection replaces the old one, mirroring a
// serial link where plugging in a new host takes over the wire.
type TCPSource struct {
	listener net.Listener

	mu      sync.Mutex
	pending []byte
	conn    net.Conn
	closed  bool
}

func NewTCPSource(addr string) (*TCPSource, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &TCPSource{listener: listener}
	go s.acceptLoop()

	logger.Info().Str("addr", listener.Addr().String()).Msg("telemetry feed listening")

	return s, nil
}

// Addr returns the bound listen address.
func (s *TCPSource) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *TCPSource) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			logger.Debug().Err(err).Msg("accept failed")

			continue
		}

		s.mu.Lock()
		if s.conn != nil {
			s.conn.Close()
		}
		s.conn = conn
		s.mu.Unlock()

		logger.Info().Str("peer", conn.RemoteAddr().String()).Msg("host connected")
		go s.readLoop(conn)
	}
}

func (s *TCPSource) readLoop(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			s.push(buf[:n])
		}
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
			}
			s.mu.Unlock()
			conn.Close()
			logger.Info().Msg("host disconnected")

			return
		}
	}
}

func (s *TCPSource) push(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, p...)
	if overflow := len(s.pending) - pendingLimit; overflow > 0 {
		s.pending = s.pending[overflow:]
	}
}

func (s *TCPSource) Drain(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func (s *TCPSource) Close() error {
	s.mu.Lock()
	s.closed = true
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	return s.listener.Close()
}
