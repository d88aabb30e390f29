package transport

import (
	"io"
	"sync"
)

// ReaderSource adapts any blocking io.Reader (stdin, a pty, a serial
// device file) into a non-blocking Source via a pump goroutine.
type ReaderSource struct {
	mu      sync.Mutex
	pending []byte
	err     error

	closer io.Closer
}

func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := r.Read(buf)
			s.mu.Lock()
			if n > 0 {
				s.pending = append(s.pending, buf[:n]...)
				if overflow := len(s.pending) - pendingLimit; overflow > 0 {
					s.pending = s.pending[overflow:]
				}
			}
			if err != nil {
				s.err = err
				s.mu.Unlock()

				return
			}
			s.mu.Unlock()
		}
	}()

	return s
}

func (s *ReaderSource) Drain(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	// A closed reader is not an error for the runtime: the stream simply
	// goes silent and liveness lapses.
	return n, nil
}

func (s *ReaderSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}

	return nil
}
