// Package transport feeds the raw telemetry byte stream to the runtime.
// The physical link is an external concern; anything that produces bytes
// can implement Source. Drain never blocks: the tick loop takes whatever
// has arrived and moves on.
package transport

import "io"

// Source is a non-blocking byte stream.
type Source interface {
	// Drain copies available bytes into p, returning 0 when nothing is
	// pending. It never waits for data.
	Drain(p []byte) (int, error)
	io.Closer
}

// pendingBuffer is the shared accumulation buffer between a reader
// goroutine and the tick thread. Bounded; when the runtime falls behind,
// the oldest bytes are dropped, which at worst costs one telemetry line.
const pendingLimit = 64 * 1024
