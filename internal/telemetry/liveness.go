package telemetry

import "time"

// Liveness decides whether the telemetry source is currently producing
// data within the freshness window. Only a successful decode can make it
// live; only elapsed time can make it stale. Hysteresis belongs to the
// mode arbiter, not here.
type Liveness struct {
	timeout time.Duration
	last    time.Time
}

func NewLiveness(timeout time.Duration) *Liveness {
	return &Liveness{timeout: timeout}
}

// Observe records the receipt time of a successful decode.
func (l *Liveness) Observe(t time.Time) {
	l.last = t
}

// Live reports whether the last decode is within the timeout window.
func (l *Liveness) Live(now time.Time) bool {
	if l.last.IsZero() {
		return false
	}

	return now.Sub(l.last) < l.timeout
}

// LastObserved returns the time of the last successful decode.
func (l *Liveness) LastObserved() time.Time {
	return l.last
}
