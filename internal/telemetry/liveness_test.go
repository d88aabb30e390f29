package telemetry_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

func TestLivenessNeverLiveBeforeFirstDecode(t *testing.T) {
	l := telemetry.NewLiveness(5 * time.Second)
	assert.False(t, l.Live(t0))
	assert.False(t, l.Live(t0.Add(time.Hour)))
}

func TestLivenessWindow(t *testing.T) {
	l := telemetry.NewLiveness(5 * time.Second)
	l.Observe(t0)

	assert.True(t, l.Live(t0))
	assert.True(t, l.Live(t0.Add(4999*time.Millisecond)))
	assert.False(t, l.Live(t0.Add(5*time.Second)), "live iff elapsed < timeout")
	assert.False(t, l.Live(t0.Add(time.Minute)))
}

func TestLivenessMonotonicInElapsedTime(t *testing.T) {
	l := telemetry.NewLiveness(3 * time.Second)
	l.Observe(t0)

	wasLive := true
	for elapsed := time.Duration(0); elapsed <= 6*time.Second; elapsed += 250 * time.Millisecond {
		live := l.Live(t0.Add(elapsed))
		if !wasLive {
			assert.False(t, live, "liveness must not flip back without a decode at %v", elapsed)
		}
		wasLive = live
	}
}

func TestLivenessRevivesOnDecode(t *testing.T) {
	l := telemetry.NewLiveness(5 * time.Second)
	l.Observe(t0)

	stale := t0.Add(10 * time.Second)
	assert.False(t, l.Live(stale))

	l.Observe(stale)
	assert.True(t, l.Live(stale))
}
