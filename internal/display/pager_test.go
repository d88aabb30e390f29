package display_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"codeberg.org/mikkl/hwmond/internal/display"
)

func TestPagerAdvancesOnRequest(t *testing.T) {
	var p display.Pager

	assert.Equal(t, 0, p.Drain(t0))

	p.Request()
	assert.Equal(t, 1, p.Drain(t0.Add(time.Second)))
	assert.Equal(t, 1, p.Drain(t0.Add(2*time.Second)), "no event, no advance")
}

func TestPagerWrapsAround(t *testing.T) {
	var p display.Pager

	now := t0
	for i := 1; i <= display.NumPages; i++ {
		now = now.Add(time.Second)
		p.Request()
		p.Drain(now)
	}
	assert.Equal(t, 0, p.Page())
}

func TestPagerDebounce(t *testing.T) {
	var p display.Pager

	p.Request()
	assert.Equal(t, 1, p.Drain(t0))

	// A bounce 100 ms later is swallowed.
	p.Request()
	assert.Equal(t, 1, p.Drain(t0.Add(100*time.Millisecond)))

	p.Request()
	assert.Equal(t, 2, p.Drain(t0.Add(400*time.Millisecond)))
}

func TestPagerCollapsesBurst(t *testing.T) {
	var p display.Pager

	// Many edges before the next tick collapse into one event.
	for i := 0; i < 5; i++ {
		p.Request()
	}
	assert.Equal(t, 1, p.Drain(t0))
}
