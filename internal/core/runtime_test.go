package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mikkl/hwmond/internal/connectivity"
	"codeberg.org/mikkl/hwmond/internal/core"
	"codeberg.org/mikkl/hwmond/internal/display"
	"codeberg.org/mikkl/hwmond/internal/environ"
	"codeberg.org/mikkl/hwmond/internal/errors"
	"codeberg.org/mikkl/hwmond/internal/history"
)

var t0 = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

type scriptedSource struct {
	mu      sync.Mutex
	pending []byte
}

func (s *scriptedSource) push(data string) {
	s.mu.Lock()
	s.pending = append(s.pending, data...)
	s.mu.Unlock()
}

func (s *scriptedSource) Drain(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.pending)
	s.pending = s.pending[n:]

	return n, nil
}

func (s *scriptedSource) Close() error { return nil }

type captureRenderer struct {
	frames []display.Frame
}

func (r *captureRenderer) Render(frame display.Frame) error {
	r.frames = append(r.frames, frame)

	return nil
}

func (r *captureRenderer) last() display.Frame {
	return r.frames[len(r.frames)-1]
}

type fakeStation struct{ associated bool }

func (s *fakeStation) Associate(_ connectivity.Credentials) error { return nil }
func (s *fakeStation) Associated() bool                           { return s.associated }

type fakeAP struct{ active bool }

func (a *fakeAP) Start() error { a.active = true; return nil }
func (a *fakeAP) Stop() error  { a.active = false; return nil }
func (a *fakeAP) Active() bool { return a.active }

type fakeStore struct{ creds *connectivity.Credentials }

func (s *fakeStore) Load() (connectivity.Credentials, error) {
	if s.creds == nil {
		return connectivity.Credentials{}, errors.New().New(connectivity.ErrNoCredentials)
	}

	return *s.creds, nil
}

func (s *fakeStore) Save(creds connectivity.Credentials) error {
	s.creds = &creds

	return nil
}

type fakePortal struct{}

func (p *fakePortal) Active() bool { return false }
func (p *fakePortal) ConsumeSaved() (connectivity.Credentials, bool) {
	return connectivity.Credentials{}, false
}

// instantClock answers with the real wall clock so the refresher's
// computed offset stays near zero and virtual tick times format cleanly.
type instantClock struct{}

func (instantClock) Now(_ context.Context) (time.Time, error) { return time.Now(), nil }

type instantLocator struct{}

func (instantLocator) Locate(_ context.Context) (float64, float64, error) { return 60.17, 24.94, nil }

type instantConditions struct{}

func (instantConditions) Conditions(_ context.Context, _, _ float64) (environ.Condition, float64, error) {
	return environ.ConditionClear, 21, nil
}

type countingHistory struct {
	mu      sync.Mutex
	samples []history.Sample
}

func (h *countingHistory) Record(_ context.Context, sample *history.Sample) error {
	h.mu.Lock()
	h.samples = append(h.samples, *sample)
	h.mu.Unlock()

	return nil
}

func (h *countingHistory) Close() error { return nil }

type harness struct {
	runtime  *core.Runtime
	source   *scriptedSource
	renderer *captureRenderer
	station  *fakeStation
	history  *countingHistory
}

func newHarness(creds *connectivity.Credentials) *harness {
	h := &harness{
		source:   &scriptedSource{},
		renderer: &captureRenderer{},
		station:  &fakeStation{},
		history:  &countingHistory{},
	}
	h.runtime = core.New(core.Options{
		Source:           h.source,
		Renderer:         h.renderer,
		Station:          h.station,
		AccessPoint:      &fakeAP{},
		Credentials:      &fakeStore{creds: creds},
		Portal:           &fakePortal{},
		Clock:            instantClock{},
		Locator:          instantLocator{},
		Conditions:       instantConditions{},
		History:          h.history,
		TickInterval:     50 * time.Millisecond,
		TelemetryTimeout: 5 * time.Second,
		Cooldown:         3 * time.Second,
		ClockRefresh:     time.Minute,
		EnvironRefresh:   15 * time.Minute,
		FetchTimeout:     time.Second,
		AssociateTimeout: 10 * time.Second,
	})

	return h
}

// tickUntil ticks at 50 ms virtual steps until cond holds or the span
// elapses, also waiting out real goroutine handoffs between ticks.
func (h *harness) tickUntil(now time.Time, span time.Duration, cond func() bool) time.Time {
	for elapsed := time.Duration(0); elapsed <= span; elapsed += 50 * time.Millisecond {
		h.runtime.Tick(now)
		if cond() {
			return now
		}
		now = now.Add(50 * time.Millisecond)
		time.Sleep(time.Millisecond)
	}

	return now
}

func homeCreds() *connectivity.Credentials {
	return &connectivity.Credentials{SSID: "home", Passphrase: "hunter2"}
}

func TestBootToIdle(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := h.tickUntil(t0, 2*time.Second, func() bool {
		return h.runtime.Mode() == display.ModeIdle
	})

	require.Equal(t, display.ModeIdle, h.runtime.Mode())
	require.Equal(t, connectivity.Connected, h.runtime.Connectivity())

	// Idle renders the local clock once the refresher has run.
	h.runtime.Tick(now.Add(50 * time.Millisecond))
	frame := h.renderer.last()
	assert.Equal(t, "12:00", frame.TimeText)
	assert.False(t, frame.Live)
}

func TestTelemetryDrivesActiveMode(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := h.tickUntil(t0, 2*time.Second, func() bool {
		return h.runtime.Mode() == display.ModeIdle
	})

	h.source.push(`{"cpu":40,"fps":120,"time":"14:32","date":"24 Aug"}` + "\n")
	h.runtime.Tick(now)

	frame := h.renderer.last()
	assert.Equal(t, display.ModeActive, frame.Mode)
	assert.True(t, frame.Live)
	assert.Equal(t, 40, frame.Telemetry.CPU)
	assert.Equal(t, "14:32", frame.TimeText, "host time label takes precedence")
	assert.Equal(t, "24 Aug", frame.DateText)
}

func TestSilentSourceFallsBackToIdleClock(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := h.tickUntil(t0, 2*time.Second, func() bool {
		return h.runtime.Mode() == display.ModeIdle
	})

	h.source.push(`{"fps":60,"time":"14:32"}` + "\n")
	h.runtime.Tick(now)
	require.Equal(t, display.ModeActive, h.runtime.Mode())

	// Source goes silent. Liveness lapses at 5 s; Active holds only
	// through its own cooldown, then Idle with the local clock.
	now = now.Add(6 * time.Second)
	h.runtime.Tick(now)
	frame := h.renderer.last()
	assert.Equal(t, display.ModeIdle, frame.Mode)
	assert.False(t, frame.Live)
	assert.NotEqual(t, "14:32", frame.TimeText, "stale host time no longer shown")
}

func TestActiveCooldownAcrossTicks(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := h.tickUntil(t0, 2*time.Second, func() bool {
		return h.runtime.Mode() == display.ModeIdle
	})

	h.source.push(`{"fps":60}` + "\n")
	h.runtime.Tick(now)
	require.Equal(t, display.ModeActive, h.runtime.Mode())

	// fps drops to zero but the stream stays live.
	h.source.push(`{"fps":0}` + "\n")
	h.runtime.Tick(now.Add(time.Second))
	assert.Equal(t, display.ModeActive, h.runtime.Mode())

	h.source.push(`{"fps":0}` + "\n")
	h.runtime.Tick(now.Add(2 * time.Second))
	assert.Equal(t, display.ModeActive, h.runtime.Mode(), "within cooldown")

	h.source.push(`{"fps":0}` + "\n")
	h.runtime.Tick(now.Add(4 * time.Second))
	assert.Equal(t, display.ModeIdle, h.runtime.Mode(), "cooldown elapsed")
}

func TestNoCredentialsShowsProvisioning(t *testing.T) {
	h := newHarness(nil)

	h.runtime.Start(t0)
	h.runtime.Tick(t0)

	assert.Equal(t, connectivity.Provisioning, h.runtime.Connectivity())
	assert.Equal(t, display.ModeProvisioning, h.renderer.last().Mode)
}

func TestRenderCalledOncePerTick(t *testing.T) {
	h := newHarness(homeCreds())

	h.runtime.Start(t0)
	for i := 0; i < 10; i++ {
		h.runtime.Tick(t0.Add(time.Duration(i) * 50 * time.Millisecond))
	}

	assert.Len(t, h.renderer.frames, 10)
}

func TestHistorySampledOncePerSecond(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := t0
	for i := 0; i < 60; i++ {
		h.runtime.Tick(now)
		now = now.Add(50 * time.Millisecond)
	}

	h.history.mu.Lock()
	count := len(h.history.samples)
	h.history.mu.Unlock()
	assert.Equal(t, 3, count, "3 seconds of ticking yields 3 samples")
}

func TestEnvironmentReachesFrame(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	h.tickUntil(t0, 2*time.Second, func() bool {
		return len(h.renderer.frames) > 0 && h.renderer.last().Environment.Valid
	})

	frame := h.renderer.last()
	require.True(t, frame.Environment.Valid)
	assert.Equal(t, environ.ConditionClear, frame.Environment.Condition)
	assert.InDelta(t, 21.0, frame.Environment.AmbientC, 0.001)
}

func TestPageEventCyclesPages(t *testing.T) {
	h := newHarness(homeCreds())
	h.station.associated = true

	h.runtime.Start(t0)
	now := h.tickUntil(t0, 2*time.Second, func() bool {
		return h.runtime.Mode() == display.ModeIdle
	})

	h.source.push(`{"fps":60}` + "\n")
	h.runtime.Tick(now)
	require.Equal(t, 0, h.renderer.last().Page)

	h.runtime.PageEvent()
	h.runtime.Tick(now.Add(time.Second))
	assert.Equal(t, 1, h.renderer.last().Page)
}
