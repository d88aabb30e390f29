package environ

import (
	"context"
	"sync"
	"time"

	"codeberg.org/mikkl/hwmond/internal/logger"
)

// Refresher keeps wall-clock time and the environment snapshot fresh in
// the background. All network calls run in single-flight goroutines with
// a bounded timeout; the tick thread only kicks them off at their cadence
// and reads back completed results. A call that is still in flight is
// never retried, so worst-case tick latency stays bounded.
type Refresher struct {
	clock      ClockSource
	locator    Locator
	conditions ConditionSource

	fetchTimeout   time.Duration
	clockRefresh   time.Duration
	environRefresh time.Duration

	mu            sync.Mutex
	snapshot      Snapshot
	clockOffset   time.Duration
	clockSynced   bool
	clockInFlight bool
	envInFlight   bool
	clockAttempts uint64
	envAttempts   uint64

	initialKicked bool

	lastEnvKick   time.Time
	lastClockText time.Time
	clockText     string
	dateText      string
}

func NewRefresher(clock ClockSource, locator Locator, conditions ConditionSource,
	fetchTimeout, clockRefresh, environRefresh time.Duration,
) *Refresher {
	return &Refresher{
		clock:          clock,
		locator:        locator,
		conditions:     conditions,
		fetchTimeout:   fetchTimeout,
		clockRefresh:   clockRefresh,
		environRefresh: environRefresh,
		clockText:      "--:--",
	}
}

// OnConnected kicks the one-shot initial syncs. Called on every
// transition into Connected; the clock is re-synced on reconnect since
// drift accumulates while offline.
func (r *Refresher) OnConnected(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.initialKicked = true
	r.kickClockSyncLocked()
	r.kickEnvRefreshLocked(now)
}

// Tick performs scheduled housekeeping. hostSuppliesTime suppresses the
// local clock-text refresh while the telemetry source is reporting its
// own time labels, which take precedence.
func (r *Refresher) Tick(now time.Time, connected, hostSuppliesTime bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !hostSuppliesTime && (r.lastClockText.IsZero() || now.Sub(r.lastClockText) >= r.clockRefresh) {
		r.lastClockText = now
		local := now.Add(r.clockOffset)
		r.clockText = local.Format("15:04")
		r.dateText = local.Format("02 Jan")
	}

	if connected && r.initialKicked && now.Sub(r.lastEnvKick) >= r.environRefresh {
		r.kickEnvRefreshLocked(now)
	}
}

// InitialSyncDone reports whether the first post-connect sync attempts
// have completed, successfully or not. The mode arbiter holds Booting
// until this is true.
func (r *Refresher) InitialSyncDone() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.initialKicked && !r.clockInFlight && !r.envInFlight
}

// Snapshot returns the current environment snapshot.
func (r *Refresher) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot
}

// ClockText returns the displayed time and date labels.
func (r *Refresher) ClockText() (timeText, dateText string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.clockText, r.dateText
}

// ClockSynced reports whether at least one clock sync succeeded.
func (r *Refresher) ClockSynced() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.clockSynced
}

func (r *Refresher) kickClockSyncLocked() {
	if r.clockInFlight {
		return
	}
	r.clockInFlight = true
	r.clockAttempts++

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
		defer cancel()

		synced, err := r.clock.Now(ctx)
		received := time.Now()

		r.mu.Lock()
		defer r.mu.Unlock()
		r.clockInFlight = false
		if err != nil {
			logger.Debug().Err(err).Msg("clock sync failed")

			return
		}
		r.clockOffset = synced.Sub(received)
		r.clockSynced = true
		// Force a text refresh on the next tick.
		r.lastClockText = time.Time{}
		logger.Info().Dur("offset", r.clockOffset).Msg("clock synchronized")
	}()
}

func (r *Refresher) kickEnvRefreshLocked(now time.Time) {
	if r.envInFlight {
		return
	}
	r.envInFlight = true
	r.envAttempts++
	r.lastEnvKick = now

	prior := r.snapshot

	go func() {
		snapshot, ok := r.fetchEnvironment(prior)

		r.mu.Lock()
		defer r.mu.Unlock()
		r.envInFlight = false
		if ok {
			r.snapshot = snapshot
		}
		// On failure the prior snapshot stands: stale-but-valid.
	}()
}

// fetchEnvironment resolves coordinates then conditions, each under its
// own timeout. Coordinates from the prior snapshot are reused when the
// locator fails, so a flaky geo service does not block condition updates.
func (r *Refresher) fetchEnvironment(prior Snapshot) (Snapshot, bool) {
	next := prior

	ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	lat, lon, err := r.locator.Locate(ctx)
	cancel()
	if err != nil {
		if !prior.HasCoords {
			logger.Debug().Err(err).Msg("location resolve failed")

			return prior, false
		}
		lat, lon = prior.Latitude, prior.Longitude
	} else {
		next.Latitude, next.Longitude = lat, lon
		next.HasCoords = true
	}

	ctx, cancel = context.WithTimeout(context.Background(), r.fetchTimeout)
	condition, ambient, err := r.conditions.Conditions(ctx, lat, lon)
	cancel()
	if err != nil {
		logger.Debug().Err(err).Msg("condition fetch failed")

		return prior, false
	}

	next.Condition = condition
	next.AmbientC = ambient
	next.Valid = true
	next.RefreshedAt = time.Now()

	return next, true
}
