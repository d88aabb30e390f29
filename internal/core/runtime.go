// Package core owns the runtime state machine: one struct holds the
// telemetry record, liveness, connectivity, environment and display
// state, and a fixed-rate tick mutates it in a strict order. No other
// goroutine touches this state; collaborators hand results over through
// their own guarded slots.
package core

import (
	"context"
	"time"

	"codeberg.org/mikkl/hwmond/internal/connectivity"
	"codeberg.org/mikkl/hwmond/internal/display"
	"codeberg.org/mikkl/hwmond/internal/environ"
	"codeberg.org/mikkl/hwmond/internal/errors"
	"codeberg.org/mikkl/hwmond/internal/history"
	"codeberg.org/mikkl/hwmond/internal/logger"
	"codeberg.org/mikkl/hwmond/internal/telemetry"
	"codeberg.org/mikkl/hwmond/internal/transport"
)

// sampleInterval paces history writes; the display ticks at 20 Hz but a
// row per second is plenty for observability.
const sampleInterval = time.Second

// Options wires the runtime's collaborators and tuning.
type Options struct {
	Source   transport.Source
	Renderer display.Renderer

	Station     connectivity.Station
	AccessPoint connectivity.AccessPoint
	Credentials connectivity.CredentialStore
	Portal      connectivity.Portal

	Clock      environ.ClockSource
	Locator    environ.Locator
	Conditions environ.ConditionSource

	History history.Repository // optional

	TickInterval     time.Duration
	TelemetryTimeout time.Duration
	Cooldown         time.Duration
	ClockRefresh     time.Duration
	EnvironRefresh   time.Duration
	FetchTimeout     time.Duration
	AssociateTimeout time.Duration
}

type Runtime struct {
	record    *telemetry.Record
	decoder   *telemetry.Decoder
	liveness  *telemetry.Liveness
	conn      *connectivity.Manager
	refresher *environ.Refresher
	arbiter   *display.Arbiter
	pager     *display.Pager

	source   transport.Source
	renderer display.Renderer
	history  history.Repository

	tickInterval time.Duration
	readBuf      []byte
	lastSample   time.Time
}

func New(opts Options) *Runtime {
	record := telemetry.NewRecord()

	return &Runtime{
		record:   record,
		decoder:  telemetry.NewDecoder(record),
		liveness: telemetry.NewLiveness(opts.TelemetryTimeout),
		conn: connectivity.NewManager(
			opts.Station, opts.AccessPoint, opts.Credentials, opts.Portal,
			opts.AssociateTimeout,
		),
		refresher: environ.NewRefresher(
			opts.Clock, opts.Locator, opts.Conditions,
			opts.FetchTimeout, opts.ClockRefresh, opts.EnvironRefresh,
		),
		arbiter:      display.NewArbiter(opts.Cooldown),
		pager:        &display.Pager{},
		source:       opts.Source,
		renderer:     opts.Renderer,
		history:      opts.History,
		tickInterval: opts.TickInterval,
		readBuf:      make([]byte, 4096),
	}
}

// Start begins the connectivity lifecycle. Call once before ticking.
func (r *Runtime) Start(now time.Time) {
	r.conn.Start(now)
}

// PageEvent requests a telemetry page advance. Safe from any goroutine;
// drained once per tick with debounce.
func (r *Runtime) PageEvent() {
	r.pager.Request()
}

// Tick runs one full cycle: ingestion, liveness, connectivity
// housekeeping, scheduled refreshes, mode arbitration, render dispatch.
func (r *Runtime) Tick(now time.Time) {
	// 1. Drain whatever the transport has; never wait for more.
	for {
		n, err := r.source.Drain(r.readBuf)
		if err != nil {
			logger.Debug().Err(err).Msg("source drain failed")

			break
		}
		if n == 0 {
			break
		}
		if decoded := r.decoder.Feed(now, r.readBuf[:n]); decoded > 0 {
			r.liveness.Observe(now)
		}
		if n < len(r.readBuf) {
			break
		}
	}

	// 2. Liveness re-evaluation.
	live := r.liveness.Live(now)

	// 3. Connectivity housekeeping.
	r.conn.Tick(now)
	if r.conn.ConsumeConnected() {
		r.refresher.OnConnected(now)
	}
	connState := r.conn.State()

	// 4. Scheduled refreshes. Host-reported time takes precedence over
	// the local clock while the source is live.
	hostTime := live && r.hostSuppliesTime()
	r.refresher.Tick(now, connState == connectivity.Connected, hostTime)

	// 5. Mode arbitration.
	page := r.pager.Drain(now)
	mode := r.arbiter.Evaluate(now, connState, live, r.record.Active(), r.refresher.InitialSyncDone())

	if r.history != nil && now.Sub(r.lastSample) >= sampleInterval {
		r.lastSample = now
		r.recordSample(now, live, mode)
	}

	// 6. Render dispatch, exactly once per tick.
	frame := r.buildFrame(mode, page, connState, live, hostTime)
	if err := r.renderer.Render(frame); err != nil {
		logger.Debug().Err(err).Msg("render failed")
	}
}

// Run drives the tick loop at the configured rate until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	if r.tickInterval <= 0 {
		return errors.New().WithData(errors.ErrInvalidInterval, r.tickInterval)
	}

	r.Start(time.Now())

	ticker := time.NewTicker(r.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Tick(time.Now())
		}
	}
}

// Connectivity returns the current connectivity state.
func (r *Runtime) Connectivity() connectivity.State {
	return r.conn.State()
}

// Mode returns the currently arbitrated display mode.
func (r *Runtime) Mode() display.Mode {
	return r.arbiter.Mode()
}

func (r *Runtime) hostSuppliesTime() bool {
	return r.record.TimeLabel != "" && r.record.TimeLabel != "--:--"
}

func (r *Runtime) buildFrame(mode display.Mode, page int, connState connectivity.State, live, hostTime bool) display.Frame {
	timeText, dateText := r.refresher.ClockText()
	if hostTime {
		timeText = r.record.TimeLabel
		if r.record.DateLabel != "" {
			dateText = r.record.DateLabel
		}
	}

	return display.Frame{
		Mode:         mode,
		Page:         page,
		Telemetry:    *r.record,
		Connectivity: connState,
		Environment:  r.refresher.Snapshot(),
		TimeText:     timeText,
		DateText:     dateText,
		Live:         live,
		HotAlert:     live && r.record.Hot(),
	}
}

func (r *Runtime) recordSample(now time.Time, live bool, mode display.Mode) {
	ctx, cancel := context.WithTimeout(context.Background(), r.tickInterval)
	defer cancel()

	sample := &history.Sample{
		Timestamp: now,
		Telemetry: *r.record,
		Live:      live,
		Mode:      mode.String(),
		Discarded: r.decoder.Discarded(),
	}
	if err := r.history.Record(ctx, sample); err != nil {
		logger.Debug().Err(err).Msg("history write failed")
	}
}
