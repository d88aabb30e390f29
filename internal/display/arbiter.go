package display

import (
	"time"

	"codeberg.org/mikkl/hwmond/internal/connectivity"
)

// Arbiter selects the active display mode once per tick. There is no
// hard offline dead-end: with nothing live the device idles on clock and
// context, and "offline" is a status detail inside Idle.
type Arbiter struct {
	cooldown time.Duration

	mode       Mode
	booted     bool
	lastActive time.Time
	haveActive bool
}

func NewArbiter(cooldown time.Duration) *Arbiter {
	return &Arbiter{
		cooldown: cooldown,
		mode:     ModeBooting,
	}
}

// Evaluate advances the mode state machine.
//
// live and active come from the most recent ingestion cycle; syncDone
// reports whether the initial post-connect sync attempts have completed
// (regardless of success). Activity from a dead source does not count:
// entering and holding Active both require the signal to be current.
func (a *Arbiter) Evaluate(now time.Time, conn connectivity.State, live, active, syncDone bool) Mode {
	act := live && active
	if act {
		a.lastActive = now
		a.haveActive = true
	}

	if conn == connectivity.Provisioning {
		a.mode = ModeProvisioning

		return a.mode
	}

	if !a.booted {
		// One-shot boot dwell after first leaving provisioning, held
		// until the initial sync attempts settle.
		if syncDone {
			a.booted = true
		} else {
			a.mode = ModeBooting

			return a.mode
		}
	}

	switch {
	case act:
		a.mode = ModeActive
	case a.mode == ModeActive && a.haveActive && now.Sub(a.lastActive) < a.cooldown:
		// Cooldown dwell: the signal just dropped, hold Active to avoid
		// flicker between modes.
	default:
		a.mode = ModeIdle
	}

	return a.mode
}

// Mode returns the current mode without re-evaluating.
func (a *Arbiter) Mode() Mode {
	return a.mode
}
