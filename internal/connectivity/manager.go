package connectivity

import (
	"time"

	"codeberg.org/mikkl/hwmond/internal/errors"
	"codeberg.org/mikkl/hwmond/internal/logger"
)

// probeInterval paces association status checks and reconnect attempts so
// a tick never spends more than one probe on connectivity housekeeping.
const probeInterval = 2 * time.Second

// Manager runs the association state machine. Provisioning is a one-time,
// explicit, user-visible flow; ordinary connectivity flaps self-heal
// silently through Reconnecting and never fall back to the access point.
type Manager struct {
	station Station
	ap      AccessPoint
	store   CredentialStore
	portal  Portal

	state     State
	creds     Credentials
	haveCreds bool

	associateTimeout time.Duration
	startedAt        time.Time
	lastProbe        time.Time

	justConnected bool
}

func NewManager(station Station, ap AccessPoint, store CredentialStore, portal Portal, associateTimeout time.Duration) *Manager {
	return &Manager{
		station:          station,
		ap:               ap,
		store:            store,
		portal:           portal,
		associateTimeout: associateTimeout,
		state:            Unprovisioned,
	}
}

// Start loads stored credentials and begins the initial association
// attempt, or enters provisioning immediately when nothing is stored.
func (m *Manager) Start(now time.Time) {
	m.startedAt = now

	creds, err := m.store.Load()
	if err != nil {
		if errors.CodeOf(err) != ErrNoCredentials {
			logger.Warn().Err(err).Msg("credential store unreadable")
		}
		m.enterProvisioning()

		return
	}

	m.creds = creds
	m.haveCreds = true
	if err := m.station.Associate(m.creds); err != nil {
		logger.Warn().Err(err).Msg("initial association failed to start")
		m.enterProvisioning()
	}
}

// Tick advances the state machine. It is called once per runtime tick and
// performs at most one status probe per probe interval.
func (m *Manager) Tick(now time.Time) {
	// Credentials saved through the portal apply on any tick; the user
	// should not wait for the probe cadence after submitting.
	if creds, ok := m.portal.ConsumeSaved(); ok {
		m.adoptCredentials(creds)
	}

	if now.Sub(m.lastProbe) < probeInterval && !m.lastProbe.IsZero() {
		return
	}
	m.lastProbe = now

	switch m.state {
	case Unprovisioned:
		if m.station.Associated() {
			m.enterConnected()
		} else if now.Sub(m.startedAt) >= m.associateTimeout {
			logger.Info().Dur("waited", now.Sub(m.startedAt)).Msg("initial association timed out")
			m.enterProvisioning()
		}
	case Provisioning:
		if m.haveCreds && m.station.Associated() {
			if err := m.ap.Stop(); err != nil {
				logger.Warn().Err(err).Msg("failed to stop access point")
			}
			m.enterConnected()
		}
	case Connected:
		if !m.station.Associated() {
			logger.Info().Msg("association lost, reconnecting")
			m.state = Reconnecting
			m.reassociate()
		}
	case Reconnecting:
		if m.station.Associated() {
			m.enterConnected()
		} else {
			m.reassociate()
		}
	}
}

func (m *Manager) enterProvisioning() {
	if m.state == Provisioning {
		return
	}
	m.state = Provisioning
	if err := m.ap.Start(); err != nil {
		logger.Error().Err(err).Msg("failed to start fallback access point")
	}
	logger.Info().Msg("provisioning mode active")
}

func (m *Manager) enterConnected() {
	m.state = Connected
	m.justConnected = true
	logger.Info().Str("ssid", m.creds.SSID).Msg("associated")
}

// adoptCredentials persists and applies credentials saved via the portal.
func (m *Manager) adoptCredentials(creds Credentials) {
	if err := m.store.Save(creds); err != nil {
		logger.Error().Err(err).Msg("failed to persist credentials")
	}
	m.creds = creds
	m.haveCreds = true
	if err := m.station.Associate(m.creds); err != nil {
		logger.Warn().Err(err).Msg("association with new credentials failed to start")
	}
}

// reassociate retries the stored credentials. Retried indefinitely; there
// is no failure state and the access point is never raised here.
func (m *Manager) reassociate() {
	if !m.haveCreds {
		return
	}
	if err := m.station.Associate(m.creds); err != nil {
		logger.Debug().Err(err).Msg("reconnect attempt failed to start")
	}
}

// State returns the current connectivity state.
func (m *Manager) State() State {
	return m.state
}

// ConsumeConnected reports a transition into Connected since the last
// call. The refresher uses it to trigger its one-shot initial syncs.
func (m *Manager) ConsumeConnected() bool {
	v := m.justConnected
	m.justConnected = false

	return v
}
