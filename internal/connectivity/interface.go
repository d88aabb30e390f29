package connectivity

import "time"

// State tracks the network association lifecycle.
type State int

const (
	Unprovisioned State = iota
	Provisioning
	Connected
	Reconnecting
)

func (s State) String() string {
	switch s {
	case Unprovisioned:
		return "unprovisioned"
	case Provisioning:
		return "provisioning"
	case Connected:
		return "connected"
	case Reconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Credentials are the stored association secrets. The manager never erases
// them; only the user, through the portal, replaces them.
type Credentials struct {
	ID         string    `json:"id"`
	SSID       string    `json:"ssid"`
	Passphrase string    `json:"passphrase"`
	SavedAt    time.Time `json:"saved_at"`
}

// Station is the managed network interface in client mode. Associate must
// start association and return without waiting for it to complete; the
// manager polls Associated at its probe cadence.
type Station interface {
	Associate(creds Credentials) error
	Associated() bool
}

// AccessPoint is the fallback network identity exposed while provisioning.
type AccessPoint interface {
	Start() error
	Stop() error
	Active() bool
}

// CredentialStore persists credentials between runs. Load returns
// ErrNoCredentials when nothing usable is stored.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(creds Credentials) error
}

// Portal is the manager's view of the provisioning surface: whether it is
// serving, and whether the user just saved new credentials.
type Portal interface {
	Active() bool
	ConsumeSaved() (Credentials, bool)
}
