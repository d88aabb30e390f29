package display

// Mode is the arbitration output: which screen family renders this tick.
type Mode int

const (
	ModeProvisioning Mode = iota
	ModeBooting
	ModeIdle
	ModeActive
)

func (m Mode) String() string {
	switch m {
	case ModeProvisioning:
		return "provisioning"
	case ModeBooting:
		return "booting"
	case ModeIdle:
		return "idle"
	case ModeActive:
		return "active"
	default:
		return "unknown"
	}
}
