package connectivity

import (
	"net"

	"codeberg.org/mikkl/hwmond/internal/logger"
)

// SystemStation reports association by inspecting the host's network
// interfaces: an up, non-loopback interface holding a routable address
// counts as associated. Association itself is owned by the OS network
// manager, so Associate only records intent.
type SystemStation struct{}

func NewSystemStation() *SystemStation {
	return &SystemStation{}
}

func (s *SystemStation) Associate(creds Credentials) error {
	logger.Info().Str("ssid", creds.SSID).Msg("deferring association to system network manager")

	return nil
}

func (s *SystemStation) Associated() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		logger.Debug().Err(err).Msg("interface enumeration failed")

		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLinkLocalUnicast() {
				continue
			}
			if ipNet.IP.To4() != nil || ipNet.IP.To16() != nil {
				return true
			}
		}
	}

	return false
}

// NopAccessPoint satisfies the fallback access-point role on hosts where
// the captive portal is reachable over the existing network and no
// dedicated radio exists to raise.
type NopAccessPoint struct {
	active bool
}

func NewNopAccessPoint() *NopAccessPoint {
	return &NopAccessPoint{}
}

func (a *NopAccessPoint) Start() error {
	a.active = true
	logger.Info().Msg("provisioning fallback requested, portal stays on the primary interface")

	return nil
}

func (a *NopAccessPoint) Stop() error {
	a.active = false

	return nil
}

func (a *NopAccessPoint) Active() bool {
	return a.active
}
