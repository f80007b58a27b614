package routeradmin

import (
	"log/slog"
	"strings"

	"github.com/Wayne-King/RouterControl/lib/macaddr"
)

// CleanMac validates a device's MAC for use in an outbound request.
// Rejections (wrong length, bad hex, reserved, multicast) are logged
// with the offending value and reported as absent, never as a failure.
func CleanMac(device Device) (macaddr.Address, bool) {
	mac, err := macaddr.Parse(device.MacAddress)
	if err != nil {
		slog.Warn("rejecting device mac", "mac", device.MacAddress, "err", err)
		return macaddr.Address{}, false
	}
	if err := mac.CheckAssignable(); err != nil {
		slog.Warn("rejecting device mac", "mac", device.MacAddress, "err", err)
		return macaddr.Address{}, false
	}
	return mac, true
}

// CleanName picks the name to submit to the router: the operator's
// assignment when present, otherwise the router-detected name. The
// result must be non-blank printable ASCII since the admin form
// mangles anything else.
func CleanName(device Device) (string, bool) {
	name := strings.TrimSpace(device.Name)
	if name == "" || name == UnknownName {
		name = strings.TrimSpace(device.DetectedName)
	}
	if name == "" {
		slog.Warn("rejecting empty device name", "mac", device.MacAddress)
		return "", false
	}
	for _, c := range name {
		if c < 0x20 || c > 0x7E {
			slog.Warn("rejecting non-printable device name", "name", name)
			return "", false
		}
	}
	return name, true
}
