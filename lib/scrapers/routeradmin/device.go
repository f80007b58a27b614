package routeradmin

import (
	"github.com/Wayne-King/RouterControl/lib/knowndevices"
	"github.com/Wayne-King/RouterControl/lib/macaddr"
)

// ConnectionState says which of the router's rule tables a device was
// parsed from: the live "connected now" table (Online), a static
// allow/block list (Offline), or neither because the device was built
// outside a rule-row context (Undetected).
type ConnectionState string

const (
	ConnectionUndetected ConnectionState = "Undetected"
	ConnectionOnline     ConnectionState = "Online"
	ConnectionOffline    ConnectionState = "Offline"
)

// AccessControl mirrors the router's own rule vocabulary.
type AccessControl string

const (
	AccessUnknown AccessControl = "Unknown"
	AccessBlocked AccessControl = "Blocked"
	AccessAllowed AccessControl = "Allowed"
)

// UnknownName is the sentinel for a device the operator has not named.
const UnknownName = "??"

// Device is one router-managed endpoint, rebuilt from scratch on every
// page parse. There is no identity that survives a re-fetch; the MAC
// is the only stable key.
type Device struct {
	// operator-assigned label, UnknownName when unassigned
	Name string
	// name as reported or inferred by the router, may be empty
	DetectedName string
	// canonical uppercase colon form as the router reports it
	MacAddress string

	Connection ConnectionState
	Access     AccessControl
}

// DeviceFromProperties decodes one parsed rule row into a Device. Rows
// come in three shapes: an active rule ("mac" plus "status" in the
// router's own Blocked/Allowed vocabulary), a whitelist-only entry
// ("mac_white", access implied Allowed), and a blacklist-only entry
// ("mac_black", access implied Blocked). Unrecognized properties are
// ignored. hint, when not empty, sets the connection state.
func DeviceFromProperties(props Properties, hint ConnectionState) Device {
	device := Device{
		Name:       UnknownName,
		Connection: ConnectionUndetected,
		Access:     AccessUnknown,
	}
	if hint != "" {
		device.Connection = hint
	}

	device.DetectedName = props.Get("device_name")

	switch {
	case props.Has("mac"):
		device.MacAddress = props.Get("mac")
		switch props.Get("status") {
		case string(AccessBlocked):
			device.Access = AccessBlocked
		case string(AccessAllowed):
			device.Access = AccessAllowed
		}
	case props.Has("mac_black"):
		device.MacAddress = props.Get("mac_black")
		device.Access = AccessBlocked
	case props.Has("mac_white"):
		device.MacAddress = props.Get("mac_white")
		device.Access = AccessAllowed
	}

	return device
}

// DevicesFromProperties maps a sequence of parsed rows into devices,
// preserving order.
func DevicesFromProperties(rows []Properties, hint ConnectionState) []Device {
	devices := make([]Device, len(rows))
	for i, props := range rows {
		devices[i] = DeviceFromProperties(props, hint)
	}
	return devices
}

// MergeKnownName sets the device's operator-assigned name from the
// first known entry matching its MAC exactly (canonical form). Without
// a match the name falls back to UnknownName.
func MergeKnownName(device Device, known []knowndevices.KnownDevice) Device {
	device.Name = UnknownName
	mac := canonicalMac(device.MacAddress)
	for _, k := range known {
		if k.Mac.String() == mac {
			device.Name = k.Name
			break
		}
	}
	return device
}

// MergeKnownNames annotates each device independently.
func MergeKnownNames(devices []Device, known []knowndevices.KnownDevice) []Device {
	out := make([]Device, len(devices))
	for i, d := range devices {
		out[i] = MergeKnownName(d, known)
	}
	return out
}

// canonicalMac normalizes a raw MAC for lookups, falling back to the
// raw text when it does not parse.
func canonicalMac(raw string) string {
	mac, err := macaddr.Parse(raw)
	if err != nil {
		return raw
	}
	return mac.String()
}

// FindByMac returns the first device whose MAC matches, or nil.
func FindByMac(devices []Device, rawMac string) *Device {
	wanted := canonicalMac(rawMac)
	for i := range devices {
		if canonicalMac(devices[i].MacAddress) == wanted {
			return &devices[i]
		}
	}
	return nil
}
