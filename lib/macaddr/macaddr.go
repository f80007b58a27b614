// Package macaddr holds the MAC address value type used as the primary
// identity key for router-managed devices.
package macaddr

import (
	"fmt"
	"strings"
)

// Address is a 6-byte hardware address. The zero value is not a valid
// address; construct one through Parse.
type Address [6]byte

var (
	ErrBadLength = fmt.Errorf("mac address must contain exactly 12 hex digits")
	ErrBadDigit  = fmt.Errorf("mac address contains a non-hexadecimal digit")
	ErrReserved  = fmt.Errorf("mac address is all-zero or all-F")
	ErrMulticast = fmt.Errorf("mac address is a multicast address")
)

// Parse canonicalizes a textual MAC address. It accepts ":" or "-"
// delimited (or undelimited) hex, uppercase or lower, and checks
// syntax only: the router's tables may legitimately carry addresses
// that could never be sent back out. CheckAssignable is the stricter
// gate for outbound use.
func Parse(raw string) (Address, error) {
	cleaned := strings.ToUpper(strings.NewReplacer(":", "", "-", "").Replace(raw))
	if len(cleaned) != 12 {
		return Address{}, fmt.Errorf("%w: %q", ErrBadLength, raw)
	}

	var addr Address
	for i := 0; i < 6; i++ {
		hi := hexValue(cleaned[i*2])
		lo := hexValue(cleaned[i*2+1])
		if hi < 0 || lo < 0 {
			return Address{}, fmt.Errorf("%w: %q", ErrBadDigit, raw)
		}
		addr[i] = byte(hi<<4 | lo)
	}
	return addr, nil
}

// CheckAssignable reports whether the address can name a real endpoint
// in an outbound request. Reserved (all-zero, all-F) and multicast
// addresses are rejected.
func (a Address) CheckAssignable() error {
	if a == (Address{}) || a == (Address{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}) {
		return fmt.Errorf("%w: %q", ErrReserved, a.String())
	}
	// the multicast bit means the address cannot belong to one device
	if a[0]&0x01 != 0 {
		return fmt.Errorf("%w: %q", ErrMulticast, a.String())
	}
	return nil
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// String renders the canonical uppercase colon-delimited form.
func (a Address) String() string {
	return fmt.Sprintf(
		"%02X:%02X:%02X:%02X:%02X:%02X",
		a[0], a[1], a[2], a[3], a[4], a[5],
	)
}
