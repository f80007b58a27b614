package macaddr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCanonical(t *testing.T) {
	addr, err := Parse("0A:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	require.Equal(t, "0A:BB:CC:DD:EE:FF", addr.String())
}

func TestParseIsIdempotent(t *testing.T) {
	first, err := Parse("0a-bb-cc-dd-ee-ff")
	require.NoError(t, err)

	second, err := Parse(first.String())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestParseRejects(t *testing.T) {
	for _, tt := range []struct {
		name string
		raw  string
		want error
	}{
		{"too short", "0A:BB:CC:DD:EE", ErrBadLength},
		{"too long", "0A:BB:CC:DD:EE:FF:00", ErrBadLength},
		{"invalid hex", "0G:BB:CC:DD:EE:FF", ErrBadDigit},
		{"invalid delimiter", "0A.BB.CC.DD.EE.FF", ErrBadLength},
	} {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseIsSyntacticOnly(t *testing.T) {
	// the router's own tables can carry addresses that could never be
	// assigned; Parse must keep them readable
	for _, raw := range []string{
		"00:00:00:00:00:00",
		"FF:FF:FF:FF:FF:FF",
		"01:BB:CC:DD:EE:FF",
		"FF:EE:DD:CC:BB:AA",
	} {
		addr, err := Parse(raw)
		require.NoError(t, err, raw)
		require.Equal(t, raw, addr.String())
	}
}

func TestCheckAssignable(t *testing.T) {
	for _, tt := range []struct {
		name string
		raw  string
		want error
	}{
		{"all zero", "00:00:00:00:00:00", ErrReserved},
		{"all F", "FF:FF:FF:FF:FF:FF", ErrReserved},
		{"multicast", "01:BB:CC:DD:EE:FF", ErrMulticast},
	} {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := Parse(tt.raw)
			require.NoError(t, err)
			require.ErrorIs(t, addr.CheckAssignable(), tt.want)
		})
	}

	// 0A has the multicast bit clear even though 01 does not
	addr, err := Parse("0A:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	require.NoError(t, addr.CheckAssignable())
}
