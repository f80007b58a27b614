package routeradmin

import (
	"context"
	"log/slog"
	"testing"
	"unicode/utf8"

	"github.com/Wayne-King/RouterControl/lib/telemetry"
	"github.com/stretchr/testify/require"
)

func TestParseRuleFragment(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:routeradmin")
	defer cleanup()

	props := ParseRuleFragment(
		`<tr><td><SPAN name="rule_device_name">Laptop</SPAN></td>` +
			`<td><SPAN name="rule_mac">AA:BB:CC:DD:EE:FF</SPAN></td>` +
			`<td><SPAN name="rule_status">Allowed</SPAN></td></tr>`,
	)
	require.Equal(t, []string{"device_name", "mac", "status"}, props.Names())
	require.Equal(t, "Laptop", props.Get("device_name"))
	require.Equal(t, "AA:BB:CC:DD:EE:FF", props.Get("mac"))
	require.Equal(t, "Allowed", props.Get("status"))
}

func TestParseRuleFragmentIgnoresOtherMarkup(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:routeradmin")
	defer cleanup()

	props := ParseRuleFragment(
		`<td class="x"><b>junk</b><span id="y" name="rule_mac_white">0A:11:22:33:44:55</span>` +
			`<span name="unrelated">nope</span></td>`,
	)
	require.Equal(t, 1, props.Len())
	require.Equal(t, "0A:11:22:33:44:55", props.Get("mac_white"))
	require.False(t, props.Has("unrelated"))
}

func TestParseRuleFragmentDuplicateKeepsFirst(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:routeradmin")
	defer cleanup()

	// some firmware versions emit rule_device_name twice per row
	props := ParseRuleFragment(
		`<span name="rule_device_name">First</span>` +
			`<span name="rule_device_name">Second</span>`,
	)
	require.Equal(t, 1, props.Len())
	require.Equal(t, "First", props.Get("device_name"))
}

type capturingHandler struct {
	records *[]slog.Record
}

func (h capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h capturingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r.Clone())
	return nil
}

func (h capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h capturingHandler) WithGroup(string) slog.Handler      { return h }

func TestParseRuleFragmentEmpty(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:routeradmin")
	defer cleanup()

	var records []slog.Record
	previous := slog.Default()
	slog.SetDefault(slog.New(capturingHandler{records: &records}))
	defer slog.SetDefault(previous)

	props := ParseRuleFragment(`<tr><td>no spans here at all, just a long stretch of text</td></tr>`)
	require.Equal(t, 0, props.Len())
	require.Empty(t, props.Names())

	var warns []slog.Record
	for _, r := range records {
		if r.Level == slog.LevelWarn {
			warns = append(warns, r)
		}
	}
	require.Len(t, warns, 1)

	var fragment string
	warns[0].Attrs(func(a slog.Attr) bool {
		if a.Key == "fragment" {
			fragment = a.Value.String()
		}
		return true
	})
	require.Equal(t, "<tr><td>no spans here at ...", fragment)
	require.Equal(t, fragmentExcerptLength+len("..."), utf8.RuneCountInString(fragment))
}
