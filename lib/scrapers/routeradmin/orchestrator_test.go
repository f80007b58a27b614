package routeradmin

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockRejectsMultipleDevices(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	_, err := o.Block(
		context.Background(),
		Device{MacAddress: "AA:BB:CC:DD:EE:FF"},
		Device{MacAddress: "FF:EE:DD:CC:BB:AA"},
	)
	require.ErrorIs(t, err, ErrMultipleDevices)
	require.Empty(t, fixture.requests, "no lookup should happen on an arity error")
}

func TestBlockUnknownDeviceIsNoop(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	device, err := o.Block(context.Background(), Device{MacAddress: "0A:99:99:99:99:99"})
	require.NoError(t, err)
	require.Nil(t, device)
	require.Empty(t, fixture.posts())
}

func TestBlockAlreadyBlockedIsNoop(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	device, err := o.Block(context.Background(), Device{MacAddress: "0A:11:22:33:44:55"})
	require.NoError(t, err)
	require.NotNil(t, device)
	require.Equal(t, AccessBlocked, device.Access)
	require.Empty(t, fixture.posts())
}

func TestBlockOnlineDevice(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	device, err := o.Block(context.Background(), Device{MacAddress: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)
	require.NotNil(t, device)

	posts := fixture.posts()
	require.Len(t, posts, 1)
	form := posts[0].Form
	require.Equal(
		t,
		"3:AA:BB:CC:DD:EE:FF:0:0A:11:22:33:44:55:0:FF:EE:DD:CC:BB:AA:0:",
		form.Get("rule_settings"),
	)
	require.Equal(t, "1", form.Get("block"))
	require.Empty(t, form.Get("allow"))
	require.NotContains(t, form, "rule_status_org", "stale multi-valued field must be dropped")
	require.Equal(t, "tok-1", form.Get("session_token"), "hidden fields must round-trip")
	require.True(t, posts[0].HadCookie)
}

func TestUnblockOfflineDeviceRemovesThenAdds(t *testing.T) {
	known := staticKnown{knownDevice(t, "Printer", "0A:BB:BB:BB:BB:02")}
	client, fixture := newTestClient(t, known)
	o := NewOrchestrator(client)

	_, err := o.Unblock(context.Background(), Device{MacAddress: "0A:BB:BB:BB:BB:02"})
	require.NoError(t, err)

	posts := fixture.posts()
	require.Len(t, posts, 2)

	removal := posts[0].Form
	require.Equal(t, "1:0A:BB:BB:BB:BB:02:", removal.Get("delete_black_lists"))
	require.Equal(t, "1", removal.Get("delete_black"))

	addition := posts[1].Form
	require.Equal(t, "0A:BB:BB:BB:BB:02", addition.Get("mac_addr"))
	require.Equal(t, "Printer", addition.Get("dev_name"))
	require.Equal(t, "allowed_list", addition.Get("access_control_add_type"))

	// the add-page form must have been fetched between the two posts
	var addPageFetched bool
	var sawRemoval bool
	for _, r := range fixture.requests {
		if r.Method == http.MethodPost && r.Form.Get("delete_black") == "1" {
			sawRemoval = true
		}
		if r.Method == http.MethodGet && r.Path == addDevicePath {
			require.True(t, sawRemoval, "removal must precede the add")
			addPageFetched = true
		}
	}
	require.True(t, addPageFetched)
}

func TestRemoveOnlineDeviceIsNoop(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	err := o.Remove(context.Background(), Device{
		MacAddress: "AA:BB:CC:DD:EE:FF",
		Connection: ConnectionOnline,
	})
	require.NoError(t, err)
	require.Empty(t, fixture.posts())
}

func TestEnableAccessControlInvalidatesPageCache(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)
	ctx := context.Background()

	_, err := client.FetchPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, fixture.pageHits)

	require.NoError(t, o.EnableAccessControl(ctx, AccessAllowed))

	posts := fixture.posts()
	require.Len(t, posts, 1)
	require.Equal(t, "1", posts[0].Form.Get("enable_access_control"))
	require.Equal(t, "1", posts[0].Form.Get("access_all_setting"))

	// settings changed: the cached form snapshot is stale, the next
	// page read must hit the router again
	_, err = client.FetchPage(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, fixture.pageHits)
}

func TestDisableAccessControl(t *testing.T) {
	client, fixture := newTestClient(t, nil)
	o := NewOrchestrator(client)

	require.NoError(t, o.DisableAccessControl(context.Background()))

	posts := fixture.posts()
	require.Len(t, posts, 1)
	require.NotContains(t, posts[0].Form, "enable_access_control")
}
