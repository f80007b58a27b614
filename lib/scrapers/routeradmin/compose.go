package routeradmin

import (
	"context"
	"fmt"
	"strings"
)

// Field names of the firmware's wire contract. The exact strings are
// load-bearing; the router matches them verbatim.
const (
	fieldEnableAccessControl = "enable_access_control"
	fieldAccessAllSetting    = "access_all_setting"
	fieldEnableAcl           = "enable_acl"
	fieldAccessAll           = "access_all"
	fieldRuleSettings        = "rule_settings"
	fieldRuleStatusOrg       = "rule_status_org"
	fieldAllow               = "allow"
	fieldBlock               = "block"
	fieldDeleteWhiteLists    = "delete_white_lists"
	fieldDeleteBlackLists    = "delete_black_lists"
	fieldDeleteWhite         = "delete_white"
	fieldDeleteBlack         = "delete_black"
	fieldMacAddr             = "mac_addr"
	fieldDevName             = "dev_name"
	fieldAction              = "action"
	fieldAddType             = "access_control_add_type"
)

// Value tokens of the same contract.
const (
	tokenAllowed     = "1"
	tokenBlocked     = "0"
	tokenSet         = "1"
	tokenApply       = "apply"
	tokenAllowedList = "allowed_list"
	tokenBlockedList = "blocked_list"
)

// ErrInvalidAccess marks a programming error: a rule can only encode
// Allowed or Blocked.
var ErrInvalidAccess = fmt.Errorf("access must be Allowed or Blocked")

// Toggle is the state of the router-wide access-control feature.
type Toggle string

const (
	ToggleUnknown  Toggle = "Unknown"
	ToggleEnabled  Toggle = "Enabled"
	ToggleDisabled Toggle = "Disabled"
)

// NewDeviceAccess is what the router does with a device it has never
// seen before.
type NewDeviceAccess string

const (
	NewDeviceUnknown       NewDeviceAccess = "Unknown"
	NewDeviceBlocked       NewDeviceAccess = "Blocked"
	NewDeviceAllowed       NewDeviceAccess = "Allowed"
	NewDeviceNotApplicable NewDeviceAccess = "NotApplicable"
)

// AccessControlState is a read-only snapshot of the router's global
// access-control settings, recomputed from the current page fields on
// every call.
type AccessControlState struct {
	AccessControl   Toggle
	NewDeviceAccess NewDeviceAccess
}

func (c *Client) AccessControlState(ctx context.Context) (AccessControlState, error) {
	page, err := c.FetchPage(ctx)
	if err != nil {
		return AccessControlState{}, err
	}

	state := AccessControlState{
		AccessControl:   ToggleUnknown,
		NewDeviceAccess: NewDeviceUnknown,
	}
	switch page.Fields[fieldEnableAcl] {
	case "1":
		state.AccessControl = ToggleEnabled
	case "0":
		state.AccessControl = ToggleDisabled
	}

	if state.AccessControl == ToggleDisabled {
		state.NewDeviceAccess = NewDeviceNotApplicable
		return state, nil
	}
	switch page.Fields[fieldAccessAll] {
	case tokenAllowed:
		state.NewDeviceAccess = NewDeviceAllowed
	case tokenBlocked:
		state.NewDeviceAccess = NewDeviceBlocked
	}
	return state, nil
}

// copyFields gives compose paths their own mutable copy; the cached
// page snapshot is never written to.
func copyFields(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// ComposeEnableFields builds the payload that turns access control on.
// newDeviceAccess of Allowed or Blocked also sets the new-device
// policy; any other value leaves it untouched.
func (c *Client) ComposeEnableFields(ctx context.Context, newDeviceAccess AccessControl) (map[string]string, error) {
	page, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	fields := copyFields(page.Fields)
	fields[fieldEnableAccessControl] = tokenSet
	switch newDeviceAccess {
	case AccessAllowed:
		fields[fieldAccessAllSetting] = tokenAllowed
	case AccessBlocked:
		fields[fieldAccessAllSetting] = tokenBlocked
	}
	return fields, nil
}

// ComposeDisableFields builds the payload that turns access control
// off, by omitting the enable token entirely.
func (c *Client) ComposeDisableFields(ctx context.Context) (map[string]string, error) {
	page, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	fields := copyFields(page.Fields)
	delete(fields, fieldEnableAccessControl)
	return fields, nil
}

// ComposeRuleSettingsValue encodes the bulk rule string the admin
// page's own JavaScript would have produced.
//
// Grammar:
//
//	value = count ":" *( mac ":" token ":" )
//	token = "1" (allowed) / "0" (blocked)
//
// with one mac/token pair per currently-online device in listing
// order. The target device (matched by MAC) gets the requested access;
// every other device keeps its own. The device list is re-fetched from
// the router rather than read from cache so the encoded rules reflect
// the router's current view.
func (c *Client) ComposeRuleSettingsValue(ctx context.Context, target Device, access AccessControl) (string, error) {
	if access != AccessAllowed && access != AccessBlocked {
		return "", fmt.Errorf("%w: got %q", ErrInvalidAccess, access)
	}

	devices, err := c.fetchDevicesUncached(ctx)
	if err != nil {
		return "", err
	}

	var online []Device
	for _, d := range devices {
		if d.Connection == ConnectionOnline {
			online = append(online, d)
		}
	}

	targetMac := canonicalMac(target.MacAddress)
	var out strings.Builder
	fmt.Fprintf(&out, "%d:", len(online))
	for _, d := range online {
		entryAccess := d.Access
		if canonicalMac(d.MacAddress) == targetMac {
			entryAccess = access
		}
		fmt.Fprintf(&out, "%s:%s:", d.MacAddress, accessToken(entryAccess))
	}
	return out.String(), nil
}

func accessToken(access AccessControl) string {
	if access == AccessAllowed {
		return tokenAllowed
	}
	return tokenBlocked
}

// ComposeUpdateFields builds the payload that rewrites an online
// device's rule in place. It returns ErrInvalidAccess for a bad access
// value; other rule-settings failures surface as errors too.
func (c *Client) ComposeUpdateFields(ctx context.Context, device Device, access AccessControl) (map[string]string, error) {
	value, err := c.ComposeRuleSettingsValue(ctx, device, access)
	if err != nil {
		return nil, err
	}

	page, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	fields := copyFields(page.Fields)
	fields[fieldRuleSettings] = value
	// the page carries one rule_status_org input per rule; a flat
	// field snapshot cannot replay that, so it is dropped
	delete(fields, fieldRuleStatusOrg)
	if access == AccessAllowed {
		fields[fieldAllow] = tokenSet
	} else {
		fields[fieldBlock] = tokenSet
	}
	return fields, nil
}

// ComposeRemoveFields builds the payload that deletes a device from
// whichever static list its current access puts it on.
func (c *Client) ComposeRemoveFields(ctx context.Context, device Device) (map[string]string, error) {
	page, err := c.FetchPage(ctx)
	if err != nil {
		return nil, err
	}

	fields := copyFields(page.Fields)
	entry := fmt.Sprintf("1:%s:", device.MacAddress)
	if device.Access == AccessBlocked {
		fields[fieldDeleteBlackLists] = entry
		fields[fieldDeleteBlack] = tokenSet
	} else {
		fields[fieldDeleteWhiteLists] = entry
		fields[fieldDeleteWhite] = tokenSet
	}
	return fields, nil
}

// ComposeAddFields builds the payload that adds a device to the allow
// or block list via the add-device sub-page's form. It returns nil
// fields (and no error) when the device's MAC or name fails cleaning;
// the reason has already been logged.
func (c *Client) ComposeAddFields(ctx context.Context, device Device, addPage Page) (map[string]string, error) {
	mac, ok := CleanMac(device)
	if !ok {
		return nil, nil
	}
	name, ok := CleanName(device)
	if !ok {
		return nil, nil
	}

	fields := copyFields(addPage.Fields)
	fields[fieldMacAddr] = mac.String()
	fields[fieldDevName] = name
	fields[fieldAction] = tokenApply
	if device.Access == AccessBlocked {
		fields[fieldAddType] = tokenBlockedList
	} else {
		fields[fieldAddType] = tokenAllowedList
	}
	return fields, nil
}
