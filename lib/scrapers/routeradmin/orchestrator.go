package routeradmin

import (
	"context"
	"fmt"
	"log/slog"
)

// ErrMultipleDevices marks a call that passed more than one device to
// an operation defined for exactly one. The operation does not run.
var ErrMultipleDevices = fmt.Errorf("operation accepts exactly one device per call")

// Orchestrator sequences the low-level page operations into the
// block/unblock/add/remove mutations the operator actually asks for.
// Every mutation invalidates the caches it made stale before
// returning, so the next read reflects the router's real state.
type Orchestrator struct {
	client *Client
}

func NewOrchestrator(client *Client) Orchestrator {
	return Orchestrator{client: client}
}

// Block moves a single device to the blocked state. The variadic
// signature exists to surface an arity error instead of silently
// acting on the first of several devices.
func (o Orchestrator) Block(ctx context.Context, devices ...Device) (*Device, error) {
	return o.setAccess(ctx, AccessBlocked, devices)
}

// Unblock moves a single device to the allowed state.
func (o Orchestrator) Unblock(ctx context.Context, devices ...Device) (*Device, error) {
	return o.setAccess(ctx, AccessAllowed, devices)
}

func (o Orchestrator) setAccess(ctx context.Context, access AccessControl, devices []Device) (*Device, error) {
	if len(devices) > 1 {
		return nil, fmt.Errorf("%w: got %d", ErrMultipleDevices, len(devices))
	}
	if len(devices) == 0 {
		return nil, nil
	}
	target := devices[0]

	current, err := o.client.FetchDevices(ctx)
	if err != nil {
		return nil, err
	}
	live := FindByMac(current, target.MacAddress)
	if live == nil {
		slog.Warn("device not found on router", "mac", target.MacAddress)
		return nil, nil
	}
	if live.Access == access {
		slog.Info(
			"device already in requested state",
			"mac", live.MacAddress,
			"access", live.Access,
		)
		return live, nil
	}

	return o.UpdateConnectedDevice(ctx, *live, access)
}

// UpdateConnectedDevice changes a device's access bucket. An online
// device takes a single rule-rewrite postback; an offline device can
// only change buckets by being removed from its current list and
// re-added to the other, in that order. Either way the device list is
// re-fetched and the device's fresh state returned.
func (o Orchestrator) UpdateConnectedDevice(ctx context.Context, device Device, access AccessControl) (*Device, error) {
	ctx, span := tracer.Start(ctx, "orchestrator:UpdateConnectedDevice")
	defer span.End()

	switch device.Connection {
	case ConnectionOnline:
		if err := o.updateOnlineDevice(ctx, device, access); err != nil {
			return nil, err
		}
	case ConnectionOffline:
		if err := o.updateOfflineDevice(ctx, device, access); err != nil {
			return nil, err
		}
	default:
		slog.Warn(
			"cannot update a device with no connection state",
			"mac", device.MacAddress,
		)
		return nil, nil
	}

	if err := o.client.InvalidateDevices(); err != nil {
		return nil, err
	}
	fresh, err := o.client.FetchDevices(ctx)
	if err != nil {
		return nil, err
	}
	return FindByMac(fresh, device.MacAddress), nil
}

func (o Orchestrator) updateOnlineDevice(ctx context.Context, device Device, access AccessControl) error {
	fields, err := o.client.ComposeUpdateFields(ctx, device, access)
	if err != nil {
		return err
	}
	if fields == nil {
		return nil
	}
	return o.client.Postback(ctx, fields)
}

func (o Orchestrator) updateOfflineDevice(ctx context.Context, device Device, access AccessControl) error {
	if err := o.Remove(ctx, device); err != nil {
		return err
	}
	return o.Add(ctx, device, access)
}

// Remove deletes an offline device from its static list. Devices in
// any other connection state are warned about and left alone.
func (o Orchestrator) Remove(ctx context.Context, device Device) error {
	if device.Connection != ConnectionOffline {
		slog.Warn(
			"only offline devices can be removed",
			"mac", device.MacAddress,
			"connection", device.Connection,
		)
		return nil
	}

	fields, err := o.client.ComposeRemoveFields(ctx, device)
	if err != nil {
		return err
	}
	if err := o.client.Postback(ctx, fields); err != nil {
		return err
	}
	return o.client.InvalidateDevices()
}

// Add puts a device on the allow or block list via the add-device
// form. Invalid MAC or name degrades to a logged no-op.
func (o Orchestrator) Add(ctx context.Context, device Device, access AccessControl) error {
	device.Access = access

	addPage, err := o.client.FetchAddPage(ctx)
	if err != nil {
		return err
	}
	fields, err := o.client.ComposeAddFields(ctx, device, addPage)
	if err != nil {
		return err
	}
	if fields == nil {
		return nil
	}
	if err := o.client.Postback(ctx, fields); err != nil {
		return err
	}
	return o.client.InvalidateDevices()
}

// EnableAccessControl turns the router-wide feature on, optionally
// setting the policy for unrecognized new devices.
func (o Orchestrator) EnableAccessControl(ctx context.Context, newDeviceAccess AccessControl) error {
	fields, err := o.client.ComposeEnableFields(ctx, newDeviceAccess)
	if err != nil {
		return err
	}
	if err := o.client.Postback(ctx, fields); err != nil {
		return err
	}
	// the cached form snapshot no longer matches the router's settings
	return o.client.InvalidatePage()
}

// DisableAccessControl turns the router-wide feature off.
func (o Orchestrator) DisableAccessControl(ctx context.Context) error {
	fields, err := o.client.ComposeDisableFields(ctx)
	if err != nil {
		return err
	}
	if err := o.client.Postback(ctx, fields); err != nil {
		return err
	}
	return o.client.InvalidatePage()
}
