package tools

import (
	"context"
	"errors"

	"github.com/comigor/homey-mcp/internal/homey"
)

// This mirrors homey.Session and its managers with overridable funcs.
type mockSession struct {
	GetDevicesFunc         func(ctx context.Context) ([]homey.Device, error)
	GetDeviceFunc          func(ctx context.Context, id string) (*homey.Device, error)
	SetCapabilityValueFunc func(ctx context.Context, deviceID, capabilityID string, value any) error
	GetZonesFunc           func(ctx context.Context) ([]homey.Zone, error)
	GetFlowsFunc           func(ctx context.Context) ([]homey.Flow, error)
	GetFlowFunc            func(ctx context.Context, id string) (*homey.Flow, error)
	TriggerFlowFunc        func(ctx context.Context, id string) error

	calls []string
}

func (m *mockSession) Devices() homey.DeviceManager { return m }
func (m *mockSession) Zones() homey.ZoneManager     { return m }
func (m *mockSession) Flows() homey.FlowManager     { return m }

var errNotConfigured = errors.New("mock: not configured")

func (m *mockSession) GetDevices(ctx context.Context) ([]homey.Device, error) {
	m.calls = append(m.calls, "GetDevices")
	if m.GetDevicesFunc != nil {
		return m.GetDevicesFunc(ctx)
	}
	return nil, errNotConfigured
}

func (m *mockSession) GetDevice(ctx context.Context, id string) (*homey.Device, error) {
	m.calls = append(m.calls, "GetDevice")
	if m.GetDeviceFunc != nil {
		return m.GetDeviceFunc(ctx, id)
	}
	return nil, errNotConfigured
}

func (m *mockSession) SetCapabilityValue(ctx context.Context, deviceID, capabilityID string, value any) error {
	m.calls = append(m.calls, "SetCapabilityValue")
	if m.SetCapabilityValueFunc != nil {
		return m.SetCapabilityValueFunc(ctx, deviceID, capabilityID, value)
	}
	return errNotConfigured
}

func (m *mockSession) GetZones(ctx context.Context) ([]homey.Zone, error) {
	m.calls = append(m.calls, "GetZones")
	if m.GetZonesFunc != nil {
		return m.GetZonesFunc(ctx)
	}
	return nil, errNotConfigured
}

func (m *mockSession) GetFlows(ctx context.Context) ([]homey.Flow, error) {
	m.calls = append(m.calls, "GetFlows")
	if m.GetFlowsFunc != nil {
		return m.GetFlowsFunc(ctx)
	}
	return nil, errNotConfigured
}

func (m *mockSession) GetFlow(ctx context.Context, id string) (*homey.Flow, error) {
	m.calls = append(m.calls, "GetFlow")
	if m.GetFlowFunc != nil {
		return m.GetFlowFunc(ctx, id)
	}
	return nil, errNotConfigured
}

func (m *mockSession) TriggerFlow(ctx context.Context, id string) error {
	m.calls = append(m.calls, "TriggerFlow")
	if m.TriggerFlowFunc != nil {
		return m.TriggerFlowFunc(ctx, id)
	}
	return errNotConfigured
}

type mockConnector struct {
	session homey.Session
	err     error
	calls   int
}

func (c *mockConnector) EnsureConnected(context.Context) (homey.Session, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}
