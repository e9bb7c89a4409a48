package homey

import "context"

// ZoneRef is a resolved reference to a zone.
type ZoneRef struct {
	ID   string
	Name string
}

// Device is a device as reported by Homey, with its zone resolved.
type Device struct {
	ID              string
	Name            string
	Zone            *ZoneRef
	Class           string
	Available       bool
	Capabilities    []string
	CapabilitiesObj map[string]any
}

// Zone is a location grouping devices, optionally nested under a parent.
type Zone struct {
	ID     string
	Name   string
	Parent *ZoneRef
}

// Flow is a triggerable automation.
type Flow struct {
	ID      string
	Name    string
	Enabled bool
}

// Session is an authenticated handle to one Homey.
type Session interface {
	Devices() DeviceManager
	Zones() ZoneManager
	Flows() FlowManager
}

// DeviceManager reads and actuates devices.
type DeviceManager interface {
	GetDevices(ctx context.Context) ([]Device, error)
	GetDevice(ctx context.Context, id string) (*Device, error)
	SetCapabilityValue(ctx context.Context, deviceID, capabilityID string, value any) error
}

// ZoneManager reads zones.
type ZoneManager interface {
	GetZones(ctx context.Context) ([]Zone, error)
}

// FlowManager reads and triggers flows.
type FlowManager interface {
	GetFlows(ctx context.Context) ([]Flow, error)
	GetFlow(ctx context.Context, id string) (*Flow, error)
	TriggerFlow(ctx context.Context, id string) error
}

// Wire shapes of the Homey Web API. Zone references are ids on the wire.

type deviceJSON struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Zone            string         `json:"zone"`
	Class           string         `json:"class"`
	Available       bool           `json:"available"`
	Capabilities    []string       `json:"capabilities"`
	CapabilitiesObj map[string]any `json:"capabilitiesObj"`
}

type zoneJSON struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
}

type flowJSON struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
