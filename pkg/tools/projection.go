package tools

import "github.com/comigor/homey-mcp/internal/homey"

// DeviceSummary is the list_devices shape of a device.
type DeviceSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Zone         string   `json:"zone,omitempty"`
	Class        string   `json:"class"`
	Available    bool     `json:"available"`
	Capabilities []string `json:"capabilities"`
}

// DeviceDetail is the get_device shape: the summary plus current capability values.
type DeviceDetail struct {
	DeviceSummary
	CapabilitiesObj map[string]any `json:"capabilitiesObj"`
}

// ZoneSummary is the list_zones shape of a zone.
type ZoneSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

// FlowSummary is the list_flows shape of a flow.
type FlowSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

func ProjectDevice(d homey.Device) DeviceSummary {
	caps := d.Capabilities
	if caps == nil {
		caps = []string{}
	}
	return DeviceSummary{
		ID:           d.ID,
		Name:         d.Name,
		Zone:         refName(d.Zone),
		Class:        d.Class,
		Available:    d.Available,
		Capabilities: caps,
	}
}

func ProjectDeviceDetail(d homey.Device) DeviceDetail {
	return DeviceDetail{
		DeviceSummary:   ProjectDevice(d),
		CapabilitiesObj: d.CapabilitiesObj,
	}
}

func ProjectZone(z homey.Zone) ZoneSummary {
	return ZoneSummary{ID: z.ID, Name: z.Name, Parent: refName(z.Parent)}
}

func ProjectFlow(f homey.Flow) FlowSummary {
	return FlowSummary{ID: f.ID, Name: f.Name, Enabled: f.Enabled}
}

func refName(ref *homey.ZoneRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}
