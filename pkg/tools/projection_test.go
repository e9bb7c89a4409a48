package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comigor/homey-mcp/internal/homey"
)

func TestProjectDeviceDetail(t *testing.T) {
	d := homey.Device{
		ID:              "d1",
		Name:            "Lamp",
		Zone:            &homey.ZoneRef{ID: "z1", Name: "Kitchen"},
		Class:           "light",
		Available:       true,
		Capabilities:    []string{"onoff"},
		CapabilitiesObj: map[string]any{"onoff": map[string]any{"value": true}},
	}

	b, err := json.Marshal(ProjectDeviceDetail(d))
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id": "d1",
		"name": "Lamp",
		"zone": "Kitchen",
		"class": "light",
		"available": true,
		"capabilities": ["onoff"],
		"capabilitiesObj": {"onoff": {"value": true}}
	}`, string(b))
}

func TestProjectDevice_NoZone(t *testing.T) {
	b, err := json.Marshal(ProjectDevice(homey.Device{ID: "d2", Name: "Plug", Class: "socket"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"d2","name":"Plug","class":"socket","available":false,"capabilities":[]}`, string(b))
}

func TestProjectDeviceDetail_NoCapabilityValues(t *testing.T) {
	b, err := json.Marshal(ProjectDeviceDetail(homey.Device{ID: "d3", Name: "Sensor", Class: "sensor"}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"d3","name":"Sensor","class":"sensor","available":false,"capabilities":[],"capabilitiesObj":null}`, string(b))

	b, err = json.Marshal(ProjectDeviceDetail(homey.Device{ID: "d4", Name: "Button", Class: "button", CapabilitiesObj: map[string]any{}}))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"d4","name":"Button","class":"button","available":false,"capabilities":[],"capabilitiesObj":{}}`, string(b))
}

func TestProjectZone(t *testing.T) {
	b, err := json.Marshal([]ZoneSummary{
		ProjectZone(homey.Zone{ID: "z1", Name: "Hall"}),
		ProjectZone(homey.Zone{ID: "z2", Name: "Room", Parent: &homey.ZoneRef{ID: "z1", Name: "Hall"}}),
	})
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"z1","name":"Hall"},{"id":"z2","name":"Room","parent":"Hall"}]`, string(b))
}

func TestProjectFlow(t *testing.T) {
	require.Equal(t, FlowSummary{ID: "f1", Name: "Morning", Enabled: true},
		ProjectFlow(homey.Flow{ID: "f1", Name: "Morning", Enabled: true}))
}
