package homey

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/comigor/homey-mcp/internal/logger"
)

const (
	sessionPath = "/api/manager/sessions/session/me"
	devicesPath = "/api/manager/devices/device/"
	zonesPath   = "/api/manager/zones/zone/"
	flowsPath   = "/api/manager/flow/flow/"
)

// Client is a client for the Homey local Web API. It implements Session.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// NewClient creates a Client without contacting Homey.
func NewClient(address, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(address) == "" {
		return nil, fmt.Errorf("homey address is required")
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("homey token is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(address, "/"),
		token:   token,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Connect creates a Client and authenticates it by reading the token's own session.
func Connect(ctx context.Context, address, token string, opts ...Option) (*Client, error) {
	c, err := NewClient(address, token, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodGet, sessionPath, nil, nil); err != nil {
		return nil, err
	}
	return c, nil
}

// Devices returns the device manager.
func (c *Client) Devices() DeviceManager { return c }

// Zones returns the zone manager.
func (c *Client) Zones() ZoneManager { return c }

// Flows returns the flow manager.
func (c *Client) Flows() FlowManager { return c }

// GetDevices lists all devices sorted by id.
func (c *Client) GetDevices(ctx context.Context) ([]Device, error) {
	var raw map[string]deviceJSON
	if err := c.do(ctx, http.MethodGet, devicesPath, nil, &raw); err != nil {
		return nil, err
	}
	zones := c.zoneIndex(ctx)

	devices := make([]Device, 0, len(raw))
	for _, d := range raw {
		devices = append(devices, d.resolve(zones))
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

// GetDevice fetches one device by id.
func (c *Client) GetDevice(ctx context.Context, id string) (*Device, error) {
	var raw deviceJSON
	if err := c.do(ctx, http.MethodGet, devicesPath+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	d := raw.resolve(c.zoneIndex(ctx))
	return &d, nil
}

// SetCapabilityValue writes value to one capability of a device.
func (c *Client) SetCapabilityValue(ctx context.Context, deviceID, capabilityID string, value any) error {
	path := devicesPath + url.PathEscape(deviceID) + "/capability/" + url.PathEscape(capabilityID)
	return c.do(ctx, http.MethodPut, path, map[string]any{"value": value}, nil)
}

// GetZones lists all zones sorted by id, with parents resolved.
func (c *Client) GetZones(ctx context.Context) ([]Zone, error) {
	raw, err := c.fetchZones(ctx)
	if err != nil {
		return nil, err
	}
	zones := make([]Zone, 0, len(raw))
	for _, z := range raw {
		zone := Zone{ID: z.ID, Name: z.Name}
		if z.Parent != nil && *z.Parent != "" {
			zone.Parent = lookupZone(raw, *z.Parent)
		}
		zones = append(zones, zone)
	}
	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })
	return zones, nil
}

// GetFlows lists all flows sorted by id.
func (c *Client) GetFlows(ctx context.Context) ([]Flow, error) {
	var raw map[string]flowJSON
	if err := c.do(ctx, http.MethodGet, flowsPath, nil, &raw); err != nil {
		return nil, err
	}
	flows := make([]Flow, 0, len(raw))
	for _, f := range raw {
		flows = append(flows, Flow(f))
	}
	sort.Slice(flows, func(i, j int) bool { return flows[i].ID < flows[j].ID })
	return flows, nil
}

// GetFlow fetches one flow by id.
func (c *Client) GetFlow(ctx context.Context, id string) (*Flow, error) {
	var raw flowJSON
	if err := c.do(ctx, http.MethodGet, flowsPath+url.PathEscape(id), nil, &raw); err != nil {
		return nil, err
	}
	f := Flow(raw)
	return &f, nil
}

// TriggerFlow runs a flow now.
func (c *Client) TriggerFlow(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, flowsPath+url.PathEscape(id)+"/trigger", nil, nil)
}

func (c *Client) fetchZones(ctx context.Context) (map[string]zoneJSON, error) {
	var raw map[string]zoneJSON
	if err := c.do(ctx, http.MethodGet, zonesPath, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// zoneIndex is best effort: a token without zone scope still lists devices.
func (c *Client) zoneIndex(ctx context.Context) map[string]zoneJSON {
	zones, err := c.fetchZones(ctx)
	if err != nil {
		logger.L.Warn("could not resolve zone names", "error", err)
		return nil
	}
	return zones
}

func lookupZone(zones map[string]zoneJSON, id string) *ZoneRef {
	ref := &ZoneRef{ID: id}
	if z, ok := zones[id]; ok {
		ref.Name = z.Name
	}
	return ref
}

func (d deviceJSON) resolve(zones map[string]zoneJSON) Device {
	dev := Device{
		ID:              d.ID,
		Name:            d.Name,
		Class:           d.Class,
		Available:       d.Available,
		Capabilities:    d.Capabilities,
		CapabilitiesObj: d.CapabilitiesObj,
	}
	if d.Zone != "" {
		dev.Zone = lookupZone(zones, d.Zone)
	}
	return dev
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(payload),
		}
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// errorMessage extracts Homey's error text from a failed response body.
func errorMessage(payload []byte) string {
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		switch {
		case body.ErrorDescription != "":
			return body.ErrorDescription
		case body.Error != "":
			return body.Error
		case body.Message != "":
			return body.Message
		}
	}
	return strings.TrimSpace(string(payload))
}
