package tools

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/comigor/homey-mcp/internal/homey"
	"github.com/comigor/homey-mcp/internal/logger"
)

// Connector hands out the shared Homey session, connecting on first use.
type Connector interface {
	EnsureConnected(ctx context.Context) (homey.Session, error)
}

// CallRecord describes one finished tool call.
type CallRecord struct {
	ID        string
	Tool      string
	Arguments map[string]any
	IsError   bool
	Text      string
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// Observer is notified after every tool call. It must not block for long.
type Observer func(ctx context.Context, rec CallRecord)

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// Dispatcher routes tool calls to Homey and turns every outcome into a tool result.
type Dispatcher struct {
	conn      Connector
	catalog   *Catalog
	observers []Observer
	now       func() time.Time
}

// NewDispatcher creates a Dispatcher over conn.
func NewDispatcher(conn Connector, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		conn:    conn,
		catalog: NewCatalog(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ListTools returns the catalog in its fixed order.
func (d *Dispatcher) ListTools() []mcp.Tool {
	return d.catalog.List()
}

// CallTool runs one tool. It never returns a Go error: failures come back as IsError results.
func (d *Dispatcher) CallTool(ctx context.Context, name string, args map[string]any) *mcp.CallToolResult {
	rec := CallRecord{
		ID:        uuid.NewString(),
		Tool:      name,
		Arguments: args,
		StartedAt: d.now(),
	}

	text, err := d.run(ctx, name, args)
	result := ToToolResult(text, err)

	rec.Duration = d.now().Sub(rec.StartedAt)
	rec.IsError = result.IsError
	rec.Text = ResultText(result)
	rec.Err = err

	if err != nil {
		logger.L.Warn("tool call failed", "id", rec.ID, "tool", name, "error", err, "duration", rec.Duration)
	} else {
		logger.L.Info("tool call", "id", rec.ID, "tool", name, "duration", rec.Duration)
	}

	for _, o := range d.observers {
		o(ctx, rec)
	}
	return result
}

func (d *Dispatcher) run(ctx context.Context, name string, raw map[string]any) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L.Error("tool call panicked", "tool", name, "panic", r)
			err = fmt.Errorf("internal error while running %s: %v", name, r)
		}
	}()

	sess, err := d.conn.EnsureConnected(ctx)
	if err != nil {
		return "", err
	}
	if sess == nil {
		return "", errors.New("Homey API not connected")
	}

	if _, err := d.catalog.GetTool(name); err != nil {
		return "", err
	}
	args, err := ParseArguments(name, raw)
	if err != nil {
		return "", err
	}

	switch a := args.(type) {
	case ListDevicesArgs:
		return d.listDevices(ctx, sess)
	case GetDeviceArgs:
		return d.getDevice(ctx, sess, a)
	case SetCapabilityArgs:
		return d.setCapability(ctx, sess, a)
	case ListZonesArgs:
		return d.listZones(ctx, sess)
	case ListFlowsArgs:
		return d.listFlows(ctx, sess)
	case TriggerFlowArgs:
		return d.triggerFlow(ctx, sess, a)
	default:
		return "", &UnknownToolError{Name: name}
	}
}

func (d *Dispatcher) listDevices(ctx context.Context, sess homey.Session) (string, error) {
	devices, err := sess.Devices().GetDevices(ctx)
	if err != nil {
		return "", remote("list devices", err)
	}
	out := make([]DeviceSummary, 0, len(devices))
	for _, dev := range devices {
		out = append(out, ProjectDevice(dev))
	}
	return prettyJSON(out)
}

func (d *Dispatcher) getDevice(ctx context.Context, sess homey.Session, a GetDeviceArgs) (string, error) {
	dev, err := sess.Devices().GetDevice(ctx, a.DeviceID)
	if err != nil {
		return "", remote(fmt.Sprintf("get device %s", a.DeviceID), err)
	}
	return prettyJSON(ProjectDeviceDetail(*dev))
}

func (d *Dispatcher) setCapability(ctx context.Context, sess homey.Session, a SetCapabilityArgs) (string, error) {
	dev, err := sess.Devices().GetDevice(ctx, a.DeviceID)
	if err != nil {
		return "", remote(fmt.Sprintf("get device %s", a.DeviceID), err)
	}
	if err := sess.Devices().SetCapabilityValue(ctx, dev.ID, a.Capability, a.Value); err != nil {
		return "", remote(fmt.Sprintf("set %s on device %s", a.Capability, dev.Name), err)
	}
	return fmt.Sprintf("Successfully set %s to %s for device %s", a.Capability, formatValue(a.Value), dev.Name), nil
}

func (d *Dispatcher) listZones(ctx context.Context, sess homey.Session) (string, error) {
	zones, err := sess.Zones().GetZones(ctx)
	if err != nil {
		return "", remote("list zones", err)
	}
	out := make([]ZoneSummary, 0, len(zones))
	for _, z := range zones {
		out = append(out, ProjectZone(z))
	}
	return prettyJSON(out)
}

func (d *Dispatcher) listFlows(ctx context.Context, sess homey.Session) (string, error) {
	flows, err := sess.Flows().GetFlows(ctx)
	if err != nil {
		return "", remote("list flows", err)
	}
	out := make([]FlowSummary, 0, len(flows))
	for _, f := range flows {
		out = append(out, ProjectFlow(f))
	}
	return prettyJSON(out)
}

func (d *Dispatcher) triggerFlow(ctx context.Context, sess homey.Session, a TriggerFlowArgs) (string, error) {
	flow, err := sess.Flows().GetFlow(ctx, a.FlowID)
	if err != nil {
		return "", remote(fmt.Sprintf("get flow %s", a.FlowID), err)
	}
	if err := sess.Flows().TriggerFlow(ctx, flow.ID); err != nil {
		return "", remote(fmt.Sprintf("trigger flow %s", flow.Name), err)
	}
	return fmt.Sprintf("Successfully triggered flow: %s", flow.Name), nil
}
