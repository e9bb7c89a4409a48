package tools

import "github.com/mark3labs/mcp-go/mcp"

// Tool names, in catalog order.
const (
	ToolListDevices   = "list_devices"
	ToolGetDevice     = "get_device"
	ToolSetCapability = "set_capability"
	ToolListZones     = "list_zones"
	ToolListFlows     = "list_flows"
	ToolTriggerFlow   = "trigger_flow"
)

// Catalog is the ordered set of advertised tools.
type Catalog struct {
	tools []mcp.Tool
	index map[string]int
}

// NewCatalog returns the Homey tool catalog.
func NewCatalog() *Catalog {
	c := &Catalog{index: make(map[string]int)}

	c.RegisterTool(mcp.NewTool(ToolListDevices,
		mcp.WithDescription("List all devices connected to Homey"),
	))
	c.RegisterTool(mcp.NewTool(ToolGetDevice,
		mcp.WithDescription("Get details about a specific device"),
		mcp.WithString("deviceId",
			mcp.Required(),
			mcp.Description("The ID of the device"),
		),
	))
	c.RegisterTool(setCapabilityTool())
	c.RegisterTool(mcp.NewTool(ToolListZones,
		mcp.WithDescription("List all zones in Homey"),
	))
	c.RegisterTool(mcp.NewTool(ToolListFlows,
		mcp.WithDescription("List all flows in Homey"),
	))
	c.RegisterTool(mcp.NewTool(ToolTriggerFlow,
		mcp.WithDescription("Trigger a Homey Flow"),
		mcp.WithString("flowId",
			mcp.Required(),
			mcp.Description("The ID of the flow to trigger"),
		),
	))

	return c
}

// setCapabilityTool declares "value" without a type: it may be a boolean, number or string.
func setCapabilityTool() mcp.Tool {
	tool := mcp.NewTool(ToolSetCapability,
		mcp.WithDescription("Set a capability value for a device (e.g., turn on/off, set brightness)"),
		mcp.WithString("deviceId",
			mcp.Required(),
			mcp.Description("The ID of the device"),
		),
		mcp.WithString("capability",
			mcp.Required(),
			mcp.Description("The capability to set (e.g., onoff, dim, target_temperature)"),
		),
	)
	tool.InputSchema.Properties["value"] = map[string]any{
		"description": "The value to set (boolean, number, or string depending on capability)",
	}
	tool.InputSchema.Required = append(tool.InputSchema.Required, "value")
	return tool
}

// RegisterTool appends a tool, replacing any earlier tool with the same name in place.
func (c *Catalog) RegisterTool(tool mcp.Tool) {
	if i, ok := c.index[tool.Name]; ok {
		c.tools[i] = tool
		return
	}
	c.index[tool.Name] = len(c.tools)
	c.tools = append(c.tools, tool)
}

// List returns all registered tools in registration order
func (c *Catalog) List() []mcp.Tool {
	out := make([]mcp.Tool, len(c.tools))
	copy(out, c.tools)
	return out
}

// GetTool retrieves a tool by name
func (c *Catalog) GetTool(name string) (mcp.Tool, error) {
	i, ok := c.index[name]
	if !ok {
		return mcp.Tool{}, &UnknownToolError{Name: name}
	}
	return c.tools[i], nil
}
