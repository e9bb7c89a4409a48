package tools

// Arguments is the validated argument set of one tool call. The concrete type names the tool.
type Arguments interface {
	ToolName() string
}

type ListDevicesArgs struct{}

type GetDeviceArgs struct {
	DeviceID string
}

type SetCapabilityArgs struct {
	DeviceID   string
	Capability string
	Value      any
}

type ListZonesArgs struct{}

type ListFlowsArgs struct{}

type TriggerFlowArgs struct {
	FlowID string
}

func (ListDevicesArgs) ToolName() string   { return ToolListDevices }
func (GetDeviceArgs) ToolName() string     { return ToolGetDevice }
func (SetCapabilityArgs) ToolName() string { return ToolSetCapability }
func (ListZonesArgs) ToolName() string     { return ToolListZones }
func (ListFlowsArgs) ToolName() string     { return ToolListFlows }
func (TriggerFlowArgs) ToolName() string   { return ToolTriggerFlow }

// ParseArguments checks raw against the named tool's required keys and returns its typed arguments.
// Value types are not checked beyond what the published schema declares.
func ParseArguments(name string, raw map[string]any) (Arguments, error) {
	switch name {
	case ToolListDevices:
		return ListDevicesArgs{}, nil
	case ToolGetDevice:
		id, err := requireString(name, raw, "deviceId")
		if err != nil {
			return nil, err
		}
		return GetDeviceArgs{DeviceID: id}, nil
	case ToolSetCapability:
		id, err := requireString(name, raw, "deviceId")
		if err != nil {
			return nil, err
		}
		capability, err := requireString(name, raw, "capability")
		if err != nil {
			return nil, err
		}
		value, ok := raw["value"]
		if !ok {
			return nil, &ArgumentError{Tool: name, Argument: "value", Reason: "is required"}
		}
		return SetCapabilityArgs{DeviceID: id, Capability: capability, Value: value}, nil
	case ToolListZones:
		return ListZonesArgs{}, nil
	case ToolListFlows:
		return ListFlowsArgs{}, nil
	case ToolTriggerFlow:
		id, err := requireString(name, raw, "flowId")
		if err != nil {
			return nil, err
		}
		return TriggerFlowArgs{FlowID: id}, nil
	default:
		return nil, &UnknownToolError{Name: name}
	}
}

func requireString(tool string, raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", &ArgumentError{Tool: tool, Argument: key, Reason: "is required"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ArgumentError{Tool: tool, Argument: key, Reason: "must be a string"}
	}
	return s, nil
}
