package tools

import "fmt"

// UnknownToolError is returned for a tool name that is not in the catalog.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// ArgumentError is returned when a required argument is absent or has the wrong shape.
type ArgumentError struct {
	Tool     string
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: %q %s", e.Tool, e.Argument, e.Reason)
}

// RemoteOperationError wraps a failed fetch or mutation against Homey.
type RemoteOperationError struct {
	Op  string
	Err error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

func remote(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteOperationError{Op: op, Err: err}
}
