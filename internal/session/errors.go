package session

import "fmt"

// ConfigurationError means a required credential is missing. No network attempt was made.
type ConfigurationError struct{}

func (e *ConfigurationError) Error() string {
	return "HOMEY_API_TOKEN and HOMEY_LOCAL_IP environment variables must be set"
}

// ConnectionError means the handshake with Homey failed.
type ConnectionError struct {
	Address string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to Homey at %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
