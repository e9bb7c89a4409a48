package homey

import "fmt"

// APIError is returned when Homey answers with a non-2xx status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s %s: unexpected status code: %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %s (status %d)", e.Method, e.Path, e.Message, e.StatusCode)
}
