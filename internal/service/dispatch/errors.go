package dispatch

import "fmt"

// ValidationError reports missing or malformed request fields. It is a
// client error: never persisted, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConfigurationError reports a missing provider credential or endpoint.
// It indicates deployment misconfiguration, not a transient failure.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// NotFoundError reports a referenced resource that does not exist.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}
