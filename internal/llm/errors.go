package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ProviderError is the single error type raised by all adapters. Message
// carries the most specific description available: the provider's structured
// error.message, a plain string error field, the HTTP status text, or the
// transport error.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Details    json.RawMessage
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API Error: %d - %s", e.StatusCode, e.Message)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// newStatusError builds a ProviderError from a non-2xx response body.
func newStatusError(provider string, status int, body []byte) *ProviderError {
	message := http.StatusText(status)

	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		var structured struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(parsed.Error, &structured); err == nil && structured.Message != "" {
			message = structured.Message
		} else {
			var plain string
			if err := json.Unmarshal(parsed.Error, &plain); err == nil && plain != "" {
				message = plain
			}
		}
	}

	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    message,
		Details:    json.RawMessage(body),
	}
}

// newTransportError wraps a network-level failure.
func newTransportError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  err.Error(),
		Err:      err,
	}
}
