package llm

import "context"

// Message is one chat message in the OpenAI-compatible wire shape shared by
// all three providers.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the normalized chat-completion request sent to any provider.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	Stream      bool
}

// ChatResult is the normalized chat-completion result. Usage keeps the
// provider's raw field names so token accounting can reconcile the
// different conventions downstream.
type ChatResult struct {
	Content        string
	Model          string
	Usage          map[string]any
	Provider       string
	ResponseTimeMs int64
}

// Provider is the common adapter contract for upstream LLM APIs.
type Provider interface {
	// Name returns the provider tag used in registry entries and history.
	Name() string

	// SendChat sends a chat-completion request and returns the normalized
	// result. Failures surface as *ProviderError; no retries are attempted.
	SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error)
}
