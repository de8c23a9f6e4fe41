package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// chatCompletionRequest is the OpenAI-compatible request payload used by the
// raw-HTTP adapters (OpenRouter and Direct).
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []Message     `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
	Thinking    *thinkingMode `json:"thinking,omitempty"`
}

// thinkingMode is a provider-specific extension (Z.AI) gated by configuration.
type thinkingMode struct {
	Type string `json:"type"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
}

// postChatCompletions POSTs an OpenAI-compatible payload and decodes the
// response, converting every failure into a *ProviderError.
func postChatCompletions(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload chatCompletionRequest) (*chatCompletionResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: "error marshaling request: " + err.Error(), Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &ProviderError{Provider: provider, Message: "error creating request: " + err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, newTransportError(provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(provider, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(provider, resp.StatusCode, body)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &ProviderError{Provider: provider, Message: "error decoding response: " + err.Error(), Err: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &ProviderError{Provider: provider, Message: "no response from API"}
	}
	return &completion, nil
}
