package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-analytics/internal/logger"

	"github.com/sirupsen/logrus"
)

// DirectProvider sends chat completions to an arbitrary OpenAI-compatible
// endpoint. The base URL and key come from the model registry entry.
type DirectProvider struct {
	apiKey          string
	baseURL         string
	thinkingEnabled bool
	client          *http.Client
}

// NewDirectProvider creates a Direct adapter. Both the API key and base URL
// are required.
func NewDirectProvider(apiKey, baseURL string, thinkingEnabled bool) (*DirectProvider, error) {
	if apiKey == "" || baseURL == "" {
		return nil, fmt.Errorf("direct provider requires both api_key and base_url")
	}
	return &DirectProvider{
		apiKey:          apiKey,
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		thinkingEnabled: thinkingEnabled,
		client:          &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (p *DirectProvider) Name() string { return string(ProviderDirect) }

// SendChat sends a chat request to the configured endpoint and returns the
// normalized result.
func (p *DirectProvider) SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	logger.Log.WithFields(logrus.Fields{
		"model":    req.Model,
		"base_url": p.baseURL,
	}).Info("Calling Direct API")

	payload := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      req.Stream,
	}
	// Z.AI extension, harmless for other OpenAI-compatible endpoints
	if p.thinkingEnabled {
		payload.Thinking = &thinkingMode{Type: "enabled"}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
	}

	start := time.Now()
	completion, err := postChatCompletions(ctx, p.client, p.Name(), p.baseURL+"/chat/completions", headers, payload)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	model := completion.Model
	if model == "" {
		model = req.Model
	}

	logger.Log.WithFields(logrus.Fields{
		"model":            model,
		"response_time_ms": elapsed,
	}).Info("Direct response received")

	return &ChatResult{
		Content:        completion.Choices[0].Message.Content,
		Model:          model,
		Usage:          completion.Usage,
		Provider:       p.Name(),
		ResponseTimeMs: elapsed,
	}, nil
}
