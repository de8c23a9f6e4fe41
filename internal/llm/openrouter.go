package llm

import (
	"context"
	"net/http"
	"time"

	"ai-analytics/internal/logger"

	"github.com/sirupsen/logrus"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterProvider sends chat completions to the OpenRouter API.
type OpenRouterProvider struct {
	apiKey string
	client *http.Client
}

// NewOpenRouterProvider creates a new OpenRouter adapter.
func NewOpenRouterProvider(apiKey string) *OpenRouterProvider {
	return &OpenRouterProvider{
		apiKey: apiKey,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *OpenRouterProvider) Name() string { return string(ProviderOpenRouter) }

// SendChat sends a chat request to OpenRouter and returns the normalized result.
func (p *OpenRouterProvider) SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if p.apiKey == "" {
		return nil, &ProviderError{Provider: p.Name(), Message: "OPENROUTER_API_KEY not configured"}
	}

	logger.Log.WithFields(logrus.Fields{
		"model":         req.Model,
		"message_count": len(req.Messages),
	}).Info("Calling OpenRouter API")

	headers := map[string]string{
		"Authorization": "Bearer " + p.apiKey,
		"HTTP-Referer":  "http://localhost:3000",
		"X-Title":       "AI Analytics Interface",
	}

	start := time.Now()
	completion, err := postChatCompletions(ctx, p.client, p.Name(), openRouterURL, headers, chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
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
	}).Info("OpenRouter response received")

	return &ChatResult{
		Content:        completion.Choices[0].Message.Content,
		Model:          model,
		Usage:          completion.Usage,
		Provider:       p.Name(),
		ResponseTimeMs: elapsed,
	}, nil
}
