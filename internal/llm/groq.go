package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ai-analytics/internal/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider sends chat completions to the GROQ API, which is strictly
// OpenAI-compatible, through the go-openai client.
type GroqProvider struct {
	client *openai.Client
}

// NewGroqProvider creates a GROQ adapter. The API key is required.
func NewGroqProvider(apiKey string) (*GroqProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GROQ API key is not configured")
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = groqBaseURL
	cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &GroqProvider{client: openai.NewClientWithConfig(cfg)}, nil
}

func (p *GroqProvider) Name() string { return string(ProviderGroq) }

// SendChat sends a chat request to GROQ and returns the normalized result.
func (p *GroqProvider) SendChat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	logger.Log.WithFields(logrus.Fields{
		"model":         req.Model,
		"message_count": len(req.Messages),
	}).Info("Calling GROQ API")

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, mapOpenAIError(p.Name(), err)
	}
	elapsed := time.Since(start).Milliseconds()

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Message: "no response from API"}
	}

	model := resp.Model
	if model == "" {
		model = req.Model
	}

	logger.Log.WithFields(logrus.Fields{
		"model":            model,
		"response_time_ms": elapsed,
		"total_tokens":     resp.Usage.TotalTokens,
	}).Info("GROQ response received")

	return &ChatResult{
		Content: resp.Choices[0].Message.Content,
		Model:   model,
		Usage: map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
		Provider:       p.Name(),
		ResponseTimeMs: elapsed,
	}, nil
}

// SendChatStream starts a streaming completion and hands the raw stream back
// to the caller; stream consumption is the caller's responsibility.
func (p *GroqProvider) SendChatStream(ctx context.Context, req ChatRequest) (*openai.ChatCompletionStream, error) {
	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    toOpenAIMessages(req.Messages),
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, mapOpenAIError(p.Name(), err)
	}
	return stream, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

func mapOpenAIError(provider string, err error) *ProviderError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{
			Provider:   provider,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		message := http.StatusText(reqErr.HTTPStatusCode)
		if message == "" {
			message = err.Error()
		}
		return &ProviderError{
			Provider:   provider,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    message,
			Err:        err,
		}
	}

	return newTransportError(provider, err)
}
