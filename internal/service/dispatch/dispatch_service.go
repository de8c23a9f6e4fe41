package dispatch

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"ai-analytics/internal/config"
	"ai-analytics/internal/llm"
	"ai-analytics/internal/logger"
	"ai-analytics/internal/service/rag"
	"ai-analytics/internal/store"
	"ai-analytics/internal/tokens"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
)

// ModelFinder looks up a registry entry by visible name or ID.
type ModelFinder interface {
	FindByNameOrID(nameOrID string) (*store.ModelDescriptor, error)
}

// HistoryAppender persists a completed exchange.
type HistoryAppender interface {
	Append(entry store.HistoryEntry) (*store.HistoryEntry, error)
}

// Augmenter optionally enriches the input text with knowledge-base context.
type Augmenter interface {
	Augment(ctx context.Context, useRAG bool, contextCode, inputText string) (string, *rag.Info)
}

// providerFactory builds the adapter for a resolved provider. Replaced in
// tests to avoid real network clients.
type providerFactory func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error)

// SendRequest carries one chat dispatch through the pipeline.
type SendRequest struct {
	Model        string
	Provider     string
	Prompt       string
	PromptName   string
	InputText    string
	UseRAG       bool
	ContextCode  string
	Temperature  *float64
	MaxTokens    *int
	SaveResponse bool
	SkipHistory  bool
}

// SendResult is what the handlers return to the client.
type SendResult struct {
	Content  string
	Model    string
	Usage    map[string]any
	Provider string
	RAG      *rag.Info
}

// Service runs the dispatch pipeline: validate, resolve the model alias,
// pick and configure a provider, augment the input, call the model and
// record the exchange.
type Service struct {
	cfg         *config.AppConfig
	models      ModelFinder
	history     HistoryAppender
	rag         Augmenter
	newProvider providerFactory
}

func NewService(cfg *config.AppConfig, models ModelFinder, history HistoryAppender, ragService Augmenter) *Service {
	s := &Service{
		cfg:     cfg,
		models:  models,
		history: history,
		rag:     ragService,
	}
	s.newProvider = s.buildProvider
	return s
}

func (s *Service) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.InputText) == "" {
		return nil, &ValidationError{Message: "fields prompt and inputText are required"}
	}

	resolved := ResolveModel(s.cfg.Default, req.Model, req.Provider)
	model := resolved.Model
	provider := resolved.Provider

	// The registry entry also carries per-model credentials for the
	// direct provider, so look it up even when the provider is explicit.
	var modelData *store.ModelDescriptor
	if md, err := s.models.FindByNameOrID(model); err == nil {
		modelData = md
	}
	if provider == "" {
		if modelData != nil {
			provider = modelData.Provider
		} else {
			provider = string(llm.ProviderOpenRouter)
		}
	}

	providerType, err := llm.ParseProviderType(provider)
	if err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown provider: %s", provider)}
	}

	logger.Log.WithFields(logrus.Fields{
		"model":    model,
		"provider": providerType,
		"resolved": resolved.WasResolved,
	}).Info("Dispatching chat request")

	adapter, err := s.newProvider(providerType, modelData)
	if err != nil {
		return nil, err
	}

	finalInputText, ragInfo := s.rag.Augment(ctx, req.UseRAG, req.ContextCode, req.InputText)

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	result, err := adapter.SendChat(ctx, llm.ChatRequest{
		Model: model,
		Messages: []llm.Message{
			{Role: "system", Content: req.Prompt},
			{Role: "user", Content: finalInputText},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, err
	}

	tokensInfo := tokens.Build(result.Usage, req.Prompt, finalInputText, result.Content)

	if !req.SkipHistory && ctx.Err() == nil {
		entry := store.HistoryEntry{
			Model:      model,
			Provider:   provider,
			PromptName: req.PromptName,
			Prompt:     req.Prompt,
			InputText:  req.InputText,
			Response:   result.Content,
			Tokens:     tokensInfo,
			AutoSaved:  !req.SaveResponse,
		}
		if saved, saveErr := s.history.Append(entry); saveErr != nil {
			logger.Log.WithError(saveErr).Error("Failed to save response to history")
		} else {
			logger.Log.WithField("id", saved.ID).Info("Response saved to history")
		}
	}

	return &SendResult{
		Content:  result.Content,
		Model:    result.Model,
		Usage:    result.Usage,
		Provider: provider,
		RAG:      ragInfo,
	}, nil
}

// buildProvider checks credentials and constructs the real adapter. All
// failures here happen before any upstream call is made.
func (s *Service) buildProvider(provider llm.ProviderType, modelData *store.ModelDescriptor) (llm.Provider, error) {
	switch provider {
	case llm.ProviderGroq:
		if s.cfg.LLM.GroqKey == "" {
			return nil, &ConfigurationError{Message: "GROQ_API_KEY is not configured"}
		}
		p, err := llm.NewGroqProvider(s.cfg.LLM.GroqKey)
		if err != nil {
			return nil, &ConfigurationError{Message: err.Error()}
		}
		return p, nil
	case llm.ProviderDirect:
		var apiKey, baseURL string
		if modelData != nil {
			apiKey = modelData.APIKey
			if apiKey == "" && modelData.APIKeyEnv != "" {
				apiKey = os.Getenv(modelData.APIKeyEnv)
			}
			baseURL = modelData.BaseURL
		}
		if apiKey == "" {
			apiKey = s.cfg.LLM.DirectAPIKey
		}
		if apiKey == "" || baseURL == "" {
			return nil, &ConfigurationError{
				Message: "direct provider requires base_url on the model and an API key (model api_key or DIRECT_API_KEY)",
			}
		}
		p, err := llm.NewDirectProvider(apiKey, baseURL, s.cfg.LLM.ZAIThinkingEnabled)
		if err != nil {
			return nil, &ConfigurationError{Message: err.Error()}
		}
		return p, nil
	default:
		if s.cfg.LLM.OpenRouterKey == "" {
			return nil, &ConfigurationError{Message: "OPENROUTER_API_KEY is not configured"}
		}
		return llm.NewOpenRouterProvider(s.cfg.LLM.OpenRouterKey), nil
	}
}
