package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ai-analytics/internal/config"
	"ai-analytics/internal/llm"
	"ai-analytics/internal/logger"
	"ai-analytics/internal/store"
)

// Probe question and timeouts mirror the historical tester UI behaviour.
const (
	probeQuestion = "Кто ты? Ответь в одном предложении на русском."

	groqProbeTimeout       = 18 * time.Second
	openRouterProbeTimeout = 25 * time.Second
	directProbeTimeout     = 20 * time.Second

	defaultZAIKeyEnv  = "ZAI_API_KEY"
	defaultZAIBaseURL = "https://api.z.ai/api/paas/v4"
)

// Registry is the slice of the model store the service needs.
type Registry interface {
	FindByNameOrID(nameOrID string) (*store.ModelDescriptor, error)
	SetLastTest(modelID string, result store.TestResult) error
	ReplaceProvider(provider string, replacements []store.ModelDescriptor) error
	Defaults() (map[string]*store.ModelDescriptor, error)
}

// probeFunc sends the probe question to one model and returns the reply
// content. Replaced in tests.
type probeFunc func(ctx context.Context, model *store.ModelDescriptor) (string, error)

// Service runs on-demand connectivity probes against registry models and
// keeps the OpenRouter portion of the registry fresh.
type Service struct {
	cfg        *config.AppConfig
	registry   Registry
	probe      probeFunc
	catalogURL string
}

func NewService(cfg *config.AppConfig, registry Registry) *Service {
	s := &Service{
		cfg:        cfg,
		registry:   registry,
		catalogURL: "https://openrouter.ai/api/v1/models",
	}
	s.probe = s.sendProbe
	return s
}

// TestModel probes one registry model with a short question, records the
// outcome on the model's last_test field and returns it. A failed probe is
// a normal result, not an error; the error return covers unknown models and
// registry write failures only.
func (s *Service) TestModel(ctx context.Context, modelID string) (*store.TestResult, error) {
	model, err := s.registry.FindByNameOrID(modelID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result := store.TestResult{ErrorMessage: "Неизвестная ошибка"}

	content, probeErr := s.probe(ctx, model)
	if probeErr != nil {
		result.ErrorMessage = probeErrorMessage(probeErr)
	} else if trimmed := strings.TrimSpace(content); trimmed != "" {
		result.Success = true
		result.SampleResponse = trimmed
		result.ErrorMessage = ""
	} else {
		result.ErrorMessage = "Пустой ответ от модели"
	}

	result.ResponseTimeMs = int(time.Since(start).Milliseconds())
	result.Timestamp = time.Now().UTC().Format(time.RFC3339)

	logger.Log.WithFields(logrus.Fields{
		"model":            model.ID,
		"provider":         model.Provider,
		"success":          result.Success,
		"response_time_ms": result.ResponseTimeMs,
	}).Info("Model probe finished")

	if err := s.registry.SetLastTest(model.ID, result); err != nil {
		return nil, err
	}
	return &result, nil
}

// sendProbe dispatches the probe through the same adapters the chat
// pipeline uses, with per-provider deadlines.
func (s *Service) sendProbe(ctx context.Context, model *store.ModelDescriptor) (string, error) {
	messages := []llm.Message{{Role: "user", Content: probeQuestion}}

	switch model.Provider {
	case string(llm.ProviderGroq):
		provider, err := llm.NewGroqProvider(s.cfg.LLM.GroqKey)
		if err != nil {
			return "", err
		}
		probeCtx, cancel := context.WithTimeout(ctx, groqProbeTimeout)
		defer cancel()
		result, err := provider.SendChat(probeCtx, llm.ChatRequest{
			Model:       model.Name,
			Messages:    messages,
			MaxTokens:   120,
			Temperature: 0,
		})
		if err != nil {
			return "", err
		}
		return result.Content, nil

	case string(llm.ProviderOpenRouter), "openrouter":
		provider := llm.NewOpenRouterProvider(s.cfg.LLM.OpenRouterKey)
		probeCtx, cancel := context.WithTimeout(ctx, openRouterProbeTimeout)
		defer cancel()
		result, err := provider.SendChat(probeCtx, llm.ChatRequest{Model: model.Name, Messages: messages})
		if err != nil {
			return "", err
		}
		return result.Content, nil

	case string(llm.ProviderDirect):
		keyEnv := model.APIKeyEnv
		if keyEnv == "" {
			keyEnv = defaultZAIKeyEnv
		}
		apiKey := model.APIKey
		if apiKey == "" {
			apiKey = os.Getenv(keyEnv)
		}
		baseURL := model.BaseURL
		if baseURL == "" {
			baseURL = defaultZAIBaseURL
		}
		provider, err := llm.NewDirectProvider(apiKey, baseURL, false)
		if err != nil {
			return "", err
		}
		probeCtx, cancel := context.WithTimeout(ctx, directProbeTimeout)
		defer cancel()
		// Z.AI expects the bare model name without the glm- prefix.
		result, err := provider.SendChat(probeCtx, llm.ChatRequest{
			Model:    strings.TrimPrefix(model.Name, "glm-"),
			Messages: messages,
		})
		if err != nil {
			return "", err
		}
		return result.Content, nil

	default:
		return "", fmt.Errorf("unsupported provider: %s", model.Provider)
	}
}

// probeErrorMessage folds probe failures into the short operator-facing
// strings the tester UI shows.
func probeErrorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Таймаут — модель не ответила вовремя"
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		if errors.Is(perr.Err, context.DeadlineExceeded) {
			return "Таймаут — модель не ответила вовремя"
		}
		switch perr.StatusCode {
		case 429:
			return "429 Too Many Requests — лимит"
		case 401, 403:
			return "403/401 — нет доступа (ключи/баланс)"
		}
		if perr.Message != "" {
			return perr.Message
		}
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Ошибка сети"
}
