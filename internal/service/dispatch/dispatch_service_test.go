package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-analytics/internal/config"
	"ai-analytics/internal/llm"
	"ai-analytics/internal/service/rag"
	"ai-analytics/internal/store"
	"ai-analytics/internal/testutil"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		LLM: config.LLMConfig{
			OpenRouterKey: "or-key",
			GroqKey:       "groq-key",
		},
		Default: testDefaults(),
	}
}

func newTestService(cfg *config.AppConfig, finder *testutil.MockModelFinder, history *testutil.MockHistoryAppender, augmenter *testutil.MockAugmenter) *Service {
	if finder == nil {
		finder = &testutil.MockModelFinder{}
	}
	if augmenter == nil {
		augmenter = &testutil.MockAugmenter{}
	}
	return NewService(cfg, finder, history, augmenter)
}

func TestSendValidatesRequiredFields(t *testing.T) {
	svc := newTestService(testConfig(), nil, nil, nil)

	tests := []struct {
		name string
		req  SendRequest
	}{
		{"missing prompt", SendRequest{InputText: "text"}},
		{"missing inputText", SendRequest{Prompt: "prompt"}},
		{"blank prompt", SendRequest{Prompt: "  ", InputText: "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.req)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestSendResolvesAliasAndDispatches(t *testing.T) {
	history := &testutil.MockHistoryAppender{
		AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
			entry.ID = "1"
			return &entry, nil
		},
	}
	svc := newTestService(testConfig(), nil, history, nil)

	var gotReq llm.ChatRequest
	svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
		if provider != llm.ProviderGroq {
			t.Errorf("provider = %q, want groq", provider)
		}
		return &testutil.MockProvider{
			SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
				gotReq = req
				return &llm.ChatResult{
					Content: "answer",
					Model:   req.Model,
					Usage:   map[string]any{"prompt_tokens": float64(7), "completion_tokens": float64(3), "total_tokens": float64(10)},
				}, nil
			},
		}, nil
	}

	result, err := svc.Send(context.Background(), SendRequest{
		Model:     "fast",
		Prompt:    "You are a summarizer",
		InputText: "long article",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if gotReq.Model != "llama3-70b-8192" {
		t.Errorf("dispatched model = %q, want tier default", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotReq.Messages)
	}
	if gotReq.Temperature != 0.7 || gotReq.MaxTokens != 1024 {
		t.Errorf("defaults not applied: temp=%v maxTokens=%v", gotReq.Temperature, gotReq.MaxTokens)
	}
	if result.Provider != "groq" {
		t.Errorf("result provider = %q, want groq", result.Provider)
	}
	if result.Content != "answer" {
		t.Errorf("result content = %q", result.Content)
	}
}

func TestSendAutodetectsProviderFromRegistry(t *testing.T) {
	finder := &testutil.MockModelFinder{
		FindByNameOrIDFunc: func(nameOrID string) (*store.ModelDescriptor, error) {
			if nameOrID != "glm-4.5" {
				return nil, store.ErrNotFound
			}
			return &store.ModelDescriptor{ID: "glm-4.5", Provider: "direct", BaseURL: "https://api.z.ai/api/paas/v4", APIKey: "model-key"}, nil
		},
	}
	history := &testutil.MockHistoryAppender{
		AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
			entry.ID = "2"
			return &entry, nil
		},
	}
	svc := newTestService(testConfig(), finder, history, nil)

	var gotProvider llm.ProviderType
	var gotModel *store.ModelDescriptor
	svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
		gotProvider = provider
		gotModel = model
		return &testutil.MockProvider{
			SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
				return &llm.ChatResult{Content: "ok", Model: req.Model}, nil
			},
		}, nil
	}

	result, err := svc.Send(context.Background(), SendRequest{
		Model:     "glm-4.5",
		Prompt:    "p",
		InputText: "t",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotProvider != llm.ProviderDirect {
		t.Errorf("autodetected provider = %q, want direct", gotProvider)
	}
	if gotModel == nil || gotModel.BaseURL == "" {
		t.Error("registry entry not passed to the provider factory")
	}
	if result.Provider != "direct" {
		t.Errorf("result provider = %q, want direct", result.Provider)
	}
}

func TestSendUnknownModelDefaultsToOpenRouter(t *testing.T) {
	history := &testutil.MockHistoryAppender{
		AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
			entry.ID = "3"
			return &entry, nil
		},
	}
	svc := newTestService(testConfig(), nil, history, nil)

	var gotProvider llm.ProviderType
	svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
		gotProvider = provider
		return &testutil.MockProvider{
			SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
				return &llm.ChatResult{Content: "ok", Model: req.Model}, nil
			},
		}, nil
	}

	if _, err := svc.Send(context.Background(), SendRequest{Model: "mystery-model", Prompt: "p", InputText: "t"}); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotProvider != llm.ProviderOpenRouter {
		t.Errorf("fallback provider = %q, want openroute", gotProvider)
	}
}

func TestSendConfigurationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.AppConfig
		req  SendRequest
	}{
		{
			name: "groq key missing",
			cfg: &config.AppConfig{
				LLM:     config.LLMConfig{OpenRouterKey: "or-key"},
				Default: testDefaults(),
			},
			req: SendRequest{Model: "fast", Prompt: "p", InputText: "t"},
		},
		{
			name: "openrouter key missing",
			cfg: &config.AppConfig{
				LLM:     config.LLMConfig{GroqKey: "groq-key"},
				Default: testDefaults(),
			},
			req: SendRequest{Model: "cheap", Prompt: "p", InputText: "t"},
		},
		{
			name: "direct provider without credentials",
			cfg:  testConfig(),
			req:  SendRequest{Model: "some-model", Provider: "direct", Prompt: "p", InputText: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &testutil.MockHistoryAppender{
				AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
					t.Error("history must not be written on configuration errors")
					return nil, nil
				},
			}
			svc := newTestService(tt.cfg, nil, history, nil)

			_, err := svc.Send(context.Background(), tt.req)
			var cerr *ConfigurationError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestSendUnknownProviderIsValidationError(t *testing.T) {
	svc := newTestService(testConfig(), nil, nil, nil)
	_, err := svc.Send(context.Background(), SendRequest{Model: "m", Provider: "anthropic", Prompt: "p", InputText: "t"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(verr.Message, "anthropic") {
		t.Errorf("message should name the provider: %q", verr.Message)
	}
}

func TestSendUsesAugmentedInput(t *testing.T) {
	augmenter := &testutil.MockAugmenter{
		AugmentFunc: func(ctx context.Context, useRAG bool, contextCode, inputText string) (string, *rag.Info) {
			if !useRAG || contextCode != "docs" {
				t.Errorf("augment called with useRAG=%v contextCode=%q", useRAG, contextCode)
			}
			return "context + " + inputText, &rag.Info{Used: true, ContextCode: contextCode, DocumentsCount: 2}
		},
	}
	history := &testutil.MockHistoryAppender{
		AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
			entry.ID = "4"
			return &entry, nil
		},
	}
	svc := newTestService(testConfig(), nil, history, augmenter)

	var gotUserMessage string
	svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
		return &testutil.MockProvider{
			SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
				gotUserMessage = req.Messages[1].Content
				return &llm.ChatResult{Content: "ok", Model: req.Model}, nil
			},
		}, nil
	}

	result, err := svc.Send(context.Background(), SendRequest{
		Model:       "cheap",
		Prompt:      "p",
		InputText:   "question",
		UseRAG:      true,
		ContextCode: "docs",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotUserMessage != "context + question" {
		t.Errorf("user message = %q, augmented text not used", gotUserMessage)
	}
	if result.RAG == nil || !result.RAG.Used || result.RAG.DocumentsCount != 2 {
		t.Errorf("RAG info not propagated: %+v", result.RAG)
	}
}

func TestSendHistoryRecording(t *testing.T) {
	t.Run("auto-saved flag follows saveResponse", func(t *testing.T) {
		var saved store.HistoryEntry
		history := &testutil.MockHistoryAppender{
			AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
				saved = entry
				entry.ID = "5"
				return &entry, nil
			},
		}
		svc := newTestService(testConfig(), nil, history, nil)
		svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
			return &testutil.MockProvider{
				SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
					return &llm.ChatResult{Content: "resp", Model: req.Model}, nil
				},
			}, nil
		}

		_, err := svc.Send(context.Background(), SendRequest{
			Model:      "cheap",
			Prompt:     "p",
			PromptName: "summary",
			InputText:  "original text",
			UseRAG:     true,
		})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if !saved.AutoSaved {
			t.Error("autoSaved should be true when saveResponse is false")
		}
		if saved.PromptName != "summary" {
			t.Errorf("promptName = %q", saved.PromptName)
		}
		if saved.InputText != "original text" {
			t.Errorf("history must keep the original input, got %q", saved.InputText)
		}
		if saved.Tokens.Source != "estimated" {
			t.Errorf("tokens source = %q, want estimated without usage", saved.Tokens.Source)
		}
	})

	t.Run("skipHistory suppresses persistence", func(t *testing.T) {
		history := &testutil.MockHistoryAppender{
			AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
				t.Error("history must not be written when skipHistory is set")
				return nil, nil
			},
		}
		svc := newTestService(testConfig(), nil, history, nil)
		svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
			return &testutil.MockProvider{
				SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
					return &llm.ChatResult{Content: "resp", Model: req.Model}, nil
				},
			}, nil
		}

		if _, err := svc.Send(context.Background(), SendRequest{Model: "cheap", Prompt: "p", InputText: "t", SkipHistory: true}); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	})

	t.Run("provider failure is not persisted", func(t *testing.T) {
		history := &testutil.MockHistoryAppender{
			AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
				t.Error("history must not be written on provider errors")
				return nil, nil
			},
		}
		svc := newTestService(testConfig(), nil, history, nil)
		svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
			return &testutil.MockProvider{
				SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
					return nil, &llm.ProviderError{StatusCode: 429, Message: "rate limited"}
				},
			}, nil
		}

		_, err := svc.Send(context.Background(), SendRequest{Model: "cheap", Prompt: "p", InputText: "t"})
		var perr *llm.ProviderError
		if !errors.As(err, &perr) {
			t.Fatalf("expected ProviderError, got %v", err)
		}
	})

	t.Run("append failure does not fail the request", func(t *testing.T) {
		history := &testutil.MockHistoryAppender{
			AppendFunc: func(entry store.HistoryEntry) (*store.HistoryEntry, error) {
				return nil, errors.New("disk full")
			},
		}
		svc := newTestService(testConfig(), nil, history, nil)
		svc.newProvider = func(provider llm.ProviderType, model *store.ModelDescriptor) (llm.Provider, error) {
			return &testutil.MockProvider{
				SendChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
					return &llm.ChatResult{Content: "resp", Model: req.Model}, nil
				},
			}, nil
		}

		result, err := svc.Send(context.Background(), SendRequest{Model: "cheap", Prompt: "p", InputText: "t"})
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if result.Content != "resp" {
			t.Errorf("result content = %q", result.Content)
		}
	})
}
