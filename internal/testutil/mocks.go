package testutil

import (
	"context"
	"errors"

	"ai-analytics/internal/llm"
	"ai-analytics/internal/service/rag"
	"ai-analytics/internal/store"
)

// MockProvider is a mock implementation of llm.Provider for testing
type MockProvider struct {
	NameValue    string
	SendChatFunc func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error)
}

func (m *MockProvider) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

func (m *MockProvider) SendChat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResult, error) {
	if m.SendChatFunc != nil {
		return m.SendChatFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// MockModelFinder is a mock implementation of dispatch.ModelFinder for testing
type MockModelFinder struct {
	FindByNameOrIDFunc func(nameOrID string) (*store.ModelDescriptor, error)
}

func (m *MockModelFinder) FindByNameOrID(nameOrID string) (*store.ModelDescriptor, error) {
	if m.FindByNameOrIDFunc != nil {
		return m.FindByNameOrIDFunc(nameOrID)
	}
	return nil, store.ErrNotFound
}

// MockHistoryAppender is a mock implementation of dispatch.HistoryAppender for testing
type MockHistoryAppender struct {
	AppendFunc func(entry store.HistoryEntry) (*store.HistoryEntry, error)
}

func (m *MockHistoryAppender) Append(entry store.HistoryEntry) (*store.HistoryEntry, error) {
	if m.AppendFunc != nil {
		return m.AppendFunc(entry)
	}
	return nil, errors.New("not implemented")
}

// MockAugmenter is a mock implementation of dispatch.Augmenter for testing
type MockAugmenter struct {
	AugmentFunc func(ctx context.Context, useRAG bool, contextCode, inputText string) (string, *rag.Info)
}

func (m *MockAugmenter) Augment(ctx context.Context, useRAG bool, contextCode, inputText string) (string, *rag.Info) {
	if m.AugmentFunc != nil {
		return m.AugmentFunc(ctx, useRAG, contextCode, inputText)
	}
	return inputText, nil
}

// MockPromptReader is a mock implementation of the prompt lookup used by handlers
type MockPromptReader struct {
	GetFunc  func(name string) (*store.PromptTemplate, error)
	ListFunc func() ([]store.PromptTemplate, error)
}

func (m *MockPromptReader) Get(name string) (*store.PromptTemplate, error) {
	if m.GetFunc != nil {
		return m.GetFunc(name)
	}
	return nil, store.ErrNotFound
}

func (m *MockPromptReader) List() ([]store.PromptTemplate, error) {
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	return nil, errors.New("not implemented")
}
