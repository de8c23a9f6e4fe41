// Package rag talks to the external langchain-pg retrieval service and
// augments outbound requests with retrieved context. RAG is an enhancement,
// never a hard dependency: every failure here degrades to the unaugmented
// input.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"ai-analytics/internal/config"
	"ai-analytics/internal/logger"

	"github.com/sirupsen/logrus"
)

// Document is one retrieved context document.
type Document struct {
	PageContent string           `json:"pageContent"`
	Metadata    DocumentMetadata `json:"metadata"`
}

// DocumentMetadata identifies where a document came from.
type DocumentMetadata struct {
	Filename    string `json:"filename"`
	Source      string `json:"source"`
	ContextCode string `json:"contextCode"`
}

// AskResponse is the langchain-pg answer payload.
type AskResponse struct {
	Answer      string     `json:"answer,omitempty"`
	ContextCode string     `json:"contextCode"`
	Documents   []Document `json:"documents"`
}

// SourceInfo is one document reference surfaced to the caller.
type SourceInfo struct {
	Filename    string `json:"filename"`
	Source      string `json:"source"`
	ContextCode string `json:"contextCode"`
}

// Info describes what augmentation did for one request.
type Info struct {
	Used           bool         `json:"used"`
	ContextCode    string       `json:"contextCode"`
	DocumentsCount int          `json:"documentsCount"`
	Sources        []SourceInfo `json:"sources"`
}

// DebugInfo is the single-slot snapshot of the last augmentation attempt,
// overwritten on every call. Diagnostic only.
type DebugInfo struct {
	RAGEnabled     bool   `json:"ragEnabled"`
	FinalInputText string `json:"finalInputText"`
	RAGInfo        *Info  `json:"ragInfo"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Service is the RAG collaborator client plus the augmentation step of the
// dispatch pipeline.
type Service struct {
	baseURL string
	enabled bool
	client  *http.Client

	mu        sync.Mutex
	lastDebug DebugInfo
}

// NewService creates a RAG service from configuration.
func NewService(cfg config.RAGConfig) *Service {
	return &Service{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		enabled: cfg.Enabled,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether the collaborator is configured and switched on.
func (s *Service) Enabled() bool { return s.enabled }

// AskQuestion queries the retrieval service.
func (s *Service) AskQuestion(ctx context.Context, question, contextCode string, showDetails bool) (*AskResponse, error) {
	payload := map[string]any{
		"question":    question,
		"contextCode": nil,
		"showDetails": showDetails,
	}
	if contextCode != "" {
		payload["contextCode"] = contextCode
	}

	body, err := s.post(ctx, "/ask", payload)
	if err != nil {
		return nil, err
	}

	var resp AskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("error decoding RAG response: %w", err)
	}
	return &resp, nil
}

// ContextCodes returns the raw list of available context codes.
func (s *Service) ContextCodes(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/context-codes")
}

// Documents returns the raw list of indexed documents.
func (s *Service) Documents(ctx context.Context) (json.RawMessage, error) {
	return s.get(ctx, "/documents")
}

// Augment optionally rewrites inputText with retrieved context. It never
// fails: any collaborator error is logged and the original text is returned
// with a nil Info. The attempt is recorded in the debug slot either way.
func (s *Service) Augment(ctx context.Context, useRAG bool, contextCode, inputText string) (string, *Info) {
	finalInputText := inputText
	var info *Info

	attempted := useRAG && s.enabled
	if attempted {
		logger.Log.WithField("context_code", contextCode).Info("Using RAG")

		resp, err := s.AskQuestion(ctx, inputText, contextCode, true)
		switch {
		case err != nil:
			// degrade gracefully, the provider call proceeds without context
			logger.Log.WithFields(logrus.Fields{
				"context_code": contextCode,
			}).WithError(err).Warn("RAG request failed, continuing without augmentation")
		case len(resp.Documents) == 0:
			logger.Log.WithField("context_code", contextCode).Info("No documents found in RAG response")
		default:
			contents := make([]string, 0, len(resp.Documents))
			sources := make([]SourceInfo, 0, len(resp.Documents))
			for _, doc := range resp.Documents {
				contents = append(contents, doc.PageContent)
				sources = append(sources, SourceInfo{
					Filename:    doc.Metadata.Filename,
					Source:      doc.Metadata.Source,
					ContextCode: doc.Metadata.ContextCode,
				})
			}
			finalInputText = fmt.Sprintf("Контекст из базы знаний:\n%s\n\nВопрос пользователя: %s",
				strings.Join(contents, "\n\n"), inputText)
			info = &Info{
				Used:           true,
				ContextCode:    resp.ContextCode,
				DocumentsCount: len(resp.Documents),
				Sources:        sources,
			}
		}
	}

	s.mu.Lock()
	s.lastDebug = DebugInfo{
		RAGEnabled:     attempted,
		FinalInputText: finalInputText,
		RAGInfo:        info,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Unlock()

	return finalInputText, info
}

// DebugInfo returns the last augmentation snapshot.
func (s *Service) DebugInfo() DebugInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDebug
}

func (s *Service) post(ctx context.Context, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling RAG request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *Service) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return s.do(req)
}

func (s *Service) do(req *http.Request) (json.RawMessage, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RAG service returned status %d: %s", resp.StatusCode, string(body))
	}
	return json.RawMessage(body), nil
}
