package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ai-analytics/internal/service/dispatch"
	"ai-analytics/internal/service/rag"
	"ai-analytics/internal/store"
	"ai-analytics/pkg/validation"
)

// Dispatcher runs the chat dispatch pipeline.
type Dispatcher interface {
	Send(ctx context.Context, req dispatch.SendRequest) (*dispatch.SendResult, error)
}

// PromptReader is the read side of the prompt store.
type PromptReader interface {
	Get(name string) (*store.PromptTemplate, error)
	List() ([]store.PromptTemplate, error)
}

// Request/Response types

type SendRequestBody struct {
	Model        string   `json:"model,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Prompt       string   `json:"prompt"`
	InputText    string   `json:"inputText"`
	UseRAG       bool     `json:"useRag,omitempty"`
	ContextCode  string   `json:"contextCode,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
	MaxTokens    *int     `json:"maxTokens,omitempty"`
	SaveResponse bool     `json:"saveResponse,omitempty"`
}

type SendSysRequestBody struct {
	Model        string `json:"model,omitempty"`
	Provider     string `json:"provider,omitempty"`
	PromptName   string `json:"prompt_name"`
	InputText    string `json:"inputText"`
	SaveResponse *bool  `json:"saveResponse,omitempty"`
}

type SendResponse struct {
	Success  bool           `json:"success"`
	Content  string         `json:"content"`
	Model    string         `json:"model"`
	Usage    map[string]any `json:"usage,omitempty"`
	Provider string         `json:"provider,omitempty"`
	RAG      *rag.Info      `json:"rag,omitempty"`
}

type PromptUsed struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type SendSysResponse struct {
	Success    bool           `json:"success"`
	Content    string         `json:"content"`
	Model      string         `json:"model"`
	Usage      map[string]any `json:"usage,omitempty"`
	PromptUsed PromptUsed     `json:"prompt_used"`
}

// SendHandlers owns the dispatch endpoints.
type SendHandlers struct {
	dispatcher Dispatcher
	prompts    PromptReader
	validator  *validation.SendRequestValidator
}

func NewSendHandlers(dispatcher Dispatcher, prompts PromptReader) *SendHandlers {
	return &SendHandlers{
		dispatcher: dispatcher,
		prompts:    prompts,
		validator:  validation.NewSendRequestValidator(),
	}
}

// SendRequestHandler handles POST /api/send-request
func (h *SendHandlers) SendRequestHandler(w http.ResponseWriter, r *http.Request) {
	var body SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateSendRequest(body.Prompt, body.InputText, body.Temperature, body.MaxTokens); err != nil {
		sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.dispatcher.Send(r.Context(), dispatch.SendRequest{
		Model:        body.Model,
		Provider:     body.Provider,
		Prompt:       body.Prompt,
		InputText:    body.InputText,
		UseRAG:       body.UseRAG,
		ContextCode:  body.ContextCode,
		Temperature:  body.Temperature,
		MaxTokens:    body.MaxTokens,
		SaveResponse: body.SaveResponse,
	})
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, SendResponse{
		Success:  true,
		Content:  result.Content,
		Model:    result.Model,
		Usage:    result.Usage,
		Provider: result.Provider,
		RAG:      result.RAG,
	})
}

// SendRequestSysHandler handles POST /api/send-request-sys: the prompt is
// referenced by name and echoed back in the response.
func (h *SendHandlers) SendRequestSysHandler(w http.ResponseWriter, r *http.Request) {
	var body SendSysRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if body.PromptName == "" || body.InputText == "" {
		sendError(w, http.StatusBadRequest, "fields prompt_name and inputText are required", nil)
		return
	}

	prompt, err := h.prompts.Get(body.PromptName)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Prompt with name \""+body.PromptName+"\" not found", nil)
			return
		}
		sendServiceError(w, err)
		return
	}

	// Named-prompt requests save to history unless explicitly declined.
	saveResponse := true
	if body.SaveResponse != nil {
		saveResponse = *body.SaveResponse
	}

	result, err := h.dispatcher.Send(r.Context(), dispatch.SendRequest{
		Model:        body.Model,
		Provider:     body.Provider,
		Prompt:       prompt.Text,
		PromptName:   prompt.Name,
		InputText:    body.InputText,
		SaveResponse: saveResponse,
	})
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, SendSysResponse{
		Success: true,
		Content: result.Content,
		Model:   result.Model,
		Usage:   result.Usage,
		PromptUsed: PromptUsed{
			Name: prompt.Name,
			Text: prompt.Text,
		},
	})
}

// AnalyzeHandler handles POST /analyze: a send-request variant for
// machine clients that never touches history and omits the provider field.
func (h *SendHandlers) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var body SendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateSendRequest(body.Prompt, body.InputText, body.Temperature, body.MaxTokens); err != nil {
		sendError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result, err := h.dispatcher.Send(r.Context(), dispatch.SendRequest{
		Model:       body.Model,
		Provider:    body.Provider,
		Prompt:      body.Prompt,
		InputText:   body.InputText,
		UseRAG:      body.UseRAG,
		ContextCode: body.ContextCode,
		Temperature: body.Temperature,
		MaxTokens:   body.MaxTokens,
		SkipHistory: true,
	})
	if err != nil {
		sendServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, SendResponse{
		Success: true,
		Content: result.Content,
		Model:   result.Model,
		Usage:   result.Usage,
		RAG:     result.RAG,
	})
}
