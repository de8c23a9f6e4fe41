package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"ai-analytics/internal/service/rag"
)

// RAGClient is the knowledge-base collaborator surface the handlers need.
type RAGClient interface {
	Enabled() bool
	AskQuestion(ctx context.Context, question, contextCode string, showDetails bool) (*rag.AskResponse, error)
	ContextCodes(ctx context.Context) (json.RawMessage, error)
	Documents(ctx context.Context) (json.RawMessage, error)
	DebugInfo() rag.DebugInfo
}

type AskBody struct {
	Question    string `json:"question"`
	ContextCode string `json:"contextCode,omitempty"`
	ShowDetails bool   `json:"showDetails,omitempty"`
}

// RAGHandlers proxies the knowledge-base collaborator endpoints.
type RAGHandlers struct {
	client RAGClient
}

func NewRAGHandlers(client RAGClient) *RAGHandlers {
	return &RAGHandlers{client: client}
}

func (h *RAGHandlers) serviceDisabled(w http.ResponseWriter) bool {
	if h.client.Enabled() {
		return false
	}
	sendError(w, http.StatusServiceUnavailable, "Сервис langchain-pg отключен", nil)
	return true
}

// ContextCodesHandler handles GET /api/rag/context-codes
func (h *RAGHandlers) ContextCodesHandler(w http.ResponseWriter, r *http.Request) {
	if h.serviceDisabled(w) {
		return
	}

	codes, err := h.client.ContextCodes(r.Context())
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Не удалось получить контекстные коды", err)
		return
	}
	sendJSON(w, http.StatusOK, codes)
}

// DocumentsHandler handles GET /api/rag/documents
func (h *RAGHandlers) DocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if h.serviceDisabled(w) {
		return
	}

	documents, err := h.client.Documents(r.Context())
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Не удалось получить список документов", err)
		return
	}
	sendJSON(w, http.StatusOK, documents)
}

// AskHandler handles POST /api/rag/ask
func (h *RAGHandlers) AskHandler(w http.ResponseWriter, r *http.Request) {
	if h.serviceDisabled(w) {
		return
	}

	var body AskBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Question == "" {
		sendError(w, http.StatusBadRequest, "Вопрос не указан", nil)
		return
	}

	response, err := h.client.AskQuestion(r.Context(), body.Question, body.ContextCode, body.ShowDetails)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Не удалось получить ответ от RAG", err)
		return
	}
	sendJSON(w, http.StatusOK, response)
}

// DebugInfoHandler handles GET /api/rag/debug-info: the snapshot of the
// last augmentation attempt. Served even when RAG is disabled.
func (h *RAGHandlers) DebugInfoHandler(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.client.DebugInfo())
}
