package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ai-analytics/internal/store"
	"ai-analytics/internal/tokens"
)

// HistoryStore is the full history surface the handlers need.
type HistoryStore interface {
	List(opts store.ListOptions) (*store.Page, error)
	Append(entry store.HistoryEntry) (*store.HistoryEntry, error)
	Delete(id string) error
}

type SaveResponseBody struct {
	Model      string `json:"model"`
	PromptName string `json:"promptName,omitempty"`
	Prompt     string `json:"prompt"`
	InputText  string `json:"inputText"`
	Response   string `json:"response"`
}

type SavedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ResponseHandlers owns the history endpoints.
type ResponseHandlers struct {
	history HistoryStore
}

func NewResponseHandlers(history HistoryStore) *ResponseHandlers {
	return &ResponseHandlers{history: history}
}

// ListResponsesHandler handles GET /api/responses with filter, sort and
// pagination query parameters.
func (h *ResponseHandlers) ListResponsesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.ListOptions{
		Model:     q.Get("model"),
		Prompt:    q.Get("prompt"),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}

	page, err := h.history.List(opts)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to read responses", err)
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// SaveResponseHandler handles POST /api/responses: a manual save, token
// counts are always estimated because no provider usage is available.
func (h *ResponseHandlers) SaveResponseHandler(w http.ResponseWriter, r *http.Request) {
	var body SaveResponseBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if body.Model == "" || body.Prompt == "" || body.InputText == "" || body.Response == "" {
		sendError(w, http.StatusBadRequest, "All fields are required", nil)
		return
	}

	saved, err := h.history.Append(store.HistoryEntry{
		Model:      body.Model,
		PromptName: body.PromptName,
		Prompt:     body.Prompt,
		InputText:  body.InputText,
		Response:   body.Response,
		Tokens:     tokens.Build(nil, body.Prompt, body.InputText, body.Response),
	})
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to save response", err)
		return
	}

	sendJSON(w, http.StatusOK, SavedResponse{Message: "Response saved successfully", ID: saved.ID})
}

// DeleteResponseHandler handles DELETE /api/responses/{id}
func (h *ResponseHandlers) DeleteResponseHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.history.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Response not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to delete response", err)
		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: "Response deleted successfully"})
}
