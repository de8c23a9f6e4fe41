package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-analytics/internal/store"
)

// PromptStore is the full prompt surface the handlers need.
type PromptStore interface {
	List() ([]store.PromptTemplate, error)
	Add(name, text string) error
	Update(name, text string) error
	Delete(name string) error
}

type PromptBody struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// PromptHandlers owns the prompt template CRUD endpoints.
type PromptHandlers struct {
	prompts PromptStore
}

func NewPromptHandlers(prompts PromptStore) *PromptHandlers {
	return &PromptHandlers{prompts: prompts}
}

// ListPromptsHandler handles GET /api/prompts and its alias
// GET /api/available-prompts.
func (h *PromptHandlers) ListPromptsHandler(w http.ResponseWriter, r *http.Request) {
	prompts, err := h.prompts.List()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to read prompts", err)
		return
	}
	if prompts == nil {
		prompts = []store.PromptTemplate{}
	}
	sendJSON(w, http.StatusOK, prompts)
}

// AddPromptHandler handles POST /api/prompts
func (h *PromptHandlers) AddPromptHandler(w http.ResponseWriter, r *http.Request) {
	var body PromptBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if body.Name == "" || body.Text == "" {
		sendError(w, http.StatusBadRequest, "Name and text are required", nil)
		return
	}

	if err := h.prompts.Add(body.Name, body.Text); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			sendError(w, http.StatusBadRequest, "Prompt with this name already exists", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to add prompt", err)
		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: "Prompt added successfully"})
}

// UpdatePromptHandler handles PUT /api/prompts/{name}
func (h *PromptHandlers) UpdatePromptHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var body PromptBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if body.Text == "" {
		sendError(w, http.StatusBadRequest, "Text is required", nil)
		return
	}

	if err := h.prompts.Update(name, body.Text); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Prompt not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to update prompt", err)
		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: "Prompt updated successfully"})
}

// DeletePromptHandler handles DELETE /api/prompts/{name}
func (h *PromptHandlers) DeletePromptHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := h.prompts.Delete(name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Prompt not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to delete prompt", err)
		return
	}

	sendJSON(w, http.StatusOK, MessageResponse{Message: "Prompt deleted successfully"})
}
