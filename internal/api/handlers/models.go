package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"ai-analytics/internal/config"
	"ai-analytics/internal/store"
)

// ModelRegistry is the registry surface the handlers need.
type ModelRegistry interface {
	Enabled() ([]store.ModelDescriptor, error)
	Defaults() (map[string]*store.ModelDescriptor, error)
	SetDefault(modelID, tier string) (*store.ModelDescriptor, error)
}

// ModelProber runs the on-demand connectivity probe.
type ModelProber interface {
	TestModel(ctx context.Context, modelID string) (*store.TestResult, error)
}

type TestModelBody struct {
	ModelID string `json:"modelId"`
}

type TestModelResponse struct {
	Success bool              `json:"success"`
	Result  *store.TestResult `json:"result"`
}

type SetDefaultBody struct {
	ModelID string `json:"modelId"`
	Type    string `json:"type"`
}

type SetDefaultResponse struct {
	Success  bool                   `json:"success"`
	Selected *store.ModelDescriptor `json:"selected"`
}

type ConfigDefaultResponse struct {
	Success bool               `json:"success"`
	Type    string             `json:"type"`
	Model   config.TierDefault `json:"model"`
}

// ModelHandlers owns the model registry endpoints.
type ModelHandlers struct {
	cfg      *config.AppConfig
	registry ModelRegistry
	prober   ModelProber
}

func NewModelHandlers(cfg *config.AppConfig, registry ModelRegistry, prober ModelProber) *ModelHandlers {
	return &ModelHandlers{cfg: cfg, registry: registry, prober: prober}
}

// AllModelsHandler handles GET /api/all-models, returning enabled models only.
func (h *ModelHandlers) AllModelsHandler(w http.ResponseWriter, r *http.Request) {
	models, err := h.registry.Enabled()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to load models", err)
		return
	}
	if models == nil {
		models = []store.ModelDescriptor{}
	}
	sendJSON(w, http.StatusOK, models)
}

// TestModelHandler handles POST /api/test-model. A failed probe still
// answers 200: the failure lives inside the result.
func (h *ModelHandlers) TestModelHandler(w http.ResponseWriter, r *http.Request) {
	var body TestModelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.ModelID == "" {
		sendError(w, http.StatusBadRequest, "modelId required", nil)
		return
	}

	result, err := h.prober.TestModel(r.Context(), body.ModelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusNotFound, "Model not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to test model", err)
		return
	}

	sendJSON(w, http.StatusOK, TestModelResponse{Success: true, Result: result})
}

// DefaultModelsHandler handles GET /api/default-models, reporting the
// registry's current default per cost tier.
func (h *ModelHandlers) DefaultModelsHandler(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.registry.Defaults()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "Failed to load models", err)
		return
	}
	sendJSON(w, http.StatusOK, defaults)
}

// SetDefaultModelHandler handles POST /api/default-models/set
func (h *ModelHandlers) SetDefaultModelHandler(w http.ResponseWriter, r *http.Request) {
	var body SetDefaultBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if body.Type != "cheap" && body.Type != "fast" && body.Type != "rich" {
		sendError(w, http.StatusBadRequest, "Invalid type", nil)
		return
	}

	selected, err := h.registry.SetDefault(body.ModelID, body.Type)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendError(w, http.StatusBadRequest, "Model not found", nil)
			return
		}
		sendError(w, http.StatusInternalServerError, "Failed to set default model", err)
		return
	}

	sendJSON(w, http.StatusOK, SetDefaultResponse{Success: true, Selected: selected})
}

// ConfigDefaultModelHandler handles GET /api/default-models/{type}: the
// configured (environment-level) tier default, not the registry's.
func (h *ModelHandlers) ConfigDefaultModelHandler(w http.ResponseWriter, r *http.Request) {
	tier := r.PathValue("type")

	model, ok := h.cfg.Default.ForTier(tier)
	if !ok {
		sendError(w, http.StatusBadRequest, "Недопустимый тип модели. Используйте: cheap, fast, rich", nil)
		return
	}

	sendJSON(w, http.StatusOK, ConfigDefaultResponse{Success: true, Type: tier, Model: model})
}
