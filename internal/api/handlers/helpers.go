package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ai-analytics/internal/llm"
	"ai-analytics/internal/logger"
	"ai-analytics/internal/service/dispatch"
	"ai-analytics/internal/store"
)

// ErrorResponse is the wire shape for every error the API returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func sendError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	sendJSON(w, status, resp)
}

// sendServiceError maps pipeline and store errors onto HTTP statuses.
// Provider failures stay 500 with the upstream status folded into the
// message, matching what clients already expect.
func sendServiceError(w http.ResponseWriter, err error) {
	var verr *dispatch.ValidationError
	if errors.As(err, &verr) {
		sendError(w, http.StatusBadRequest, verr.Message, nil)
		return
	}

	var nferr *dispatch.NotFoundError
	if errors.As(err, &nferr) {
		sendError(w, http.StatusNotFound, nferr.Error(), nil)
		return
	}

	var cerr *dispatch.ConfigurationError
	if errors.As(err, &cerr) {
		sendError(w, http.StatusInternalServerError, cerr.Message, nil)
		return
	}

	var perr *llm.ProviderError
	if errors.As(err, &perr) {
		sendError(w, http.StatusInternalServerError, perr.Error(), nil)
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		sendError(w, http.StatusNotFound, "Not found", nil)
		return
	}

	sendError(w, http.StatusInternalServerError, "Internal server error", err)
}
