package models

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-analytics/internal/llm"
	"ai-analytics/internal/logger"
	"ai-analytics/internal/store"
)

const refreshInterval = 8 * time.Hour

type openRouterCatalogModel struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
}

type openRouterCatalog struct {
	Data []openRouterCatalogModel `json:"data"`
}

// RefreshOpenRouterModels replaces the registry's OpenRouter entries with
// the current free models from the public catalog. The cheap-tier default
// survives the swap when its model is still listed.
func (s *Service) RefreshOpenRouterModels(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.catalogURL, nil)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("openrouter catalog returned status %d", resp.StatusCode)
	}

	var catalog openRouterCatalog
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return err
	}

	var cheapDefaultID string
	if defaults, err := s.registry.Defaults(); err == nil {
		if d := defaults["cheap"]; d != nil {
			cheapDefaultID = d.ID
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	replacements := make([]store.ModelDescriptor, 0, len(catalog.Data))
	for _, remote := range catalog.Data {
		if !strings.Contains(remote.ID, ":free") && !strings.Contains(remote.ID, "-free") {
			continue
		}
		id := "or-" + strings.ReplaceAll(remote.ID, ":", "-")
		visibleName := remote.Name
		if visibleName == "" {
			visibleName = remote.ID
		}
		contextLength := remote.ContextLength
		if contextLength == 0 {
			contextLength = 32768
		}
		replacements = append(replacements, store.ModelDescriptor{
			ID:          id,
			Provider:    string(llm.ProviderOpenRouter),
			Name:        remote.ID,
			VisibleName: "OpenRouter → " + visibleName,
			Context:     contextLength,
			CostLevel:   "cheap",
			IsDefault:   id == cheapDefaultID,
			Enabled:     true,
			Free:        true,
			AddedAt:     now,
		})
	}

	if err := s.registry.ReplaceProvider(string(llm.ProviderOpenRouter), replacements); err != nil {
		return err
	}

	logger.Log.WithField("models", len(replacements)).Info("OpenRouter model list refreshed")
	return nil
}

// StartRefreshLoop refreshes the OpenRouter entries once at startup and
// then every eight hours until ctx is cancelled.
func (s *Service) StartRefreshLoop(ctx context.Context) {
	go func() {
		if err := s.RefreshOpenRouterModels(ctx); err != nil {
			logger.Log.WithError(err).Error("OpenRouter model refresh failed")
		}

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RefreshOpenRouterModels(ctx); err != nil {
					logger.Log.WithError(err).Error("OpenRouter model refresh failed")
				}
			}
		}
	}()
}
