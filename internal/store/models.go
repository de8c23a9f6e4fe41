package store

import (
	"fmt"
	"sync"

	"ai-analytics/internal/logger"
)

// TestResult is the outcome of the latest connectivity probe for a model.
// Each probe overwrites the previous result.
type TestResult struct {
	Success        bool   `json:"success"`
	ResponseTimeMs int    `json:"response_time_ms"`
	SampleResponse string `json:"sample_response,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// ModelDescriptor is one entry in the model registry.
type ModelDescriptor struct {
	ID          string      `json:"id"`
	Provider    string      `json:"provider"`
	Name        string      `json:"name"`
	VisibleName string      `json:"visible_name,omitempty"`
	Context     int         `json:"context,omitempty"`
	CostLevel   string      `json:"cost_level,omitempty"`
	IsDefault   bool        `json:"is_default,omitempty"`
	Enabled     bool        `json:"enabled"`
	Free        bool        `json:"free,omitempty"`
	AddedAt     string      `json:"added_at,omitempty"`
	BaseURL     string      `json:"base_url,omitempty"`
	APIKey      string      `json:"api_key,omitempty"`
	APIKeyEnv   string      `json:"api_key_env,omitempty"`
	LastTest    *TestResult `json:"last_test,omitempty"`
}

// ModelStore is the file-backed model registry: a flat JSON array of
// descriptors, read-modify-written wholesale per operation.
type ModelStore struct {
	mu   sync.Mutex
	path string
}

// NewModelStore opens (creating if needed) the models document at path.
func NewModelStore(path string) (*ModelStore, error) {
	if err := ensureFile(path, []ModelDescriptor{}); err != nil {
		return nil, fmt.Errorf("failed to initialize models file: %w", err)
	}
	return &ModelStore{path: path}, nil
}

func (s *ModelStore) load() []ModelDescriptor {
	var models []ModelDescriptor
	if err := readJSONFile(s.path, &models); err != nil {
		logger.Log.WithError(err).Error("Error reading models file")
		return []ModelDescriptor{}
	}
	return models
}

// All returns every registry entry.
func (s *ModelStore) All() ([]ModelDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// Enabled returns only enabled entries.
func (s *ModelStore) Enabled() ([]ModelDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	models := s.load()
	out := make([]ModelDescriptor, 0, len(models))
	for _, m := range models {
		if m.Enabled {
			out = append(out, m)
		}
	}
	return out, nil
}

// FindByNameOrID looks a model up by its provider-facing name or registry id.
func (s *ModelStore) FindByNameOrID(nameOrID string) (*ModelDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	models := s.load()
	for i := range models {
		if models[i].Name == nameOrID || models[i].ID == nameOrID {
			m := models[i]
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

// Defaults returns the current default model per cost tier (nil when unset).
func (s *ModelStore) Defaults() (map[string]*ModelDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	models := s.load()
	defaults := map[string]*ModelDescriptor{"cheap": nil, "fast": nil, "rich": nil}
	for i := range models {
		m := models[i]
		if _, ok := defaults[m.CostLevel]; ok && m.IsDefault && defaults[m.CostLevel] == nil {
			defaults[m.CostLevel] = &m
		}
	}
	return defaults, nil
}

// SetDefault makes modelID the default for the given tier, clearing every
// other default of that tier and retagging the target's cost level. At most
// one default per tier can therefore exist.
func (s *ModelStore) SetDefault(modelID, tier string) (*ModelDescriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	models := s.load()
	targetIndex := -1
	for i := range models {
		if models[i].ID == modelID {
			targetIndex = i
		}
	}
	if targetIndex == -1 {
		return nil, ErrNotFound
	}

	for i := range models {
		if models[i].CostLevel == tier {
			models[i].IsDefault = false
		}
	}
	models[targetIndex].CostLevel = tier
	models[targetIndex].IsDefault = true

	if err := writeJSONFile(s.path, models); err != nil {
		return nil, err
	}
	selected := models[targetIndex]
	return &selected, nil
}

// SetLastTest attaches a probe result to the model.
func (s *ModelStore) SetLastTest(modelID string, result TestResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	models := s.load()
	for i := range models {
		if models[i].ID == modelID {
			r := result
			models[i].LastTest = &r
			return writeJSONFile(s.path, models)
		}
	}
	return ErrNotFound
}

// ReplaceProvider swaps out every entry of one provider for the given
// replacements, leaving other providers' entries untouched. Used by the
// registry refresh job.
func (s *ModelStore) ReplaceProvider(provider string, replacements []ModelDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	models := s.load()
	kept := make([]ModelDescriptor, 0, len(models)+len(replacements))
	for _, m := range models {
		if m.Provider != provider {
			kept = append(kept, m)
		}
	}
	kept = append(kept, replacements...)
	return writeJSONFile(s.path, kept)
}
