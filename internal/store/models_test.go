package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func newTestModelStore(t *testing.T, seed []ModelDescriptor) *ModelStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "available-models.json")
	if err := writeJSONFile(path, seed); err != nil {
		t.Fatalf("Failed to seed models file: %v", err)
	}
	s, err := NewModelStore(path)
	if err != nil {
		t.Fatalf("Failed to create model store: %v", err)
	}
	return s
}

func seedModels() []ModelDescriptor {
	return []ModelDescriptor{
		{ID: "or-gemini", Provider: "openroute", Name: "google/gemini-2.0-flash-exp:free", CostLevel: "cheap", IsDefault: true, Enabled: true},
		{ID: "groq-llama", Provider: "groq", Name: "llama3-70b-8192", CostLevel: "fast", IsDefault: true, Enabled: true},
		{ID: "zai-glm", Provider: "direct", Name: "glm-4.6", CostLevel: "rich", Enabled: true, BaseURL: "https://api.z.ai/api/paas/v4", APIKey: "zk-test"},
		{ID: "or-disabled", Provider: "openroute", Name: "disabled-model", Enabled: false},
	}
}

func TestModelStore_Enabled(t *testing.T) {
	s := newTestModelStore(t, seedModels())

	enabled, err := s.Enabled()
	if err != nil {
		t.Fatalf("Enabled failed: %v", err)
	}
	if len(enabled) != 3 {
		t.Errorf("Expected 3 enabled models, got %d", len(enabled))
	}
	for _, m := range enabled {
		if !m.Enabled {
			t.Errorf("Disabled model %q leaked into Enabled()", m.ID)
		}
	}
}

func TestModelStore_FindByNameOrID(t *testing.T) {
	s := newTestModelStore(t, seedModels())

	tests := []struct {
		name    string
		lookup  string
		wantID  string
		wantErr bool
	}{
		{name: "by provider-facing name", lookup: "llama3-70b-8192", wantID: "groq-llama"},
		{name: "by registry id", lookup: "zai-glm", wantID: "zai-glm"},
		{name: "unknown", lookup: "nope", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindByNameOrID(tt.lookup)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindByNameOrID failed: %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("Expected id %q, got %q", tt.wantID, got.ID)
			}
		})
	}
}

func TestModelStore_SetDefaultInvariant(t *testing.T) {
	seed := seedModels()
	// second fast model so the invariant is actually exercised
	seed = append(seed, ModelDescriptor{ID: "groq-llama-8b", Provider: "groq", Name: "llama3-8b-8192", CostLevel: "fast", Enabled: true})
	s := newTestModelStore(t, seed)

	selected, err := s.SetDefault("groq-llama-8b", "fast")
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if !selected.IsDefault || selected.CostLevel != "fast" {
		t.Errorf("Selected model not marked default fast: %+v", selected)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	fastDefaults := 0
	for _, m := range all {
		if m.CostLevel == "fast" && m.IsDefault {
			fastDefaults++
			if m.ID != "groq-llama-8b" {
				t.Errorf("Wrong fast default: %q", m.ID)
			}
		}
	}
	if fastDefaults != 1 {
		t.Errorf("Expected exactly one fast default, got %d", fastDefaults)
	}
}

func TestModelStore_SetDefaultRetagsCostLevel(t *testing.T) {
	s := newTestModelStore(t, seedModels())

	// promote the cheap default into the rich tier
	selected, err := s.SetDefault("or-gemini", "rich")
	if err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if selected.CostLevel != "rich" {
		t.Errorf("Expected cost level retagged to rich, got %q", selected.CostLevel)
	}
}

func TestModelStore_SetDefaultUnknownModel(t *testing.T) {
	s := newTestModelStore(t, seedModels())
	if _, err := s.SetDefault("missing", "fast"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestModelStore_SetLastTest(t *testing.T) {
	s := newTestModelStore(t, seedModels())

	result := TestResult{Success: true, ResponseTimeMs: 420, SampleResponse: "Я — языковая модель.", Timestamp: "2025-06-01T12:00:00Z"}
	if err := s.SetLastTest("groq-llama", result); err != nil {
		t.Fatalf("SetLastTest failed: %v", err)
	}

	m, err := s.FindByNameOrID("groq-llama")
	if err != nil {
		t.Fatalf("FindByNameOrID failed: %v", err)
	}
	if m.LastTest == nil || !m.LastTest.Success || m.LastTest.ResponseTimeMs != 420 {
		t.Errorf("Last test not persisted: %+v", m.LastTest)
	}

	// a later probe overwrites the previous result
	if err := s.SetLastTest("groq-llama", TestResult{Success: false, ErrorMessage: "Таймаут — модель не ответила вовремя"}); err != nil {
		t.Fatalf("SetLastTest failed: %v", err)
	}
	m, _ = s.FindByNameOrID("groq-llama")
	if m.LastTest.Success {
		t.Error("Expected overwritten test result")
	}
}

func TestModelStore_ReplaceProvider(t *testing.T) {
	s := newTestModelStore(t, seedModels())

	replacements := []ModelDescriptor{
		{ID: "or-new", Provider: "openroute", Name: "new/free-model:free", Enabled: true},
	}
	if err := s.ReplaceProvider("openroute", replacements); err != nil {
		t.Fatalf("ReplaceProvider failed: %v", err)
	}

	all, err := s.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}

	var openroute, others int
	for _, m := range all {
		if m.Provider == "openroute" {
			openroute++
			if m.ID != "or-new" {
				t.Errorf("Stale openroute entry survived: %q", m.ID)
			}
		} else {
			others++
		}
	}
	if openroute != 1 {
		t.Errorf("Expected 1 openroute entry, got %d", openroute)
	}
	if others != 2 {
		t.Errorf("Expected groq and direct entries untouched, got %d", others)
	}
}
