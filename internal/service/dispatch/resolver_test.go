package dispatch

import (
	"testing"

	"ai-analytics/internal/config"
)

func testDefaults() config.DefaultModels {
	return config.DefaultModels{
		Cheap: config.TierDefault{Model: "google/gemini-2.0-flash-exp:free", Provider: "openroute"},
		Fast:  config.TierDefault{Model: "llama3-70b-8192", Provider: "groq"},
		Rich:  config.TierDefault{Model: "google/gemini-2.5-pro-exp-03-25", Provider: "openroute"},
	}
}

func TestResolveModel(t *testing.T) {
	defaults := testDefaults()

	tests := []struct {
		name          string
		modelInput    string
		providerInput string
		wantModel     string
		wantProvider  string
		wantResolved  bool
		wantType      string
	}{
		{
			name:         "empty model falls back to cheap",
			modelInput:   "",
			wantModel:    "google/gemini-2.0-flash-exp:free",
			wantProvider: "openroute",
			wantResolved: true,
			wantType:     "cheap",
		},
		{
			name:         "whitespace model falls back to cheap",
			modelInput:   "   ",
			wantModel:    "google/gemini-2.0-flash-exp:free",
			wantProvider: "openroute",
			wantResolved: true,
			wantType:     "cheap",
		},
		{
			name:         "fast alias",
			modelInput:   "fast",
			wantModel:    "llama3-70b-8192",
			wantProvider: "groq",
			wantResolved: true,
			wantType:     "fast",
		},
		{
			name:         "alias is case-insensitive and trimmed",
			modelInput:   "  RICH ",
			wantModel:    "google/gemini-2.5-pro-exp-03-25",
			wantProvider: "openroute",
			wantResolved: true,
			wantType:     "rich",
		},
		{
			name:          "explicit provider overrides tier provider",
			modelInput:    "cheap",
			providerInput: "direct",
			wantModel:     "google/gemini-2.0-flash-exp:free",
			wantProvider:  "direct",
			wantResolved:  true,
			wantType:      "cheap",
		},
		{
			name:          "literal model passes through",
			modelInput:    "mixtral-8x7b-32768",
			providerInput: "groq",
			wantModel:     "mixtral-8x7b-32768",
			wantProvider:  "groq",
			wantResolved:  false,
		},
		{
			name:         "literal model without provider leaves provider empty",
			modelInput:   "glm-4.5",
			wantModel:    "glm-4.5",
			wantProvider: "",
			wantResolved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveModel(defaults, tt.modelInput, tt.providerInput)
			if got.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", got.Model, tt.wantModel)
			}
			if got.Provider != tt.wantProvider {
				t.Errorf("Provider = %q, want %q", got.Provider, tt.wantProvider)
			}
			if got.WasResolved != tt.wantResolved {
				t.Errorf("WasResolved = %v, want %v", got.WasResolved, tt.wantResolved)
			}
			if got.ResolvedType != tt.wantType {
				t.Errorf("ResolvedType = %q, want %q", got.ResolvedType, tt.wantType)
			}
		})
	}
}
