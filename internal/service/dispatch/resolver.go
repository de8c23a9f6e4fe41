package dispatch

import (
	"strings"

	"ai-analytics/internal/config"
)

// Resolution is the outcome of alias resolution for an incoming model name.
type Resolution struct {
	Model        string
	Provider     string
	WasResolved  bool
	ResolvedType string
}

// ResolveModel maps the model field of an incoming request to a concrete
// model and provider. An empty model falls back to the cheap tier. The
// tier names cheap, fast and rich are reserved words, matched
// case-insensitively after trimming, so a registry model cannot shadow
// them. Anything else passes through literally and the provider is
// decided later from the registry.
func ResolveModel(defaults config.DefaultModels, modelInput, providerInput string) Resolution {
	trimmed := strings.TrimSpace(modelInput)
	if trimmed == "" {
		return tierResolution(defaults.Cheap, "cheap", providerInput)
	}

	switch strings.ToLower(trimmed) {
	case "cheap":
		return tierResolution(defaults.Cheap, "cheap", providerInput)
	case "fast":
		return tierResolution(defaults.Fast, "fast", providerInput)
	case "rich":
		return tierResolution(defaults.Rich, "rich", providerInput)
	}

	return Resolution{Model: modelInput, Provider: providerInput}
}

func tierResolution(tier config.TierDefault, name, providerInput string) Resolution {
	provider := providerInput
	if provider == "" {
		provider = tier.Provider
	}
	return Resolution{
		Model:        tier.Model,
		Provider:     provider,
		WasResolved:  true,
		ResolvedType: name,
	}
}
