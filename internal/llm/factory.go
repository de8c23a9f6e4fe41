package llm

import "fmt"

// ProviderType identifies an upstream LLM API.
type ProviderType string

const (
	// ProviderOpenRouter keeps the historical "openroute" spelling used in
	// registry entries and persisted history.
	ProviderOpenRouter ProviderType = "openroute"
	ProviderGroq       ProviderType = "groq"
	ProviderDirect     ProviderType = "direct"
)

// ParseProviderType parses a string into a ProviderType. The empty string
// and both OpenRouter spellings resolve to ProviderOpenRouter.
func ParseProviderType(s string) (ProviderType, error) {
	switch s {
	case "openroute", "openrouter", "":
		return ProviderOpenRouter, nil
	case "groq":
		return ProviderGroq, nil
	case "direct":
		return ProviderDirect, nil
	default:
		return "", fmt.Errorf("unknown provider type: %s", s)
	}
}
