package config

import (
	"os"
	"strconv"

	"ai-analytics/internal/logger"

	"github.com/sirupsen/logrus"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server  ServerConfig
	LLM     LLMConfig
	Default DefaultModels
	RAG     RAGConfig
	N8N     N8NConfig
	Storage StorageConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port string
}

// LLMConfig holds provider credentials and provider-specific switches
type LLMConfig struct {
	OpenRouterKey      string
	GroqKey            string
	DirectAPIKey       string
	ZAIThinkingEnabled bool
}

// TierDefault is the configured model for one cost tier
type TierDefault struct {
	Model       string `json:"model"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

// DefaultModels holds the per-tier role alias targets (CHEAP/FAST/RICH)
type DefaultModels struct {
	Cheap TierDefault `json:"cheap"`
	Fast  TierDefault `json:"fast"`
	Rich  TierDefault `json:"rich"`
}

// RAGConfig holds the langchain-pg collaborator settings
type RAGConfig struct {
	BaseURL string `json:"baseUrl"`
	Enabled bool   `json:"enabled"`
}

// N8NConfig holds the n8n webhook settings surfaced via /api/config
type N8NConfig struct {
	WebhookURL string
	IsTestMode bool
}

// StorageConfig holds paths of the flat JSON documents
type StorageConfig struct {
	PromptsFile   string
	ResponsesFile string
	ModelsFile    string
}

// LoadConfig loads application configuration from the environment
func LoadConfig() *AppConfig {
	cfg := &AppConfig{}

	cfg.Server = ServerConfig{
		Port: getEnvOrDefault("PORT", "3002"),
	}

	openRouterKey := os.Getenv("OPENROUTER_API_KEY")
	if openRouterKey == "" {
		logger.Log.Warn("OPENROUTER_API_KEY environment variable not set")
	}
	groqKey := os.Getenv("GROQ_API_KEY")
	if groqKey == "" {
		logger.Log.Warn("GROQ_API_KEY environment variable not set")
	}

	cfg.LLM = LLMConfig{
		OpenRouterKey:      openRouterKey,
		GroqKey:            groqKey,
		DirectAPIKey:       os.Getenv("DIRECT_API_KEY"),
		ZAIThinkingEnabled: getEnvAsBool("ZAI_THINKING_ENABLED", false),
	}

	cfg.Default = DefaultModels{
		Cheap: TierDefault{
			Model:       getEnvOrDefault("DEFAULT_MODEL_CHEAP", "google/gemini-2.0-flash-exp:free"),
			Provider:    getEnvOrDefault("DEFAULT_MODEL_CHEAP_PROVIDER", "openroute"),
			Description: "Бесплатная модель для простых запросов",
		},
		Fast: TierDefault{
			Model:       getEnvOrDefault("DEFAULT_MODEL_FAST", "llama3-70b-8192"),
			Provider:    getEnvOrDefault("DEFAULT_MODEL_FAST_PROVIDER", "groq"),
			Description: "Быстрая модель для оперативных ответов",
		},
		Rich: TierDefault{
			Model:       getEnvOrDefault("DEFAULT_MODEL_RICH", "google/gemini-2.5-pro-exp-03-25"),
			Provider:    getEnvOrDefault("DEFAULT_MODEL_RICH_PROVIDER", "openroute"),
			Description: "Мощная модель для сложных задач",
		},
	}

	cfg.RAG = RAGConfig{
		BaseURL: getEnvOrDefault("LANGCHAIN_PG_URL", "http://localhost:3005"),
		Enabled: getEnvAsBool("LANGCHAIN_PG_ENABLED", false),
	}

	isTestMode := getEnvAsBool("IS_TEST_MODE", false)
	webhookURL := os.Getenv("N8N_WEBHOOK_URL")
	if isTestMode {
		webhookURL = os.Getenv("N8N_WEBHOOK_TEST_URL")
	}
	cfg.N8N = N8NConfig{
		WebhookURL: webhookURL,
		IsTestMode: isTestMode,
	}

	cfg.Storage = StorageConfig{
		PromptsFile:   getEnvOrDefault("PROMPTS_FILE", "prompts.json"),
		ResponsesFile: getEnvOrDefault("RESPONSES_FILE", "responses.json"),
		ModelsFile:    getEnvOrDefault("MODELS_FILE", "available-models.json"),
	}

	return cfg
}

// ForTier returns the configured default for a tier name (cheap/fast/rich)
func (d DefaultModels) ForTier(tier string) (TierDefault, bool) {
	switch tier {
	case "cheap":
		return d.Cheap, true
	case "fast":
		return d.Fast, true
	case "rich":
		return d.Rich, true
	}
	return TierDefault{}, false
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid boolean value, using default")
		return defaultValue
	}
	return value
}
