package handlers

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"ai-analytics/internal/config"
)

const appName = "AI Analytics Interface"

type ConfigResponse struct {
	Server struct {
		Port       string `json:"port"`
		IsTestMode bool   `json:"isTestMode"`
	} `json:"server"`
	N8N struct {
		WebhookURL string `json:"webhookUrl"`
	} `json:"n8n"`
	APIKey    string `json:"apiKey"`
	GroqKey   string `json:"groqKey"`
	Providers struct {
		OpenRoute bool `json:"openroute"`
		Groq      bool `json:"groq"`
		Direct    bool `json:"direct"`
	} `json:"providers"`
	RAG config.RAGConfig `json:"langchainPg"`
}

type CheckAPIKeyResponse struct {
	IsAvailable     bool   `json:"isAvailable"`
	ServiceProvider string `json:"serviceProvider"`
}

type ServerInfoResponse struct {
	Hostname  string  `json:"hostname"`
	Platform  string  `json:"platform"`
	Arch      string  `json:"arch"`
	GoVersion string  `json:"goVersion"`
	Uptime    float64 `json:"uptime"`
	BaseURL   string  `json:"baseUrl"`
	Port      string  `json:"port"`
	AppName   string  `json:"appName"`
	Timestamp string  `json:"timestamp"`
}

// InfoHandlers owns the introspection endpoints.
type InfoHandlers struct {
	cfg       *config.AppConfig
	startedAt time.Time
}

func NewInfoHandlers(cfg *config.AppConfig) *InfoHandlers {
	return &InfoHandlers{cfg: cfg, startedAt: time.Now()}
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	return "***"
}

// ConfigHandler handles GET /api/config. Credentials are masked: the
// snapshot says whether a key exists, never what it is.
func (h *InfoHandlers) ConfigHandler(w http.ResponseWriter, r *http.Request) {
	var resp ConfigResponse
	resp.Server.Port = h.cfg.Server.Port
	resp.Server.IsTestMode = h.cfg.N8N.IsTestMode
	resp.N8N.WebhookURL = h.cfg.N8N.WebhookURL
	resp.APIKey = maskKey(h.cfg.LLM.OpenRouterKey)
	resp.GroqKey = maskKey(h.cfg.LLM.GroqKey)
	resp.Providers.OpenRoute = h.cfg.LLM.OpenRouterKey != ""
	resp.Providers.Groq = h.cfg.LLM.GroqKey != ""
	resp.Providers.Direct = h.cfg.LLM.DirectAPIKey != ""
	resp.RAG = h.cfg.RAG

	sendJSON(w, http.StatusOK, resp)
}

// CheckAPIKeyHandler handles GET /api/check-api-key
func (h *InfoHandlers) CheckAPIKeyHandler(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, CheckAPIKeyResponse{
		IsAvailable:     h.cfg.LLM.OpenRouterKey != "",
		ServiceProvider: "OpenRouter",
	})
}

// ServerInfoHandler handles GET /api/server-info
func (h *InfoHandlers) ServerInfoHandler(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()

	sendJSON(w, http.StatusOK, ServerInfoResponse{
		Hostname:  hostname,
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startedAt).Seconds(),
		BaseURL:   "http://" + r.Host,
		Port:      h.cfg.Server.Port,
		AppName:   appName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthHandler handles GET /api/health
func (h *InfoHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
