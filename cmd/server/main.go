package main

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"ai-analytics/internal/api/handlers"
	"ai-analytics/internal/config"
	"ai-analytics/internal/logger"
	"ai-analytics/internal/service/dispatch"
	modelsService "ai-analytics/internal/service/models"
	"ai-analytics/internal/service/rag"
	"ai-analytics/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	// Flat JSON stores
	promptStore, err := store.NewPromptStore(cfg.Storage.PromptsFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize prompt store")
	}
	historyStore, err := store.NewHistoryStore(cfg.Storage.ResponsesFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize history store")
	}
	modelStore, err := store.NewModelStore(cfg.Storage.ModelsFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize model store")
	}

	// Services
	ragService := rag.NewService(cfg.RAG)
	dispatchService := dispatch.NewService(cfg, modelStore, historyStore, ragService)
	modelService := modelsService.NewService(cfg, modelStore)

	// Handlers
	sendHandlers := handlers.NewSendHandlers(dispatchService, promptStore)
	responseHandlers := handlers.NewResponseHandlers(historyStore)
	promptHandlers := handlers.NewPromptHandlers(promptStore)
	modelHandlers := handlers.NewModelHandlers(cfg, modelStore, modelService)
	ragHandlers := handlers.NewRAGHandlers(ragService)
	infoHandlers := handlers.NewInfoHandlers(cfg)

	// Keep the OpenRouter portion of the registry fresh
	refreshCtx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()
	modelService.StartRefreshLoop(refreshCtx)

	mux := http.NewServeMux()

	route := func(pattern, path string, handler http.HandlerFunc) {
		mux.HandleFunc(pattern+" "+path, handlers.EnableCORS(handlers.WithRequestLogging(handler)))
		mux.HandleFunc("OPTIONS "+path, handlers.CORSPreflightHandler)
	}

	// Dispatch
	route("POST", "/api/send-request", sendHandlers.SendRequestHandler)
	route("POST", "/api/send-request-sys", sendHandlers.SendRequestSysHandler)
	route("POST", "/analyze", sendHandlers.AnalyzeHandler)

	// History
	route("GET", "/api/responses", responseHandlers.ListResponsesHandler)
	route("POST", "/api/responses", responseHandlers.SaveResponseHandler)
	route("DELETE", "/api/responses/{id}", responseHandlers.DeleteResponseHandler)

	// Prompt templates
	route("GET", "/api/prompts", promptHandlers.ListPromptsHandler)
	route("POST", "/api/prompts", promptHandlers.AddPromptHandler)
	route("PUT", "/api/prompts/{name}", promptHandlers.UpdatePromptHandler)
	route("DELETE", "/api/prompts/{name}", promptHandlers.DeletePromptHandler)
	route("GET", "/api/available-prompts", promptHandlers.ListPromptsHandler)

	// Model registry
	route("GET", "/api/all-models", modelHandlers.AllModelsHandler)
	route("POST", "/api/test-model", modelHandlers.TestModelHandler)
	route("GET", "/api/default-models", modelHandlers.DefaultModelsHandler)
	route("POST", "/api/default-models/set", modelHandlers.SetDefaultModelHandler)
	route("GET", "/api/default-models/{type}", modelHandlers.ConfigDefaultModelHandler)

	// Knowledge base
	route("GET", "/api/rag/context-codes", ragHandlers.ContextCodesHandler)
	route("GET", "/api/rag/documents", ragHandlers.DocumentsHandler)
	route("POST", "/api/rag/ask", ragHandlers.AskHandler)
	route("GET", "/api/rag/debug-info", ragHandlers.DebugInfoHandler)

	// Introspection
	route("GET", "/api/config", infoHandlers.ConfigHandler)
	route("GET", "/api/check-api-key", infoHandlers.CheckAPIKeyHandler)
	route("GET", "/api/server-info", infoHandlers.ServerInfoHandler)
	route("GET", "/api/health", infoHandlers.HealthHandler)

	logger.Log.WithFields(logrus.Fields{
		"port":        cfg.Server.Port,
		"rag_enabled": cfg.RAG.Enabled,
		"cheap":       cfg.Default.Cheap.Model,
		"fast":        cfg.Default.Fast.Model,
		"rich":        cfg.Default.Rich.Model,
	}).Info("Server starting")

	if err := http.ListenAndServe(":"+cfg.Server.Port, mux); err != nil {
		logger.Log.WithError(err).Fatal("Server failed to start")
	}
}
