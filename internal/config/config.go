package config

import (
	"fmt"
	"os"
)

// Supported AI providers.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	// AI provider selection
	AIProvider string

	// OpenRouter Config
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string

	// Gemini Config (alternate provider)
	GeminiAPIKey string

	// HTTP server
	ListenAddr string

	// Session auth
	SessionSecret string

	// Storage
	DatabasePath string
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	provider := os.Getenv("AI_PROVIDER")
	if provider == "" {
		provider = ProviderOpenRouter
	}
	if provider != ProviderOpenRouter && provider != ProviderGemini {
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q (expected %q or %q)", provider, ProviderOpenRouter, ProviderGemini)
	}

	openRouterAPIKey := os.Getenv("OPENROUTER_API_KEY")
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")

	switch provider {
	case ProviderOpenRouter:
		if openRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable not set")
		}
	case ProviderGemini:
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	}

	baseURL := os.Getenv("OPENROUTER_BASE_URL")
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}

	model := os.Getenv("OPENROUTER_MODEL")
	if model == "" {
		model = "openai/gpt-4o-mini"
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable not set")
	}

	listenAddr := os.Getenv("LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data/travel-planner.db"
	}

	return &Config{
		AIProvider:        provider,
		OpenRouterAPIKey:  openRouterAPIKey,
		OpenRouterBaseURL: baseURL,
		OpenRouterModel:   model,
		GeminiAPIKey:      geminiAPIKey,
		ListenAddr:        listenAddr,
		SessionSecret:     sessionSecret,
		DatabasePath:      dbPath,
	}, nil
}
