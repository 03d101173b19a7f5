package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("OPENROUTER_API_KEY", "or_key")
		setEnv("SESSION_SECRET", "secret")
		os.Unsetenv("AI_PROVIDER")
		os.Unsetenv("OPENROUTER_BASE_URL")
		os.Unsetenv("LISTEN_ADDR")
		os.Unsetenv("DATABASE_PATH")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.AIProvider != ProviderOpenRouter {
			t.Errorf("Expected AIProvider to be '%s', got '%s'", ProviderOpenRouter, cfg.AIProvider)
		}
		if cfg.OpenRouterAPIKey != "or_key" {
			t.Errorf("Expected OpenRouterAPIKey to be 'or_key', got '%s'", cfg.OpenRouterAPIKey)
		}
		if cfg.OpenRouterBaseURL != "https://openrouter.ai/api/v1" {
			t.Errorf("Expected default base URL, got '%s'", cfg.OpenRouterBaseURL)
		}
		if cfg.ListenAddr != ":8080" {
			t.Errorf("Expected default listen address ':8080', got '%s'", cfg.ListenAddr)
		}
		if cfg.DatabasePath != "data/travel-planner.db" {
			t.Errorf("Expected default database path, got '%s'", cfg.DatabasePath)
		}
	})

	t.Run("MissingOpenRouterAPIKey", func(t *testing.T) {
		setEnv("SESSION_SECRET", "secret")
		os.Unsetenv("AI_PROVIDER")
		os.Unsetenv("OPENROUTER_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing OPENROUTER_API_KEY, got nil")
		}
		expectedError := "OPENROUTER_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("GeminiProvider", func(t *testing.T) {
		setEnv("AI_PROVIDER", "gemini")
		setEnv("GEMINI_API_KEY", "gemini_key")
		setEnv("SESSION_SECRET", "secret")
		os.Unsetenv("OPENROUTER_API_KEY")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.AIProvider != ProviderGemini {
			t.Errorf("Expected AIProvider to be '%s', got '%s'", ProviderGemini, cfg.AIProvider)
		}
		if cfg.GeminiAPIKey != "gemini_key" {
			t.Errorf("Expected GeminiAPIKey to be 'gemini_key', got '%s'", cfg.GeminiAPIKey)
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		setEnv("AI_PROVIDER", "gemini")
		setEnv("SESSION_SECRET", "secret")
		os.Unsetenv("GEMINI_API_KEY")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("UnsupportedProvider", func(t *testing.T) {
		setEnv("AI_PROVIDER", "anthropic")
		setEnv("SESSION_SECRET", "secret")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for unsupported provider, got nil")
		}
	})

	t.Run("MissingSessionSecret", func(t *testing.T) {
		setEnv("OPENROUTER_API_KEY", "or_key")
		os.Unsetenv("AI_PROVIDER")
		os.Unsetenv("SESSION_SECRET")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing SESSION_SECRET, got nil")
		}
		expectedError := "SESSION_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})
}
