package ai

import (
	"fmt"
)

// Config holds AI provider configuration
type Config struct {
	Provider ProviderType // "gemini", "ollama" or "auto"

	// Gemini config
	GeminiAPIKey string

	// Ollama config
	OllamaBaseURL string // e.g., "http://localhost:11434"
	OllamaModel   string // e.g., "llama3", "mistral"
}

// DynamicConfig mirrors Config but reads the Ollama settings through
// getters, so runtime updates take effect without a restart.
type DynamicConfig struct {
	Provider         ProviderType
	GeminiAPIKey     string
	GetOllamaBaseURL func() string
	GetOllamaModel   func() string
}

// NewClientWithDynamicConfig creates a Client whose Ollama backend follows
// the runtime settings
func NewClientWithDynamicConfig(cfg DynamicConfig) (Client, error) {
	ollama := NewOllamaClientWithGetters(cfg.GetOllamaBaseURL, cfg.GetOllamaModel)

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return ollama, nil

	default:
		if cfg.GeminiAPIKey != "" {
			return NewFallbackClient(NewGeminiClient(cfg.GeminiAPIKey), ollama), nil
		}
		return ollama, nil
	}
}

// NewClient creates a Client based on the config.
// This is the factory function - switch AI provider by changing
// config.Provider. "auto" with a Gemini key wires both providers behind
// the fallback router.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(cfg.GeminiAPIKey), nil

	case ProviderOllama:
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel), nil

	default:
		if cfg.GeminiAPIKey != "" {
			return NewFallbackClient(
				NewGeminiClient(cfg.GeminiAPIKey),
				NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel),
			), nil
		}
		return NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	}
}
