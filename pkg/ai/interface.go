package ai

import "context"

// Client is the interface for text-completion model backends.
// Implement this interface to add new AI providers (Gemini, Ollama, etc.)
// Errors from any provider are treated uniformly by callers as "backend
// unavailable"; the pipeline components fall back to their deterministic
// paths and never surface these errors.
type Client interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderGemini ProviderType = "gemini"
	ProviderOllama ProviderType = "ollama"
	ProviderAuto   ProviderType = "auto"
)
