package ai

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
)

// FallbackClient routes completions between two providers:
// Gemini first (hosted, better quality), Ollama on quota or network errors.
// When Gemini is exhausted mid-cycle this keeps the model-backed paths alive
// instead of dropping every message to the deterministic fallbacks.
type FallbackClient struct {
	gemini Client
	ollama Client
}

// NewFallbackClient creates a new fallback client with both providers
func NewFallbackClient(gemini, ollama Client) *FallbackClient {
	return &FallbackClient{
		gemini: gemini,
		ollama: ollama,
	}
}

// isConnectionError checks if the error is a network/connection error
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if _, ok := err.(net.Error); ok {
		return true
	}

	errStr := strings.ToLower(err.Error())
	connectionIndicators := []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"connection reset",
		"timeout",
		"dial tcp",
		"eof",
	}

	for _, indicator := range connectionIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// isQuotaError checks if the error indicates API quota exhaustion (429)
func isQuotaError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	quotaIndicators := []string{
		"429",
		"quota",
		"rate limit",
		"too many requests",
		"resource exhausted",
	}

	for _, indicator := range quotaIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}

	return false
}

// Complete tries Gemini first, falls back to Ollama on quota or connection
// errors. If both providers fail the last error is returned and the caller's
// deterministic fallback takes over.
func (f *FallbackClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if f.gemini != nil {
		result, err := f.gemini.Complete(ctx, prompt, maxTokens, temperature)
		if err == nil {
			return result, nil
		}

		if isQuotaError(err) {
			log.Printf("[AI] Gemini quota exhausted: %v, falling back to Ollama", err)
		} else {
			log.Printf("[AI] Gemini error: %v, falling back to Ollama", err)
		}
	}

	if f.ollama != nil {
		result, err := f.ollama.Complete(ctx, prompt, maxTokens, temperature)
		if err == nil {
			return result, nil
		}

		if isConnectionError(err) && f.gemini != nil {
			log.Printf("[AI] Ollama connection failed: %v, retrying Gemini", err)
			return f.gemini.Complete(ctx, prompt, maxTokens, temperature)
		}

		return "", fmt.Errorf("ollama completion failed: %w", err)
	}

	return "", fmt.Errorf("no AI provider available")
}
