package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply string
	err   error
	calls int
}

func (s *stubClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	s.calls++
	return s.reply, s.err
}

func TestFallbackUsesGeminiFirst(t *testing.T) {
	gemini := &stubClient{reply: "from gemini"}
	ollama := &stubClient{reply: "from ollama"}
	f := NewFallbackClient(gemini, ollama)

	result, err := f.Complete(context.Background(), "prompt", 100, 0.5)

	require.NoError(t, err)
	assert.Equal(t, "from gemini", result)
	assert.Equal(t, 0, ollama.calls)
}

func TestFallbackRoutesToOllamaOnQuota(t *testing.T) {
	gemini := &stubClient{err: errors.New("429 quota exceeded")}
	ollama := &stubClient{reply: "from ollama"}
	f := NewFallbackClient(gemini, ollama)

	result, err := f.Complete(context.Background(), "prompt", 100, 0.5)

	require.NoError(t, err)
	assert.Equal(t, "from ollama", result)
}

func TestFallbackBothFail(t *testing.T) {
	gemini := &stubClient{err: errors.New("429 quota exceeded")}
	ollama := &stubClient{err: errors.New("model not loaded")}
	f := NewFallbackClient(gemini, ollama)

	_, err := f.Complete(context.Background(), "prompt", 100, 0.5)

	require.Error(t, err)
}

func TestFallbackRetriesGeminiOnOllamaConnectionError(t *testing.T) {
	gemini := &stubClient{err: errors.New("temporary timeout")}
	ollama := &stubClient{err: errors.New("connection refused")}
	f := NewFallbackClient(gemini, ollama)

	_, err := f.Complete(context.Background(), "prompt", 100, 0.5)

	require.Error(t, err)
	assert.Equal(t, 2, gemini.calls)
}

func TestIsQuotaError(t *testing.T) {
	assert.True(t, isQuotaError(errors.New("got HTTP 429")))
	assert.True(t, isQuotaError(errors.New("rate limit exceeded")))
	assert.True(t, isQuotaError(errors.New("RESOURCE EXHAUSTED")))
	assert.False(t, isQuotaError(errors.New("invalid api key")))
	assert.False(t, isQuotaError(nil))
}

func TestIsConnectionError(t *testing.T) {
	assert.True(t, isConnectionError(errors.New("dial tcp 127.0.0.1:11434: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("invalid model name")))
	assert.False(t, isConnectionError(nil))
}

func TestNewClientRequiresGeminiKey(t *testing.T) {
	_, err := NewClient(Config{Provider: ProviderGemini})
	require.Error(t, err)
}
