package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"supportmail-backend/pkg/ai"
)

// Summarizer produces a short human-readable digest of a message.
// Like the classifier it never fails: when the model path is unavailable
// it falls back to a deterministic extract of the subject and body.
type Summarizer struct {
	client ai.Client
}

func NewSummarizer(client ai.Client) *Summarizer {
	return &Summarizer{client: client}
}

// Summarize returns a one-to-three sentence summary of the message
func (s *Summarizer) Summarize(ctx context.Context, subject, body string) string {
	if s.client != nil {
		summary, err := s.summarizeWithModel(ctx, subject, body)
		if err == nil && strings.TrimSpace(summary) != "" {
			return strings.TrimSpace(summary)
		}
		if err != nil {
			log.Printf("[Summarizer] Model summarization failed: %v, using fallback", err)
		}
	}
	return fallbackSummary(subject, body)
}

func (s *Summarizer) summarizeWithModel(ctx context.Context, subject, body string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this customer support email in 1-3 short sentences. Focus on what the customer wants and why. Respond with the summary only, no preamble.

SUBJECT: %s

BODY:
%s`, subject, truncateForPrompt(body, 4000))

	return s.client.Complete(ctx, prompt, 200, 0.3)
}

// fallbackSummary builds a summary from the subject and the first part of
// the body, cut at 200 characters. The cut is rune-based so multi-byte
// bodies stay valid UTF-8.
func fallbackSummary(subject, body string) string {
	preview := strings.TrimSpace(body)
	if runes := []rune(preview); len(runes) > 200 {
		preview = string(runes[:200])
	}
	return fmt.Sprintf("Email from customer regarding: %s. Content preview: %s...", subject, preview)
}
