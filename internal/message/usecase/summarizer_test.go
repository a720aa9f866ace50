package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeModelPath(t *testing.T) {
	client := &fakeClient{reply: "  Customer reports a double charge on their invoice.  "}
	s := NewSummarizer(client)

	summary := s.Summarize(context.Background(), "Invoice", "I was charged twice")

	assert.Equal(t, "Customer reports a double charge on their invoice.", summary)
	assert.Equal(t, 1, client.calls)
}

func TestSummarizeFallsBackOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("backend unavailable")}
	s := NewSummarizer(client)

	summary := s.Summarize(context.Background(), "Invoice problem", "I was charged twice this month.")

	assert.Equal(t, "Email from customer regarding: Invoice problem. Content preview: I was charged twice this month....", summary)
}

func TestSummarizeFallsBackOnEmptyReply(t *testing.T) {
	client := &fakeClient{reply: "   "}
	s := NewSummarizer(client)

	summary := s.Summarize(context.Background(), "Hi", "hello there")

	assert.Contains(t, summary, "Email from customer regarding: Hi")
}

func TestFallbackSummaryTruncatesBody(t *testing.T) {
	body := strings.Repeat("a", 500)
	summary := fallbackSummary("Long one", body)

	assert.Contains(t, summary, strings.Repeat("a", 200)+"...")
	assert.NotContains(t, summary, strings.Repeat("a", 201))
}

func TestFallbackSummaryKeepsValidUTF8(t *testing.T) {
	body := strings.Repeat("é", 250)
	summary := fallbackSummary("Accents", body)

	assert.True(t, utf8.ValidString(summary))
	assert.Contains(t, summary, strings.Repeat("é", 200)+"...")
}

func TestSummarizeNilClient(t *testing.T) {
	s := NewSummarizer(nil)
	summary := s.Summarize(context.Background(), "Subject", "Body text")
	assert.Equal(t, "Email from customer regarding: Subject. Content preview: Body text...", summary)
}
