package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	msgdomain "supportmail-backend/internal/message/domain"
)

// fakeClient is a canned AI backend for tests
type fakeClient struct {
	reply      string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeClient) Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.reply, f.err
}

func TestHeuristicAnalysisUrgentBrokenApp(t *testing.T) {
	result := heuristicAnalysis("URGENT: app is broken", "Please help, the app crashed and I need this fixed immediately.")

	assert.Equal(t, msgdomain.PriorityUrgent, result.Priority)
	assert.Equal(t, msgdomain.SentimentNegative, result.Sentiment)
	assert.Equal(t, "technical", result.Category)
	assert.Contains(t, []string(result.UrgencyKeywords), "urgent")
	assert.Contains(t, []string(result.UrgencyKeywords), "broken")
	assert.Contains(t, []string(result.UrgencyKeywords), "help")
}

func TestHeuristicAnalysisAlwaysValid(t *testing.T) {
	inputs := []struct {
		subject, body string
	}{
		{"", ""},
		{"Hello", "Just saying hi"},
		{"Thanks!", "Great product, love it"},
		{"refund please", "I want my money back"},
		{"???", "!!!"},
		{"Invoice question", "Why was I charged twice this month?"},
	}

	for _, in := range inputs {
		result := heuristicAnalysis(in.subject, in.body)
		require.NotNil(t, result)
		assert.True(t, result.Sentiment.IsValid(), "sentiment for %q", in.subject)
		assert.True(t, result.Priority.IsValid(), "priority for %q", in.subject)
		assert.NotEmpty(t, result.Category, "category for %q", in.subject)
		assert.NotNil(t, result.KeyPoints)
		assert.NotNil(t, result.MentionedProducts)
		assert.NotNil(t, result.UrgencyKeywords)
	}
}

func TestHeuristicAnalysisDeterministic(t *testing.T) {
	first := heuristicAnalysis("Billing problem", "I was charged twice, please fix this.")
	second := heuristicAnalysis("Billing problem", "I was charged twice, please fix this.")
	assert.Equal(t, first, second)
}

func TestHeuristicAnalysisCategories(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		body     string
		category string
	}{
		{"billing", "Invoice issue", "I was charged for a subscription I cancelled", "billing"},
		{"account", "Locked out", "I cannot log in to my account anymore", "account"},
		{"technical", "Strange behavior", "The export fails with an error every time", "technical"},
		{"compliment", "Well done", "Thank you, the new release is excellent", "compliment"},
		{"general", "Question", "What timezone are your office hours in", "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := heuristicAnalysis(tt.subject, tt.body)
			assert.Equal(t, tt.category, result.Category)
		})
	}
}

func TestHeuristicAnalysisPositiveSentiment(t *testing.T) {
	result := heuristicAnalysis("Thank you", "Great support, I really appreciate the quick fix. Amazing team!")
	assert.Equal(t, msgdomain.SentimentPositive, result.Sentiment)
	assert.Equal(t, msgdomain.PriorityNormal, result.Priority)
	assert.Equal(t, "happy", result.Emotion)
}

func TestClassifyModelPath(t *testing.T) {
	client := &fakeClient{reply: `{"sentiment":"negative","priority":"urgent","category":"billing","emotion":"frustrated","request_type":"refund","key_points":["double charge"],"mentioned_products":["Pro plan"],"urgency_keywords":["urgent"]}`}
	c := NewClassifier(client)

	result := c.Classify(context.Background(), "Urgent billing issue", "I was double charged")

	assert.Equal(t, 1, client.calls)
	assert.Equal(t, msgdomain.SentimentNegative, result.Sentiment)
	assert.Equal(t, msgdomain.PriorityUrgent, result.Priority)
	assert.Equal(t, "billing", result.Category)
	assert.Equal(t, []string{"double charge"}, []string(result.KeyPoints))
	assert.Equal(t, []string{"Pro plan"}, []string(result.MentionedProducts))
}

func TestClassifyModelPathCodeFence(t *testing.T) {
	client := &fakeClient{reply: "```json\n{\"sentiment\":\"neutral\",\"priority\":\"low\",\"category\":\"general\",\"emotion\":\"neutral\",\"request_type\":\"question\"}\n```"}
	c := NewClassifier(client)

	result := c.Classify(context.Background(), "Question", "What are your office hours?")

	assert.Equal(t, msgdomain.SentimentNeutral, result.Sentiment)
	assert.Equal(t, msgdomain.PriorityLow, result.Priority)
}

func TestClassifyFallsBackOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("backend unavailable")}
	c := NewClassifier(client)

	result := c.Classify(context.Background(), "URGENT: broken", "help, it crashed")

	require.NotNil(t, result)
	assert.Equal(t, msgdomain.PriorityUrgent, result.Priority)
	assert.True(t, result.Sentiment.IsValid())
}

func TestClassifyFallsBackOnMalformedJSON(t *testing.T) {
	client := &fakeClient{reply: "I think this email is about billing and seems urgent."}
	c := NewClassifier(client)

	result := c.Classify(context.Background(), "Invoice", "charged twice")

	require.NotNil(t, result)
	assert.Equal(t, "billing", result.Category)
	assert.True(t, result.Priority.IsValid())
}

func TestClassifyFallsBackOnInvalidEnum(t *testing.T) {
	client := &fakeClient{reply: `{"sentiment":"furious","priority":"mega-urgent","category":"billing"}`}
	c := NewClassifier(client)

	result := c.Classify(context.Background(), "Invoice", "charged twice")

	// Invalid enums never leak out of classification
	assert.True(t, result.Sentiment.IsValid())
	assert.True(t, result.Priority.IsValid())
}

func TestClassifyNilClientUsesHeuristic(t *testing.T) {
	c := NewClassifier(nil)
	result := c.Classify(context.Background(), "Hello", "just a note")
	require.NotNil(t, result)
	assert.Equal(t, "general", result.Category)
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounded", "Here you go: {\"a\":1} hope it helps", `{"a":1}`},
		{"none", "no json here", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONObject(tt.in))
		})
	}
}
