package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/pkg/ai"
)

// Keyword lexicons for the heuristic path. Matching is plain lower-cased
// substring containment; the lists are ordered only for readability.
var (
	urgencyKeywords = []string{
		"urgent", "asap", "emergency", "immediately", "critical",
		"broken", "crash", "help", "refund", "cancel", "not working",
	}

	positiveWords = []string{
		"thank", "thanks", "great", "love", "excellent", "awesome",
		"happy", "appreciate", "perfect", "amazing",
	}

	negativeWords = []string{
		"broken", "terrible", "awful", "bad", "angry", "frustrated",
		"disappointed", "crash", "hate", "worst", "useless", "unacceptable",
	}

	billingKeywords   = []string{"billing", "invoice", "charge", "charged", "payment", "subscription"}
	accountKeywords   = []string{"account", "password", "login", "log in", "sign in", "locked out"}
	technicalKeywords = []string{"error", "bug", "crash", "broken", "not working", "glitch", "fails"}
	refundKeywords    = []string{"refund", "money back", "chargeback"}
)

// Classifier turns a message into a structured analysis. The model-backed
// path can fail for any number of reasons (network, quota, malformed
// output); the heuristic path cannot, so Classify is total.
type Classifier struct {
	client ai.Client
}

// NewClassifier creates a new Classifier. A nil client disables the
// model-backed path entirely.
func NewClassifier(client ai.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify analyzes a message and always returns a valid result
func (c *Classifier) Classify(ctx context.Context, subject, body string) *msgdomain.AnalysisResult {
	if c.client != nil {
		result, err := c.classifyWithModel(ctx, subject, body)
		if err == nil {
			return result
		}
		log.Printf("[Classifier] Model classification failed: %v, using heuristic", err)
	}
	return heuristicAnalysis(subject, body)
}

// modelAnalysis is the strict schema the model is asked to fill. Anything
// that does not decode into it, or carries an out-of-range enum, is treated
// as malformed output and routed to the heuristic path.
type modelAnalysis struct {
	Sentiment         string   `json:"sentiment"`
	Priority          string   `json:"priority"`
	Category          string   `json:"category"`
	Emotion           string   `json:"emotion"`
	RequestType       string   `json:"request_type"`
	KeyPoints         []string `json:"key_points"`
	MentionedProducts []string `json:"mentioned_products"`
	UrgencyKeywords   []string `json:"urgency_keywords"`
}

func (c *Classifier) classifyWithModel(ctx context.Context, subject, body string) (*msgdomain.AnalysisResult, error) {
	prompt := fmt.Sprintf(`You are a support inbox analyst. Analyze the customer email below and respond with ONLY a JSON object, no other text.

Required fields:
- "sentiment": one of "positive", "negative", "neutral"
- "priority": one of "urgent", "normal", "low"
- "category": one of "billing", "technical", "refund", "account", "complaint", "compliment", "general"
- "emotion": the customer's dominant emotion (e.g. "frustrated", "happy", "neutral")
- "request_type": one of "question", "refund", "request"
- "key_points": array of short strings, the main points of the email
- "mentioned_products": array of product names mentioned, or []
- "urgency_keywords": array of urgency-signaling words found, or []

SUBJECT: %s

BODY:
%s

JSON:`, subject, truncateForPrompt(body, 4000))

	raw, err := c.client.Complete(ctx, prompt, 500, 0.2)
	if err != nil {
		return nil, err
	}

	jsonText := extractJSONObject(raw)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON object in model output")
	}

	var parsed modelAnalysis
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		return nil, fmt.Errorf("malformed analysis JSON: %w", err)
	}

	sentiment := msgdomain.Sentiment(strings.ToLower(strings.TrimSpace(parsed.Sentiment)))
	priority := msgdomain.Priority(strings.ToLower(strings.TrimSpace(parsed.Priority)))
	if !sentiment.IsValid() {
		return nil, fmt.Errorf("invalid sentiment in model output: %q", parsed.Sentiment)
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("invalid priority in model output: %q", parsed.Priority)
	}

	result := &msgdomain.AnalysisResult{
		Sentiment:         sentiment,
		Priority:          priority,
		Category:          strings.ToLower(strings.TrimSpace(parsed.Category)),
		Emotion:           strings.ToLower(strings.TrimSpace(parsed.Emotion)),
		RequestType:       strings.ToLower(strings.TrimSpace(parsed.RequestType)),
		KeyPoints:         parsed.KeyPoints,
		MentionedProducts: parsed.MentionedProducts,
		UrgencyKeywords:   parsed.UrgencyKeywords,
	}
	if result.Category == "" {
		result.Category = "general"
	}
	if result.Emotion == "" {
		result.Emotion = "neutral"
	}
	if result.RequestType == "" {
		result.RequestType = "request"
	}
	if result.KeyPoints == nil {
		result.KeyPoints = msgdomain.StringArray{}
	}
	if result.MentionedProducts == nil {
		result.MentionedProducts = msgdomain.StringArray{}
	}
	if result.UrgencyKeywords == nil {
		result.UrgencyKeywords = msgdomain.StringArray{}
	}
	return result, nil
}

// heuristicAnalysis is the pure fallback path: same input, same output,
// no I/O. It guarantees the classification contract when the model backend
// is degraded.
func heuristicAnalysis(subject, body string) *msgdomain.AnalysisResult {
	text := strings.ToLower(subject + " " + body)

	var matchedUrgency []string
	for _, kw := range urgencyKeywords {
		if strings.Contains(text, kw) {
			matchedUrgency = append(matchedUrgency, kw)
		}
	}

	priority := msgdomain.PriorityNormal
	if len(matchedUrgency) > 0 {
		priority = msgdomain.PriorityUrgent
	}

	positiveCount := 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			positiveCount++
		}
	}
	negativeCount := 0
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			negativeCount++
		}
	}

	// Ties go to neutral on purpose
	sentiment := msgdomain.SentimentNeutral
	if positiveCount > negativeCount {
		sentiment = msgdomain.SentimentPositive
	} else if negativeCount > positiveCount {
		sentiment = msgdomain.SentimentNegative
	}

	category := "general"
	switch {
	case containsAny(text, billingKeywords):
		category = "billing"
	case containsAny(text, accountKeywords):
		category = "account"
	case containsAny(text, technicalKeywords):
		category = "technical"
	case containsAny(text, refundKeywords):
		category = "refund"
	case sentiment == msgdomain.SentimentNegative:
		category = "complaint"
	case sentiment == msgdomain.SentimentPositive:
		category = "compliment"
	}

	emotion := "neutral"
	if negativeCount > 0 {
		emotion = "frustrated"
	} else if positiveCount > 0 {
		emotion = "happy"
	}

	requestType := "request"
	if strings.Contains(body, "?") {
		requestType = "question"
	} else if category == "refund" {
		requestType = "refund"
	}

	keyPoints := msgdomain.StringArray{}
	if strings.TrimSpace(subject) != "" {
		keyPoints = msgdomain.StringArray{subject}
	}

	urgency := msgdomain.StringArray{}
	if matchedUrgency != nil {
		urgency = matchedUrgency
	}

	return &msgdomain.AnalysisResult{
		Sentiment:         sentiment,
		Priority:          priority,
		Category:          category,
		Emotion:           emotion,
		RequestType:       requestType,
		KeyPoints:         keyPoints,
		MentionedProducts: msgdomain.StringArray{},
		UrgencyKeywords:   urgency,
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// extractJSONObject pulls the outermost {...} from model output, stripping
// markdown code fences first
func extractJSONObject(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

func truncateForPrompt(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max]
}
