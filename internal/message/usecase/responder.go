package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	kbusecase "supportmail-backend/internal/knowledge/usecase"
	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/pkg/ai"
)

// Responder drafts a reply to a customer message, grounded on whatever
// knowledge base entries match the message text. The draft always carries
// a deterministic greeting and a tone-appropriate signature; the model
// only fills in the middle.
type Responder struct {
	client    ai.Client
	knowledge kbusecase.KnowledgeUsecase
}

func NewResponder(client ai.Client, knowledge kbusecase.KnowledgeUsecase) *Responder {
	return &Responder{client: client, knowledge: knowledge}
}

// Synthesize produces the response body for a message. It never fails:
// when the model path is unavailable it falls back to a rule-based
// template driven by the analysis.
func (r *Responder) Synthesize(ctx context.Context, from, subject, body string, analysis *msgdomain.AnalysisResult, tone string) string {
	name := deriveName(from)

	kbContext := kbusecase.NoMatchMarker
	if r.knowledge != nil {
		kbContext = r.knowledge.BuildContext(subject, body)
	}

	if r.client != nil {
		reply, err := r.synthesizeWithModel(ctx, name, subject, body, analysis, tone, kbContext)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		if err != nil {
			log.Printf("[Responder] Model synthesis failed: %v, using template", err)
		}
	}
	return templateResponse(name, analysis, tone)
}

func (r *Responder) synthesizeWithModel(ctx context.Context, name, subject, body string, analysis *msgdomain.AnalysisResult, tone, kbContext string) (string, error) {
	sentiment := "neutral"
	priority := "normal"
	category := "general"
	if analysis != nil {
		sentiment = string(analysis.Sentiment)
		priority = string(analysis.Priority)
		category = analysis.Category
	}

	prompt := fmt.Sprintf(`You are a customer support agent writing a reply to the email below. Write only the body paragraphs of the reply.

Rules:
- Do NOT include a greeting line (no "Dear...", "Hi...", "Hello...").
- Do NOT include a sign-off or signature.
- Do NOT repeat the subject line.
- Tone: %s.
- The customer's sentiment is %s, the priority is %s, the category is %s.
- Ground your answer on the knowledge base entries below. If they do not cover the question, say the team will look into it rather than inventing details.

KNOWLEDGE BASE:
%s

CUSTOMER EMAIL
SUBJECT: %s
BODY:
%s

REPLY BODY:`, tone, sentiment, priority, category, kbContext, subject, truncateForPrompt(body, 4000))

	raw, err := r.client.Complete(ctx, prompt, 600, 0.7)
	if err != nil {
		return "", err
	}

	core := stripResponseArtifacts(raw, subject)
	if core == "" {
		return "", fmt.Errorf("empty model reply after cleanup")
	}

	return assembleResponse(name, core, tone), nil
}

// stripResponseArtifacts removes greeting lines, subject echoes and
// sign-offs the model produced despite instructions, leaving only the
// core body paragraphs.
func stripResponseArtifacts(raw, subject string) string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if strings.HasPrefix(lower, "dear ") || strings.HasPrefix(lower, "hi ") ||
			strings.HasPrefix(lower, "hello ") || strings.HasPrefix(lower, "hey ") {
			continue
		}
		if strings.HasPrefix(lower, "subject:") || strings.HasPrefix(lower, "re:") {
			continue
		}
		if subject != "" && trimmed == subject {
			continue
		}
		if isSignoffLine(lower) {
			// Everything after a sign-off is signature material
			break
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func isSignoffLine(lower string) bool {
	signoffs := []string{
		"best regards", "kind regards", "warm regards", "regards,",
		"sincerely", "best,", "thanks,", "thank you,", "cheers,",
		"yours truly", "respectfully",
	}
	for _, s := range signoffs {
		if strings.HasPrefix(lower, s) {
			return true
		}
	}
	return false
}

// assembleResponse wraps the core body with the deterministic greeting
// and the tone signature.
func assembleResponse(name, core, tone string) string {
	return fmt.Sprintf("Dear %s,\n\n%s\n\n%s", name, core, toneSignature(tone))
}

func toneSignature(tone string) string {
	switch strings.ToLower(tone) {
	case "friendly":
		return "Cheers,\nThe Support Team"
	case "formal":
		return "Sincerely,\nCustomer Support Department"
	default:
		return "Best regards,\nCustomer Support Team"
	}
}

// templateResponse is the rule-based fallback: deterministic for a given
// analysis and tone.
func templateResponse(name string, analysis *msgdomain.AnalysisResult, tone string) string {
	var parts []string
	parts = append(parts, "Thank you for reaching out to our support team.")

	urgent := analysis != nil && analysis.Priority == msgdomain.PriorityUrgent
	negative := analysis != nil && analysis.Sentiment == msgdomain.SentimentNegative
	positive := analysis != nil && analysis.Sentiment == msgdomain.SentimentPositive

	if urgent {
		parts = append(parts, "We understand this is urgent and have flagged your request for priority handling.")
	}
	if negative {
		parts = append(parts, "We are sorry to hear about the trouble you have experienced, and we apologize for any inconvenience this has caused.")
	}
	if positive {
		parts = append(parts, "We are glad to hear from you and appreciate you taking the time to write to us.")
	}

	parts = append(parts, "Our team is reviewing your message and will get back to you within 24 hours.")

	if urgent {
		parts = append(parts, "If you need immediate assistance in the meantime, please call our urgent support line.")
	}

	core := strings.Join(parts, " ")
	return assembleResponse(name, core, tone)
}

// deriveName extracts a display name from an email address: the local
// part is split on dots and each segment is capitalized, so
// "jane.doe@example.com" becomes "Jane Doe". An unparseable address
// falls back to "Customer".
func deriveName(from string) string {
	addr := from
	if start := strings.Index(addr, "<"); start != -1 {
		if end := strings.Index(addr[start:], ">"); end != -1 {
			addr = addr[start+1 : start+end]
		}
	}
	at := strings.Index(addr, "@")
	if at <= 0 {
		return "Customer"
	}
	local := addr[:at]
	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	if len(segments) == 0 {
		return "Customer"
	}
	for i, seg := range segments {
		segments[i] = strings.ToUpper(seg[:1]) + strings.ToLower(seg[1:])
	}
	return strings.Join(segments, " ")
}
