package dto

import (
	"time"

	msgdomain "supportmail-backend/internal/message/domain"
)

// MessageInput is one inbound message submitted through the API
type MessageInput struct {
	ExternalID string    `json:"external_id"`
	From       string    `json:"from" binding:"required"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
	Labels     []string  `json:"labels"`
}

// ProcessRequest is the payload for a manual batch submission
type ProcessRequest struct {
	Messages []MessageInput `json:"messages" binding:"required"`
}

// ToDomain converts the input to a domain message
func (m MessageInput) ToDomain() msgdomain.Message {
	return msgdomain.Message{
		ExternalID: m.ExternalID,
		From:       m.From,
		Subject:    m.Subject,
		Body:       m.Body,
		ReceivedAt: m.ReceivedAt,
		Labels:     m.Labels,
	}
}

// UpdateStatusRequest changes a record's lifecycle status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RegenerateResponseRequest asks for a fresh draft, optionally in a
// different tone. Reanalyze re-runs classification first.
type RegenerateResponseRequest struct {
	Tone      string `json:"tone"`
	Reanalyze bool   `json:"reanalyze"`
}

// SetKnowledgeRequest upserts one knowledge base entry
type SetKnowledgeRequest struct {
	Value string `json:"value" binding:"required"`
}

// AutoSendRequest toggles automatic response dispatch
type AutoSendRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
