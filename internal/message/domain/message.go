package domain

import "time"

// Message is one inbound support email as delivered by a mail source.
// Messages are immutable once ingested; everything derived from them lives
// on the ProcessingRecord.
type Message struct {
	ExternalID string    `json:"external_id,omitempty"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
	Labels     []string  `json:"labels,omitempty"`
}
