package domain

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Status represents the lifecycle state of a processing record
type Status string

const (
	StatusPending   Status = "pending"
	StatusResponded Status = "responded"
	StatusIgnored   Status = "ignored"
	StatusResolved  Status = "resolved"
)

// IsValid checks if the status is one of the known values
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusResponded, StatusIgnored, StatusResolved:
		return true
	}
	return false
}

// Sentiment represents the detected sentiment of a message
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// IsValid checks if the sentiment is one of the known values
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Priority represents the detected priority of a message
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// IsValid checks if the priority is one of the known values
func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityNormal, PriorityLow:
		return true
	}
	return false
}

// StringArray is a custom type to handle JSON array in GORM
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// AnalysisResult is the structured classification of one message.
// Sentiment and Priority are always one of the enumerated values, even when
// produced by the heuristic fallback path.
type AnalysisResult struct {
	Sentiment         Sentiment   `json:"sentiment"`
	Priority          Priority    `json:"priority"`
	Category          string      `json:"category"`
	Emotion           string      `json:"emotion"`
	RequestType       string      `json:"request_type"`
	KeyPoints         StringArray `json:"key_points" gorm:"type:text"`
	MentionedProducts StringArray `json:"mentioned_products" gorm:"type:text"`
	UrgencyKeywords   StringArray `json:"urgency_keywords" gorm:"type:text"`
}

// ResponseDraft is one generated response for a record. A record keeps its
// full draft history; the most recently generated draft is the current one.
type ResponseDraft struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	RecordID    string     `json:"record_id" gorm:"index;not null"`
	Body        string     `json:"body" gorm:"type:text"`
	Tone        string     `json:"tone" gorm:"default:professional"`
	GeneratedAt time.Time  `json:"generated_at"`
	Sent        bool       `json:"sent" gorm:"default:false"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

// TableName specifies the table name for GORM
func (ResponseDraft) TableName() string {
	return "response_drafts"
}

// ProcessingRecord is the persisted aggregate of one inbound message plus
// its classification, summary and response state. Created only via the
// ingestion gate; the message fields are never mutated afterwards.
type ProcessingRecord struct {
	ID         string      `json:"id" gorm:"primaryKey"`
	ExternalID string      `json:"external_id" gorm:"uniqueIndex;not null"`
	From       string      `json:"from" gorm:"column:from_address;not null"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body" gorm:"type:text"`
	ReceivedAt time.Time   `json:"received_at"`
	Labels     StringArray `json:"labels,omitempty" gorm:"type:text"`

	Analysis *AnalysisResult `json:"analysis,omitempty" gorm:"embedded;embeddedPrefix:analysis_"`
	Summary  string          `json:"summary,omitempty" gorm:"type:text"`
	Status   Status          `json:"status" gorm:"index;default:pending"`

	Responses []ResponseDraft `json:"responses,omitempty" gorm:"foreignKey:RecordID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ProcessingRecord) TableName() string {
	return "processing_records"
}

// Analyzed reports whether the record carries a real analysis. Scanning a
// row that was never classified materializes the embedded struct with
// zero-valued enums, so a nil check alone is not enough.
func (r *ProcessingRecord) Analyzed() bool {
	return r.Analysis != nil && r.Analysis.Sentiment.IsValid() && r.Analysis.Priority.IsValid()
}
