package usecase

import (
	"context"

	"github.com/redis/go-redis/v9"

	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/internal/message/repository"
	"supportmail-backend/pkg/ai"
	"supportmail-backend/pkg/mailer"
)

// BatchResult summarizes one batch run. Duplicates and per-item errors are
// normal outcomes, not batch failures.
type BatchResult struct {
	Processed  int                           `json:"processed_count"`
	Duplicates int                           `json:"duplicate_count"`
	Errors     int                           `json:"error_count"`
	Records    []*msgdomain.ProcessingRecord `json:"records"`

	// FailedExternalIDs lists the messages whose persistence failed, so the
	// poll cycle can leave them unread for a later retry.
	FailedExternalIDs []string `json:"failed_external_ids,omitempty"`
}

// MessageUsecase defines the interface for the message processing pipeline
type MessageUsecase interface {
	// ProcessBatch runs every message through the full pipeline. A failing
	// item is counted and skipped; it never aborts the batch.
	ProcessBatch(ctx context.Context, messages []msgdomain.Message) *BatchResult

	// RunCycle fetches unread messages from the configured mail source,
	// processes them and marks the handled ones as read
	RunCycle(ctx context.Context) (*BatchResult, error)

	// GetRecord returns one record with its response history
	GetRecord(id string) (*msgdomain.ProcessingRecord, error)

	// ListRecords returns records matching the criteria plus the total count
	ListRecords(criteria repository.ListCriteria) ([]*msgdomain.ProcessingRecord, int64, error)

	// RegenerateAnalysis re-runs classification and summarization on a
	// stored record and persists the result
	RegenerateAnalysis(ctx context.Context, id string) (*msgdomain.ProcessingRecord, error)

	// RegenerateResponse drafts a new response for a stored record. An empty
	// tone uses the configured default.
	RegenerateResponse(ctx context.Context, id, tone string) (*msgdomain.ResponseDraft, error)

	// SendResponse sends the latest draft of a record through the mail
	// source and marks it sent
	SendResponse(ctx context.Context, id string) (*msgdomain.ResponseDraft, error)

	// UpdateStatus moves a record to a new lifecycle status
	UpdateStatus(id string, status string) (*msgdomain.ProcessingRecord, error)

	// SetAutoSend toggles automatic dispatch of non-urgent responses at runtime
	SetAutoSend(enabled bool)

	// AutoSendEnabled reports the current auto-dispatch setting
	AutoSendEnabled() bool

	SetAIClient(client ai.Client)
	SetMailSource(source mailer.Source)
	SetSeenCache(cache *redis.Client)
}
