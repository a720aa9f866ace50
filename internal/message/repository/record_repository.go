package repository

import (
	msgdomain "supportmail-backend/internal/message/domain"
)

// ListCriteria filters record listings
type ListCriteria struct {
	Status   string
	Category string
	Priority string
	Limit    int
	Offset   int
}

// RecordRepository defines the interface for processing record persistence
type RecordRepository interface {
	// InsertIfAbsent persists a new record unless one with the same external
	// ID already exists. Returns false when the record was a duplicate; the
	// check-and-insert is atomic with respect to the store.
	InsertIfAbsent(record *msgdomain.ProcessingRecord) (bool, error)

	// GetByID finds a record by its ID, with its response history
	GetByID(id string) (*msgdomain.ProcessingRecord, error)

	// GetByExternalID finds a record by the message's external ID
	GetByExternalID(externalID string) (*msgdomain.ProcessingRecord, error)

	// ListFiltered returns records matching the criteria, newest first
	ListFiltered(criteria ListCriteria) ([]*msgdomain.ProcessingRecord, int64, error)

	// UpdateAnalysis replaces the record's analysis and summary
	UpdateAnalysis(id string, analysis *msgdomain.AnalysisResult, summary string) error

	// InsertResponse appends a new draft to the record's response history
	InsertResponse(id, body, tone string) (*msgdomain.ResponseDraft, error)

	// LatestResponse returns the most recently generated draft, or nil
	LatestResponse(id string) (*msgdomain.ResponseDraft, error)

	// MarkSent flags a draft as sent and moves the record to responded
	MarkSent(id, draftID string) error

	// UpdateStatus sets the record's status
	UpdateStatus(id string, status msgdomain.Status) error
}
