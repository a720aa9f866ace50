package repository

import (
	"fmt"
	"time"

	msgdomain "supportmail-backend/internal/message/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRecordRepository implements RecordRepository using GORM
type gormRecordRepository struct {
	db *gorm.DB
}

// NewGormRecordRepository creates a new GORM-based RecordRepository
func NewGormRecordRepository(db *gorm.DB) RecordRepository {
	return &gormRecordRepository{db: db}
}

// InsertIfAbsent relies on the external_id unique index: the conflicting
// insert affects zero rows instead of failing, which keeps check-and-insert
// atomic under concurrent batches.
func (r *gormRecordRepository) InsertIfAbsent(record *msgdomain.ProcessingRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = msgdomain.StatusPending
	}

	res := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_id"}},
		DoNothing: true,
	}).Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRecordRepository) GetByID(id string) (*msgdomain.ProcessingRecord, error) {
	var record msgdomain.ProcessingRecord
	err := r.db.Preload("Responses", func(db *gorm.DB) *gorm.DB {
		return db.Order("generated_at ASC")
	}).Where("id = ?", id).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRecordRepository) GetByExternalID(externalID string) (*msgdomain.ProcessingRecord, error) {
	var record msgdomain.ProcessingRecord
	err := r.db.Preload("Responses").Where("external_id = ?", externalID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *gormRecordRepository) ListFiltered(criteria ListCriteria) ([]*msgdomain.ProcessingRecord, int64, error) {
	var records []*msgdomain.ProcessingRecord
	var total int64

	query := r.db.Model(&msgdomain.ProcessingRecord{})
	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Category != "" {
		query = query.Where("analysis_category = ?", criteria.Category)
	}
	if criteria.Priority != "" {
		query = query.Where("analysis_priority = ?", criteria.Priority)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := criteria.Limit
	if limit <= 0 {
		limit = 50
	}
	err := query.Preload("Responses").
		Order("received_at DESC").
		Limit(limit).Offset(criteria.Offset).
		Find(&records).Error
	return records, total, err
}

func (r *gormRecordRepository) UpdateAnalysis(id string, analysis *msgdomain.AnalysisResult, summary string) error {
	res := r.db.Model(&msgdomain.ProcessingRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"analysis_sentiment":          analysis.Sentiment,
			"analysis_priority":           analysis.Priority,
			"analysis_category":           analysis.Category,
			"analysis_emotion":            analysis.Emotion,
			"analysis_request_type":       analysis.RequestType,
			"analysis_key_points":         analysis.KeyPoints,
			"analysis_mentioned_products": analysis.MentionedProducts,
			"analysis_urgency_keywords":   analysis.UrgencyKeywords,
			"summary":                     summary,
			"updated_at":                  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}

func (r *gormRecordRepository) InsertResponse(id, body, tone string) (*msgdomain.ResponseDraft, error) {
	draft := &msgdomain.ResponseDraft{
		ID:          uuid.New().String(),
		RecordID:    id,
		Body:        body,
		Tone:        tone,
		GeneratedAt: time.Now(),
	}
	if err := r.db.Create(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

func (r *gormRecordRepository) LatestResponse(id string) (*msgdomain.ResponseDraft, error) {
	var draft msgdomain.ResponseDraft
	err := r.db.Where("record_id = ?", id).Order("generated_at DESC").First(&draft).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &draft, nil
}

// MarkSent updates the draft and the record status together so a sent draft
// always implies a responded record.
func (r *gormRecordRepository) MarkSent(id, draftID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&msgdomain.ResponseDraft{}).
			Where("id = ? AND record_id = ?", draftID, id).
			Updates(map[string]interface{}{"sent": true, "sent_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("draft not found: %s", draftID)
		}
		return tx.Model(&msgdomain.ProcessingRecord{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": msgdomain.StatusResponded, "updated_at": now}).Error
	})
}

func (r *gormRecordRepository) UpdateStatus(id string, status msgdomain.Status) error {
	res := r.db.Model(&msgdomain.ProcessingRecord{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("record not found: %s", id)
	}
	return nil
}
