package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	msgdomain "supportmail-backend/internal/message/domain"
)

const (
	seenKeyPrefix = "supportmail:seen:"
	seenTTL       = 24 * time.Hour
)

// ingest runs a message through the dedup gate. It returns the stored
// record and true when the message is new; (nil, false) when it is a
// duplicate. The database unique constraint is the authoritative check;
// Redis is only a fast-path cache in front of it.
func (u *messageUsecase) ingest(ctx context.Context, msg msgdomain.Message) (*msgdomain.ProcessingRecord, bool, error) {
	externalID := msg.ExternalID
	if externalID == "" {
		externalID = syntheticExternalID(msg)
		log.Printf("[Gate] Message without identifier, assigned %s", externalID)
	}

	if u.seenCache != nil {
		seenKey := seenKeyPrefix + externalID
		n, err := u.seenCache.Exists(ctx, seenKey).Result()
		if err != nil {
			log.Printf("[Gate] Seen-cache lookup failed: %v", err)
		} else if n > 0 {
			return nil, false, nil
		}
	}

	receivedAt := msg.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	record := &msgdomain.ProcessingRecord{
		ID:         uuid.NewString(),
		ExternalID: externalID,
		From:       msg.From,
		Subject:    msg.Subject,
		Body:       msg.Body,
		ReceivedAt: receivedAt,
		Labels:     msgdomain.StringArray(msg.Labels),
		Status:     msgdomain.StatusPending,
	}

	created, err := u.recordRepo.InsertIfAbsent(record)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ingest message %s: %w", externalID, err)
	}

	if u.seenCache != nil {
		// Best effort, the row is already the source of truth
		if err := u.seenCache.Set(ctx, seenKeyPrefix+externalID, 1, seenTTL).Err(); err != nil {
			log.Printf("[Gate] Seen-cache write failed: %v", err)
		}
	}

	if !created {
		return nil, false, nil
	}
	return record, true, nil
}

// syntheticExternalID builds a stable-enough identifier for messages whose
// source did not provide one. It is unique per ingestion attempt, which
// means such messages are never deduplicated against each other.
func syntheticExternalID(msg msgdomain.Message) string {
	return fmt.Sprintf("synthetic-%d-%s", msg.ReceivedAt.UnixNano(), uuid.NewString()[:8])
}
