package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	kbusecase "supportmail-backend/internal/knowledge/usecase"
	msgdomain "supportmail-backend/internal/message/domain"
	"supportmail-backend/internal/message/repository"
	"supportmail-backend/pkg/ai"
	"supportmail-backend/pkg/config"
	"supportmail-backend/pkg/mailer"
)

type messageUsecase struct {
	recordRepo repository.RecordRepository
	knowledge  kbusecase.KnowledgeUsecase
	cfg        *config.Config

	aiClient   ai.Client
	mailSource mailer.Source
	seenCache  *redis.Client

	classifier *Classifier
	summarizer *Summarizer
	responder  *Responder

	autoSendMu sync.RWMutex
	autoSend   bool
}

// NewMessageUsecase creates the pipeline usecase. The AI client, mail
// source and seen cache are wired afterwards through the setters; the
// pipeline degrades gracefully when any of them is missing.
func NewMessageUsecase(recordRepo repository.RecordRepository, knowledge kbusecase.KnowledgeUsecase, cfg *config.Config) MessageUsecase {
	u := &messageUsecase{
		recordRepo: recordRepo,
		knowledge:  knowledge,
		cfg:        cfg,
		autoSend:   cfg.AutoSend,
	}
	u.rebuildStages()
	return u
}

func (u *messageUsecase) SetAIClient(client ai.Client) {
	u.aiClient = client
	u.rebuildStages()
}

func (u *messageUsecase) SetMailSource(source mailer.Source) {
	u.mailSource = source
}

func (u *messageUsecase) SetSeenCache(cache *redis.Client) {
	u.seenCache = cache
}

func (u *messageUsecase) rebuildStages() {
	u.classifier = NewClassifier(u.aiClient)
	u.summarizer = NewSummarizer(u.aiClient)
	u.responder = NewResponder(u.aiClient, u.knowledge)
}

// ProcessBatch runs the messages through ingest, classify, summarize and
// respond, sequentially and in order. Each item is isolated: a failure is
// logged and counted, then the batch moves on.
func (u *messageUsecase) ProcessBatch(ctx context.Context, messages []msgdomain.Message) *BatchResult {
	result := &BatchResult{Records: []*msgdomain.ProcessingRecord{}}

	for i, msg := range messages {
		if i > 0 && u.cfg.ProcessDelay > 0 {
			time.Sleep(u.cfg.ProcessDelay)
		}

		record, created, err := u.ingest(ctx, msg)
		if err != nil {
			log.Printf("[Pipeline] Failed to ingest %q from %s: %v", msg.Subject, msg.From, err)
			result.Errors++
			result.FailedExternalIDs = append(result.FailedExternalIDs, msg.ExternalID)
			continue
		}
		if !created {
			log.Printf("[Pipeline] Skipping duplicate message %s", msg.ExternalID)
			result.Duplicates++
			continue
		}

		analysis := u.classifier.Classify(ctx, msg.Subject, msg.Body)
		summary := u.summarizer.Summarize(ctx, msg.Subject, msg.Body)
		if err := u.recordRepo.UpdateAnalysis(record.ID, analysis, summary); err != nil {
			log.Printf("[Pipeline] Failed to persist analysis for %s: %v", record.ID, err)
			result.Errors++
			result.FailedExternalIDs = append(result.FailedExternalIDs, msg.ExternalID)
			continue
		}
		record.Analysis = analysis
		record.Summary = summary

		responseBody := u.responder.Synthesize(ctx, record.From, record.Subject, record.Body, analysis, u.cfg.ResponseTone)
		draft, err := u.recordRepo.InsertResponse(record.ID, responseBody, u.cfg.ResponseTone)
		if err != nil {
			log.Printf("[Pipeline] Failed to persist response for %s: %v", record.ID, err)
			result.Errors++
			result.FailedExternalIDs = append(result.FailedExternalIDs, msg.ExternalID)
			continue
		}

		u.autoDispatch(ctx, record, draft)

		record.Responses = append(record.Responses, *draft)
		result.Processed++
		result.Records = append(result.Records, record)
	}

	log.Printf("[Pipeline] Batch complete: %d processed, %d duplicates, %d errors",
		result.Processed, result.Duplicates, result.Errors)
	return result
}

// autoDispatch sends the draft when auto-send is on and the message is not
// urgent. Urgent messages always wait for human review regardless of the
// toggle.
func (u *messageUsecase) autoDispatch(ctx context.Context, record *msgdomain.ProcessingRecord, draft *msgdomain.ResponseDraft) {
	if !u.AutoSendEnabled() {
		return
	}
	if !record.Analyzed() || record.Analysis.Priority == msgdomain.PriorityUrgent {
		log.Printf("[Pipeline] Holding response for %s, urgent messages require review", record.ID)
		return
	}
	if u.mailSource == nil {
		log.Printf("[Pipeline] Auto-send enabled but no mail source configured, holding response for %s", record.ID)
		return
	}

	if _, err := u.mailSource.Send(ctx, record.From, replySubject(record.Subject), draft.Body); err != nil {
		log.Printf("[Pipeline] Auto-send failed for %s: %v", record.ID, err)
		return
	}
	if err := u.recordRepo.MarkSent(record.ID, draft.ID); err != nil {
		log.Printf("[Pipeline] Sent response for %s but failed to mark it: %v", record.ID, err)
		return
	}

	now := time.Now()
	draft.Sent = true
	draft.SentAt = &now
	record.Status = msgdomain.StatusResponded
	log.Printf("[Pipeline] Auto-sent response for %s to %s", record.ID, record.From)
}

// RunCycle is one poll iteration: fetch unread, process, mark handled
// messages as read. Messages whose persistence failed stay unread so the
// next cycle retries them.
func (u *messageUsecase) RunCycle(ctx context.Context) (*BatchResult, error) {
	if u.mailSource == nil {
		return nil, fmt.Errorf("mail source not configured")
	}

	messages, err := u.mailSource.FetchUnread(ctx, u.cfg.FetchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unread messages: %w", err)
	}
	if len(messages) == 0 {
		return &BatchResult{Records: []*msgdomain.ProcessingRecord{}}, nil
	}
	log.Printf("[Pipeline] Fetched %d unread messages", len(messages))

	result := u.ProcessBatch(ctx, messages)

	failed := make(map[string]bool, len(result.FailedExternalIDs))
	for _, id := range result.FailedExternalIDs {
		failed[id] = true
	}
	for _, msg := range messages {
		if msg.ExternalID == "" || failed[msg.ExternalID] {
			continue
		}
		if err := u.mailSource.MarkRead(ctx, msg.ExternalID); err != nil {
			log.Printf("[Pipeline] Failed to mark %s as read: %v", msg.ExternalID, err)
		}
	}

	return result, nil
}

func (u *messageUsecase) GetRecord(id string) (*msgdomain.ProcessingRecord, error) {
	return u.recordRepo.GetByID(id)
}

func (u *messageUsecase) ListRecords(criteria repository.ListCriteria) ([]*msgdomain.ProcessingRecord, int64, error) {
	return u.recordRepo.ListFiltered(criteria)
}

func (u *messageUsecase) RegenerateAnalysis(ctx context.Context, id string) (*msgdomain.ProcessingRecord, error) {
	record, err := u.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record not found")
	}

	analysis := u.classifier.Classify(ctx, record.Subject, record.Body)
	summary := u.summarizer.Summarize(ctx, record.Subject, record.Body)
	if err := u.recordRepo.UpdateAnalysis(record.ID, analysis, summary); err != nil {
		return nil, fmt.Errorf("failed to persist analysis: %w", err)
	}

	record.Analysis = analysis
	record.Summary = summary
	return record, nil
}

func (u *messageUsecase) RegenerateResponse(ctx context.Context, id, tone string) (*msgdomain.ResponseDraft, error) {
	record, err := u.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record not found")
	}

	if tone == "" {
		tone = u.cfg.ResponseTone
	}

	analysis := record.Analysis
	if !record.Analyzed() {
		analysis = u.classifier.Classify(ctx, record.Subject, record.Body)
		summary := u.summarizer.Summarize(ctx, record.Subject, record.Body)
		if err := u.recordRepo.UpdateAnalysis(record.ID, analysis, summary); err != nil {
			return nil, fmt.Errorf("failed to persist analysis: %w", err)
		}
	}

	body := u.responder.Synthesize(ctx, record.From, record.Subject, record.Body, analysis, tone)
	draft, err := u.recordRepo.InsertResponse(record.ID, body, tone)
	if err != nil {
		return nil, fmt.Errorf("failed to persist response: %w", err)
	}
	return draft, nil
}

func (u *messageUsecase) SendResponse(ctx context.Context, id string) (*msgdomain.ResponseDraft, error) {
	if u.mailSource == nil {
		return nil, fmt.Errorf("mail source not configured")
	}

	record, err := u.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record not found")
	}

	draft, err := u.recordRepo.LatestResponse(record.ID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("record has no response draft")
	}

	if _, err := u.mailSource.Send(ctx, record.From, replySubject(record.Subject), draft.Body); err != nil {
		return nil, fmt.Errorf("failed to send response: %w", err)
	}
	if err := u.recordRepo.MarkSent(record.ID, draft.ID); err != nil {
		return nil, fmt.Errorf("sent response but failed to mark it: %w", err)
	}

	now := time.Now()
	draft.Sent = true
	draft.SentAt = &now
	return draft, nil
}

func (u *messageUsecase) UpdateStatus(id string, status string) (*msgdomain.ProcessingRecord, error) {
	newStatus := msgdomain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	record, err := u.recordRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("record not found")
	}

	if err := u.recordRepo.UpdateStatus(record.ID, newStatus); err != nil {
		return nil, err
	}
	record.Status = newStatus
	return record, nil
}

func (u *messageUsecase) SetAutoSend(enabled bool) {
	u.autoSendMu.Lock()
	u.autoSend = enabled
	u.autoSendMu.Unlock()
	log.Printf("[Pipeline] Auto-send set to %v", enabled)
}

func (u *messageUsecase) AutoSendEnabled() bool {
	u.autoSendMu.RLock()
	defer u.autoSendMu.RUnlock()
	return u.autoSend
}

func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}
