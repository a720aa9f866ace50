package scheduler

import (
	"context"
	"log"
	"time"

	"supportmail-backend/internal/message/usecase"
)

// PollScheduler periodically pulls unread messages from the mail source
// and pushes them through the processing pipeline.
type PollScheduler struct {
	messageUsecase usecase.MessageUsecase
	interval       time.Duration
	stopChan       chan struct{}
	running        bool
}

// NewPollScheduler creates a new scheduler with the given poll interval
func NewPollScheduler(messageUsecase usecase.MessageUsecase, interval time.Duration) *PollScheduler {
	return &PollScheduler{
		messageUsecase: messageUsecase,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the polling loop in a goroutine
func (s *PollScheduler) Start() {
	if s.running {
		return
	}
	s.running = true

	go func() {
		log.Printf("[Scheduler] Mail polling started, interval %s", s.interval)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Run one cycle immediately instead of waiting a full interval
		s.runCycle()

		for {
			select {
			case <-ticker.C:
				s.runCycle()
			case <-s.stopChan:
				log.Println("[Scheduler] Mail polling stopped")
				return
			}
		}
	}()
}

// Stop halts the polling loop
func (s *PollScheduler) Stop() {
	if !s.running {
		return
	}
	s.running = false
	close(s.stopChan)
}

func (s *PollScheduler) runCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.messageUsecase.RunCycle(ctx)
	if err != nil {
		log.Printf("[Scheduler] Poll cycle failed: %v", err)
		return
	}
	if result.Processed > 0 || result.Errors > 0 {
		log.Printf("[Scheduler] Poll cycle done: %d processed, %d duplicates, %d errors",
			result.Processed, result.Duplicates, result.Errors)
	}
}
