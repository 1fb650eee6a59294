package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
	"speechtrack/internal/repository"

	"github.com/google/uuid"
)

// streamLimit caps the history and feedback streams served to the UI. The
// full log stays in storage; streak and report paths read it unbounded.
const streamLimit = 20

// ErrInvalidScore is returned when a practice result's overall score is
// outside the 0-100 range.
var ErrInvalidScore = errors.New("overall score must be between 0 and 100")

// PracticeService records pronunciation attempts and serves the history
// stream and streak.
type PracticeService struct {
	historyRepo *repository.HistoryRepository
	notifier    live.Notifier
	namespace   string
}

// NewPracticeService creates a new practice service
func NewPracticeService(historyRepo *repository.HistoryRepository, notifier live.Notifier, namespace string) *PracticeService {
	return &PracticeService{
		historyRepo: historyRepo,
		notifier:    notifier,
		namespace:   namespace,
	}
}

// RecordResult appends one practice attempt to the patient's history. A
// missing identity is logged and silently dropped rather than failing the
// practice flow; no partial record is ever written.
func (s *PracticeService) RecordResult(identity, sentence string, overallScore int, details []models.WordDetail) (*models.PronunciationRecord, error) {
	if identity == "" {
		log.Println("Skipping pronunciation result: no signed-in identity")
		return nil, nil
	}
	if overallScore < 0 || overallScore > 100 {
		return nil, ErrInvalidScore
	}

	record := &models.PronunciationRecord{
		ID:           uuid.New().String(),
		PatientID:    identity,
		Sentence:     sentence,
		OverallScore: overallScore,
		WordDetails:  details,
		CreatedAt:    time.Now(),
	}

	if err := s.historyRepo.Append(record); err != nil {
		return nil, fmt.Errorf("failed to save pronunciation result: %w", err)
	}

	s.publish(identity, live.CollectionHistory)
	return record, nil
}

// RecentHistory returns the patient's history stream, newest first, capped
// for display.
func (s *PracticeService) RecentHistory(identity string) ([]models.PronunciationRecord, error) {
	return s.historyRepo.Recent(identity, streamLimit)
}

// FullHistory returns the patient's complete history, newest first
func (s *PracticeService) FullHistory(identity string) ([]models.PronunciationRecord, error) {
	return s.historyRepo.Recent(identity, 0)
}

// Streak returns the patient's current consecutive-day practice streak
func (s *PracticeService) Streak(identity string) (int, error) {
	timestamps, err := s.historyRepo.Timestamps(identity)
	if err != nil {
		return 0, fmt.Errorf("failed to load practice timestamps: %w", err)
	}
	return PracticeStreak(time.Now(), timestamps), nil
}

// publish signals watchers of one of the patient's collections. Delivery is
// best effort; a write that landed must not fail because a signal did not.
func (s *PracticeService) publish(identity, collection string) {
	topic := live.UserTopic(s.namespace, identity, collection)
	if err := s.notifier.Publish(context.Background(), topic); err != nil {
		log.Printf("Warning: failed to publish change on %s: %v", topic, err)
	}
}
