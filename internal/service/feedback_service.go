package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
	"speechtrack/internal/repository"

	"github.com/google/uuid"
)

// ErrEmptyFeedback is returned when a doctor submits blank feedback text.
var ErrEmptyFeedback = errors.New("feedback text is empty")

// FeedbackService handles doctor-to-patient feedback messages
type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	userRepo     *repository.UserRepository
	emailService *EmailService
	notifier     live.Notifier
	namespace    string
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(feedbackRepo *repository.FeedbackRepository, userRepo *repository.UserRepository, emailService *EmailService, notifier live.Notifier, namespace string) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		emailService: emailService,
		notifier:     notifier,
		namespace:    namespace,
	}
}

// Send appends a feedback message to a patient's stream. The message starts
// unread. An email notification goes out best effort when the patient has a
// registered address; anonymous patients have none.
func (s *FeedbackService) Send(doctorID, patientID, text string) (*models.FeedbackMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyFeedback
	}

	msg := &models.FeedbackMessage{
		ID:        uuid.New().String(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Text:      text,
		Read:      false,
		CreatedAt: time.Now(),
	}

	if err := s.feedbackRepo.Add(msg); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.publish(patientID)
	s.notifyByEmail(doctorID, patientID)

	return msg, nil
}

// Recent returns a patient's feedback stream, newest first, capped for
// display.
func (s *FeedbackService) Recent(patientID string) ([]models.FeedbackMessage, error) {
	return s.feedbackRepo.Recent(patientID, streamLimit)
}

// MarkRead marks one of the patient's feedback messages as read. Marking an
// already-read message succeeds without effect.
func (s *FeedbackService) MarkRead(patientID, feedbackID string) error {
	if err := s.feedbackRepo.MarkRead(patientID, feedbackID); err != nil {
		return err
	}
	s.publish(patientID)
	return nil
}

// UnreadCount counts a patient's unread feedback messages
func (s *FeedbackService) UnreadCount(patientID string) (int, error) {
	return s.feedbackRepo.UnreadCount(patientID)
}

func (s *FeedbackService) publish(patientID string) {
	topic := live.UserTopic(s.namespace, patientID, live.CollectionFeedback)
	if err := s.notifier.Publish(context.Background(), topic); err != nil {
		log.Printf("Warning: failed to publish change on %s: %v", topic, err)
	}
}

// notifyByEmail emails the patient about new feedback when they have a
// registered account. Failures are logged, never surfaced: the feedback is
// already saved.
func (s *FeedbackService) notifyByEmail(doctorID, patientID string) {
	patient, err := s.userRepo.GetUserByIdentity(patientID)
	if err != nil {
		log.Printf("Warning: failed to look up patient %s for email notification: %v", patientID, err)
		return
	}
	if patient == nil || patient.Email == "" {
		return
	}

	doctorName := "Your therapist"
	if doctor, err := s.userRepo.GetUserByIdentity(doctorID); err == nil && doctor != nil && doctor.Name != "" {
		doctorName = doctor.Name
	}

	if err := s.emailService.SendFeedbackNotification(context.Background(), patient.Email, patient.Name, doctorName); err != nil {
		log.Printf("Warning: failed to send feedback notification to %s: %v", patient.Email, err)
	}
}
