package service

import (
	"context"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
)

// LiveService exposes live subscriptions over the record streams. Each watch
// delivers the full current snapshot on attach and again after every change,
// until cancelled.
type LiveService struct {
	notifier  live.Notifier
	namespace string
	practice  *PracticeService
	feedback  *FeedbackService
	exercises *ExerciseService
	dashboard *DashboardService
}

// NewLiveService creates a new live service
func NewLiveService(notifier live.Notifier, namespace string, practice *PracticeService, feedback *FeedbackService, exercises *ExerciseService, dashboard *DashboardService) *LiveService {
	return &LiveService{
		notifier:  notifier,
		namespace: namespace,
		practice:  practice,
		feedback:  feedback,
		exercises: exercises,
		dashboard: dashboard,
	}
}

// WatchHistory subscribes to a patient's history stream
func (s *LiveService) WatchHistory(ctx context.Context, identity string, callback func([]models.PronunciationRecord)) live.CancelFunc {
	topic := live.UserTopic(s.namespace, identity, live.CollectionHistory)
	return live.Watch(ctx, s.notifier, topic, func(context.Context) ([]models.PronunciationRecord, error) {
		return s.practice.RecentHistory(identity)
	}, callback)
}

// WatchFeedback subscribes to a patient's feedback stream
func (s *LiveService) WatchFeedback(ctx context.Context, identity string, callback func([]models.FeedbackMessage)) live.CancelFunc {
	topic := live.UserTopic(s.namespace, identity, live.CollectionFeedback)
	return live.Watch(ctx, s.notifier, topic, func(context.Context) ([]models.FeedbackMessage, error) {
		return s.feedback.Recent(identity)
	}, callback)
}

// WatchExercises subscribes to a patient's assignment stream
func (s *LiveService) WatchExercises(ctx context.Context, identity string, callback func([]models.AssignedExercise)) live.CancelFunc {
	topic := live.UserTopic(s.namespace, identity, live.CollectionExercises)
	return live.Watch(ctx, s.notifier, topic, func(context.Context) ([]models.AssignedExercise, error) {
		return s.exercises.Assignments(identity)
	}, callback)
}

// WatchDirectory subscribes to the doctor's patient overview. Directory
// changes are published on sign-ins; practice activity between sign-ins
// shows up on the next change.
func (s *LiveService) WatchDirectory(ctx context.Context, callback func([]PatientSummary)) live.CancelFunc {
	topic := live.DirectoryTopic(s.namespace)
	return live.Watch(ctx, s.notifier, topic, func(context.Context) ([]PatientSummary, error) {
		return s.dashboard.PatientSummaries()
	}, callback)
}
