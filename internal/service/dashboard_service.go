package service

import (
	"fmt"
	"time"

	"speechtrack/internal/models"
	"speechtrack/internal/repository"
)

// PatientSummary is one row of the doctor's patient overview.
type PatientSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LastPractice   string `json:"lastPractice"`
	SessionsToday  int    `json:"sessionsToday"`
	UnreadFeedback int    `json:"unreadFeedback"`
	LatestExercise string `json:"latestExercise,omitempty"`
}

// DashboardService aggregates the doctor-facing overview figures
type DashboardService struct {
	patientRepo  *repository.PatientRepository
	historyRepo  *repository.HistoryRepository
	feedbackRepo *repository.FeedbackRepository
	exerciseRepo *repository.ExerciseRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(patientRepo *repository.PatientRepository, historyRepo *repository.HistoryRepository, feedbackRepo *repository.FeedbackRepository, exerciseRepo *repository.ExerciseRepository) *DashboardService {
	return &DashboardService{
		patientRepo:  patientRepo,
		historyRepo:  historyRepo,
		feedbackRepo: feedbackRepo,
		exerciseRepo: exerciseRepo,
	}
}

// ActivePatientCount returns the size of the patient directory
func (s *DashboardService) ActivePatientCount() (int, error) {
	return s.patientRepo.CountPatients()
}

// TodaysSessionCount counts practice sessions recorded today across every
// patient. The count walks the directory patient by patient, so its cost
// grows with directory size.
func (s *DashboardService) TodaysSessionCount() (int, error) {
	patients, err := s.patientRepo.ListPatients()
	if err != nil {
		return 0, fmt.Errorf("failed to list patients: %w", err)
	}

	cutoff := startOfDay(time.Now())
	total := 0
	for _, patient := range patients {
		count, err := s.historyRepo.CountSince(patient.ID, cutoff)
		if err != nil {
			return 0, fmt.Errorf("failed to count sessions for %s: %w", patient.ID, err)
		}
		total += count
	}

	return total, nil
}

// PatientTodaysSessions counts one patient's practice sessions today
func (s *DashboardService) PatientTodaysSessions(patientID string) (int, error) {
	return s.historyRepo.CountSince(patientID, startOfDay(time.Now()))
}

// PatientSummaries builds the overview rows, most recently active first
func (s *DashboardService) PatientSummaries() ([]PatientSummary, error) {
	patients, err := s.patientRepo.ListPatients()
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	now := time.Now()
	cutoff := startOfDay(now)

	summaries := make([]PatientSummary, 0, len(patients))
	for _, patient := range patients {
		summary := PatientSummary{
			ID:   patient.ID,
			Name: patient.Name,
		}

		// Prefer the latest actual practice record; a patient who signed in
		// but never practiced falls back to their directory activity.
		latest, err := s.historyRepo.LatestTimestamp(patient.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load latest practice for %s: %w", patient.ID, err)
		}
		if latest.IsZero() {
			latest = patient.LastActivity
		}
		summary.LastPractice = TimeAgo(now, latest)

		if summary.SessionsToday, err = s.historyRepo.CountSince(patient.ID, cutoff); err != nil {
			return nil, fmt.Errorf("failed to count sessions for %s: %w", patient.ID, err)
		}
		if summary.UnreadFeedback, err = s.feedbackRepo.UnreadCount(patient.ID); err != nil {
			return nil, fmt.Errorf("failed to count unread feedback for %s: %w", patient.ID, err)
		}
		if summary.LatestExercise, err = s.exerciseRepo.LatestExerciseName(patient.ID); err != nil {
			return nil, fmt.Errorf("failed to load latest exercise for %s: %w", patient.ID, err)
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Patient returns one directory entry, or nil when none exists
func (s *DashboardService) Patient(patientID string) (*models.Patient, error) {
	return s.patientRepo.GetPatient(patientID)
}

// TimeAgo renders an elapsed-time label for overview rows.
func TimeAgo(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	elapsed := now.Sub(t)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed.Minutes()))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed.Hours()/24))
	}
}
