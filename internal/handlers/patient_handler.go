package handlers

import (
	"errors"
	"net/http"

	"speechtrack/internal/models"
	"speechtrack/internal/repository"
	"speechtrack/internal/service"
)

// PatientHandler serves the patient-facing practice surface
type PatientHandler struct {
	practiceService *service.PracticeService
	feedbackService *service.FeedbackService
	exerciseService *service.ExerciseService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(practiceService *service.PracticeService, feedbackService *service.FeedbackService, exerciseService *service.ExerciseService) *PatientHandler {
	return &PatientHandler{
		practiceService: practiceService,
		feedbackService: feedbackService,
		exerciseService: exerciseService,
	}
}

type resultRequest struct {
	Sentence     string              `json:"sentence"`
	OverallScore int                 `json:"overallScore"`
	WordDetails  []models.WordDetail `json:"wordDetails"`
}

// SubmitResult handles POST /api/practice/results
func (h *PatientHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	identity := GetIdentityFromContext(r.Context())
	record, err := h.practiceService.RecordResult(identity, req.Sentence, req.OverallScore, req.WordDetails)
	if err != nil {
		if errors.Is(err, service.ErrInvalidScore) {
			respondWithError(w, http.StatusBadRequest, "Overall score must be between 0 and 100", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to save practice result", "Failed to save practice result", err)
		return
	}
	if record == nil {
		// No identity; the result is dropped rather than failing the session.
		respondWithJSON(w, http.StatusAccepted, map[string]bool{"saved": false})
		return
	}

	respondWithJSON(w, http.StatusCreated, recordView{
		ID:           record.ID,
		Sentence:     record.Sentence,
		OverallScore: record.OverallScore,
		WordDetails:  record.WordDetails,
		Timestamp:    record.CreatedAt,
	})
}

// History handles GET /api/practice/history
func (h *PatientHandler) History(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	records, err := h.practiceService.RecentHistory(identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load history", "Failed to load history", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toRecordViews(records))
}

// Streak handles GET /api/practice/streak
func (h *PatientHandler) Streak(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	streak, err := h.practiceService.Streak(identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute streak", "Failed to compute streak", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"streak": streak})
}

// Sentences handles GET /api/practice/sentences: what the patient should
// practice right now.
func (h *PatientHandler) Sentences(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	sentences, err := h.exerciseService.PracticeSentences(identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load practice sentences", "Failed to load practice sentences", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"sentences": sentences})
}

// Feedback handles GET /api/feedback
func (h *PatientHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	messages, err := h.feedbackService.Recent(identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load feedback", "Failed to load feedback", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toFeedbackViews(messages))
}

// MarkFeedbackRead handles POST /api/feedback/{id}/read
func (h *PatientHandler) MarkFeedbackRead(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	feedbackID := r.PathValue("id")

	if err := h.feedbackService.MarkRead(identity, feedbackID); err != nil {
		if errors.Is(err, repository.ErrFeedbackNotFound) {
			respondWithError(w, http.StatusNotFound, "Feedback message not found", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to mark feedback as read", "Failed to mark feedback as read", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Exercises handles GET /api/exercises: the patient's assignment log
func (h *PatientHandler) Exercises(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	assignments, err := h.exerciseService.Assignments(identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load exercises", "Failed to load exercises", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toExerciseViews(assignments))
}
