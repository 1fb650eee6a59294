package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"speechtrack/internal/models"
	"speechtrack/internal/service"
)

// DoctorHandler serves the doctor-facing review surface
type DoctorHandler struct {
	dashboardService *service.DashboardService
	practiceService  *service.PracticeService
	feedbackService  *service.FeedbackService
	exerciseService  *service.ExerciseService
	rubricService    *service.RubricService
	reportService    *service.ReportService
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(dashboardService *service.DashboardService, practiceService *service.PracticeService, feedbackService *service.FeedbackService, exerciseService *service.ExerciseService, rubricService *service.RubricService, reportService *service.ReportService) *DoctorHandler {
	return &DoctorHandler{
		dashboardService: dashboardService,
		practiceService:  practiceService,
		feedbackService:  feedbackService,
		exerciseService:  exerciseService,
		rubricService:    rubricService,
		reportService:    reportService,
	}
}

// Dashboard handles GET /api/doctor/dashboard
func (h *DoctorHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	patientCount, err := h.dashboardService.ActivePatientCount()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard", "Failed to count patients", err)
		return
	}

	sessionsToday, err := h.dashboardService.TodaysSessionCount()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load dashboard", "Failed to count today's sessions", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int{
		"activePatients": patientCount,
		"sessionsToday":  sessionsToday,
	})
}

// Patients handles GET /api/doctor/patients
func (h *DoctorHandler) Patients(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.dashboardService.PatientSummaries()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load patients", "Failed to build patient summaries", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

// PatientHistory handles GET /api/doctor/patients/{id}/history: the full
// uncapped history for review.
func (h *DoctorHandler) PatientHistory(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	records, err := h.practiceService.FullHistory(patientID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load history", "Failed to load patient history", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toRecordViews(records))
}

type sendFeedbackRequest struct {
	Text string `json:"text"`
}

// SendFeedback handles POST /api/doctor/patients/{id}/feedback
func (h *DoctorHandler) SendFeedback(w http.ResponseWriter, r *http.Request) {
	var req sendFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	doctor := GetUserFromContext(r.Context())
	patientID := r.PathValue("id")

	msg, err := h.feedbackService.Send(doctor.Identity, patientID, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyFeedback) {
			respondWithError(w, http.StatusBadRequest, "Feedback text is required", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to send feedback", "Failed to send feedback", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedbackView{
		ID:        msg.ID,
		DoctorID:  msg.DoctorID,
		Text:      msg.Text,
		Read:      msg.Read,
		Timestamp: msg.CreatedAt,
	})
}

type assignExerciseRequest struct {
	ExerciseName string `json:"exerciseName"`
}

// AssignExercise handles POST /api/doctor/patients/{id}/exercises
func (h *DoctorHandler) AssignExercise(w http.ResponseWriter, r *http.Request) {
	var req assignExerciseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	doctor := GetUserFromContext(r.Context())
	patientID := r.PathValue("id")

	assignment, err := h.exerciseService.Assign(doctor.Identity, patientID, req.ExerciseName)
	if err != nil {
		if errors.Is(err, service.ErrUnknownExercise) {
			respondWithError(w, http.StatusBadRequest, "Unknown exercise", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to assign exercise", "Failed to assign exercise", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, exerciseView{
		ID:           assignment.ID,
		DoctorID:     assignment.DoctorID,
		ExerciseName: assignment.ExerciseName,
		AssignedAt:   assignment.AssignedAt,
	})
}

// ExerciseCatalog handles GET /api/doctor/exercises
func (h *DoctorHandler) ExerciseCatalog(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"exercises": h.exerciseService.CatalogNames()})
}

// GetRubric handles GET /api/doctor/rubric
func (h *DoctorHandler) GetRubric(w http.ResponseWriter, r *http.Request) {
	doctor := GetUserFromContext(r.Context())
	settings, err := h.rubricService.Get(doctor.Identity)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load rubric", "Failed to load rubric", err)
		return
	}
	respondWithJSON(w, http.StatusOK, toRubricView(settings))
}

type rubricRequest struct {
	MispronunciationWeight *int `json:"mispronunciationWeight"`
	OmissionWeight         *int `json:"omissionWeight"`
	InsertionWeight        *int `json:"insertionWeight"`
}

// SaveRubric handles PUT /api/doctor/rubric. Omitted fields keep their
// current values.
func (h *DoctorHandler) SaveRubric(w http.ResponseWriter, r *http.Request) {
	var req rubricRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	doctor := GetUserFromContext(r.Context())
	update := models.RubricUpdate{
		MispronunciationWeight: req.MispronunciationWeight,
		OmissionWeight:         req.OmissionWeight,
		InsertionWeight:        req.InsertionWeight,
	}

	settings, err := h.rubricService.Save(doctor.Identity, update)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRubric) {
			respondWithError(w, http.StatusBadRequest, "Rubric weights must be between 0 and 100", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to save rubric", "Failed to save rubric", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toRubricView(settings))
}

// ExportReport handles GET /api/doctor/patients/{id}/report: a downloadable
// progress report.
func (h *DoctorHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")

	document, contentType, err := h.reportService.Export(patientID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build report", "Failed to build report", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "progress-report-"+patientID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(document); err != nil {
		// Headers are out; nothing left to do but log.
		log.Printf("Failed to write report: %v", err)
	}
}
