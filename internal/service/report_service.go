package service

import (
	"fmt"
	"time"

	"speechtrack/internal/models"
	"speechtrack/internal/repository"

	"github.com/xuri/excelize/v2"
)

// ReportData is everything a progress report is rendered from.
type ReportData struct {
	Patient     *models.Patient
	Records     []models.PronunciationRecord
	Feedback    []models.FeedbackMessage
	Assignments []models.AssignedExercise
	Streak      int
	GeneratedAt time.Time
}

// ReportRenderer turns report data into a downloadable document. The XLSX
// renderer is the default; a PDF renderer can slot in behind the same
// interface.
type ReportRenderer interface {
	// Render returns the document bytes and its MIME content type.
	Render(data *ReportData) ([]byte, string, error)
}

// ReportService builds per-patient progress reports
type ReportService struct {
	patientRepo  *repository.PatientRepository
	historyRepo  *repository.HistoryRepository
	feedbackRepo *repository.FeedbackRepository
	exerciseRepo *repository.ExerciseRepository
	renderer     ReportRenderer
}

// NewReportService creates a new report service
func NewReportService(patientRepo *repository.PatientRepository, historyRepo *repository.HistoryRepository, feedbackRepo *repository.FeedbackRepository, exerciseRepo *repository.ExerciseRepository, renderer ReportRenderer) *ReportService {
	if renderer == nil {
		renderer = XLSXRenderer{}
	}
	return &ReportService{
		patientRepo:  patientRepo,
		historyRepo:  historyRepo,
		feedbackRepo: feedbackRepo,
		exerciseRepo: exerciseRepo,
		renderer:     renderer,
	}
}

// BuildReport gathers a patient's full history, assignments, and streak
func (s *ReportService) BuildReport(patientID string) (*ReportData, error) {
	patient, err := s.patientRepo.GetPatient(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient: %w", err)
	}
	if patient == nil {
		return nil, fmt.Errorf("no such patient: %s", patientID)
	}

	records, err := s.historyRepo.Recent(patientID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	// The report carries the full feedback log, not the display-capped stream.
	feedback, err := s.feedbackRepo.Recent(patientID, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback: %w", err)
	}

	assignments, err := s.exerciseRepo.ListByPatient(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	timestamps, err := s.historyRepo.Timestamps(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load practice timestamps: %w", err)
	}

	return &ReportData{
		Patient:     patient,
		Records:     records,
		Feedback:    feedback,
		Assignments: assignments,
		Streak:      PracticeStreak(time.Now(), timestamps),
		GeneratedAt: time.Now(),
	}, nil
}

// Export builds and renders a patient's report
func (s *ReportService) Export(patientID string) ([]byte, string, error) {
	data, err := s.BuildReport(patientID)
	if err != nil {
		return nil, "", err
	}
	return s.renderer.Render(data)
}

// XLSXRenderer renders reports as Excel workbooks.
type XLSXRenderer struct{}

var historyHeader = []string{"Date", "Sentence", "Overall Score", "Words Matched", "Words Total"}

// Render produces a two-sheet workbook: practice history and assignments,
// with a summary block at the top of the history sheet.
func (XLSXRenderer) Render(data *ReportData) ([]byte, string, error) {
	f := excelize.NewFile()
	// WriteToBuffer needs the file open; close only on the error paths.

	historySheet := "Practice History"
	index, err := f.NewSheet(historySheet)
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	setCell := func(sheet, cell string, value interface{}) {
		if err == nil {
			err = f.SetCellValue(sheet, cell, value)
		}
	}

	setCell(historySheet, "A1", "Patient")
	setCell(historySheet, "B1", data.Patient.Name)
	setCell(historySheet, "A2", "Current streak (days)")
	setCell(historySheet, "B2", data.Streak)
	setCell(historySheet, "A3", "Generated")
	setCell(historySheet, "B3", data.GeneratedAt.Format("2006-01-02 15:04"))

	headerRow := 5
	for col, header := range historyHeader {
		cell, cellErr := excelize.CoordinatesToCellName(col+1, headerRow)
		if cellErr != nil {
			f.Close()
			return nil, "", fmt.Errorf("failed to convert coordinates: %w", cellErr)
		}
		setCell(historySheet, cell, header)
	}

	for i, record := range data.Records {
		row := headerRow + 1 + i
		matched := 0
		for _, detail := range record.WordDetails {
			if detail.Matched {
				matched++
			}
		}
		setCell(historySheet, fmt.Sprintf("A%d", row), record.CreatedAt.Format("2006-01-02 15:04"))
		setCell(historySheet, fmt.Sprintf("B%d", row), record.Sentence)
		setCell(historySheet, fmt.Sprintf("C%d", row), record.OverallScore)
		setCell(historySheet, fmt.Sprintf("D%d", row), matched)
		setCell(historySheet, fmt.Sprintf("E%d", row), len(record.WordDetails))
	}

	feedbackSheet := "Doctor Feedback"
	if _, sheetErr := f.NewSheet(feedbackSheet); sheetErr != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", sheetErr)
	}
	setCell(feedbackSheet, "A1", "Date")
	setCell(feedbackSheet, "B1", "Doctor")
	setCell(feedbackSheet, "C1", "Feedback")
	for i, msg := range data.Feedback {
		row := 2 + i
		doctor := msg.DoctorID
		if len(doctor) > 6 {
			doctor = doctor[:6]
		}
		setCell(feedbackSheet, fmt.Sprintf("A%d", row), msg.CreatedAt.Format("2006-01-02 15:04"))
		setCell(feedbackSheet, fmt.Sprintf("B%d", row), doctor)
		setCell(feedbackSheet, fmt.Sprintf("C%d", row), msg.Text)
	}

	exerciseSheet := "Assigned Exercises"
	if _, sheetErr := f.NewSheet(exerciseSheet); sheetErr != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to create sheet: %w", sheetErr)
	}
	setCell(exerciseSheet, "A1", "Assigned")
	setCell(exerciseSheet, "B1", "Exercise")
	for i, assignment := range data.Assignments {
		row := 2 + i
		setCell(exerciseSheet, fmt.Sprintf("A%d", row), assignment.AssignedAt.Format("2006-01-02 15:04"))
		setCell(exerciseSheet, fmt.Sprintf("B%d", row), assignment.ExerciseName)
	}

	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to populate report: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, "", fmt.Errorf("failed to serialize report: %w", err)
	}

	return buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}
