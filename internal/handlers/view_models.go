package handlers

import (
	"time"

	"speechtrack/internal/models"
)

// View models decouple the JSON surface from the storage structs.

type recordView struct {
	ID           string              `json:"id"`
	Sentence     string              `json:"sentence"`
	OverallScore int                 `json:"overallScore"`
	WordDetails  []models.WordDetail `json:"wordDetails"`
	Timestamp    time.Time           `json:"timestamp"`
}

type feedbackView struct {
	ID        string    `json:"id"`
	DoctorID  string    `json:"doctorId"`
	Text      string    `json:"text"`
	Read      bool      `json:"read"`
	Timestamp time.Time `json:"timestamp"`
}

type exerciseView struct {
	ID           string    `json:"id"`
	DoctorID     string    `json:"doctorId"`
	ExerciseName string    `json:"exerciseName"`
	AssignedAt   time.Time `json:"assignedAt"`
}

type rubricView struct {
	MispronunciationWeight int `json:"mispronunciationWeight"`
	OmissionWeight         int `json:"omissionWeight"`
	InsertionWeight        int `json:"insertionWeight"`
}

func toRecordViews(records []models.PronunciationRecord) []recordView {
	views := make([]recordView, 0, len(records))
	for _, record := range records {
		views = append(views, recordView{
			ID:           record.ID,
			Sentence:     record.Sentence,
			OverallScore: record.OverallScore,
			WordDetails:  record.WordDetails,
			Timestamp:    record.CreatedAt,
		})
	}
	return views
}

func toFeedbackViews(messages []models.FeedbackMessage) []feedbackView {
	views := make([]feedbackView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, feedbackView{
			ID:        msg.ID,
			DoctorID:  msg.DoctorID,
			Text:      msg.Text,
			Read:      msg.Read,
			Timestamp: msg.CreatedAt,
		})
	}
	return views
}

func toExerciseViews(assignments []models.AssignedExercise) []exerciseView {
	views := make([]exerciseView, 0, len(assignments))
	for _, assignment := range assignments {
		views = append(views, exerciseView{
			ID:           assignment.ID,
			DoctorID:     assignment.DoctorID,
			ExerciseName: assignment.ExerciseName,
			AssignedAt:   assignment.AssignedAt,
		})
	}
	return views
}

func toRubricView(settings *models.RubricSettings) rubricView {
	return rubricView{
		MispronunciationWeight: settings.MispronunciationWeight,
		OmissionWeight:         settings.OmissionWeight,
		InsertionWeight:        settings.InsertionWeight,
	}
}
