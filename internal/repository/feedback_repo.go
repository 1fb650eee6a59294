package repository

import (
	"errors"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// ErrFeedbackNotFound is returned when a feedback message does not exist
// under the given patient.
var ErrFeedbackNotFound = errors.New("feedback message not found")

// FeedbackRepository handles the append-only doctor feedback log
type FeedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *database.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Add appends a feedback message. New messages always start unread.
func (r *FeedbackRepository) Add(msg *models.FeedbackMessage) error {
	query := `
		INSERT INTO feedback (id, patient_id, doctor_id, text, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		msg.ID,
		msg.PatientID,
		msg.DoctorID,
		msg.Text,
		false,
		msg.CreatedAt,
	)
	return err
}

// Recent retrieves a patient's most recent feedback, newest first. A limit
// of zero or less means unbounded.
func (r *FeedbackRepository) Recent(patientID string, limit int) ([]models.FeedbackMessage, error) {
	query := `
		SELECT id, patient_id, doctor_id, text, is_read, created_at
		FROM feedback
		WHERE patient_id = ?
		ORDER BY created_at DESC
	`
	args := []interface{}{patientID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.FeedbackMessage
	for rows.Next() {
		var msg models.FeedbackMessage
		err := rows.Scan(
			&msg.ID,
			&msg.PatientID,
			&msg.DoctorID,
			&msg.Text,
			&msg.Read,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// MarkRead flips a message's read flag to true. The flag never flips back;
// marking an already-read message is a no-op.
func (r *FeedbackRepository) MarkRead(patientID, feedbackID string) error {
	query := "UPDATE feedback SET is_read = ? WHERE id = ? AND patient_id = ?"
	result, err := r.db.Exec(query, true, feedbackID, patientID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish missing from already-read: already-read rows still match.
		var count int
		checkQuery := "SELECT COUNT(*) FROM feedback WHERE id = ? AND patient_id = ?"
		if err := r.db.QueryRow(checkQuery, feedbackID, patientID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return ErrFeedbackNotFound
		}
	}

	return nil
}

// UnreadCount counts a patient's feedback messages with read = false
func (r *FeedbackRepository) UnreadCount(patientID string) (int, error) {
	query := "SELECT COUNT(*) FROM feedback WHERE patient_id = ? AND is_read = ?"

	var count int
	err := r.db.QueryRow(query, patientID, false).Scan(&count)
	return count, err
}
