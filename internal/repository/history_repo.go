package repository

import (
	"database/sql"
	"time"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// HistoryRepository handles the append-only pronunciation history log
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append writes one immutable practice record. The per-word detail is
// serialized to an opaque blob; decoding happens on read.
func (r *HistoryRepository) Append(record *models.PronunciationRecord) error {
	blob, err := models.EncodeWordDetails(record.WordDetails)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pronunciation_history (id, patient_id, sentence, overall_score, word_details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		record.ID,
		record.PatientID,
		record.Sentence,
		record.OverallScore,
		blob,
		record.CreatedAt,
	)
	return err
}

// Recent retrieves a patient's most recent records, newest first. A limit of
// zero or less means unbounded.
func (r *HistoryRepository) Recent(patientID string, limit int) ([]models.PronunciationRecord, error) {
	query := `
		SELECT id, patient_id, sentence, overall_score, word_details, created_at
		FROM pronunciation_history
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

	var records []models.PronunciationRecord
	for rows.Next() {
		var record models.PronunciationRecord
		var blob string

		err := rows.Scan(
			&record.ID,
			&record.PatientID,
			&record.Sentence,
			&record.OverallScore,
			&blob,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		// Malformed blobs decode to an empty sequence, never fail the read.
		record.WordDetails = models.DecodeWordDetails(blob)
		records = append(records, record)
	}

	return records, rows.Err()
}

// CountSince counts a patient's records with timestamp at or after the cutoff
func (r *HistoryRepository) CountSince(patientID string, cutoff time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM pronunciation_history
		WHERE patient_id = ? AND created_at >= ?
	`

	var count int
	err := r.db.QueryRow(query, patientID, cutoff).Scan(&count)
	return count, err
}

// LatestTimestamp returns the patient's most recent record timestamp, or the
// zero time when the patient has no history.
func (r *HistoryRepository) LatestTimestamp(patientID string) (time.Time, error) {
	query := `
		SELECT created_at
		FROM pronunciation_history
		WHERE patient_id = ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	var ts time.Time
	err := r.db.QueryRow(query, patientID).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return ts, nil
}

// Timestamps returns every record timestamp for a patient, newest first.
// The streak computation needs the full set, not the display-capped one.
func (r *HistoryRepository) Timestamps(patientID string) ([]time.Time, error) {
	query := `
		SELECT created_at
		FROM pronunciation_history
		WHERE patient_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var timestamps []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
	}

	return timestamps, rows.Err()
}
