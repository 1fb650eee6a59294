package repository

import (
	"database/sql"
	"time"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// RubricRepository handles per-doctor rubric settings
type RubricRepository struct {
	db *database.DB
}

// NewRubricRepository creates a new rubric repository
func NewRubricRepository(db *database.DB) *RubricRepository {
	return &RubricRepository{db: db}
}

// Get retrieves a doctor's saved settings, or nil when the doctor has never
// saved any. Absence is not an error; callers apply the documented defaults.
func (r *RubricRepository) Get(doctorID string) (*models.RubricSettings, error) {
	query := `
		SELECT doctor_id, mispronunciation_weight, omission_weight, insertion_weight, updated_at
		FROM rubric_settings
		WHERE doctor_id = ?
	`

	settings := &models.RubricSettings{}
	err := r.db.QueryRow(query, doctorID).Scan(
		&settings.DoctorID,
		&settings.MispronunciationWeight,
		&settings.OmissionWeight,
		&settings.InsertionWeight,
		&settings.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return settings, nil
}

// Save applies a field-level merge write. Fields absent from the update are
// left at their previously saved values; a first-time partial write fills
// the unspecified fields from the documented defaults.
func (r *RubricRepository) Save(doctorID string, update models.RubricUpdate) (*models.RubricSettings, error) {
	settings, err := r.Get(doctorID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = models.DefaultRubric(doctorID)
	}

	update.Apply(settings)
	settings.UpdatedAt = time.Now()

	query := r.db.Dialect.UpsertRubricQuery()
	_, err = r.db.Exec(query,
		settings.DoctorID,
		settings.MispronunciationWeight,
		settings.OmissionWeight,
		settings.InsertionWeight,
		settings.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return settings, nil
}
