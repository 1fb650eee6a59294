package repository

import (
	"database/sql"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// ExerciseRepository handles the append-only assigned exercise log
type ExerciseRepository struct {
	db *database.DB
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db *database.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Add appends an exercise assignment
func (r *ExerciseRepository) Add(assignment *models.AssignedExercise) error {
	query := `
		INSERT INTO assigned_exercises (id, patient_id, doctor_id, exercise_name, assigned_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		assignment.ID,
		assignment.PatientID,
		assignment.DoctorID,
		assignment.ExerciseName,
		assignment.AssignedAt,
	)
	return err
}

// ListByPatient retrieves a patient's full assignment log, newest first.
// Assignment streams are unbounded.
func (r *ExerciseRepository) ListByPatient(patientID string) ([]models.AssignedExercise, error) {
	query := `
		SELECT id, patient_id, doctor_id, exercise_name, assigned_at
		FROM assigned_exercises
		WHERE patient_id = ?
		ORDER BY assigned_at DESC
	`

	rows, err := r.db.Query(query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.AssignedExercise
	for rows.Next() {
		var assignment models.AssignedExercise
		err := rows.Scan(
			&assignment.ID,
			&assignment.PatientID,
			&assignment.DoctorID,
			&assignment.ExerciseName,
			&assignment.AssignedAt,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}

	return assignments, rows.Err()
}

// LatestExerciseName returns the most recently assigned exercise name for a
// patient, or "" when the patient has no assignments.
func (r *ExerciseRepository) LatestExerciseName(patientID string) (string, error) {
	query := `
		SELECT exercise_name
		FROM assigned_exercises
		WHERE patient_id = ?
		ORDER BY assigned_at DESC
		LIMIT 1
	`

	var name string
	err := r.db.QueryRow(query, patientID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return name, nil
}
