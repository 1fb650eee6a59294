package repository

import (
	"database/sql"
	"fmt"
	"time"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// PatientRepository manages the shared patient directory
type PatientRepository struct {
	db *database.DB
}

// NewPatientRepository creates a new patient repository
func NewPatientRepository(db *database.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// EnsurePatient auto-registers a directory entry for the identity on first
// login and refreshes last_activity on every subsequent one. The create path
// is read-then-write: concurrent first logins for the same identity resolve
// last-write-wins, which is acceptable because identity creation is
// serialized by the auth provider.
func (r *PatientRepository) EnsurePatient(identity string) (*models.Patient, error) {
	existing, err := r.GetPatient(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to look up patient %s: %w", identity, err)
	}

	now := time.Now()

	if existing == nil {
		patient := &models.Patient{
			ID:           identity,
			Name:         models.DefaultPatientName(identity),
			CreatedAt:    now,
			LastActivity: now,
		}
		query := `
			INSERT INTO patients (identity, name, created_at, last_activity)
			VALUES (?, ?, ?, ?)
		`
		if _, err := r.db.Exec(query, patient.ID, patient.Name, patient.CreatedAt, patient.LastActivity); err != nil {
			return nil, fmt.Errorf("failed to create patient %s: %w", identity, err)
		}
		return patient, nil
	}

	// Partial update: name and created_at must survive re-registration.
	query := "UPDATE patients SET last_activity = ? WHERE identity = ?"
	if _, err := r.db.Exec(query, now, identity); err != nil {
		return nil, fmt.Errorf("failed to refresh patient %s: %w", identity, err)
	}
	existing.LastActivity = now
	return existing, nil
}

// GetPatient retrieves a directory entry, or nil when none exists
func (r *PatientRepository) GetPatient(identity string) (*models.Patient, error) {
	query := `
		SELECT identity, name, created_at, last_activity
		FROM patients
		WHERE identity = ?
	`

	patient := &models.Patient{}
	err := r.db.QueryRow(query, identity).Scan(
		&patient.ID,
		&patient.Name,
		&patient.CreatedAt,
		&patient.LastActivity,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return patient, nil
}

// ListPatients returns every directory entry, most recently active first
func (r *PatientRepository) ListPatients() ([]models.Patient, error) {
	query := `
		SELECT identity, name, created_at, last_activity
		FROM patients
		ORDER BY last_activity DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []models.Patient
	for rows.Next() {
		var patient models.Patient
		err := rows.Scan(
			&patient.ID,
			&patient.Name,
			&patient.CreatedAt,
			&patient.LastActivity,
		)
		if err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}

	return patients, rows.Err()
}

// CountPatients returns the size of the patient directory
func (r *PatientRepository) CountPatients() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM patients").Scan(&count)
	return count, err
}
