package models

import "time"

// AssignedExercise records a doctor assigning a named exercise to a patient.
// Assignments are append-only.
type AssignedExercise struct {
	ID           string
	PatientID    string
	DoctorID     string
	ExerciseName string
	AssignedAt   time.Time
}
