package models

import "time"

// FeedbackMessage is a doctor's note to a patient. Text and author are
// immutable; Read is the only mutable field and only flips false to true.
type FeedbackMessage struct {
	ID        string
	PatientID string
	DoctorID  string
	Text      string
	Read      bool
	CreatedAt time.Time
}
