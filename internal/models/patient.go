package models

import "time"

// Patient is an entry in the shared patient directory. The identity doubles
// as the document ID, so a patient can never appear twice.
type Patient struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	LastActivity time.Time
}

// DefaultPatientName builds the generated display name used when a patient
// record is auto-created on first login.
func DefaultPatientName(identity string) string {
	short := identity
	if len(short) > 6 {
		short = short[:6]
	}
	return "Patient " + short
}
