package models

import "time"

// Default rubric weights applied when a doctor has never saved settings.
const (
	DefaultMispronunciationWeight = 50
	DefaultOmissionWeight         = 70
	DefaultInsertionWeight        = 30
)

// RubricSettings is the per-doctor scoring configuration consumed by the
// speech-recognition engine. One record per doctor.
type RubricSettings struct {
	DoctorID               string
	MispronunciationWeight int
	OmissionWeight         int
	InsertionWeight        int
	UpdatedAt              time.Time
}

// RubricUpdate is a partial write of rubric settings. Nil fields are left
// untouched on save.
type RubricUpdate struct {
	MispronunciationWeight *int
	OmissionWeight         *int
	InsertionWeight        *int
}

// DefaultRubric returns the documented default weights for a doctor.
func DefaultRubric(doctorID string) *RubricSettings {
	return &RubricSettings{
		DoctorID:               doctorID,
		MispronunciationWeight: DefaultMispronunciationWeight,
		OmissionWeight:         DefaultOmissionWeight,
		InsertionWeight:        DefaultInsertionWeight,
	}
}

// Validate checks that every weight present in the update is a 0-100 integer.
func (u RubricUpdate) Validate() bool {
	for _, w := range []*int{u.MispronunciationWeight, u.OmissionWeight, u.InsertionWeight} {
		if w != nil && (*w < 0 || *w > 100) {
			return false
		}
	}
	return true
}

// Apply merges the update into existing settings field by field.
func (u RubricUpdate) Apply(settings *RubricSettings) {
	if u.MispronunciationWeight != nil {
		settings.MispronunciationWeight = *u.MispronunciationWeight
	}
	if u.OmissionWeight != nil {
		settings.OmissionWeight = *u.OmissionWeight
	}
	if u.InsertionWeight != nil {
		settings.InsertionWeight = *u.InsertionWeight
	}
}
