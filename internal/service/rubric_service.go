package service

import (
	"errors"
	"fmt"

	"speechtrack/internal/models"
	"speechtrack/internal/repository"
)

// ErrInvalidRubric is returned when a rubric update carries an out-of-range
// weight.
var ErrInvalidRubric = errors.New("rubric weights must be between 0 and 100")

// RubricService manages per-doctor scoring rubric settings
type RubricService struct {
	rubricRepo *repository.RubricRepository
}

// NewRubricService creates a new rubric service
func NewRubricService(rubricRepo *repository.RubricRepository) *RubricService {
	return &RubricService{rubricRepo: rubricRepo}
}

// Get returns the doctor's effective rubric. A doctor who has never saved
// settings sees the documented defaults.
func (s *RubricService) Get(doctorID string) (*models.RubricSettings, error) {
	settings, err := s.rubricRepo.Get(doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rubric settings: %w", err)
	}
	if settings == nil {
		return models.DefaultRubric(doctorID), nil
	}
	return settings, nil
}

// Save merges a partial update into the doctor's settings. Fields absent
// from the update keep their current values.
func (s *RubricService) Save(doctorID string, update models.RubricUpdate) (*models.RubricSettings, error) {
	if !update.Validate() {
		return nil, ErrInvalidRubric
	}

	settings, err := s.rubricRepo.Save(doctorID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to save rubric settings: %w", err)
	}
	return settings, nil
}
