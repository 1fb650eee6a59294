package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
	"speechtrack/internal/repository"

	"github.com/google/uuid"
)

// ErrUnknownExercise is returned when a doctor assigns an exercise name that
// is not in the catalog.
var ErrUnknownExercise = errors.New("unknown exercise")

// defaultPracticeSentences is what patients practice when no exercise has
// ever been assigned to them.
var defaultPracticeSentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"She sells seashells by the seashore.",
	"Peter Piper picked a peck of pickled peppers.",
	"How much wood would a woodchuck chuck if a woodchuck could chuck wood?",
	"Betty Botter bought some butter but she said the butter's bitter.",
}

// exerciseSentences maps each catalog exercise to its practice material.
var exerciseSentences = map[string][]string{
	"R-sound practice": {
		"Rahul runs really fast.",
		"The red car raced around the track.",
		"A roaring fire warmed the room.",
		"The brave knight rescued the princess.",
		"Remember to read your book.",
	},
	"S-sound practice": {
		"She sells shiny shoes.",
		"The sun shines brightly in the sky.",
		"Sally sings sweet songs.",
		"Seven sleepy sheep slept soundly.",
		"The snake slithered silently through the grass.",
	},
	"Fluency reading": {
		"In the quiet forest, a tiny squirrel gathered nuts for the winter.",
		"The old wizard cast a powerful spell, and the ancient castle began to glow.",
		"Children laughed and played in the park, enjoying the warm afternoon sunshine.",
		"The vast ocean stretched endlessly, its waves crashing gently against the sandy shore.",
		"Learning new things can be challenging, but it is always rewarding in the end.",
	},
}

// exerciseCatalog fixes the display order of the exercise names.
var exerciseCatalog = []string{"R-sound practice", "S-sound practice", "Fluency reading"}

// ExerciseService manages the exercise catalog and per-patient assignments
type ExerciseService struct {
	exerciseRepo *repository.ExerciseRepository
	notifier     live.Notifier
	namespace    string
}

// NewExerciseService creates a new exercise service
func NewExerciseService(exerciseRepo *repository.ExerciseRepository, notifier live.Notifier, namespace string) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		notifier:     notifier,
		namespace:    namespace,
	}
}

// CatalogNames returns the assignable exercise names in display order
func (s *ExerciseService) CatalogNames() []string {
	names := make([]string, len(exerciseCatalog))
	copy(names, exerciseCatalog)
	return names
}

// Assign appends an exercise assignment for a patient
func (s *ExerciseService) Assign(doctorID, patientID, exerciseName string) (*models.AssignedExercise, error) {
	if _, ok := exerciseSentences[exerciseName]; !ok {
		return nil, ErrUnknownExercise
	}

	assignment := &models.AssignedExercise{
		ID:           uuid.New().String(),
		PatientID:    patientID,
		DoctorID:     doctorID,
		ExerciseName: exerciseName,
		AssignedAt:   time.Now(),
	}

	if err := s.exerciseRepo.Add(assignment); err != nil {
		return nil, fmt.Errorf("failed to assign exercise: %w", err)
	}

	topic := live.UserTopic(s.namespace, patientID, live.CollectionExercises)
	if err := s.notifier.Publish(context.Background(), topic); err != nil {
		log.Printf("Warning: failed to publish change on %s: %v", topic, err)
	}

	return assignment, nil
}

// Assignments returns a patient's full assignment log, newest first
func (s *ExerciseService) Assignments(patientID string) ([]models.AssignedExercise, error) {
	return s.exerciseRepo.ListByPatient(patientID)
}

// PracticeSentences returns the sentences a patient should practice: the
// material of their most recently assigned exercise, or the defaults when
// nothing has been assigned (or the assigned name has left the catalog).
func (s *ExerciseService) PracticeSentences(patientID string) ([]string, error) {
	name, err := s.exerciseRepo.LatestExerciseName(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up latest assignment: %w", err)
	}

	if sentences, ok := exerciseSentences[name]; ok {
		out := make([]string, len(sentences))
		copy(out, sentences)
		return out, nil
	}

	out := make([]string, len(defaultPracticeSentences))
	copy(out, defaultPracticeSentences)
	return out, nil
}
