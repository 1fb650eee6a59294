package repository_test

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
	"speechtrack/internal/repository"
	"speechtrack/internal/service"
)

// setupIntegrationDB opens a throwaway sqlite store with the real schema.
func setupIntegrationDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestEnsurePatientIdempotence(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := repository.NewPatientRepository(db)

	first, err := repo.EnsurePatient("abcdef-12345")
	if err != nil {
		t.Fatalf("first EnsurePatient() error = %v", err)
	}
	if first.Name != "Patient abcdef" {
		t.Errorf("generated name = %q, want %q", first.Name, "Patient abcdef")
	}

	second, err := repo.EnsurePatient("abcdef-12345")
	if err != nil {
		t.Fatalf("second EnsurePatient() error = %v", err)
	}
	if second.Name != first.Name {
		t.Errorf("name changed on re-registration: %q -> %q", first.Name, second.Name)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on re-registration")
	}
	if second.LastActivity.Before(first.LastActivity) {
		t.Errorf("last_activity went backwards")
	}

	count, err := repo.CountPatients()
	if err != nil {
		t.Fatalf("CountPatients() error = %v", err)
	}
	if count != 1 {
		t.Errorf("patient count = %d, want 1", count)
	}
}

func TestRubricMergeEndToEnd(t *testing.T) {
	db := setupIntegrationDB(t)
	svc := service.NewRubricService(repository.NewRubricRepository(db))

	// Never-saved doctor sees the defaults.
	settings, err := svc.Get("doc-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if settings.MispronunciationWeight != 50 || settings.OmissionWeight != 70 || settings.InsertionWeight != 30 {
		t.Fatalf("defaults = %d/%d/%d, want 50/70/30",
			settings.MispronunciationWeight, settings.OmissionWeight, settings.InsertionWeight)
	}

	// Partial first write fills the rest from defaults.
	eighty := 80
	settings, err = svc.Save("doc-1", models.RubricUpdate{MispronunciationWeight: &eighty})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if settings.MispronunciationWeight != 80 || settings.OmissionWeight != 70 || settings.InsertionWeight != 30 {
		t.Fatalf("after first save = %d/%d/%d, want 80/70/30",
			settings.MispronunciationWeight, settings.OmissionWeight, settings.InsertionWeight)
	}

	// Second partial write touches only its field.
	ten := 10
	settings, err = svc.Save("doc-1", models.RubricUpdate{OmissionWeight: &ten})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if settings.MispronunciationWeight != 80 || settings.OmissionWeight != 10 || settings.InsertionWeight != 30 {
		t.Fatalf("after second save = %d/%d/%d, want 80/10/30",
			settings.MispronunciationWeight, settings.OmissionWeight, settings.InsertionWeight)
	}

	// Reload from storage, not the returned struct.
	settings, err = svc.Get("doc-1")
	if err != nil {
		t.Fatalf("Get() after saves error = %v", err)
	}
	if settings.MispronunciationWeight != 80 || settings.OmissionWeight != 10 || settings.InsertionWeight != 30 {
		t.Fatalf("reloaded = %d/%d/%d, want 80/10/30",
			settings.MispronunciationWeight, settings.OmissionWeight, settings.InsertionWeight)
	}
}

func TestUnreadCountAfterMarkRead(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := repository.NewFeedbackRepository(db)

	now := time.Now()
	for i, id := range []string{"fb-1", "fb-2"} {
		err := repo.Add(&models.FeedbackMessage{
			ID:        id,
			PatientID: "p1",
			DoctorID:  "doc-1",
			Text:      "keep practicing",
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("Add(%s) error = %v", id, err)
		}
	}

	count, err := repo.UnreadCount("p1")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("unread = %d, want 2", count)
	}

	if err := repo.MarkRead("p1", "fb-1"); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	// Marking again is a no-op, not an error.
	if err := repo.MarkRead("p1", "fb-1"); err != nil {
		t.Fatalf("repeat MarkRead() error = %v", err)
	}

	count, err = repo.UnreadCount("p1")
	if err != nil {
		t.Fatalf("UnreadCount() error = %v", err)
	}
	if count != 1 {
		t.Errorf("unread after mark = %d, want 1", count)
	}

	if err := repo.MarkRead("p1", "fb-missing"); err != repository.ErrFeedbackNotFound {
		t.Errorf("MarkRead(missing) error = %v, want ErrFeedbackNotFound", err)
	}
}

func TestStreakFromStoredHistory(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := repository.NewHistoryRepository(db)

	now := time.Now()
	offsets := []int{0, 1, 2, 5}
	for i, off := range offsets {
		err := repo.Append(&models.PronunciationRecord{
			ID:           "rec-" + string(rune('a'+i)),
			PatientID:    "p1",
			Sentence:     "She sells seashells by the seashore.",
			OverallScore: 75,
			CreatedAt:    now.AddDate(0, 0, -off),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	timestamps, err := repo.Timestamps("p1")
	if err != nil {
		t.Fatalf("Timestamps() error = %v", err)
	}
	if len(timestamps) != len(offsets) {
		t.Fatalf("got %d timestamps, want %d", len(timestamps), len(offsets))
	}

	if got := service.PracticeStreak(now, timestamps); got != 3 {
		t.Errorf("PracticeStreak() = %d, want 3", got)
	}
}

func TestHistoryStreamCap(t *testing.T) {
	db := setupIntegrationDB(t)
	repo := repository.NewHistoryRepository(db)

	now := time.Now()
	for i := 0; i < 25; i++ {
		err := repo.Append(&models.PronunciationRecord{
			ID:           fmt.Sprintf("rec-%02d", i),
			PatientID:    "p1",
			Sentence:     "Peter Piper picked a peck of pickled peppers.",
			OverallScore: i,
			CreatedAt:    now.Add(time.Duration(-i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	capped, err := repo.Recent("p1", 20)
	if err != nil {
		t.Fatalf("Recent(20) error = %v", err)
	}
	if len(capped) != 20 {
		t.Errorf("capped stream length = %d, want 20", len(capped))
	}
	// Newest first.
	if len(capped) > 1 && capped[0].CreatedAt.Before(capped[1].CreatedAt) {
		t.Error("stream is not newest-first")
	}

	full, err := repo.Recent("p1", 0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(full) != 25 {
		t.Errorf("full history length = %d, want 25", len(full))
	}
}
