package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT id FROM feedback WHERE patient_id = ? AND is_read = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want unchanged query", got)
		}
	})

	t.Run("UpsertRubricQuery uses ON CONFLICT", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertRubricQuery(), "ON CONFLICT(doctor_id)") {
			t.Error("UpsertRubricQuery() should conflict on doctor_id")
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery numbers placeholders", func(t *testing.T) {
		query := "SELECT id FROM feedback WHERE patient_id = ? AND is_read = ?"
		expected := "SELECT id FROM feedback WHERE patient_id = $1 AND is_read = $2"
		if got := dialect.RewriteQuery(query); got != expected {
			t.Errorf("RewriteQuery() = %v, want %v", got, expected)
		}
	})

	t.Run("UpsertRubricQuery uses ON CONFLICT", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertRubricQuery(), "ON CONFLICT (doctor_id)") {
			t.Error("UpsertRubricQuery() should conflict on doctor_id")
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery keeps placeholders", func(t *testing.T) {
		query := "SELECT id FROM feedback WHERE patient_id = ? AND is_read = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery() = %v, want unchanged query", got)
		}
	})

	t.Run("UpsertRubricQuery uses ON DUPLICATE KEY", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertRubricQuery(), "ON DUPLICATE KEY UPDATE") {
			t.Error("UpsertRubricQuery() should use ON DUPLICATE KEY UPDATE")
		}
	})
}

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "no placeholders",
			query:    "SELECT COUNT(*) FROM patients",
			expected: "SELECT COUNT(*) FROM patients",
		},
		{
			name:     "single placeholder",
			query:    "SELECT name FROM patients WHERE identity = ?",
			expected: "SELECT name FROM patients WHERE identity = $1",
		},
		{
			name:     "many placeholders",
			query:    "INSERT INTO feedback (id, patient_id, doctor_id, text) VALUES (?, ?, ?, ?)",
			expected: "INSERT INTO feedback (id, patient_id, doctor_id, text) VALUES ($1, $2, $3, $4)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.expected {
				t.Errorf("rewritePlaceholdersToNumbered() = %v, want %v", got, tt.expected)
			}
		})
	}
}
