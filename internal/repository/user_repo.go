package repository

import (
	"database/sql"
	"time"

	"speechtrack/internal/database"
	"speechtrack/internal/models"
)

// UserRepository handles account and session database operations
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser creates a new account
func (r *UserRepository) CreateUser(identity, email, name, passwordHash, role string) (*models.User, error) {
	user := &models.User{
		Identity:     identity,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}

	query := `
		INSERT INTO users (identity, email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, user.Identity, user.Email, user.Name, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByEmail retrieves an account by email, or nil when none exists
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT identity, email, name, password_hash, role, created_at
		FROM users
		WHERE email = ?
	`
	return r.scanUser(r.db.QueryRow(query, email))
}

// GetUserByIdentity retrieves an account by identity, or nil when none exists
func (r *UserRepository) GetUserByIdentity(identity string) (*models.User, error) {
	query := `
		SELECT identity, email, name, password_hash, role, created_at
		FROM users
		WHERE identity = ?
	`
	return r.scanUser(r.db.QueryRow(query, identity))
}

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.Identity,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// HasDoctor reports whether any doctor account exists
func (r *UserRepository) HasDoctor() (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM users WHERE role = ?"
	err := r.db.QueryRow(query, models.RoleDoctor).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateSession stores a new session
func (r *UserRepository) CreateSession(sessionID, identity string, expiresAt time.Time) (*models.Session, error) {
	session := &models.Session{
		ID:        sessionID,
		Identity:  identity,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	query := `
		INSERT INTO sessions (id, identity, expires_at, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, session.ID, session.Identity, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetSession retrieves a session by ID, or nil when none exists
func (r *UserRepository) GetSession(sessionID string) (*models.Session, error) {
	query := `
		SELECT id, identity, expires_at, created_at
		FROM sessions
		WHERE id = ?
	`

	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.Identity,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes a session
func (r *UserRepository) DeleteSession(sessionID string) error {
	query := "DELETE FROM sessions WHERE id = ?"
	_, err := r.db.Exec(query, sessionID)
	return err
}

// DeleteExpiredSessions removes sessions past their expiry time
func (r *UserRepository) DeleteExpiredSessions() error {
	query := "DELETE FROM sessions WHERE expires_at < ?"
	_, err := r.db.Exec(query, time.Now())
	return err
}
