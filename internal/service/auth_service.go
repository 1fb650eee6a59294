package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"speechtrack/internal/live"
	"speechtrack/internal/models"
	"speechtrack/internal/repository"
	"speechtrack/internal/security"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid sign-in token")
)

// AuthService handles accounts, sessions, and the identity contract: every
// successful sign-in yields an opaque stable identity string, and patient
// sign-ins run directory auto-registration.
type AuthService struct {
	userRepo        *repository.UserRepository
	patientRepo     *repository.PatientRepository
	notifier        live.Notifier
	namespace       string
	sessionDuration time.Duration
	tokenSigningKey []byte
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, patientRepo *repository.PatientRepository, notifier live.Notifier, namespace string, sessionDuration time.Duration, tokenSigningKey string) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		patientRepo:     patientRepo,
		notifier:        notifier,
		namespace:       namespace,
		sessionDuration: sessionDuration,
		tokenSigningKey: []byte(tokenSigningKey),
	}
}

// ensurePatient registers or refreshes the directory entry and signals the
// doctor overview. The signal is best effort.
func (s *AuthService) ensurePatient(identity string) error {
	if _, err := s.patientRepo.EnsurePatient(identity); err != nil {
		return err
	}
	topic := live.DirectoryTopic(s.namespace)
	if err := s.notifier.Publish(context.Background(), topic); err != nil {
		log.Printf("Warning: failed to publish change on %s: %v", topic, err)
	}
	return nil
}

// RegisterPatient creates a patient account and its directory entry
func (s *AuthService) RegisterPatient(email, password, name string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name is required")
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	identity := uuid.New().String()
	user, err := s.userRepo.CreateUser(identity, email, name, passwordHash, models.RolePatient)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.ensurePatient(identity); err != nil {
		// The directory entry is re-created on next sign-in; registration stands.
		log.Printf("Warning: failed to register patient directory entry for %s: %v", identity, err)
	}

	return user, nil
}

// Login authenticates an account and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(user.Identity)
	if err != nil {
		return nil, nil, err
	}

	if user.Role == models.RolePatient {
		if err := s.ensurePatient(user.Identity); err != nil {
			log.Printf("Warning: failed to refresh patient directory entry for %s: %v", user.Identity, err)
		}
	}

	return session, user, nil
}

// SignInAnonymously issues a fresh anonymous patient identity and session
func (s *AuthService) SignInAnonymously() (*models.Session, error) {
	identity := uuid.New().String()

	if err := s.ensurePatient(identity); err != nil {
		return nil, fmt.Errorf("failed to register anonymous patient: %w", err)
	}

	return s.createSession(identity)
}

// SignInWithToken exchanges an externally issued sign-in token for a session.
// The token's subject claim is the identity.
func (s *AuthService) SignInWithToken(tokenString string) (*models.Session, error) {
	if len(s.tokenSigningKey) == 0 {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256"}))
	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.tokenSigningKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	identity := claims.Subject
	if err := s.ensurePatient(identity); err != nil {
		return nil, fmt.Errorf("failed to register patient for token identity: %w", err)
	}

	return s.createSession(identity)
}

// FallbackIdentity generates a random local identity for use when the auth
// provider is unavailable. It touches no storage; the caller decides whether
// to proceed in degraded mode or halt.
func (s *AuthService) FallbackIdentity() string {
	return uuid.New().String()
}

func (s *AuthService) createSession(identity string) (*models.Session, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.userRepo.CreateSession(sessionID, identity, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession resolves a session ID to its identity and account. The
// account is nil for anonymous identities.
func (s *AuthService) ValidateSession(sessionID string) (string, *models.User, error) {
	session, err := s.userRepo.GetSession(sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return "", nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return "", nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByIdentity(session.Identity)
	if err != nil {
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	return session.Identity, user, nil
}

// Logout removes a session
func (s *AuthService) Logout(sessionID string) error {
	return s.userRepo.DeleteSession(sessionID)
}

// CleanupExpiredSessions removes sessions past their expiry time
func (s *AuthService) CleanupExpiredSessions() error {
	return s.userRepo.DeleteExpiredSessions()
}

// SeedDoctor creates the default doctor account when no doctor exists yet
func (s *AuthService) SeedDoctor(email, password, name string) error {
	hasDoctor, err := s.userRepo.HasDoctor()
	if err != nil {
		return fmt.Errorf("failed to check for doctor account: %w", err)
	}
	if hasDoctor {
		return nil
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash doctor password: %w", err)
	}

	identity := uuid.New().String()
	if _, err := s.userRepo.CreateUser(identity, email, name, passwordHash, models.RoleDoctor); err != nil {
		return fmt.Errorf("failed to create doctor account: %w", err)
	}

	log.Printf("Default doctor account created (%s)", email)
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") || strings.Contains(email, " ") {
		return errors.New("invalid email address")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}
