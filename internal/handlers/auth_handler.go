package handlers

import (
	"errors"
	"net/http"

	"speechtrack/internal/models"
	"speechtrack/internal/security"
	"speechtrack/internal/service"
)

// AuthHandler serves the sign-in surface
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	Identity  string `json:"identity"`
	Role      string `json:"role"`
	Name      string `json:"name,omitempty"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	user, err := h.authService.RegisterPatient(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, "Email already registered", "", nil)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), "Registration failed", err)
		return
	}

	session, loggedIn, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Registration succeeded but sign-in failed", "Post-registration login failed", err)
		return
	}

	h.respondWithSession(w, r, session, loggedIn, user.Identity)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, user, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Sign-in failed", "Login failed", err)
		return
	}

	h.respondWithSession(w, r, session, user, user.Identity)
}

// LoginAnonymously handles POST /api/auth/anonymous. Every call mints a
// fresh identity; there is nothing to resume.
func (h *AuthHandler) LoginAnonymously(w http.ResponseWriter, r *http.Request) {
	session, err := h.authService.SignInAnonymously()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Anonymous sign-in failed", "Anonymous sign-in failed", err)
		return
	}

	h.respondWithSession(w, r, session, nil, session.Identity)
}

// LoginWithToken handles POST /api/auth/token: sign-in with an externally
// issued custom token.
func (h *AuthHandler) LoginWithToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	session, err := h.authService.SignInWithToken(req.Token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondWithError(w, http.StatusUnauthorized, "Invalid sign-in token", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Token sign-in failed", "Token sign-in failed", err)
		return
	}

	h.respondWithSession(w, r, session, nil, session.Identity)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionID(r); id != "" {
		if err := h.authService.Logout(id); err != nil {
			respondWithError(w, http.StatusInternalServerError, "Sign-out failed", "Logout failed", err)
			return
		}
	}

	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity := GetIdentityFromContext(r.Context())
	resp := sessionResponse{
		Identity: identity,
		Role:     models.RolePatient,
	}
	if user := GetUserFromContext(r.Context()); user != nil {
		resp.Role = user.Role
		resp.Name = user.Name
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, session *models.Session, user *models.User, identity string) {
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	resp := sessionResponse{
		SessionID: session.ID,
		Identity:  identity,
		Role:      models.RolePatient,
	}
	if user != nil {
		resp.Role = user.Role
		resp.Name = user.Name
	}
	respondWithJSON(w, http.StatusOK, resp)
}
