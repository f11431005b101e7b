package handlers

import (
	"net/http"

	"online-bookstore/internal/middleware"
	"online-bookstore/internal/models"
	"online-bookstore/internal/services"

	"github.com/gorilla/sessions"
)

// AuthHandler handles registration, login, and logout
type AuthHandler struct {
	authService *services.AuthService
	store       sessions.Store
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, store sessions.Store) *AuthHandler {
	return &AuthHandler{authService: authService, store: store}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.signIn(w, r, user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.Authenticate(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.signIn(w, r, user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, middleware.SessionName)
	if err == nil {
		session.Options.MaxAge = -1
		session.Save(r, w)
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	// Get returns a fresh session when the cookie is missing or corrupt
	session, _ := h.store.Get(r, middleware.SessionName)
	session.Values["user_id"] = user.ID
	session.Options.HttpOnly = true
	session.Options.SameSite = http.SameSiteLaxMode
	return session.Save(r, w)
}
