package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// Register creates an account and opens a session for it
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	result, err := h.authService.Register(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to register user", err)
		return
	}

	respondJSON(w, h.log, http.StatusCreated, result)
}

// Login verifies credentials and opens a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	result, err := h.authService.Login(r.Context(), in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to log in", err)
		return
	}

	respondJSON(w, h.log, http.StatusOK, result)
}

// Logout ends the session named by the request header, if any
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := r.Header.Get(SessionHeader); token != "" {
		h.authService.Logout(token)
	}
	respondMessage(w, h.log, http.StatusOK, "Logged out successfully")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	respondJSON(w, h.log, http.StatusOK, map[string]any{"user": user})
}
