package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// FamilyHandler handles family group requests
type FamilyHandler struct {
	familyService *service.FamilyService
	log           logrus.FieldLogger
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, log logrus.FieldLogger) *FamilyHandler {
	return &FamilyHandler{
		familyService: familyService,
		log:           log,
	}
}

// CreateFamilyGroup creates a group and moves the caller into it
func (h *FamilyHandler) CreateFamilyGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.CreateFamilyGroupInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	result, err := h.familyService.CreateFamilyGroup(r.Context(), getTokenFromContext(r.Context()), *user, in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to create family group", err)
		return
	}

	w.Header().Set(SessionHeader, result.SessionID)
	respondJSON(w, h.log, http.StatusCreated, result.Group)
}

// JoinFamilyGroup moves the caller into the group named by an invite code
func (h *FamilyHandler) JoinFamilyGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.JoinFamilyGroupInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	result, err := h.familyService.JoinFamilyGroup(r.Context(), getTokenFromContext(r.Context()), *user, in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to join family group", err)
		return
	}

	w.Header().Set(SessionHeader, result.SessionID)
	respondJSON(w, h.log, http.StatusOK, result.Group)
}

// CurrentFamilyGroup returns the caller's group with its members
func (h *FamilyHandler) CurrentFamilyGroup(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	group, err := h.familyService.CurrentFamilyGroup(r.Context(), *user)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to load family group", err)
		return
	}

	respondJSON(w, h.log, http.StatusOK, group)
}

// Invite emails the caller's invite code to someone
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.InviteInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	if err := h.familyService.InviteByEmail(r.Context(), *user, in); err != nil {
		respondWithServiceError(w, h.log, "Failed to send family invite", err)
		return
	}

	respondMessage(w, h.log, http.StatusAccepted, "Invitation sent")
}
