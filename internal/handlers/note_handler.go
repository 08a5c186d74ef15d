package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// NoteHandler handles secret note requests
type NoteHandler struct {
	noteService *service.NoteService
	log         logrus.FieldLogger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *service.NoteService, log logrus.FieldLogger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		log:         log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.CreateSecretNoteInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	note, err := h.noteService.Create(r.Context(), *user, in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to create secret note", err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, note)
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := pathID(r, "itemId")
	if err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidID)
		return
	}

	notes, err := h.noteService.List(r.Context(), *user, itemID)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to load secret notes", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, notes)
}
