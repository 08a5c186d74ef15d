package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// CreateSecretNoteInput is the body of a create note request
type CreateSecretNoteInput struct {
	WishlistItemID int64  `json:"wishlistItemId" validate:"required,gt=0"`
	Note           string `json:"note" validate:"notblank,max=1000"`
}

// NoteService manages secret notes. Notes on an item are shared between all
// group members except the item's owner, who can neither read nor write them.
type NoteService struct {
	store repository.Store
	log   logrus.FieldLogger
}

// NewNoteService creates a new note service
func NewNoteService(store repository.Store, log logrus.FieldLogger) *NoteService {
	return &NoteService{store: store, log: log}
}

// Create attaches a note to someone else's item
func (s *NoteService) Create(ctx context.Context, user models.PublicUser, in CreateSecretNoteInput) (*models.SecretNote, error) {
	in.Note = strings.TrimSpace(in.Note)
	if err := validate(in); err != nil {
		return nil, err
	}

	item, _, err := loadGroupItem(ctx, s.store, user, in.WishlistItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == user.ID {
		return nil, ErrOwnItemNote
	}

	note := &models.SecretNote{
		WishlistItemID: item.ID,
		UserID:         user.ID,
		Note:           in.Note,
	}
	if err := s.store.CreateSecretNote(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create secret note: %w", err)
	}
	return note, nil
}

// List returns the notes on someone else's item, oldest first
func (s *NoteService) List(ctx context.Context, user models.PublicUser, itemID int64) ([]models.SecretNote, error) {
	item, _, err := loadGroupItem(ctx, s.store, user, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == user.ID {
		return nil, ErrOwnItemNote
	}

	notes, err := s.store.ListSecretNotesByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list secret notes: %w", err)
	}
	if notes == nil {
		notes = []models.SecretNote{}
	}
	return notes, nil
}
