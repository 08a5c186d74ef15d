package repository

import (
	"context"
	"fmt"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// SecretNoteRepository handles database operations for secret notes
type SecretNoteRepository struct {
	db database.DBTX
}

// NewSecretNoteRepository creates a new secret note repository
func NewSecretNoteRepository(db database.DBTX) *SecretNoteRepository {
	return &SecretNoteRepository{db: db}
}

// CreateSecretNote stores a note and fills in its ID and creation time
func (r *SecretNoteRepository) CreateSecretNote(ctx context.Context, note *models.SecretNote) error {
	note.CreatedAt = now()
	query := "INSERT INTO secret_notes (wishlist_item_id, user_id, note, created_at) VALUES (?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(ctx, query, note.WishlistItemID, note.UserID, note.Note, note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create secret note: %w", err)
	}
	note.ID = id
	return nil
}

// ListSecretNotesByItem retrieves the notes on an item, oldest first
func (r *SecretNoteRepository) ListSecretNotesByItem(ctx context.Context, itemID int64) ([]models.SecretNote, error) {
	query := `
		SELECT id, wishlist_item_id, user_id, note, created_at
		FROM secret_notes
		WHERE wishlist_item_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query secret notes: %w", err)
	}
	defer rows.Close()

	var notes []models.SecretNote
	for rows.Next() {
		var note models.SecretNote
		if err := rows.Scan(&note.ID, &note.WishlistItemID, &note.UserID, &note.Note, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan secret note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate secret notes: %w", err)
	}

	return notes, nil
}
