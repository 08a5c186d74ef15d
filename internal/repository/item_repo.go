package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"giftcircle/internal/database"
	"giftcircle/internal/models"
)

// WishlistRepository handles database operations for wishlist items
type WishlistRepository struct {
	db database.DBTX
}

// NewWishlistRepository creates a new wishlist repository
func NewWishlistRepository(db database.DBTX) *WishlistRepository {
	return &WishlistRepository{db: db}
}

const itemColumns = `wi.id, wi.user_id, wi.name, wi.description, wi.price, wi.category, wi.priority,
	wi.store_link, wi.image_url, wi.is_reserved, wi.reserved_by_user_id, wi.created_at`

func scanItem(row rowScanner) (*models.WishlistItem, error) {
	var (
		item       models.WishlistItem
		price      sql.NullInt64
		reservedBy sql.NullInt64
	)
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Name,
		&item.Description,
		&price,
		&item.Category,
		&item.Priority,
		&item.StoreLink,
		&item.ImageURL,
		&item.IsReserved,
		&reservedBy,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Price = int64Ptr(price)
	item.ReservedByUserID = int64Ptr(reservedBy)
	return &item, nil
}

// CreateWishlistItem inserts a new, unreserved item and fills in its ID and
// creation time
func (r *WishlistRepository) CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	item.CreatedAt = now()
	item.IsReserved = false
	item.ReservedByUserID = nil

	query := `
		INSERT INTO wishlist_items (user_id, name, description, price, category, priority, store_link, image_url, is_reserved, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		item.UserID, item.Name, item.Description, nullInt64(item.Price), item.Category,
		item.Priority, item.StoreLink, item.ImageURL, false, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create wishlist item: %w", err)
	}

	item.ID = id
	return nil
}

// GetWishlistItem retrieves a wishlist item by ID
func (r *WishlistRepository) GetWishlistItem(ctx context.Context, id int64) (*models.WishlistItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM wishlist_items wi WHERE wi.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	return item, nil
}

// ListWishlistItemsByUser retrieves a user's items, newest first
func (r *WishlistRepository) ListWishlistItemsByUser(ctx context.Context, userID int64) ([]models.WishlistItem, error) {
	query := "SELECT " + itemColumns + " FROM wishlist_items wi WHERE wi.user_id = ? ORDER BY wi.created_at DESC, wi.id DESC"
	return r.list(ctx, query, userID)
}

// ListWishlistItemsByFamilyGroup retrieves the items of every member of a
// family group, newest first
func (r *WishlistRepository) ListWishlistItemsByFamilyGroup(ctx context.Context, familyGroupID int64) ([]models.WishlistItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM wishlist_items wi
		INNER JOIN users u ON wi.user_id = u.id
		WHERE u.family_group_id = ?
		ORDER BY wi.created_at DESC, wi.id DESC
	`
	return r.list(ctx, query, familyGroupID)
}

func (r *WishlistRepository) list(ctx context.Context, query string, args ...any) ([]models.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer rows.Close()

	var items []models.WishlistItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlist items: %w", err)
	}

	return items, nil
}

// UpdateWishlistItem writes the non-reservation fields of an item
func (r *WishlistRepository) UpdateWishlistItem(ctx context.Context, item *models.WishlistItem) error {
	query := `
		UPDATE wishlist_items
		SET name = ?, description = ?, price = ?, category = ?, priority = ?, store_link = ?, image_url = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		item.Name, item.Description, nullInt64(item.Price), item.Category,
		item.Priority, item.StoreLink, item.ImageURL, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update wishlist item: %w", err)
	}
	return nil
}

// DeleteWishlistItem removes an item; its secret notes are removed with it
func (r *WishlistRepository) DeleteWishlistItem(ctx context.Context, id int64) error {
	// Secret notes go with the item through ON DELETE CASCADE
	if _, err := r.db.ExecContext(ctx, "DELETE FROM wishlist_items WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

// ReserveWishlistItem reserves an open item for userID. The update only
// applies while the item is open and not owned by userID, so concurrent
// callers cannot both win.
func (r *WishlistRepository) ReserveWishlistItem(ctx context.Context, itemID, userID int64) (bool, error) {
	query := `
		UPDATE wishlist_items
		SET is_reserved = ?, reserved_by_user_id = ?
		WHERE id = ? AND is_reserved = ? AND user_id <> ?
	`
	result, err := r.db.ExecContext(ctx, query, true, userID, itemID, false, userID)
	if err != nil {
		return false, fmt.Errorf("failed to reserve wishlist item: %w", err)
	}
	return rowsChanged(result)
}

// UnreserveWishlistItem reopens an item, provided userID holds the reservation
func (r *WishlistRepository) UnreserveWishlistItem(ctx context.Context, itemID, userID int64) (bool, error) {
	query := `
		UPDATE wishlist_items
		SET is_reserved = ?, reserved_by_user_id = NULL
		WHERE id = ? AND is_reserved = ? AND reserved_by_user_id = ?
	`
	result, err := r.db.ExecContext(ctx, query, false, itemID, true, userID)
	if err != nil {
		return false, fmt.Errorf("failed to unreserve wishlist item: %w", err)
	}
	return rowsChanged(result)
}

func rowsChanged(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}
