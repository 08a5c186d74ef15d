package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"giftcircle/internal/models"
)

// ItemRequest is the body of a create or update item call
type ItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       *int64          `json:"price,omitempty"`
	Category    string          `json:"category,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	StoreLink   string          `json:"storeLink,omitempty"`
	ImageURL    string          `json:"imageUrl,omitempty"`
}

func itemPath(id int64) string {
	return fmt.Sprintf("/api/wishlist-items/%d", id)
}

func (c *Client) MyWishlist(ctx context.Context) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if _, err := c.do(ctx, http.MethodGet, "/api/wishlists/my", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) FamilyWishlists(ctx context.Context) ([]models.FamilyWishlist, error) {
	var lists []models.FamilyWishlist
	if _, err := c.do(ctx, http.MethodGet, "/api/wishlists/family", nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) CreateItem(ctx context.Context, req ItemRequest) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if _, err := c.do(ctx, http.MethodPost, "/api/wishlist-items", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateItem(ctx context.Context, id int64, req ItemRequest) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if _, err := c.do(ctx, http.MethodPut, itemPath(id), req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil)
	return err
}

func (c *Client) Reserve(ctx context.Context, id int64) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if _, err := c.do(ctx, http.MethodPost, itemPath(id)+"/reserve", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) Unreserve(ctx context.Context, id int64) (*models.WishlistItem, error) {
	var item models.WishlistItem
	if _, err := c.do(ctx, http.MethodPost, itemPath(id)+"/unreserve", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Activities returns the group feed. A limit of zero uses the server default.
func (c *Client) Activities(ctx context.Context, limit int) ([]models.ActivityView, error) {
	path := "/api/activities"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}

	var activities []models.ActivityView
	if _, err := c.do(ctx, http.MethodGet, path, nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) CreateSecretNote(ctx context.Context, itemID int64, note string) (*models.SecretNote, error) {
	var created models.SecretNote
	body := map[string]any{"wishlistItemId": itemID, "note": note}
	if _, err := c.do(ctx, http.MethodPost, "/api/secret-notes", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) SecretNotes(ctx context.Context, itemID int64) ([]models.SecretNote, error) {
	var notes []models.SecretNote
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/secret-notes/%d", itemID), nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}
