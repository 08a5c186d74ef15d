package models

import "time"

// SecretNote is an annotation a non-owner attaches to someone else's item
type SecretNote struct {
	ID             int64     `json:"id"`
	WishlistItemID int64     `json:"wishlistItemId"`
	UserID         int64     `json:"userId"`
	Note           string    `json:"note"`
	CreatedAt      time.Time `json:"createdAt"`
}
