package models

import "time"

// Priority of a wishlist item
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// WishlistItem is a gift idea on a user's wishlist.
// ReservedByUserID is set exactly when IsReserved is true.
type WishlistItem struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"userId"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Price            *int64    `json:"price"`
	Category         string    `json:"category"`
	Priority         Priority  `json:"priority"`
	StoreLink        string    `json:"storeLink"`
	ImageURL         string    `json:"imageUrl"`
	IsReserved       bool      `json:"isReserved"`
	ReservedByUserID *int64    `json:"reservedByUserId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// IsReservedBy reports whether the item is currently reserved by userID
func (i *WishlistItem) IsReservedBy(userID int64) bool {
	return i.IsReserved && i.ReservedByUserID != nil && *i.ReservedByUserID == userID
}

// MaskReservation clears the reservation fields
func (i *WishlistItem) MaskReservation() {
	i.IsReserved = false
	i.ReservedByUserID = nil
}

// WishlistItemView is an item as seen by a particular requester
type WishlistItemView struct {
	WishlistItem
	CanEdit bool `json:"canEdit"`
}

// FamilyWishlist groups one member's items
type FamilyWishlist struct {
	User  PublicUser         `json:"user"`
	Items []WishlistItemView `json:"items"`
}
