package service

import (
	"context"
	"fmt"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// loadGroupItem fetches an item the requester is allowed to see: their own,
// or one whose owner shares their family group. Anything else is reported
// as missing. The returned group is the owner's family group, if any.
func loadGroupItem(ctx context.Context, store repository.Store, user models.PublicUser, itemID int64) (*models.WishlistItem, *int64, error) {
	item, err := store.GetWishlistItem(ctx, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get wishlist item: %w", err)
	}
	if item == nil {
		return nil, nil, ErrItemNotFound
	}
	if item.UserID == user.ID {
		return item, user.FamilyGroupID, nil
	}

	owner, err := store.GetUser(ctx, item.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get item owner: %w", err)
	}
	if owner == nil || !models.SameGroup(owner.FamilyGroupID, user.FamilyGroupID) {
		return nil, nil, ErrItemNotFound
	}
	return item, owner.FamilyGroupID, nil
}
