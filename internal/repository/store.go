package repository

import (
	"context"
	"errors"

	"giftcircle/internal/models"
)

// ErrDuplicateInviteCode is returned by CreateFamilyGroup when the invite
// code is already taken
var ErrDuplicateInviteCode = errors.New("invite code already in use")

// ErrDuplicateEmail is returned by CreateUser when another account already
// has the email
var ErrDuplicateEmail = errors.New("email already in use")

// DefaultActivityLimit caps activity queries when no positive limit is given
const DefaultActivityLimit = 10

// Store is the record store used by the services. Lookups return (nil, nil)
// when the record does not exist. Create methods do not validate their input.
// Wishlist items and activities are listed newest first.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, name, email, passwordHash string) (*models.User, error)
	UpdateUserFamilyGroup(ctx context.Context, userID, familyGroupID int64) error
	ListFamilyGroupMembers(ctx context.Context, familyGroupID int64) ([]models.User, error)

	GetFamilyGroup(ctx context.Context, id int64) (*models.FamilyGroup, error)
	GetFamilyGroupByInviteCode(ctx context.Context, code string) (*models.FamilyGroup, error)
	CreateFamilyGroup(ctx context.Context, name, inviteCode string) (*models.FamilyGroup, error)

	GetWishlistItem(ctx context.Context, id int64) (*models.WishlistItem, error)
	ListWishlistItemsByUser(ctx context.Context, userID int64) ([]models.WishlistItem, error)
	ListWishlistItemsByFamilyGroup(ctx context.Context, familyGroupID int64) ([]models.WishlistItem, error)
	CreateWishlistItem(ctx context.Context, item *models.WishlistItem) error
	UpdateWishlistItem(ctx context.Context, item *models.WishlistItem) error
	DeleteWishlistItem(ctx context.Context, id int64) error
	// ReserveWishlistItem marks an open item as reserved by userID unless
	// userID owns it. It reports whether the item changed state.
	ReserveWishlistItem(ctx context.Context, itemID, userID int64) (bool, error)
	// UnreserveWishlistItem reopens an item reserved by userID. It reports
	// whether the item changed state.
	UnreserveWishlistItem(ctx context.Context, itemID, userID int64) (bool, error)

	CreateActivity(ctx context.Context, activity *models.Activity) error
	ListActivitiesByFamilyGroup(ctx context.Context, familyGroupID int64, limit int) ([]models.ActivityView, error)

	CreateSecretNote(ctx context.Context, note *models.SecretNote) error
	ListSecretNotesByItem(ctx context.Context, itemID int64) ([]models.SecretNote, error)
}
