package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/metrics"
	"giftcircle/internal/models"
	"giftcircle/internal/repository"
)

// ItemInput is the body of a create or update item request. Price is in
// whole minor currency units.
type ItemInput struct {
	Name        string          `json:"name" validate:"notblank,max=200"`
	Description string          `json:"description" validate:"max=2000"`
	Price       *int64          `json:"price" validate:"omitempty,gte=0"`
	Category    string          `json:"category" validate:"max=100"`
	Priority    models.Priority `json:"priority" validate:"omitempty,oneof=high medium low"`
	StoreLink   string          `json:"storeLink" validate:"omitempty,http_url,max=2048"`
	ImageURL    string          `json:"imageUrl" validate:"omitempty,http_url,max=2048"`
}

func (in *ItemInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.StoreLink = strings.TrimSpace(in.StoreLink)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
}

func (in ItemInput) applyTo(item *models.WishlistItem) {
	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.Priority = in.Priority
	item.StoreLink = in.StoreLink
	item.ImageURL = in.ImageURL
}

// WishlistService implements wishlist editing and the reservation rules
type WishlistService struct {
	store         repository.Store
	log           logrus.FieldLogger
	metrics       *metrics.Metrics
	hideFromOwner bool
}

// NewWishlistService creates a new wishlist service. With hideFromOwner set,
// owners see their own items as unreserved. m may be nil.
func NewWishlistService(store repository.Store, log logrus.FieldLogger, m *metrics.Metrics, hideFromOwner bool) *WishlistService {
	return &WishlistService{
		store:         store,
		log:           log,
		metrics:       m,
		hideFromOwner: hideFromOwner,
	}
}

// forViewer masks the reservation on the viewer's own item when configured to
func (s *WishlistService) forViewer(item models.WishlistItem, viewerID int64) models.WishlistItem {
	if s.hideFromOwner && item.UserID == viewerID {
		item.MaskReservation()
	}
	return item
}

// MyWishlist returns the user's own items, newest first
func (s *WishlistService) MyWishlist(ctx context.Context, user models.PublicUser) ([]models.WishlistItem, error) {
	items, err := s.store.ListWishlistItemsByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist items: %w", err)
	}

	result := make([]models.WishlistItem, 0, len(items))
	for _, item := range items {
		result = append(result, s.forViewer(item, user.ID))
	}
	return result, nil
}

// FamilyWishlists returns every group member's items, grouped by member in
// member order. A user outside any group sees only their own list.
func (s *WishlistService) FamilyWishlists(ctx context.Context, user models.PublicUser) ([]models.FamilyWishlist, error) {
	var (
		members []models.PublicUser
		items   []models.WishlistItem
		err     error
	)

	if !user.InFamilyGroup() {
		members = []models.PublicUser{user}
		items, err = s.store.ListWishlistItemsByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list wishlist items: %w", err)
		}
	} else {
		users, err := s.store.ListFamilyGroupMembers(ctx, *user.FamilyGroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to list family group members: %w", err)
		}
		for _, u := range users {
			members = append(members, u.Public())
		}
		items, err = s.store.ListWishlistItemsByFamilyGroup(ctx, *user.FamilyGroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to list family wishlist items: %w", err)
		}
	}

	byOwner := make(map[int64][]models.WishlistItemView, len(members))
	for _, item := range items {
		byOwner[item.UserID] = append(byOwner[item.UserID], models.WishlistItemView{
			WishlistItem: s.forViewer(item, user.ID),
			CanEdit:      item.UserID == user.ID,
		})
	}

	result := make([]models.FamilyWishlist, 0, len(members))
	for _, m := range members {
		views := byOwner[m.ID]
		if views == nil {
			views = []models.WishlistItemView{}
		}
		result = append(result, models.FamilyWishlist{User: m, Items: views})
	}
	return result, nil
}

// CreateItem adds an item to the user's wishlist
func (s *WishlistService) CreateItem(ctx context.Context, user models.PublicUser, in ItemInput) (*models.WishlistItem, error) {
	in.normalize()
	if err := validate(in); err != nil {
		return nil, err
	}

	item := &models.WishlistItem{UserID: user.ID}
	in.applyTo(item)
	if err := s.store.CreateWishlistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create wishlist item: %w", err)
	}

	if user.InFamilyGroup() {
		name := item.Name
		recordActivity(ctx, s.store, s.log, &models.Activity{
			UserID:        user.ID,
			FamilyGroupID: *user.FamilyGroupID,
			Action:        models.ActionAddedItem,
			ItemName:      &name,
		})
	}

	return item, nil
}

// UpdateItem replaces the descriptive fields of one of the user's items
func (s *WishlistService) UpdateItem(ctx context.Context, user models.PublicUser, itemID int64, in ItemInput) (*models.WishlistItem, error) {
	in.normalize()
	if err := validate(in); err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, user, itemID)
	if err != nil {
		return nil, err
	}

	in.applyTo(item)
	if err := s.store.UpdateWishlistItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update wishlist item: %w", err)
	}

	masked := s.forViewer(*item, user.ID)
	return &masked, nil
}

// DeleteItem removes one of the user's items
func (s *WishlistService) DeleteItem(ctx context.Context, user models.PublicUser, itemID int64) error {
	if _, err := s.ownedItem(ctx, user, itemID); err != nil {
		return err
	}
	if err := s.store.DeleteWishlistItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}

// ownedItem loads an item the user may edit. Items outside the user's group
// are not found; items of other group members are forbidden.
func (s *WishlistService) ownedItem(ctx context.Context, user models.PublicUser, itemID int64) (*models.WishlistItem, error) {
	item, _, err := loadGroupItem(ctx, s.store, user, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != user.ID {
		return nil, ErrNotOwner
	}
	return item, nil
}

// Reserve claims an open item on behalf of the user. Only one of several
// concurrent callers can succeed; the rest get ErrAlreadyReserved.
func (s *WishlistService) Reserve(ctx context.Context, user models.PublicUser, itemID int64) (*models.WishlistItem, error) {
	item, ownerGroupID, err := loadGroupItem(ctx, s.store, user, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == user.ID {
		s.metrics.ObserveReservation("reserve", metrics.OutcomeDenied)
		return nil, ErrSelfReservation
	}

	ok, err := s.store.ReserveWishlistItem(ctx, itemID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve item: %w", err)
	}
	if !ok {
		s.metrics.ObserveReservation("reserve", metrics.OutcomeConflict)
		return nil, ErrAlreadyReserved
	}
	s.metrics.ObserveReservation("reserve", metrics.OutcomeSuccess)

	if ownerGroupID != nil {
		name := item.Name
		ownerID := item.UserID
		recordActivity(ctx, s.store, s.log, &models.Activity{
			UserID:        user.ID,
			FamilyGroupID: *ownerGroupID,
			Action:        models.ActionReservedItem,
			ItemName:      &name,
			TargetUserID:  &ownerID,
		})
	}

	s.log.WithFields(logrus.Fields{
		"item_id": itemID,
		"user_id": user.ID,
	}).Debug("Item reserved")

	return s.reload(ctx, itemID)
}

// Unreserve releases a reservation held by the user
func (s *WishlistService) Unreserve(ctx context.Context, user models.PublicUser, itemID int64) (*models.WishlistItem, error) {
	item, _, err := loadGroupItem(ctx, s.store, user, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsReservedBy(user.ID) {
		s.metrics.ObserveReservation("unreserve", metrics.OutcomeDenied)
		return nil, ErrNotReservationOwner
	}

	ok, err := s.store.UnreserveWishlistItem(ctx, itemID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to unreserve item: %w", err)
	}
	if !ok {
		s.metrics.ObserveReservation("unreserve", metrics.OutcomeConflict)
		return nil, ErrNotReservationOwner
	}
	s.metrics.ObserveReservation("unreserve", metrics.OutcomeSuccess)

	return s.reload(ctx, itemID)
}

func (s *WishlistService) reload(ctx context.Context, itemID int64) (*models.WishlistItem, error) {
	item, err := s.store.GetWishlistItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload wishlist item: %w", err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}
