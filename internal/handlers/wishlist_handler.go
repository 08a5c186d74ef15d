package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// WishlistHandler handles wishlist and reservation requests
type WishlistHandler struct {
	wishlistService *service.WishlistService
	log             logrus.FieldLogger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService *service.WishlistService, log logrus.FieldLogger) *WishlistHandler {
	return &WishlistHandler{
		wishlistService: wishlistService,
		log:             log,
	}
}

func (h *WishlistHandler) MyWishlist(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	items, err := h.wishlistService.MyWishlist(r.Context(), *user)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to load wishlist", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, items)
}

func (h *WishlistHandler) FamilyWishlists(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	lists, err := h.wishlistService.FamilyWishlists(r.Context(), *user)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to load family wishlists", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, lists)
}

func (h *WishlistHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in service.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	item, err := h.wishlistService.CreateItem(r.Context(), *user, in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to create wishlist item", err)
		return
	}
	respondJSON(w, h.log, http.StatusCreated, item)
}

func (h *WishlistHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidID)
		return
	}

	var in service.ItemInput
	if err := decodeJSON(r, &in); err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidJSON)
		return
	}

	item, err := h.wishlistService.UpdateItem(r.Context(), *user, itemID, in)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to update wishlist item", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, item)
}

func (h *WishlistHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidID)
		return
	}

	if err := h.wishlistService.DeleteItem(r.Context(), *user, itemID); err != nil {
		respondWithServiceError(w, h.log, "Failed to delete wishlist item", err)
		return
	}
	respondMessage(w, h.log, http.StatusOK, "Item deleted")
}

// Reserve claims an item on someone else's wishlist
func (h *WishlistHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidID)
		return
	}

	item, err := h.wishlistService.Reserve(r.Context(), *user, itemID)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to reserve item", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, item)
}

// Unreserve releases the caller's reservation
func (h *WishlistHandler) Unreserve(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	itemID, err := pathID(r, "id")
	if err != nil {
		respondMessage(w, h.log, http.StatusBadRequest, ErrInvalidID)
		return
	}

	item, err := h.wishlistService.Unreserve(r.Context(), *user, itemID)
	if err != nil {
		respondWithServiceError(w, h.log, "Failed to unreserve item", err)
		return
	}
	respondJSON(w, h.log, http.StatusOK, item)
}
