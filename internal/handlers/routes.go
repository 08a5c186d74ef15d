package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/service"
)

// Services are the dependencies NewRouter wires into handlers
type Services struct {
	Auth       *service.AuthService
	Families   *service.FamilyService
	Wishlists  *service.WishlistService
	Activities *service.ActivityService
	Notes      *service.NoteService
}

// RouterOptions holds the optional parts of the router
type RouterOptions struct {
	// DB backs the health check
	DB Pinger
	// Metrics is mounted on /api/metrics when set
	Metrics http.Handler
}

// NewRouter registers every API route and wraps the mux in the logging and
// CORS middleware
func NewRouter(svc Services, mw *Middleware, opts RouterOptions, log logrus.FieldLogger) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, log)
	familyHandler := NewFamilyHandler(svc.Families, log)
	wishlistHandler := NewWishlistHandler(svc.Wishlists, log)
	activityHandler := NewActivityHandler(svc.Activities, log)
	noteHandler := NewNoteHandler(svc.Notes, log)
	healthHandler := NewHealthHandler(opts.DB, log)

	mux := http.NewServeMux()

	// Auth routes
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(authHandler.Login))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/auth/me", mw.RequireAuth(authHandler.Me))

	// Family group routes
	mux.HandleFunc("POST /api/family-groups", mw.RequireAuth(familyHandler.CreateFamilyGroup))
	mux.HandleFunc("POST /api/family-groups/join", mw.RequireAuth(familyHandler.JoinFamilyGroup))
	mux.HandleFunc("GET /api/family-groups/current", mw.RequireAuth(familyHandler.CurrentFamilyGroup))
	mux.HandleFunc("POST /api/family-groups/invite", mw.RequireAuth(familyHandler.Invite))

	// Wishlist routes
	mux.HandleFunc("GET /api/wishlists/my", mw.RequireAuth(wishlistHandler.MyWishlist))
	mux.HandleFunc("GET /api/wishlists/family", mw.RequireAuth(wishlistHandler.FamilyWishlists))
	mux.HandleFunc("POST /api/wishlist-items", mw.RequireAuth(wishlistHandler.CreateItem))
	mux.HandleFunc("PUT /api/wishlist-items/{id}", mw.RequireAuth(wishlistHandler.UpdateItem))
	mux.HandleFunc("DELETE /api/wishlist-items/{id}", mw.RequireAuth(wishlistHandler.DeleteItem))
	mux.HandleFunc("POST /api/wishlist-items/{id}/reserve", mw.RequireAuth(wishlistHandler.Reserve))
	mux.HandleFunc("POST /api/wishlist-items/{id}/unreserve", mw.RequireAuth(wishlistHandler.Unreserve))

	// Activity feed and secret notes
	mux.HandleFunc("GET /api/activities", mw.RequireAuth(activityHandler.List))
	mux.HandleFunc("POST /api/secret-notes", mw.RequireAuth(noteHandler.Create))
	mux.HandleFunc("GET /api/secret-notes/{itemId}", mw.RequireAuth(noteHandler.List))

	// Operational endpoints
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	if opts.Metrics != nil {
		mux.Handle("GET /api/metrics", opts.Metrics)
	}

	return mw.CORS(mw.Logging(mux))
}
