package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcircle/internal/metrics"
	"giftcircle/internal/models"
	"giftcircle/internal/repository/memstore"
	"giftcircle/internal/security"
	"giftcircle/internal/service"
	"giftcircle/internal/session"
	"giftcircle/pkg/logger"
)

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
}

type serverOptions struct {
	rateLimit int
	db        Pinger
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()
	log := logger.Discard()
	store := memstore.New()
	sessions := session.NewMemoryStore(time.Hour)
	m := metrics.New()

	var limiter *security.RateLimiter
	if opts.rateLimit > 0 {
		limiter = security.NewRateLimiter(opts.rateLimit)
	}

	auth := service.NewAuthService(store, sessions, log)
	svc := Services{
		Auth:       auth,
		Families:   service.NewFamilyService(store, sessions, nil, log),
		Wishlists:  service.NewWishlistService(store, log, m, false),
		Activities: service.NewActivityService(store, log, false),
		Notes:      service.NewNoteService(store, log),
	}
	mw := NewMiddleware(auth, limiter, m, "https://app.example.com", log)

	return &testServer{
		handler: NewRouter(svc, mw, RouterOptions{DB: opts.db, Metrics: m.Handler()}, log),
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) register(t *testing.T, name, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[service.AuthResult](t, rec).SessionID
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	token := s.register(t, "Ann", "ann@example.com")
	require.NotEmpty(t, token)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann again", "email": "ann@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.ErrEmailTaken.Message, decode[messageResponse](t, rec).Message)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[service.AuthResult](t, rec)
	assert.Equal(t, "Ann", login.User.Name)

	rec = s.do(t, http.MethodGet, "/api/auth/me", login.SessionID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		User models.PublicUser `json:"user"`
	}](t, rec)
	assert.Equal(t, "ann@example.com", me.User.Email)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", login.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", login.SessionID, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"`+ErrUnauthorized+`"}`, rec.Body.String())
}

func TestInvalidJSONBody(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrInvalidJSON, decode[messageResponse](t, rec).Message)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/family-groups"},
		{http.MethodPost, "/api/family-groups/join"},
		{http.MethodGet, "/api/family-groups/current"},
		{http.MethodGet, "/api/wishlists/my"},
		{http.MethodGet, "/api/wishlists/family"},
		{http.MethodPost, "/api/wishlist-items"},
		{http.MethodPut, "/api/wishlist-items/1"},
		{http.MethodDelete, "/api/wishlist-items/1"},
		{http.MethodPost, "/api/wishlist-items/1/reserve"},
		{http.MethodPost, "/api/wishlist-items/1/unreserve"},
		{http.MethodGet, "/api/activities"},
		{http.MethodPost, "/api/secret-notes"},
		{http.MethodGet, "/api/secret-notes/1"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := s.do(t, route.method, route.path, "bogus-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestFamilyGroupFlow(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	ann := s.register(t, "Ann", "ann@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	rec := s.do(t, http.MethodGet, "/api/family-groups/current", ann, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/family-groups", ann, map[string]string{"name": "Smith"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	group := decode[models.FamilyGroup](t, rec)
	assert.Equal(t, "Smith", group.Name)
	if fresh := rec.Header().Get(SessionHeader); fresh != "" {
		ann = fresh
	}

	rec = s.do(t, http.MethodPost, "/api/family-groups/join", bob, map[string]string{"inviteCode": "NOPE99"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/family-groups/join", bob, map[string]string{"inviteCode": strings.ToLower(group.InviteCode)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	if fresh := rec.Header().Get(SessionHeader); fresh != "" {
		bob = fresh
	}

	rec = s.do(t, http.MethodGet, "/api/family-groups/current", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[models.FamilyGroupWithMembers](t, rec)
	assert.Equal(t, group.ID, current.ID)
	require.Len(t, current.Members, 2)
	assert.Equal(t, "Ann", current.Members[0].Name)
	assert.Equal(t, "Bob", current.Members[1].Name)

	rec = s.do(t, http.MethodPost, "/api/family-groups/invite", ann, map[string]string{"email": "gran@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/activities?limit=1", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[[]models.ActivityView](t, rec)
	require.Len(t, feed, 1)
	assert.Equal(t, models.ActionJoinedGroup, feed[0].Action)

	rec = s.do(t, http.MethodGet, "/api/activities?limit=abc", ann, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlistAndReservationFlow(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	ann := s.register(t, "Ann", "ann@example.com")
	bob := s.register(t, "Bob", "bob@example.com")
	cat := s.register(t, "Cat", "cat@example.com")

	rec := s.do(t, http.MethodPost, "/api/family-groups", ann, map[string]string{"name": "Smith"})
	require.Equal(t, http.StatusCreated, rec.Code)
	code := decode[models.FamilyGroup](t, rec).InviteCode
	ann = rec.Header().Get(SessionHeader)
	for _, token := range []*string{&bob, &cat} {
		rec = s.do(t, http.MethodPost, "/api/family-groups/join", *token, map[string]string{"inviteCode": code})
		require.Equal(t, http.StatusOK, rec.Code)
		*token = rec.Header().Get(SessionHeader)
	}

	rec = s.do(t, http.MethodPost, "/api/wishlist-items", ann, map[string]any{"name": "Bike", "price": 2000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bike := decode[models.WishlistItem](t, rec)
	itemPath := fmt.Sprintf("/api/wishlist-items/%d", bike.ID)

	rec = s.do(t, http.MethodPost, "/api/wishlist-items", ann, map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, itemPath, bob, map[string]any{"name": "Car"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, itemPath+"/reserve", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reserved := decode[models.WishlistItem](t, rec)
	assert.True(t, reserved.IsReserved)

	rec = s.do(t, http.MethodPost, itemPath+"/reserve", ann, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "owner cannot reserve")

	rec = s.do(t, http.MethodPost, itemPath+"/reserve", cat, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "already reserved")

	rec = s.do(t, http.MethodPost, itemPath+"/unreserve", cat, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, itemPath+"/unreserve", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.WishlistItem](t, rec).IsReserved)

	rec = s.do(t, http.MethodPost, itemPath+"/reserve", cat, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/wishlists/family", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lists := decode[[]models.FamilyWishlist](t, rec)
	require.Len(t, lists, 3)
	require.Len(t, lists[0].Items, 1)
	assert.False(t, lists[0].Items[0].CanEdit)
	assert.True(t, lists[0].Items[0].IsReserved)

	rec = s.do(t, http.MethodGet, "/api/wishlists/my", ann, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.WishlistItem](t, rec), 1)

	// Secret notes
	rec = s.do(t, http.MethodPost, "/api/secret-notes", bob, map[string]any{"wishlistItemId": bike.ID, "note": "red please"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/secret-notes/%d", bike.ID), cat, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.SecretNote](t, rec), 1)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/secret-notes/%d", bike.ID), ann, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/secret-notes/abc", bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete
	rec = s.do(t, http.MethodDelete, itemPath, bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = s.do(t, http.MethodDelete, itemPath, ann, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodPost, itemPath+"/reserve", bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `giftcircle_reservations_total{action="reserve",outcome="success"} 2`)
	assert.Contains(t, rec.Body.String(), `giftcircle_reservations_total{action="reserve",outcome="conflict"} 1`)
}

func TestRateLimitOnLogin(t *testing.T) {
	s := newTestServer(t, serverOptions{rateLimit: 2})
	body := map[string]string{"email": "ann@example.com", "password": "password123"}

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, serverOptions{db: stubPinger{}})
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s = newTestServer(t, serverOptions{db: stubPinger{err: errors.New("down")}})
	rec = s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpointRecordsRoutes(t *testing.T) {
	s := newTestServer(t, serverOptions{})
	s.do(t, http.MethodGet, "/api/health", "", nil)

	rec := s.do(t, http.MethodGet, "/api/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `giftcircle_http_requests_total{method="GET",route="GET /api/health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, serverOptions{})

	rec := s.do(t, http.MethodOptions, "/api/wishlists/my", "", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), SessionHeader)
}
