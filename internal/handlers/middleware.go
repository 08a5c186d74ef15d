package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/metrics"
	"giftcircle/internal/models"
	"giftcircle/internal/security"
	"giftcircle/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	UserContextKey  ContextKey = "user"
	TokenContextKey ContextKey = "session_token"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
	limiter     *security.RateLimiter
	metrics     *metrics.Metrics
	corsOrigin  string
	log         logrus.FieldLogger
}

// NewMiddleware creates a new middleware instance. limiter and m may be nil.
func NewMiddleware(authService *service.AuthService, limiter *security.RateLimiter, m *metrics.Metrics, corsOrigin string, log logrus.FieldLogger) *Middleware {
	return &Middleware{
		authService: authService,
		limiter:     limiter,
		metrics:     m,
		corsOrigin:  corsOrigin,
		log:         log,
	}
}

// RequireAuth is middleware that requires a valid session token
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		user, err := m.authService.Authenticate(r.Context(), token)
		if errors.Is(err, service.ErrAuthRequired) {
			respondMessage(w, m.log, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		if err != nil {
			respondWithServiceError(w, m.log, "Failed to authenticate session", err)
			return
		}

		// Add user and token to context
		ctx := context.WithValue(r.Context(), UserContextKey, user)
		ctx = context.WithValue(ctx, TokenContextKey, token)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the per-IP request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	if m.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			m.log.WithFields(logrus.Fields{"ip": ip, "path": r.URL.Path}).Warn("Rate limit exceeded")
			respondMessage(w, m.log, http.StatusTooManyRequests, ErrTooManyRequests)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Logging middleware logs HTTP requests and records request metrics
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Call next handler
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)

		// The mux fills in the matched pattern; unmatched paths share a label
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.metrics.ObserveRequest(r.Method, route, rec.status, elapsed)

		m.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": elapsed,
		}).Info("Request handled")
	})
}

// CORS allows the configured browser origin to call the API
func (m *Middleware) CORS(next http.Handler) http.Handler {
	if m.corsOrigin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", m.corsOrigin)
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+SessionHeader)
		h.Set("Access-Control-Expose-Headers", SessionHeader)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.PublicUser {
	user, ok := ctx.Value(UserContextKey).(*models.PublicUser)
	if !ok {
		return nil
	}
	return user
}

// getTokenFromContext retrieves the session token RequireAuth accepted
func getTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenContextKey).(string)
	return token
}
