package handlers

const (
	// SessionHeader carries the session token on requests and, when the
	// token changes, on responses
	SessionHeader = "X-Session-Id"

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Authentication required"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests, please try again later"
)
