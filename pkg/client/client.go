// Package client is a Go client for the GiftCircle HTTP API. It holds the
// current session and notifies subscribers whenever the signed-in user
// changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"giftcircle/internal/models"
)

// DefaultTimeout is the default timeout for API requests
const DefaultTimeout = 15 * time.Second

const sessionHeader = "X-Session-Id"

// APIError is a non-2xx response. Message is the server's own text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// AuthState is the signed-in user and their session token. User is nil when
// signed out.
type AuthState struct {
	Token string
	User  *models.PublicUser
}

// SignedIn reports whether the state holds a session
func (s AuthState) SignedIn() bool {
	return s.Token != "" && s.User != nil
}

// Client talks to the API and is safe for concurrent use
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	state   AuthState
	subs    map[int]func(AuthState)
	nextSub int
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken starts the client with an existing session token. Call Me to
// load the user it belongs to.
func WithToken(token string) Option {
	return func(c *Client) { c.state.Token = token }
}

// New creates a client for the API served at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		subs:       make(map[int]func(AuthState)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current auth state
func (c *Client) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Client) snapshot() AuthState {
	s := c.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Subscribe registers fn to be called with the new state after every auth
// change. The returned func removes the subscription.
func (c *Client) Subscribe(fn func(AuthState)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// setState replaces the auth state and notifies subscribers outside the lock
func (c *Client) setState(s AuthState) {
	c.mu.Lock()
	c.state = s
	snapshot := c.snapshot()
	subs := make([]func(AuthState), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Token
}

// do sends a JSON request and decodes a JSON response into out, which may be
// nil. It returns the response headers for callers that need them.
func (c *Client) do(ctx context.Context, method, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set(sessionHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.Header, decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.Header, nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
