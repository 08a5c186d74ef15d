package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"giftcircle/internal/models"
)

// Claims carries the session user inside a signed token
type Claims struct {
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	FamilyGroupID *int64 `json:"fgid,omitempty"`
	jwt.RegisteredClaims
}

// JWTStore issues HS256 signed tokens. Only revoked token IDs are kept
// server-side, until the token would have expired anyway.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

var _ Store = (*JWTStore)(nil)

// NewJWTStore creates a store signing tokens with secret
func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	return &JWTStore{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (s *JWTStore) Create(user models.PublicUser) (string, error) {
	now := s.now()
	claims := &Claims{
		Name:          user.Name,
		Email:         user.Email,
		FamilyGroupID: user.FamilyGroupID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

func (s *JWTStore) parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if c, ok := parsed.Claims.(*Claims); ok && parsed.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

func (s *JWTStore) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func (s *JWTStore) revoke(c *Claims) {
	expires := s.now().Add(s.ttl)
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.Time
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[c.ID] = expires
}

func (s *JWTStore) Get(token string) (*models.PublicUser, bool) {
	c, err := s.parse(token)
	if err != nil || s.isRevoked(c.ID) {
		return nil, false
	}
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, false
	}
	return &models.PublicUser{
		ID:            id,
		Name:          c.Name,
		Email:         c.Email,
		FamilyGroupID: c.FamilyGroupID,
	}, true
}

// Update issues a fresh token for user and revokes the old one
func (s *JWTStore) Update(token string, user models.PublicUser) (string, error) {
	c, err := s.parse(token)
	if err != nil || s.isRevoked(c.ID) {
		return "", ErrUnknownSession
	}
	fresh, err := s.Create(user)
	if err != nil {
		return "", err
	}
	s.revoke(c)
	return fresh, nil
}

func (s *JWTStore) Delete(token string) {
	c, err := s.parse(token)
	if err != nil {
		return
	}
	s.revoke(c)
}

func (s *JWTStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, expires := range s.revoked {
		if !now.Before(expires) {
			delete(s.revoked, id)
			removed++
		}
	}
	return removed
}
