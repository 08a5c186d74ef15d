package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/models"
	"giftcircle/internal/repository"
	"giftcircle/internal/security"
	"giftcircle/internal/session"
)

// RegisterInput is the body of a registration request. Email may be left
// empty for child accounts, which then cannot log in by email.
type RegisterInput struct {
	Name     string `json:"name" validate:"notblank,min=2,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginInput is the body of a login request
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	User      models.PublicUser `json:"user"`
	SessionID string            `json:"sessionId"`
}

// AuthService handles authentication business logic
type AuthService struct {
	store    repository.Store
	sessions session.Store
	log      logrus.FieldLogger
}

// NewAuthService creates a new auth service
func NewAuthService(store repository.Store, sessions session.Store, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		store:    store,
		sessions: sessions,
		log:      log,
	}
}

// Register creates a new account and opens a session for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate(in); err != nil {
		return nil, err
	}

	if in.Email != "" {
		existingUser, err := s.store.GetUserByEmail(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing user: %w", err)
		}
		if existingUser != nil {
			return nil, ErrEmailTaken
		}
	}

	passwordHash, err := security.HashPassword(in.Password)
	if security.IsPasswordTooLong(err) {
		// The tag counts characters; bcrypt's limit is 72 bytes
		return nil, &Error{Kind: KindValidation, Message: "password must be at most 72 bytes"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, in.Name, in.Email, passwordHash)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent registration
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("User registered")
	return s.openSession(user)
}

// Login authenticates a user by email and password and opens a session
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate(in); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(user)
}

func (s *AuthService) openSession(user *models.User) (*AuthResult, error) {
	public := user.Public()
	token, err := s.sessions.Create(public)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &AuthResult{User: public, SessionID: token}, nil
}

// Authenticate resolves a session token to its user. Unknown tokens yield
// ErrAuthRequired. The family group is read from the store, since another
// session of the same user may have moved them since this one was issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.PublicUser, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}
	user, ok := s.sessions.Get(token)
	if !ok {
		return nil, ErrAuthRequired
	}

	stored, err := s.store.GetUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	if stored == nil {
		s.sessions.Delete(token)
		return nil, ErrAuthRequired
	}
	user.FamilyGroupID = stored.FamilyGroupID
	return user, nil
}

// Logout ends a session
func (s *AuthService) Logout(token string) {
	if token != "" {
		s.sessions.Delete(token)
	}
}
