// Package session maps bearer tokens to a snapshot of the authenticated user.
package session

import (
	"errors"

	"giftcircle/internal/models"
)

// ErrUnknownSession is returned when updating a token that is not live
var ErrUnknownSession = errors.New("unknown or expired session")

// Store holds sessions. Get on an unknown, expired or revoked token reports
// false. Update may return a different token that replaces the old one.
type Store interface {
	Create(user models.PublicUser) (string, error)
	Get(token string) (*models.PublicUser, bool)
	Update(token string, user models.PublicUser) (string, error)
	Delete(token string)
	// Sweep drops expired state and returns how many entries were removed
	Sweep() int
}
