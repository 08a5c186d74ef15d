package service

import (
	"errors"

	"giftcircle/internal/validation"
)

// Kind classifies a domain error
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthRequired
	KindNotFound
	KindAuthorization
	KindConflict
	KindUnavailable
)

// Error is a request-terminating domain error whose message is safe to show
// to the caller
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrAuthRequired        = &Error{Kind: KindAuthRequired, Message: "Authentication required"}
	ErrEmailTaken          = &Error{Kind: KindValidation, Message: "Email already registered"}
	ErrInvalidCredentials  = &Error{Kind: KindAuthRequired, Message: "Invalid email or password"}
	ErrNoFamilyGroup       = &Error{Kind: KindNotFound, Message: "Not in a family group"}
	ErrInvalidInviteCode   = &Error{Kind: KindNotFound, Message: "Invalid invite code"}
	ErrItemNotFound        = &Error{Kind: KindNotFound, Message: "Item not found"}
	ErrNotOwner            = &Error{Kind: KindAuthorization, Message: "You can only modify your own items"}
	ErrSelfReservation     = &Error{Kind: KindAuthorization, Message: "You cannot reserve your own item"}
	ErrAlreadyReserved     = &Error{Kind: KindConflict, Message: "Item is already reserved"}
	ErrNotReservationOwner = &Error{Kind: KindAuthorization, Message: "You can only unreserve items you reserved"}
	ErrOwnItemNote         = &Error{Kind: KindAuthorization, Message: "You cannot add notes to your own items"}
	ErrMailDisabled        = &Error{Kind: KindUnavailable, Message: "Email invitations are not configured"}
)

// KindOf returns the kind of a domain error, or 0 for anything else
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// validate runs struct validation and turns a failure into a domain error
func validate(v any) error {
	err := validation.Struct(v)
	if err == nil {
		return nil
	}
	var verr validation.ValidationError
	if errors.As(err, &verr) {
		return &Error{Kind: KindValidation, Message: verr.Message}
	}
	return &Error{Kind: KindValidation, Message: "Invalid request"}
}
