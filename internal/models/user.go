package models

import "time"

// User represents an account. Email is empty for child accounts.
type User struct {
	ID            int64
	Name          string
	Email         string
	PasswordHash  string
	FamilyGroupID *int64
	CreatedAt     time.Time
}

// Public returns the fields of the user that are safe to hand out
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		FamilyGroupID: u.FamilyGroupID,
	}
}

// PublicUser is the cached snapshot of a user held by a session and
// returned by the API
type PublicUser struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	FamilyGroupID *int64 `json:"familyGroupId"`
}

// InFamilyGroup reports whether the user belongs to a family group
func (u PublicUser) InFamilyGroup() bool {
	return u.FamilyGroupID != nil
}

// SameGroup reports whether both users belong to the same family group
func SameGroup(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
