package models

import "time"

// FamilyGroup is a named set of users sharing wishlists, joined by invite code
type FamilyGroup struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	InviteCode string    `json:"inviteCode"`
	CreatedAt  time.Time `json:"createdAt"`
}

// FamilyGroupWithMembers combines a family group with its member information
type FamilyGroupWithMembers struct {
	FamilyGroup
	Members []PublicUser `json:"members"`
}
