package models

import "time"

// Action identifies what an activity records
type Action string

const (
	ActionAddedItem    Action = "added_item"
	ActionReservedItem Action = "reserved_item"
	ActionCreatedGroup Action = "created_group"
	ActionJoinedGroup  Action = "joined_group"
)

// Activity is an append-only entry in a family group's feed
type Activity struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	FamilyGroupID int64     `json:"familyGroupId"`
	Action        Action    `json:"action"`
	ItemName      *string   `json:"itemName"`
	TargetUserID  *int64    `json:"targetUserId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ActivityView is an activity enriched with the actor and target names
type ActivityView struct {
	Activity
	UserName       string  `json:"userName"`
	TargetUserName *string `json:"targetUserName"`
}
