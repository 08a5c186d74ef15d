package client

import (
	"context"
	"net/http"

	"giftcircle/internal/models"
)

// CreateFamilyGroup creates a group and moves the signed-in user into it
func (c *Client) CreateFamilyGroup(ctx context.Context, name string) (*models.FamilyGroup, error) {
	var group models.FamilyGroup
	header, err := c.do(ctx, http.MethodPost, "/api/family-groups", map[string]string{"name": name}, &group)
	if err != nil {
		return nil, err
	}
	c.adoptMembership(header, group.ID)
	return &group, nil
}

// JoinFamilyGroup moves the signed-in user into the group with inviteCode
func (c *Client) JoinFamilyGroup(ctx context.Context, inviteCode string) (*models.FamilyGroup, error) {
	var group models.FamilyGroup
	header, err := c.do(ctx, http.MethodPost, "/api/family-groups/join", map[string]string{"inviteCode": inviteCode}, &group)
	if err != nil {
		return nil, err
	}
	c.adoptMembership(header, group.ID)
	return &group, nil
}

// adoptMembership picks up a rotated token and the user's new group
func (c *Client) adoptMembership(header http.Header, groupID int64) {
	state := c.State()
	if token := header.Get(sessionHeader); token != "" {
		state.Token = token
	}
	if state.User != nil {
		state.User.FamilyGroupID = &groupID
	}
	c.setState(state)
}

// CurrentFamilyGroup returns the signed-in user's group with its members
func (c *Client) CurrentFamilyGroup(ctx context.Context) (*models.FamilyGroupWithMembers, error) {
	var group models.FamilyGroupWithMembers
	if _, err := c.do(ctx, http.MethodGet, "/api/family-groups/current", nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// InviteByEmail mails the group's invite code to email
func (c *Client) InviteByEmail(ctx context.Context, email string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/family-groups/invite", map[string]string{"email": email}, nil)
	return err
}
