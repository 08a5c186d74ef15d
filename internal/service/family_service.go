package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"giftcircle/internal/credentials"
	"giftcircle/internal/models"
	"giftcircle/internal/repository"
	"giftcircle/internal/session"
)

const maxInviteCodeAttempts = 10

// CreateFamilyGroupInput is the body of a create group request
type CreateFamilyGroupInput struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// JoinFamilyGroupInput is the body of a join request
type JoinFamilyGroupInput struct {
	InviteCode string `json:"inviteCode" validate:"notblank"`
}

// InviteInput is the body of an invite-by-email request
type InviteInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// MembershipResult is returned when a user's family group changes. SessionID
// is the token the caller must use from now on.
type MembershipResult struct {
	Group     *models.FamilyGroup
	User      models.PublicUser
	SessionID string
}

// InviteMailer delivers invite codes by email
type InviteMailer interface {
	IsEnabled() bool
	SendFamilyInviteEmail(ctx context.Context, toEmail, inviterName, groupName, inviteCode string) error
}

// FamilyService handles family groups and membership
type FamilyService struct {
	store    repository.Store
	sessions session.Store
	mailer   InviteMailer
	log      logrus.FieldLogger
}

// NewFamilyService creates a new family service. mailer may be nil.
func NewFamilyService(store repository.Store, sessions session.Store, mailer InviteMailer, log logrus.FieldLogger) *FamilyService {
	return &FamilyService{
		store:    store,
		sessions: sessions,
		mailer:   mailer,
		log:      log,
	}
}

// CreateFamilyGroup creates a group with a fresh invite code and moves the
// creator into it
func (s *FamilyService) CreateFamilyGroup(ctx context.Context, token string, user models.PublicUser, in CreateFamilyGroupInput) (*MembershipResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	group, err := s.createWithUniqueCode(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"family_group_id": group.ID,
		"user_id":         user.ID,
	}).Info("Family group created")

	return s.moveInto(ctx, token, user, group, models.ActionCreatedGroup)
}

func (s *FamilyService) createWithUniqueCode(ctx context.Context, name string) (*models.FamilyGroup, error) {
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code, err := credentials.GenerateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		existing, err := s.store.GetFamilyGroupByInviteCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check invite code: %w", err)
		}
		if existing != nil {
			continue
		}

		group, err := s.store.CreateFamilyGroup(ctx, name, code)
		if errors.Is(err, repository.ErrDuplicateInviteCode) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create family group: %w", err)
		}
		return group, nil
	}

	return nil, fmt.Errorf("failed to generate a unique invite code after %d attempts", maxInviteCodeAttempts)
}

// JoinFamilyGroup moves the user into the group identified by an invite
// code, leaving any previous group
func (s *FamilyService) JoinFamilyGroup(ctx context.Context, token string, user models.PublicUser, in JoinFamilyGroupInput) (*MembershipResult, error) {
	in.InviteCode = credentials.NormalizeInviteCode(in.InviteCode)
	if err := validate(in); err != nil {
		return nil, err
	}

	group, err := s.store.GetFamilyGroupByInviteCode(ctx, in.InviteCode)
	if err != nil {
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}
	if group == nil {
		return nil, ErrInvalidInviteCode
	}

	s.log.WithFields(logrus.Fields{
		"family_group_id": group.ID,
		"user_id":         user.ID,
	}).Info("User joined family group")

	return s.moveInto(ctx, token, user, group, models.ActionJoinedGroup)
}

// moveInto records the membership change, logs it to the group's feed and
// refreshes the caller's session
func (s *FamilyService) moveInto(ctx context.Context, token string, user models.PublicUser, group *models.FamilyGroup, action models.Action) (*MembershipResult, error) {
	if err := s.store.UpdateUserFamilyGroup(ctx, user.ID, group.ID); err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}

	recordActivity(ctx, s.store, s.log, &models.Activity{
		UserID:        user.ID,
		FamilyGroupID: group.ID,
		Action:        action,
	})

	groupID := group.ID
	user.FamilyGroupID = &groupID

	fresh, err := s.sessions.Update(token, user)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}

	return &MembershipResult{Group: group, User: user, SessionID: fresh}, nil
}

// CurrentFamilyGroup returns the user's group and its members
func (s *FamilyService) CurrentFamilyGroup(ctx context.Context, user models.PublicUser) (*models.FamilyGroupWithMembers, error) {
	if !user.InFamilyGroup() {
		return nil, ErrNoFamilyGroup
	}

	group, err := s.store.GetFamilyGroup(ctx, *user.FamilyGroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get family group: %w", err)
	}
	if group == nil {
		return nil, ErrNoFamilyGroup
	}

	members, err := s.store.ListFamilyGroupMembers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list family group members: %w", err)
	}

	result := &models.FamilyGroupWithMembers{
		FamilyGroup: *group,
		Members:     make([]models.PublicUser, 0, len(members)),
	}
	for _, m := range members {
		result.Members = append(result.Members, m.Public())
	}
	return result, nil
}

// InviteByEmail mails the user's group invite code to someone
func (s *FamilyService) InviteByEmail(ctx context.Context, user models.PublicUser, in InviteInput) error {
	in.Email = strings.TrimSpace(in.Email)
	if err := validate(in); err != nil {
		return err
	}
	if s.mailer == nil || !s.mailer.IsEnabled() {
		return ErrMailDisabled
	}

	group, err := s.CurrentFamilyGroup(ctx, user)
	if err != nil {
		return err
	}

	if err := s.mailer.SendFamilyInviteEmail(ctx, in.Email, user.Name, group.Name, group.InviteCode); err != nil {
		return fmt.Errorf("failed to send invite: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"family_group_id": group.ID,
		"user_id":         user.ID,
	}).Info("Family invite sent")
	return nil
}
