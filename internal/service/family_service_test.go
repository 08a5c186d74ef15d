package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcircle/internal/credentials"
	"giftcircle/internal/models"
)

func TestCreateAndJoinFamilyGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")
	b := f.register(t, "Bob", "bob@example.com")

	group := f.createGroup(t, a, "Smith")
	assert.Equal(t, "Smith", group.Name)
	assert.Len(t, group.InviteCode, credentials.InviteCodeLength)

	// The creator's session reflects the new group without logging in again
	require.NotNil(t, f.current(t, a).FamilyGroupID)
	assert.Equal(t, group.ID, *f.current(t, a).FamilyGroupID)

	f.join(t, b, strings.ToLower(" "+group.InviteCode+" "))

	bUser := f.current(t, b)
	require.NotNil(t, bUser.FamilyGroupID)
	assert.Equal(t, group.ID, *bUser.FamilyGroupID)

	current, err := f.families.CurrentFamilyGroup(ctx, bUser)
	require.NoError(t, err)
	assert.Equal(t, "Smith", current.Name)
	require.Len(t, current.Members, 2)
	assert.Equal(t, "Ann", current.Members[0].Name)
	assert.Equal(t, "Bob", current.Members[1].Name)

	feed, err := f.activities.List(ctx, bUser, 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, models.ActionJoinedGroup, feed[0].Action)
	assert.Equal(t, "Bob", feed[0].UserName)
	assert.Equal(t, models.ActionCreatedGroup, feed[1].Action)
}

func TestJoinInvalidCodeLeavesMembershipUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")
	group := f.createGroup(t, a, "Smith")

	_, err := f.families.JoinFamilyGroup(ctx, a.token, f.current(t, a), JoinFamilyGroupInput{InviteCode: "ZZZZZZ"})
	assert.ErrorIs(t, err, ErrInvalidInviteCode)
	assert.Equal(t, KindNotFound, KindOf(err))

	stored, err := f.store.GetUser(ctx, a.user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FamilyGroupID)
	assert.Equal(t, group.ID, *stored.FamilyGroupID)
	assert.Equal(t, group.ID, *f.current(t, a).FamilyGroupID)

	_, err = f.families.JoinFamilyGroup(ctx, a.token, f.current(t, a), JoinFamilyGroupInput{InviteCode: "  "})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestJoinSecondGroupReplacesMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")
	b := f.register(t, "Bob", "bob@example.com")
	smith := f.createGroup(t, a, "Smith")
	jones := f.createGroup(t, b, "Jones")

	f.join(t, b, smith.InviteCode)

	members, err := f.store.ListFamilyGroupMembers(ctx, jones.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
	assert.Equal(t, smith.ID, *f.current(t, b).FamilyGroupID)
}

func TestMembershipChangeReachesOtherSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")
	b := f.register(t, "Bob", "bob@example.com")
	c := f.register(t, "Cat", "cat@example.com")
	smith := f.createGroup(t, a, "Smith")
	f.join(t, b, smith.InviteCode)
	jones := f.createGroup(t, c, "Jones")
	bike := f.addItem(t, a, "Bike")

	// Bob signs in on a second device, then moves groups from the first
	login, err := f.auth.Login(ctx, LoginInput{Email: "bob@example.com", Password: "password123"})
	require.NoError(t, err)
	other := &member{token: login.SessionID, user: login.User}
	f.join(t, b, jones.InviteCode)

	seen := f.current(t, other)
	assert.Equal(t, jones.ID, *seen.FamilyGroupID)

	_, err = f.wishlists.Reserve(ctx, seen, bike.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestAuthenticateDropsSessionOfDeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")

	token, err := f.sessions.Create(models.PublicUser{ID: a.user.ID + 100, Name: "Ghost"})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, ok := f.sessions.Get(token)
	assert.False(t, ok)
}

func TestCreateFamilyGroupCodesAreUnique(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "Ann", "ann@example.com")

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		group := f.createGroup(t, a, "Group")
		assert.False(t, seen[group.InviteCode], "invite code reused")
		seen[group.InviteCode] = true
	}
}

func TestCurrentFamilyGroupWithoutGroup(t *testing.T) {
	f := newFixture(t)
	a := f.register(t, "Ann", "ann@example.com")

	_, err := f.families.CurrentFamilyGroup(context.Background(), f.current(t, a))
	assert.ErrorIs(t, err, ErrNoFamilyGroup)
}

func TestInviteByEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "Ann", "ann@example.com")

	err := f.families.InviteByEmail(ctx, f.current(t, a), InviteInput{Email: "gran@example.com"})
	assert.ErrorIs(t, err, ErrNoFamilyGroup)

	group := f.createGroup(t, a, "Smith")
	require.NoError(t, f.families.InviteByEmail(ctx, f.current(t, a), InviteInput{Email: "gran@example.com"}))
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, sentInvite{"gran@example.com", "Ann", "Smith", group.InviteCode}, f.mailer.sent[0])

	err = f.families.InviteByEmail(ctx, f.current(t, a), InviteInput{Email: "not-an-email"})
	assert.Equal(t, KindValidation, KindOf(err))

	f.mailer.enabled = false
	err = f.families.InviteByEmail(ctx, f.current(t, a), InviteInput{Email: "gran@example.com"})
	assert.ErrorIs(t, err, ErrMailDisabled)
}
