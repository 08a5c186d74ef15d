package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"giftcircle/internal/models"
	"giftcircle/internal/repository/memstore"
	"giftcircle/internal/session"
	"giftcircle/pkg/logger"
)

type fixture struct {
	store    *memstore.Store
	sessions *session.MemoryStore
	mailer   *fakeMailer

	auth       *AuthService
	families   *FamilyService
	wishlists  *WishlistService
	activities *ActivityService
	notes      *NoteService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithOptions(t, false)
}

func newFixtureWithOptions(t *testing.T, hideFromOwner bool) *fixture {
	t.Helper()
	log := logger.Discard()
	store := memstore.New()
	sessions := session.NewMemoryStore(time.Hour)
	mailer := &fakeMailer{enabled: true}

	return &fixture{
		store:      store,
		sessions:   sessions,
		mailer:     mailer,
		auth:       NewAuthService(store, sessions, log),
		families:   NewFamilyService(store, sessions, mailer, log),
		wishlists:  NewWishlistService(store, log, nil, hideFromOwner),
		activities: NewActivityService(store, log, hideFromOwner),
		notes:      NewNoteService(store, log),
	}
}

// member is a registered user and their live session
type member struct {
	token string
	user  models.PublicUser
}

func (f *fixture) register(t *testing.T, name, email string) *member {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{Name: name, Email: email, Password: "password123"})
	require.NoError(t, err)
	return &member{token: res.SessionID, user: res.User}
}

// current re-reads the member's session, as the next request would
func (f *fixture) current(t *testing.T, m *member) models.PublicUser {
	t.Helper()
	user, err := f.auth.Authenticate(context.Background(), m.token)
	require.NoError(t, err)
	return *user
}

func (f *fixture) createGroup(t *testing.T, m *member, name string) *models.FamilyGroup {
	t.Helper()
	res, err := f.families.CreateFamilyGroup(context.Background(), m.token, f.current(t, m), CreateFamilyGroupInput{Name: name})
	require.NoError(t, err)
	m.token = res.SessionID
	return res.Group
}

func (f *fixture) join(t *testing.T, m *member, code string) {
	t.Helper()
	res, err := f.families.JoinFamilyGroup(context.Background(), m.token, f.current(t, m), JoinFamilyGroupInput{InviteCode: code})
	require.NoError(t, err)
	m.token = res.SessionID
}

func (f *fixture) addItem(t *testing.T, m *member, name string) *models.WishlistItem {
	t.Helper()
	item, err := f.wishlists.CreateItem(context.Background(), f.current(t, m), ItemInput{Name: name})
	require.NoError(t, err)
	return item
}

type sentInvite struct {
	to, inviter, group, code string
}

type fakeMailer struct {
	mu      sync.Mutex
	enabled bool
	sent    []sentInvite
}

func (m *fakeMailer) IsEnabled() bool { return m.enabled }

func (m *fakeMailer) SendFamilyInviteEmail(_ context.Context, toEmail, inviterName, groupName, inviteCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentInvite{toEmail, inviterName, groupName, inviteCode})
	return nil
}
