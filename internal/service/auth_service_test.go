package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcircle/internal/models"
	"giftcircle/internal/repository/memstore"
	"giftcircle/internal/session"
	"giftcircle/pkg/logger"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Name: "  Ann  ", Email: "Ann@Example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.SessionID)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Nil(t, res.User.FamilyGroupID)

	stored, err := f.store.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "password123", stored.PasswordHash, "password must be hashed")

	_, err = f.auth.Register(ctx, RegisterInput{Name: "Other Ann", Email: "ann@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterWithoutEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.auth.Register(ctx, RegisterInput{Name: "Kid one", Password: "password123"})
	require.NoError(t, err)
	second, err := f.auth.Register(ctx, RegisterInput{Name: "Kid two", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, first.User.ID, second.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "password123"}},
		{"blank name", RegisterInput{Name: "   ", Password: "password123"}},
		{"bad email", RegisterInput{Name: "Ann", Email: "nope", Password: "password123"}},
		{"short password", RegisterInput{Name: "Ann", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "Ann", "ann@example.com")

	res, err := f.auth.Login(ctx, LoginInput{Email: "ANN@example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.user.ID, res.User.ID)
	assert.NotEqual(t, registered.token, res.SessionID, "each login opens a new session")

	_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Password: "password123"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := newFixture(t)
	m := f.register(t, "Ann", "ann@example.com")

	user, err := f.auth.Authenticate(context.Background(), m.token)
	require.NoError(t, err)
	assert.Equal(t, m.user.ID, user.ID)

	_, err = f.auth.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrAuthRequired)
	_, err = f.auth.Authenticate(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrAuthRequired)

	f.auth.Logout(m.token)
	_, err = f.auth.Authenticate(context.Background(), m.token)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestRegisterMultibytePasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)

	// 72 characters but 144 bytes
	_, err := f.auth.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@example.com", Password: strings.Repeat("é", 72)})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	stored, err := f.store.GetUserByEmail(context.Background(), "ann@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

// staleLookupStore misses existing emails, as a concurrent registration
// that has not committed yet would
type staleLookupStore struct {
	*memstore.Store
}

func (staleLookupStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}

func TestRegisterEmailTakenByConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	store := staleLookupStore{memstore.New()}
	auth := NewAuthService(store, session.NewMemoryStore(time.Hour), logger.Discard())

	_, err := auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, KindValidation, KindOf(err))
}
