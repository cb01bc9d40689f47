package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/authtoken"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/store"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, in apiclient.LoginInput) (*apiclient.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.AuthResponse), args.Error(1)
}

func (m *MockAuthenticator) Register(ctx context.Context, in apiclient.RegisterInput) (*apiclient.PendingVerification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.PendingVerification), args.Error(1)
}

var player = domain.User{ID: "u-7", Name: "Omar", Email: "omar@example.com", Role: domain.RoleUser}

func issue(t *testing.T, ttl time.Duration) string {
	tok, err := authtoken.Issue("k", player, ttl, time.Now())
	require.NoError(t, err)
	return tok
}

func TestHolder_StartsAnonymous(t *testing.T) {
	h := New(nil, nil)
	assert.False(t, h.IsAuthenticated())
	assert.ErrorIs(t, h.RequireAuth(), ErrUnauthenticated)
	_, ok := h.User()
	assert.False(t, ok)
}

func TestHolder_HydrateValidToken(t *testing.T) {
	ctx := context.Background()
	prefs := store.NewMemoryStore()
	tok := issue(t, time.Hour)
	require.NoError(t, prefs.SetAuthToken(ctx, tok))

	h := New(prefs, nil)
	require.NoError(t, h.Hydrate(ctx))

	assert.True(t, h.IsAuthenticated())
	assert.Equal(t, tok, h.Token())
	u, ok := h.User()
	require.True(t, ok)
	assert.Equal(t, "u-7", u.ID)
	assert.False(t, h.IsAdmin())
}

func TestHolder_HydrateDiscardsExpiredAndGarbage(t *testing.T) {
	ctx := context.Background()
	for name, tok := range map[string]string{
		"expired": issue(t, -time.Minute),
		"garbage": "not-a-jwt",
	} {
		t.Run(name, func(t *testing.T) {
			prefs := store.NewMemoryStore()
			require.NoError(t, prefs.SetAuthToken(ctx, tok))

			h := New(prefs, nil)
			require.NoError(t, h.Hydrate(ctx))
			assert.False(t, h.IsAuthenticated())

			persisted, err := prefs.AuthToken(ctx)
			require.NoError(t, err)
			assert.Empty(t, persisted)
		})
	}
}

func TestHolder_LoginAndLogout(t *testing.T) {
	ctx := context.Background()
	prefs := store.NewMemoryStore()
	api := new(MockAuthenticator)
	tok := issue(t, time.Hour)

	api.On("Login", mock.Anything, apiclient.LoginInput{Email: "omar@example.com", Password: "secret1"}).
		Return(&apiclient.AuthResponse{Token: tok, User: player}, nil).Once()

	h := New(prefs, nil)
	require.NoError(t, h.Login(ctx, api, "omar@example.com", "secret1"))
	assert.True(t, h.IsAuthenticated())
	persisted, _ := prefs.AuthToken(ctx)
	assert.Equal(t, tok, persisted)

	require.NoError(t, h.Logout(ctx))
	assert.False(t, h.IsAuthenticated())
	persisted, _ = prefs.AuthToken(ctx)
	assert.Empty(t, persisted)

	api.AssertExpectations(t)
}

func TestHolder_LoginFailureLeavesAnonymous(t *testing.T) {
	api := new(MockAuthenticator)
	api.On("Login", mock.Anything, mock.AnythingOfType("apiclient.LoginInput")).
		Return(nil, &apiclient.APIError{Status: 401}).Once()

	h := New(nil, nil)
	err := h.Login(context.Background(), api, "x@example.com", "badpass")
	assert.True(t, errors.Is(err, apiclient.ErrUnauthenticated))
	assert.False(t, h.IsAuthenticated())
}

func TestHolder_RegisterDoesNotEstablish(t *testing.T) {
	api := new(MockAuthenticator)
	api.On("Register", mock.Anything, mock.AnythingOfType("apiclient.RegisterInput")).
		Return(&apiclient.PendingVerification{Email: "new@example.com", CooldownSeconds: 60}, nil).Once()

	h := New(nil, nil)
	pending, err := h.Register(context.Background(), api, "New", "new@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 60, pending.CooldownSeconds)
	assert.False(t, h.IsAuthenticated())
}
