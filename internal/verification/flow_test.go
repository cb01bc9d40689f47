package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
	"gaming-storefront/internal/session"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) VerifyEmail(ctx context.Context, in apiclient.VerifyInput) (*apiclient.AuthResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.AuthResponse), args.Error(1)
}

func (m *MockAPI) ResendCode(ctx context.Context, in apiclient.ResendInput) (*apiclient.PendingVerification, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.PendingVerification), args.Error(1)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

const email = "lina@example.com"

var lina = domain.User{ID: "u-1", Name: "Lina", Email: email, Role: domain.RoleUser, EmailVerified: true}

func wrongCode() error {
	return &apiclient.APIError{Status: 400, Code: apiclient.CodeInvalidCode, Message: "invalid code"}
}

func TestSubmit_FourthAttemptAfterThreeFailures(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	holder := session.New(nil, nil)
	rec := &notify.Recorder{}

	api.On("VerifyEmail", mock.Anything, apiclient.VerifyInput{Email: email, Code: "000000"}).
		Return(nil, wrongCode()).Times(3)
	api.On("VerifyEmail", mock.Anything, apiclient.VerifyInput{Email: email, Code: "123456"}).
		Return(&apiclient.AuthResponse{Token: "tok-1", User: lina}, nil).Once()

	f := New(api, holder, rec, email, 60)
	for i := 0; i < 3; i++ {
		err := f.Submit(ctx, "000000")
		assert.ErrorIs(t, err, apiclient.ErrInvalidInput)
		assert.Equal(t, AwaitingCode, f.State())
	}

	require.NoError(t, f.Submit(ctx, "123456"))
	assert.Equal(t, Verified, f.State())
	assert.Equal(t, 4, f.Attempts())
	assert.True(t, holder.IsAuthenticated())
	assert.Equal(t, "tok-1", holder.Token())

	u, ok := f.User()
	require.True(t, ok)
	assert.Equal(t, "u-1", u.ID)
	assert.Len(t, rec.Errors(), 3)
	api.AssertExpectations(t)
}

func TestSubmit_MalformedCodeSendsNothing(t *testing.T) {
	api := new(MockAPI)
	rec := &notify.Recorder{}
	f := New(api, session.New(nil, nil), rec, email, 0)

	for _, code := range []string{"", "12345", "1234567", "12a456", " 23456"} {
		assert.ErrorIs(t, f.Submit(context.Background(), code), ErrInvalidCode, code)
	}
	assert.Equal(t, 0, f.Attempts())
	assert.Equal(t, i18n.MsgVerifyInvalidCode, rec.Errors()[0])
	api.AssertNotCalled(t, "VerifyEmail", mock.Anything, mock.Anything)
}

func TestResend_BlockedWhileCoolingDown(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	api := new(MockAPI)
	rec := &notify.Recorder{}

	f := New(api, session.New(nil, nil), rec, email, 60, WithClock(clock.Now))
	assert.Equal(t, 60*time.Second, f.Remaining())

	clock.Advance(15 * time.Second)
	assert.ErrorIs(t, f.Resend(ctx), ErrCooldownActive)
	assert.Equal(t, 45*time.Second, f.Remaining())
	api.AssertNotCalled(t, "ResendCode", mock.Anything, mock.Anything)

	clock.Advance(45 * time.Second)
	api.On("ResendCode", mock.Anything, apiclient.ResendInput{Email: email}).
		Return(&apiclient.PendingVerification{Email: email, CooldownSeconds: 90}, nil).Once()
	require.NoError(t, f.Resend(ctx))
	assert.Equal(t, 90*time.Second, f.Remaining())
	api.AssertExpectations(t)
}

func TestResend_AdoptsServerCooldownOnRejection(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	api := new(MockAPI)
	rec := &notify.Recorder{}

	// A freshly opened flow knows nothing of the server window.
	f := New(api, session.New(nil, nil), rec, email, 0, WithClock(clock.Now))
	api.On("ResendCode", mock.Anything, apiclient.ResendInput{Email: email}).
		Return(nil, &apiclient.APIError{Status: 429, Code: apiclient.CodeCooldown, CooldownSeconds: 42}).Once()

	err := f.Resend(ctx)
	assert.ErrorIs(t, err, ErrCooldownActive)
	assert.Equal(t, 42*time.Second, f.Remaining())
	assert.Equal(t, []string{i18n.MsgResendWait}, rec.Errors())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 42*time.Second, f.Remaining())
	assert.ErrorIs(t, f.Resend(ctx), ErrCooldownActive)
	api.AssertExpectations(t)
}
