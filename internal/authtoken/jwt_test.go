package authtoken

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/domain"
)

var testUser = domain.User{ID: "u-1", Name: "Lina", Email: "lina@example.com", Role: domain.RoleAdmin}

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	tok, err := Issue("s3cret", testUser, time.Hour, now)
	require.NoError(t, err)

	claims, err := Parse("s3cret", tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.User().Role)

	_, err = Parse("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Issue("", testUser, time.Hour, now)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Issue("s3cret", testUser, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = Parse("s3cret", tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestInspect(t *testing.T) {
	now := time.Now()
	tok, err := Issue("whatever", testUser, time.Hour, now)
	require.NoError(t, err)

	claims, err := Inspect(tok, now)
	require.NoError(t, err)
	assert.Equal(t, "lina@example.com", claims.User().Email)

	_, err = Inspect(tok, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrExpired)

	_, err = Inspect("garbage", now)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGetBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "", GetBearerToken(r))
	r.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", GetBearerToken(r))
	r.Header.Set("Authorization", "Basic abc")
	assert.Equal(t, "", GetBearerToken(r))
}
