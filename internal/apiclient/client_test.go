package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/filter"
	"gaming-storefront/internal/stubapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newClient(t *testing.T, baseURL string, tok apiclient.TokenSource, timeout time.Duration) *apiclient.Client {
	c, err := apiclient.New(apiclient.Config{
		BaseURL: baseURL,
		Timeout: timeout,
		Tokens:  tok,
		Logger:  log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	return c
}

// setupStub starts the reference catalog service with the demo data.
func setupStub(t *testing.T) *httptest.Server {
	mem := stubapi.NewMemory()
	require.NoError(t, stubapi.Seed(mem, time.Now()))
	h := stubapi.NewHandler(mem, stubapi.Options{
		JWTSecret: "contract-secret",
		Logger:    log.New(io.Discard, "", 0),
	})
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, baseURL, email, password string) *apiclient.AuthResponse {
	res, err := newClient(t, baseURL, nil, 0).Login(context.Background(), apiclient.LoginInput{Email: email, Password: password})
	require.NoError(t, err)
	return res
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := apiclient.New(apiclient.Config{})
	assert.Error(t, err)
}

func TestClient_DefaultQueryAndPagination(t *testing.T) {
	srv := setupStub(t)
	c := newClient(t, srv.URL+"/api", nil, 0)

	page, err := c.ListProducts(context.Background(), filter.Default(), 12)
	require.NoError(t, err)
	assert.Len(t, page.Products, 12)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 2, page.Pagination.Pages)

	ps5 := filter.Default().Set(filter.KeyCategory, "PS5")
	page, err = c.ListProducts(context.Background(), ps5, 12)
	require.NoError(t, err)
	for _, p := range page.Products {
		assert.Equal(t, "PS5", p.Category)
	}
}

func TestClient_StatusToTaxonomy(t *testing.T) {
	srv := setupStub(t)
	base := srv.URL + "/api"
	ctx := context.Background()
	anon := newClient(t, base, nil, 0)

	_, err := anon.GetCart(ctx)
	assert.ErrorIs(t, err, apiclient.ErrUnauthenticated)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)

	_, err = anon.GetProduct(ctx, "does-not-exist")
	assert.ErrorIs(t, err, apiclient.ErrNotFound)

	player := login(t, base, stubapi.DemoUserEmail, stubapi.DemoUserPassword)
	c := newClient(t, base, staticToken(player.Token), 0)

	// prd-005 is seeded with zero stock.
	_, err = c.AddToCart(ctx, "prd-005", 1)
	assert.ErrorIs(t, err, apiclient.ErrOutOfStock)

	_, err = c.AddToCart(ctx, "prd-001", 999)
	assert.ErrorIs(t, err, apiclient.ErrInvalidQuantity)

	_, err = c.CreateProduct(ctx, apiclient.ProductInput{Name: domain.LocalizedText{En: "X"}, Price: 1, Category: "PC"})
	assert.ErrorIs(t, err, apiclient.ErrForbidden)

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}

func TestClient_LocalValidationSendsNothing(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls.Add(1) }))
	defer srv.Close()
	c := newClient(t, srv.URL, nil, 0)

	_, err := c.AddToCart(context.Background(), "prd-001", 0)
	assert.ErrorIs(t, err, apiclient.ErrInvalidInput)
	_, err = c.VerifyEmail(context.Background(), apiclient.VerifyInput{Email: "a@b.co", Code: "12ab56"})
	assert.ErrorIs(t, err, apiclient.ErrInvalidInput)
	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_Headers(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Clone())
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(domain.Cart{Items: []domain.CartItem{}})
	}))
	defer srv.Close()
	c := newClient(t, srv.URL, staticToken("tok-abc"), 0)

	_, err := c.GetCart(context.Background())
	require.NoError(t, err)
	_, err = c.AddToCart(context.Background(), "prd-001", 1)
	require.NoError(t, err)
	_, err = c.AddToCart(context.Background(), "prd-001", 1)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	for _, h := range seen {
		assert.Equal(t, "Bearer tok-abc", h.Get("Authorization"))
		_, err := uuid.Parse(h.Get("X-Request-ID"))
		assert.NoError(t, err)
	}
	assert.Empty(t, seen[0].Get("Idempotency-Key"))
	assert.NotEmpty(t, seen[1].Get("Idempotency-Key"))
	assert.NotEqual(t, seen[1].Get("Idempotency-Key"), seen[2].Get("Idempotency-Key"))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newClient(t, srv.URL, nil, 50*time.Millisecond)
	start := time.Now()
	_, err := c.GetProduct(context.Background(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_CooldownFromResend(t *testing.T) {
	srv := setupStub(t)
	c := newClient(t, srv.URL+"/api", nil, 0)
	ctx := context.Background()

	pending, err := c.Register(ctx, apiclient.RegisterInput{Name: "Nour", Email: "nour@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, 60, pending.CooldownSeconds)

	_, err = c.ResendCode(ctx, apiclient.ResendInput{Email: "nour@example.com"})
	assert.ErrorIs(t, err, apiclient.ErrCooldownActive)
	secs, ok := apiclient.CooldownFrom(err)
	require.True(t, ok)
	assert.InDelta(t, 60, secs, 1)
}
