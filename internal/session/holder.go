// Package session is the process-wide Session/Identity Holder. Its lifecycle
// is explicit: New on start-up, Hydrate from the persisted token, Establish
// on login or verification, Logout to tear down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/authtoken"
	"gaming-storefront/internal/domain"
)

// ErrUnauthenticated is returned by RequireAuth when nobody is logged in.
// It is the same value as the API taxonomy sentinel.
var ErrUnauthenticated = apiclient.ErrUnauthenticated

// TokenStore persists the auth token between runs.
type TokenStore interface {
	AuthToken(ctx context.Context) (string, error)
	SetAuthToken(ctx context.Context, token string) error
	ClearAuthToken(ctx context.Context) error
}

// Holder tracks the current user. The token is read by every mutating API
// call and written only by Establish and Logout.
type Holder struct {
	mu     sync.RWMutex
	token  string
	user   *domain.User
	tokens TokenStore
	logger *log.Logger
	now    func() time.Time
}

// New creates an anonymous Holder. tokens may be nil for a non-persistent
// session.
func New(tokens TokenStore, logger *log.Logger) *Holder {
	if logger == nil {
		logger = log.Default()
	}
	return &Holder{tokens: tokens, logger: logger, now: time.Now}
}

// Hydrate restores the session from the persisted token. Expired or
// unreadable tokens are discarded and the holder stays anonymous.
func (h *Holder) Hydrate(ctx context.Context) error {
	if h.tokens == nil {
		return nil
	}
	tok, err := h.tokens.AuthToken(ctx)
	if err != nil {
		return fmt.Errorf("session: read persisted token: %w", err)
	}
	if tok == "" {
		return nil
	}
	claims, err := authtoken.Inspect(tok, h.now())
	if err != nil {
		h.logger.Printf("INFO: Discarding persisted session token: %v", err)
		if clearErr := h.tokens.ClearAuthToken(ctx); clearErr != nil {
			return fmt.Errorf("session: clear stale token: %w", clearErr)
		}
		return nil
	}
	user := claims.User()
	h.mu.Lock()
	h.token = tok
	h.user = &user
	h.mu.Unlock()
	h.logger.Printf("INFO: Session restored for %s", user.Email)
	return nil
}

// Establish installs a new session and persists its token.
func (h *Holder) Establish(ctx context.Context, token string, user domain.User) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	h.mu.Lock()
	h.token = token
	h.user = &user
	h.mu.Unlock()
	if h.tokens != nil {
		if err := h.tokens.SetAuthToken(ctx, token); err != nil {
			return fmt.Errorf("session: persist token: %w", err)
		}
	}
	return nil
}

// Logout clears the in-memory session and the persisted token.
func (h *Holder) Logout(ctx context.Context) error {
	h.mu.Lock()
	h.token = ""
	h.user = nil
	h.mu.Unlock()
	if h.tokens != nil {
		if err := h.tokens.ClearAuthToken(ctx); err != nil {
			return fmt.Errorf("session: clear token: %w", err)
		}
	}
	return nil
}

// Token implements apiclient.TokenSource.
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// User returns the current user, if any.
func (h *Holder) User() (domain.User, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.user == nil {
		return domain.User{}, false
	}
	return *h.user, true
}

func (h *Holder) IsAuthenticated() bool {
	return h.Token() != ""
}

func (h *Holder) IsAdmin() bool {
	u, ok := h.User()
	return ok && u.IsAdmin()
}

// RequireAuth gates mutating actions.
func (h *Holder) RequireAuth() error {
	if !h.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return nil
}
