package store

import (
	"context"
	"errors"
)

// RecentlyViewedCap bounds the recently viewed list.
const RecentlyViewedCap = 10

// Predefined errors for store operations
var (
	ErrEmptyProfile   = errors.New("store: profile name is required")
	ErrEmptyProductID = errors.New("store: product id is required")
	ErrUnknownBackend = errors.New("store: unknown storage backend")
)

// PreferenceStorer persists the small amount of client state that lives
// outside the API: the language preference, the recently viewed product ids
// (most recent first) and the auth token used to hydrate a session.
type PreferenceStorer interface {
	Language(ctx context.Context) (string, error)
	SetLanguage(ctx context.Context, lang string) error

	RecentlyViewed(ctx context.Context) ([]string, error)
	PushRecentlyViewed(ctx context.Context, productID string) ([]string, error) // Returns the updated list

	AuthToken(ctx context.Context) (string, error)
	SetAuthToken(ctx context.Context, token string) error
	ClearAuthToken(ctx context.Context) error

	Close() error
}

// pushRecent moves id to the front of list, drops duplicates and caps the
// result at RecentlyViewedCap.
func pushRecent(list []string, id string) []string {
	out := make([]string, 0, RecentlyViewedCap)
	out = append(out, id)
	for _, existing := range list {
		if len(out) == RecentlyViewedCap {
			break
		}
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
