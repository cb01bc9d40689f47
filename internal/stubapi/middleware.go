package stubapi

import (
	"bytes"
	"context"
	"net/http"
	"sync"

	"gaming-storefront/internal/authtoken"
	"gaming-storefront/internal/domain"
)

type ctxKey int

const userKey ctxKey = iota

func userFrom(ctx context.Context) domain.User {
	u, _ := ctx.Value(userKey).(domain.User)
	return u
}

// requireUser rejects requests without a valid bearer token.
func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := authtoken.GetBearerToken(r)
		if tok == "" {
			respondWithError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		claims, err := authtoken.Parse(h.opts.JWTSecret, tok)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), userKey, claims.User())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin must run after requireUser.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r.Context()).IsAdmin() {
			respondWithError(w, http.StatusForbidden, "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type replay struct {
	status int
	header http.Header
	body   []byte
}

// replayCache remembers POST responses by Idempotency-Key. When full it starts
// over rather than evicting one entry at a time.
type replayCache struct {
	mu      sync.Mutex
	limit   int
	entries map[string]replay
}

func newReplayCache(limit int) *replayCache {
	return &replayCache{limit: limit, entries: map[string]replay{}}
}

func (c *replayCache) get(key string) (replay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[key]
	return r, ok
}

func (c *replayCache) put(key string, r replay) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.limit {
		c.entries = map[string]replay{}
	}
	c.entries[key] = r
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// idempotent answers a repeated POST carrying the same Idempotency-Key with
// the first response instead of applying the action again. Keys are scoped
// to the authenticated user.
func (h *Handler) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if r.Method != http.MethodPost || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = userFrom(r.Context()).ID + "|" + r.URL.Path + "|" + key
		if prev, ok := h.replays.get(key); ok {
			for k, v := range prev.header {
				w.Header()[k] = v
			}
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(prev.status)
			w.Write(prev.body)
			return
		}
		rec := &recorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status >= 200 && rec.status < 300 {
			h.replays.put(key, replay{status: rec.status, header: w.Header().Clone(), body: rec.buf.Bytes()})
		}
	})
}
