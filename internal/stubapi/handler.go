// Package stubapi is an in-memory reference implementation of the Remote
// Catalog Service. The storefront client talks to it in development and in
// contract tests.
package stubapi

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"gaming-storefront/internal/apiclient"
)

// Options configures a Handler.
type Options struct {
	JWTSecret      string
	TokenTTL       time.Duration
	ResendCooldown time.Duration
	Logger         *log.Logger
	// Now replaces time.Now for cooldown and order timestamps.
	Now func() time.Time
	// DeliverCode receives every verification code issued. The default logs it.
	DeliverCode func(email, code string)
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	mem      *Memory
	validate *validator.Validate
	opts     Options
	logger   *log.Logger

	limMu    sync.Mutex
	limiters map[string]*rate.Limiter

	replays *replayCache
}

// NewHandler creates a new Handler over mem.
func NewHandler(mem *Memory, opts Options) *Handler {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.ResendCooldown <= 0 {
		opts.ResendCooldown = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if opts.DeliverCode == nil {
		opts.DeliverCode = func(email, code string) {
			logger.Printf("INFO: Verification code for %s: %s", email, code)
		}
	}
	return &Handler{
		mem:      mem,
		validate: validator.New(),
		opts:     opts,
		logger:   opts.Logger,
		limiters: map[string]*rate.Limiter{},
		replays:  newReplayCache(1024),
	}
}

// Memory exposes the backing state (seeding, tests).
func (h *Handler) Memory() *Memory { return h.mem }

// --- Helpers ---

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, apiclient.ErrorResponse{Error: message})
}

// respondWithCode adds a machine-readable code to the error body.
func respondWithCode(w http.ResponseWriter, status int, code, message string, cooldownSeconds int) {
	respondWithJSON(w, status, apiclient.ErrorResponse{Error: message, Code: code, CooldownSeconds: cooldownSeconds})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// decode reads and validates a JSON body, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return false
	}
	return true
}

// --- Route Registration ---

// RegisterRoutes mounts every endpoint under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Health)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{productId}", h.GetProduct)
			r.Group(func(r chi.Router) {
				r.Use(h.requireUser, h.requireAdmin)
				r.Post("/", h.CreateProduct)
				r.Put("/{productId}", h.UpdateProduct)
				r.Delete("/{productId}", h.DeleteProduct)
			})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/verify-email", h.VerifyEmail)
			r.Post("/resend-code", h.ResendCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireUser, h.idempotent)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/", h.AddToCart)
				r.Delete("/", h.ClearCart)
				r.Put("/{itemId}", h.UpdateCartItem)
				r.Delete("/{itemId}", h.RemoveCartItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", h.GetWishlist)
				r.Post("/", h.AddToWishlist)
				r.Delete("/{productId}", h.RemoveFromWishlist)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.PlaceOrder)
				r.Get("/", h.ListOrders)
				r.Get("/{orderId}", h.GetOrder)
				r.Patch("/{orderId}/cancel", h.CancelOrder)
			})
		})
	})
	h.logger.Println("INFO: Catalog API routes registered under /api")
}
