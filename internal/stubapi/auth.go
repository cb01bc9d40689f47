package stubapi

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/authtoken"
	"gaming-storefront/internal/domain"
)

func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// limiter returns the resend limiter of email: one code per cooldown window.
func (h *Handler) limiter(email string) *rate.Limiter {
	h.limMu.Lock()
	defer h.limMu.Unlock()
	key := emailKey(email)
	l, ok := h.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(h.opts.ResendCooldown), 1)
		h.limiters[key] = l
	}
	return l
}

// cooldownLeft is the whole seconds until email may receive another code.
func (h *Handler) cooldownLeft(email string, now time.Time) int {
	l := h.limiter(email)
	tokens := l.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	secs := (1 - tokens) / float64(l.Limit())
	return int(math.Ceil(secs - 1e-6))
}

func (h *Handler) cooldownSeconds() int {
	return int(math.Ceil(h.opts.ResendCooldown.Seconds()))
}

func (h *Handler) issue(w http.ResponseWriter, status int, user domain.User) {
	tok, err := authtoken.Issue(h.opts.JWTSecret, user, h.opts.TokenTTL, h.opts.Now())
	if err != nil {
		h.logger.Printf("ERROR: Issuing token for %s failed: %v", user.Email, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	respondWithJSON(w, status, apiclient.AuthResponse{Token: tok, User: user})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input apiclient.LoginInput
	if !h.decode(w, r, &input) {
		return
	}
	user, err := h.mem.Authenticate(input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotVerified):
			respondWithCode(w, http.StatusForbidden, apiclient.CodeNotVerified, err.Error(), h.cooldownLeft(input.Email, h.opts.Now()))
		default:
			respondWithError(w, http.StatusUnauthorized, ErrBadCredentials.Error())
		}
		return
	}
	h.issue(w, http.StatusOK, user)
}

// Register handles POST /api/auth/register. The account stays unverified
// until the emailed code is submitted.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input apiclient.RegisterInput
	if !h.decode(w, r, &input) {
		return
	}
	code, err := newCode()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate code")
		return
	}
	user, err := h.mem.CreateAccount(input.Name, input.Email, input.Password, domain.RoleUser, code)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondWithError(w, http.StatusConflict, err.Error())
		} else {
			h.logger.Printf("ERROR: Register for %s failed: %v", input.Email, err)
			respondWithError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}
	h.limiter(user.Email).AllowN(h.opts.Now(), 1)
	h.opts.DeliverCode(user.Email, code)
	respondWithJSON(w, http.StatusCreated, apiclient.PendingVerification{
		Email:           user.Email,
		CooldownSeconds: h.cooldownSeconds(),
	})
}

// VerifyEmail handles POST /api/auth/verify-email. Failed attempts are not
// limited; every response reports the remaining resend cooldown.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var input apiclient.VerifyInput
	if !h.decode(w, r, &input) {
		return
	}
	user, err := h.mem.Verify(input.Email, input.Code)
	if err != nil {
		left := h.cooldownLeft(input.Email, h.opts.Now())
		switch {
		case errors.Is(err, ErrInvalidCode):
			respondWithCode(w, http.StatusBadRequest, apiclient.CodeInvalidCode, err.Error(), left)
		case errors.Is(err, ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to verify email")
		}
		return
	}
	h.issue(w, http.StatusOK, user)
}

// ResendCode handles POST /api/auth/resend-code. Inside the cooldown window
// it answers 429 with the seconds left.
func (h *Handler) ResendCode(w http.ResponseWriter, r *http.Request) {
	var input apiclient.ResendInput
	if !h.decode(w, r, &input) {
		return
	}
	now := h.opts.Now()
	if left := h.cooldownLeft(input.Email, now); left > 0 {
		respondWithCode(w, http.StatusTooManyRequests, apiclient.CodeCooldown,
			fmt.Sprintf("Please wait %d seconds before requesting a new code", left), left)
		return
	}
	code, err := newCode()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to generate code")
		return
	}
	if err := h.mem.ReplaceCode(input.Email, code); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	h.limiter(input.Email).AllowN(now, 1)
	h.opts.DeliverCode(emailKey(input.Email), code)
	respondWithJSON(w, http.StatusOK, apiclient.PendingVerification{
		Email:           emailKey(input.Email),
		CooldownSeconds: h.cooldownSeconds(),
	})
}
