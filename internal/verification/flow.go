// Package verification drives the email verification step that follows
// registration: AwaitingCode until a correct code is submitted, then Verified.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gaming-storefront/internal/apiclient"
	"gaming-storefront/internal/domain"
	"gaming-storefront/internal/i18n"
	"gaming-storefront/internal/notify"
)

// State of a Flow.
type State string

const (
	AwaitingCode State = "awaiting_code"
	Verified     State = "verified"
)

// CodeLength is the number of digits in a verification code.
const CodeLength = 6

var (
	// ErrInvalidCode is returned for codes that are not six digits; nothing is sent.
	ErrInvalidCode = errors.New("verification: code must be 6 digits")
	// ErrCooldownActive is returned by Resend while the server window is open.
	ErrCooldownActive = apiclient.ErrCooldownActive
)

// API is the identity slice of the catalog API used by the flow.
type API interface {
	VerifyEmail(ctx context.Context, in apiclient.VerifyInput) (*apiclient.AuthResponse, error)
	ResendCode(ctx context.Context, in apiclient.ResendInput) (*apiclient.PendingVerification, error)
}

// Establisher installs the session once the email is verified.
type Establisher interface {
	Establish(ctx context.Context, token string, user domain.User) error
}

// Option configures a Flow.
type Option func(*Flow)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// Flow is one verification attempt for one email address. The resend
// deadline is set only from cooldowns reported by the server.
type Flow struct {
	api      API
	session  Establisher
	notifier notify.Notifier
	email    string
	now      func() time.Time
	logger   *log.Logger

	mu       sync.Mutex
	state    State
	attempts int
	deadline time.Time
	user     *domain.User
}

// New starts a flow for email. cooldownSeconds is what the register (or a
// previous resend) response reported.
func New(api API, session Establisher, notifier notify.Notifier, email string, cooldownSeconds int, opts ...Option) *Flow {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	f := &Flow{
		api:      api,
		session:  session,
		notifier: notifier,
		email:    email,
		now:      time.Now,
		logger:   log.Default(),
		state:    AwaitingCode,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.adoptCooldown(cooldownSeconds)
	return f
}

func (f *Flow) adoptCooldown(seconds int) {
	if seconds < 0 {
		seconds = 0
	}
	f.mu.Lock()
	f.deadline = f.now().Add(time.Duration(seconds) * time.Second)
	f.mu.Unlock()
}

// Email is the address being verified.
func (f *Flow) Email() string { return f.email }

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Attempts counts codes sent to the server. There is no lockout.
func (f *Flow) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// Remaining is the time until Resend is allowed, rounded up to whole seconds.
func (f *Flow) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	left := f.deadline.Sub(f.now())
	if left <= 0 {
		return 0
	}
	return (left + time.Second - 1) / time.Second * time.Second
}

// User is the verified user, once Verified.
func (f *Flow) User() (domain.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.user == nil {
		return domain.User{}, false
	}
	return *f.user, true
}

func validCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Submit sends code for verification. On success the session is established
// and the flow becomes Verified.
func (f *Flow) Submit(ctx context.Context, code string) error {
	if f.State() == Verified {
		return nil
	}
	if !validCode(code) {
		f.notifier.Error(i18n.MsgVerifyInvalidCode)
		return ErrInvalidCode
	}

	f.mu.Lock()
	f.attempts++
	attempt := f.attempts
	f.mu.Unlock()

	res, err := f.api.VerifyEmail(ctx, apiclient.VerifyInput{Email: f.email, Code: code})
	if err != nil {
		if secs, ok := apiclient.CooldownFrom(err); ok {
			f.adoptCooldown(secs)
		}
		f.logger.Printf("WARN: verification: attempt %d for %s failed: %v", attempt, f.email, err)
		f.notifier.Error(i18n.MsgVerifyFailed)
		return err
	}
	if err := f.session.Establish(ctx, res.Token, res.User); err != nil {
		f.notifier.Error(i18n.MsgRequestFailed)
		return fmt.Errorf("verification: establish session: %w", err)
	}

	f.mu.Lock()
	f.state = Verified
	user := res.User
	f.user = &user
	f.mu.Unlock()
	f.notifier.Success(i18n.MsgVerifySucceeded)
	return nil
}

// Resend asks the server for a new code. While the cooldown is running it
// returns ErrCooldownActive without a request.
func (f *Flow) Resend(ctx context.Context) error {
	if left := f.Remaining(); left > 0 {
		f.notifier.Error(i18n.MsgResendWait, int(left/time.Second))
		return ErrCooldownActive
	}
	res, err := f.api.ResendCode(ctx, apiclient.ResendInput{Email: f.email})
	if err != nil {
		if secs, ok := apiclient.CooldownFrom(err); ok {
			f.adoptCooldown(secs)
			f.notifier.Error(i18n.MsgResendWait, secs)
			return err
		}
		f.notifier.Error(i18n.MsgRequestFailed)
		return err
	}
	f.adoptCooldown(res.CooldownSeconds)
	f.notifier.Success(i18n.MsgCodeResent)
	return nil
}
