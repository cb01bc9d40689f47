package apiclient

import (
	"context"
	"net/http"

	"gaming-storefront/internal/domain"
)

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// VerifyInput is the body of POST /auth/verify-email.
type VerifyInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResendInput is the body of POST /auth/resend-code.
type ResendInput struct {
	Email string `json:"email" validate:"required,email"`
}

// AuthResponse establishes a session.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// PendingVerification is returned by register and resend. CooldownSeconds is
// the server-enforced wait before the next resend.
type PendingVerification struct {
	Email           string `json:"email"`
	CooldownSeconds int    `json:"cooldownSeconds"`
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, in LoginInput) (*AuthResponse, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account awaiting email verification.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*PendingVerification, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out PendingVerification
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyEmail submits a 6-digit code.
func (c *Client) VerifyEmail(ctx context.Context, in VerifyInput) (*AuthResponse, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-email", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResendCode asks for a new verification code.
func (c *Client) ResendCode(ctx context.Context, in ResendInput) (*PendingVerification, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out PendingVerification
	if err := c.do(ctx, http.MethodPost, "/auth/resend-code", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
