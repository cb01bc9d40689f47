package session

import (
	"context"

	"gaming-storefront/internal/apiclient"
)

// Authenticator is the identity slice of the catalog API.
type Authenticator interface {
	Login(ctx context.Context, in apiclient.LoginInput) (*apiclient.AuthResponse, error)
	Register(ctx context.Context, in apiclient.RegisterInput) (*apiclient.PendingVerification, error)
}

// Login authenticates and establishes the session.
func (h *Holder) Login(ctx context.Context, api Authenticator, email, password string) error {
	res, err := api.Login(ctx, apiclient.LoginInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	return h.Establish(ctx, res.Token, res.User)
}

// Register creates an account. No session exists until the email is
// verified; the caller continues with a verification flow.
func (h *Holder) Register(ctx context.Context, api Authenticator, name, email, password string) (*apiclient.PendingVerification, error) {
	return api.Register(ctx, apiclient.RegisterInput{Name: name, Email: email, Password: password})
}
