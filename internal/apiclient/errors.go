package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by every component that talks to the catalog API.
// Local precondition failures (OutOfStock, InvalidQuantity) use the same
// sentinels so callers branch on one set of values.
var (
	ErrUnauthenticated = errors.New("apiclient: authentication required")
	ErrForbidden       = errors.New("apiclient: not allowed")
	ErrNotFound        = errors.New("apiclient: resource not found")
	ErrOutOfStock      = errors.New("apiclient: product out of stock")
	ErrInvalidQuantity = errors.New("apiclient: invalid quantity")
	ErrCooldownActive  = errors.New("apiclient: cooldown active")
	ErrInvalidInput    = errors.New("apiclient: invalid input")
	ErrRequestFailed   = errors.New("apiclient: request failed") // network or server error
)

// Error codes the API may place in the "code" field of an error body.
const (
	CodeOutOfStock      = "out_of_stock"
	CodeInvalidQuantity = "invalid_quantity"
	CodeInvalidCode     = "invalid_code"
	CodeCooldown        = "cooldown"
	CodeNotVerified     = "email_not_verified"
)

// ErrorResponse is the JSON error body returned by the API.
type ErrorResponse struct {
	Error           string `json:"error"`
	Code            string `json:"code,omitempty"`
	CooldownSeconds int    `json:"cooldownSeconds,omitempty"`
}

// APIError is a non-2xx response.
type APIError struct {
	Method          string
	Path            string
	Status          int
	Code            string
	Message         string
	CooldownSeconds int
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("apiclient: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Is maps the response onto the taxonomy sentinels. Every APIError is also
// an ErrRequestFailed.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrRequestFailed:
		return true
	case ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrOutOfStock:
		return e.Code == CodeOutOfStock
	case ErrInvalidQuantity:
		return e.Code == CodeInvalidQuantity
	case ErrCooldownActive:
		return e.Status == http.StatusTooManyRequests || e.Code == CodeCooldown
	case ErrInvalidInput:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// CooldownFrom extracts a server-reported cooldown from err, if any.
func CooldownFrom(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.CooldownSeconds > 0 {
		return apiErr.CooldownSeconds, true
	}
	return 0, false
}
