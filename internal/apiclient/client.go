// Package apiclient is the HTTP client of the Remote Catalog Service. It is
// the only place the storefront touches the network.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies the bearer token for the current session; "" means
// anonymous.
type TokenSource interface {
	Token() string
}

// Config holds client settings.
type Config struct {
	BaseURL    string        // e.g. http://localhost:5000/api
	Timeout    time.Duration // per request; 0 means 10s
	HTTPClient *http.Client
	Tokens     TokenSource
	Logger     *log.Logger
}

// Client calls the catalog API. It never retries: a failed request is a
// terminal failure for that user action.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	tokens     TokenSource
	logger     *log.Logger
	validate   *validator.Validate
}

// New creates a Client with the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("apiclient: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("apiclient: invalid base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		timeout:    timeout,
		tokens:     cfg.Tokens,
		logger:     logger,
		validate:   validator.New(),
	}, nil
}

// check runs struct validation and maps failures onto ErrInvalidInput.
func (c *Client) check(v interface{}) error {
	if err := c.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// do performs one request. body and out may be nil. Each call gets its own
// deadline so a hung request cannot leave its control loading forever.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		// Lets the server collapse a duplicate delivery of the same action.
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("WARN: apiclient: %s %s failed: %v", method, path, err)
		return fmt.Errorf("apiclient: %s %s: %w: %w", method, path, ErrRequestFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, Status: res.StatusCode}
		var errBody ErrorResponse
		if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&errBody); err == nil {
			apiErr.Message = errBody.Error
			apiErr.Code = errBody.Code
			apiErr.CooldownSeconds = errBody.CooldownSeconds
		}
		c.logger.Printf("WARN: apiclient: %s %s returned %d %s", method, path, res.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("apiclient: decode %s %s response: %w: %w", method, path, ErrRequestFailed, err)
	}
	return nil
}
