package cartsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

const maxResponseBytes = 1 << 20

// TokenSource supplies the current bearer credential; empty means none.
type TokenSource interface {
	Token() string
}

type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
	// BreakerFailures consecutive network failures open the breaker.
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration
}

// Client speaks the marketplace API envelope over HTTP. Network failures
// are counted by a circuit breaker; API rejections are not.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	breaker *gobreaker.CircuitBreaker[*envelope]
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     []string        `json:"errors"`
	StatusCode int             `json:"statusCode"`
}

func NewClient(cfg ClientConfig, tokens TokenSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
		Name:        "marketplace-api",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			var netErr *NetworkError
			return !errors.As(err, &netErr)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		breaker: breaker,
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Do sends body as JSON to path and decodes the envelope's data into out
// when out is non-nil. Errors are *ValidationError, ErrUnauthorized or
// *NetworkError.
func (c *Client) Do(ctx context.Context, op, method, path string, body, out interface{}) error {
	env, err := c.breaker.Execute(func() (*envelope, error) {
		return c.roundTrip(ctx, op, method, path, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &NetworkError{Op: op, Err: err}
		}
		return err
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("malformed response data: %w", err)}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decodeErr != nil {
			return nil, &NetworkError{Op: op, Err: fmt.Errorf("malformed response: %w", decodeErr)}
		}
		return &env, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusNotFound,
		resp.StatusCode == http.StatusConflict,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, &ValidationError{Op: op, StatusCode: resp.StatusCode, Message: env.Message, Details: env.Errors}
	default:
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, env.Message)}
	}
}
