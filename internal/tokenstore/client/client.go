// Package client implements the HTTP client of the remote token store.
//
// The store exposes two endpoints: GET /api/tokens returns the JSON array of
// currently valid tokens and POST /api/tokens/invalidate consumes one token.
// Every request is bounded by the configured timeout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/allisson/qrgate/internal/scan/domain"
)

const (
	listPath        = "/api/tokens"
	invalidatePath  = "/api/tokens/invalidate"
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 8 << 20
	userAgent       = "qrgate-kiosk"
)

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// APIKey is sent as a bearer token when not empty.
	APIKey string
	// HTTPClient overrides the default client; its own Timeout is left untouched.
	HTTPClient *http.Client
}

// Client talks to the remote token store.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	apiKey     string
}

// New validates the configuration and creates a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("token store base URL is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse token store URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported token store URL scheme %q", base.Scheme)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		timeout:    timeout,
		apiKey:     cfg.APIKey,
	}, nil
}

// BaseURL returns the configured store URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListTokens fetches the current set of valid tokens. Any transport failure,
// status other than 200 or payload that is not a JSON array of strings yields
// a *domain.FetchError.
func (c *Client) ListTokens(ctx context.Context) (domain.TokenSet, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, listPath, nil)
	if err != nil {
		return domain.TokenSet{}, &domain.FetchError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.TokenSet{}, &domain.FetchError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return domain.TokenSet{}, &domain.FetchError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return domain.TokenSet{}, &domain.FetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(body)),
		}
	}

	values, err := decodeTokenList(body)
	if err != nil {
		return domain.TokenSet{}, &domain.FetchError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("decode token list: %w", err),
		}
	}

	return domain.NewTokenSet(values), nil
}

// decodeTokenList accepts only a JSON array whose elements are all strings.
func decodeTokenList(body []byte) ([]string, error) {
	var raw []*string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("payload is null")
	}

	values := make([]string, len(raw))
	for i, v := range raw {
		if v == nil {
			return nil, fmt.Errorf("element %d is null", i)
		}
		values[i] = *v
	}
	return values, nil
}

type invalidateRequest struct {
	Token string `json:"token"`
}

// Invalidate asks the store to consume token. Only a 200 response is success.
// Failures are returned as *domain.InvalidateError. Ambiguous is set when the
// request was fully written before a transport failure, or when the store
// answered with another 2xx status, since the token may then be consumed
// without the kiosk learning about it.
func (c *Client) Invalidate(ctx context.Context, token domain.Token) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(invalidateRequest{Token: token.String()})
	if err != nil {
		return &domain.InvalidateError{Err: err}
	}

	var wrote atomic.Bool
	trace := &httptrace.ClientTrace{
		WroteRequest: func(info httptrace.WroteRequestInfo) {
			if info.Err == nil {
				wrote.Store(true)
			}
		},
	}
	ctx = httptrace.WithClientTrace(ctx, trace)

	req, err := c.newRequest(ctx, http.MethodPost, invalidatePath, bytes.NewReader(payload))
	if err != nil {
		return &domain.InvalidateError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.InvalidateError{Ambiguous: wrote.Load(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if resp.StatusCode != http.StatusOK {
		return &domain.InvalidateError{
			Status:    resp.StatusCode,
			Ambiguous: isAccepted(resp.StatusCode),
			Err:    fmt.Errorf("unexpected status %s: %s", resp.Status, bytes.TrimSpace(body)),
		}
	}

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return req, nil
}

func isAccepted(status int) bool {
	return status >= 200 && status < 300
}
