// Package apiclient calls a clinic portal's backend API on behalf of a
// tenant host. The base URL is derived from the host by the tenancy resolver.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wolfman30/clinic-tenancy/internal/tenancy"
	"github.com/wolfman30/clinic-tenancy/pkg/logging"
)

const defaultTimeout = 15 * time.Second

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apiclient: unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("apiclient: status %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// Client is a thin JSON client bound to one API base URL.
type Client struct {
	http    *resty.Client
	baseURL string
	logger  *logging.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends "Authorization: Token <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		if token == "" {
			return
		}
		c.http.SetAuthScheme("Token").SetAuthToken(token)
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithRetries retries transport failures up to n times with backoff.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.http.
			SetRetryCount(n).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second)
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for baseURL, e.g. "https://mindcare.example.com/api".
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForHost creates a client for the API that serves host.
func ForHost(resolver *tenancy.Resolver, host string, opts ...Option) *Client {
	return New(resolver.APIBaseURL(host), opts...)
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get decodes the JSON response of GET path into out. out may be nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, resty.MethodGet, path, nil, out)
}

// Post sends body as JSON and decodes the response into out. out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, resty.MethodPost, path, body, out)
}

// Tenant fetches the portal context the API reports for its own host.
func (c *Client) Tenant(ctx context.Context) (tenancy.TenantResponse, error) {
	var resp tenancy.TenantResponse
	err := c.Get(ctx, "/tenant", &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		// Error bodies are JSON but may be served as text/plain.
		var eb errorBody
		if json.Unmarshal(resp.Body(), &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		} else {
			apiErr.Message = strings.TrimSpace(resp.String())
		}
		c.logger.Warn("api request failed",
			"method", method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
		)
		return apiErr
	}
	return nil
}
