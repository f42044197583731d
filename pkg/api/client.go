package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// apiPrefix is the versioned path every request is made under.
	apiPrefix = "/api/v1/"

	defaultRequestsPerSecond = 10
	defaultRequestTimeout    = 30 * time.Second
)

// Config holds the process-wide connection settings for a Tower server.
// It is immutable after the Client is constructed.
type Config struct {
	// Host is the Tower server, with or without a scheme.
	// A bare host defaults to https.
	Host string

	// Username and Password are sent as HTTP basic auth on every request.
	Username string
	Password string

	// Insecure disables TLS certificate verification.
	Insecure bool

	// RequestTimeout bounds each individual HTTP request.
	RequestTimeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero uses a default.
	RequestsPerSecond float64
}

// Client makes requests to the Tower API and classifies responses into
// typed outcomes. It is stateless per request aside from shared config
// and safe for concurrent use.
type Client struct {
	cfg     Config
	prefix  string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger

	// invocationID correlates all requests made by one CLI invocation.
	invocationID string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects the underlying HTTP client. Tests use this to
// point the adapter at a fake Tower server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request/response debug logging.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a Client for the given connection settings.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("%w: tower host is required", ErrValidation)
	}
	if !strings.Contains(host, "://") {
		host = "https://" + strings.Trim(host, "/")
	}
	host = strings.TrimRight(host, "/")
	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("%w: invalid tower host %q: %v", ErrValidation, cfg.Host, err)
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	c := &Client{
		cfg:          cfg,
		prefix:       host + apiPrefix,
		limiter:      rate.NewLimiter(rate.Limit(rps), 1),
		log:          zap.NewNop(),
		invocationID: uuid.New().String(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		transport := http.DefaultTransport
		if cfg.Insecure {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		c.http = &http.Client{Timeout: timeout, Transport: transport}
	}
	return c, nil
}

// InvocationID returns the correlation id for this client instance.
func (c *Client) InvocationID() string {
	return c.invocationID
}

// Prefix returns the full URL prefix requests are made under.
func (c *Client) Prefix() string {
	return c.prefix
}

// Response is a classified successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into an ordered map.
func (r *Response) JSON() (*OrderedMap, error) {
	m := NewOrderedMap()
	if err := json.Unmarshal(r.Body, m); err != nil {
		return nil, fmt.Errorf("decode response body: %w", err)
	}
	return m, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, params)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, data map[string]any) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, data, nil)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, data map[string]any) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, path, data, nil)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, data map[string]any) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, data, nil)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

// Request makes a request against the Tower API and classifies the response.
//
// path is relative to the api/v1 prefix. For mutating methods, data is
// serialized as JSON (an empty object when nil). There are no automatic
// retries; a failed request is a failed operation.
func (c *Client) Request(ctx context.Context, method, path string, data map[string]any, params url.Values) (*Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := c.prefix + strings.TrimLeft(path, "/")

	var body []byte
	mutating := method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
	if mutating {
		if data == nil {
			data = map[string]any{}
		}
		var err error
		body, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if params != nil {
		req.URL.RawQuery = params.Encode()
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	if mutating {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debug("Tower API request",
		zap.String("invocation_id", c.invocationID),
		zap.String("method", method),
		zap.String("url", req.URL.String()),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServer, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug("Tower API response",
		zap.String("invocation_id", c.invocationID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(respBody)),
	)

	if err := classify(method, path, resp.StatusCode, params, body, respBody); err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// classify maps an HTTP status code onto the error taxonomy.
func classify(method, path string, status int, params url.Values, reqBody, respBody []byte) error {
	var kind error
	switch {
	case status < 400:
		return nil
	case status >= 500:
		kind = ErrServer
	case status == 401:
		kind = ErrAuth
	case status == 403:
		kind = ErrForbidden
	case status == 404:
		kind = ErrNotFound
	case status == 405:
		kind = ErrMethodNotAllowed
	default:
		kind = ErrBadRequest
	}

	reqErr := &RequestError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Err:        kind,
	}
	if kind == ErrBadRequest {
		if params != nil {
			reqErr.Params = params.Encode()
		}
		reqErr.Body = string(reqBody)
		reqErr.Response = string(respBody)
	}
	return reqErr
}
