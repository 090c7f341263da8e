package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelospk/subfetch/internal/constants"
	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/sirupsen/logrus"
)

// maxResponseBytes bounds API response bodies.
const maxResponseBytes = 4 << 20

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	// HTTPClient replaces the default client. Its Transport is used as is.
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

// Client is the HTTP session with the provider: it owns the connection pool,
// the default headers and the bearer token.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	userAgent  string
	httpClient *http.Client
	log        *logrus.Logger

	mu        sync.RWMutex // protects authToken
	authToken string
}

// New creates the session. BaseURL and UserAgent fall back to their defaults.
func New(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = constants.DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base URL %q", coreerrors.ErrConfiguration, base)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = constants.DefaultUserAgent
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = constants.RequestTimeout
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: NewCompressionTransport(nil),
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Client{
		baseURL:    u,
		apiKey:     opts.APIKey,
		userAgent:  ua,
		httpClient: hc,
		log:        logger,
	}, nil
}

// SetAuthToken replaces the bearer token. An empty token disables the
// Authorization header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authToken = token
}

// AuthToken returns the current bearer token, "" when unauthenticated.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authToken
}

// Get makes a GET request with the given query parameters.
func (c *Client) Get(ctx context.Context, op, path string, params url.Values, target any) error {
	return c.doRequest(ctx, op, http.MethodGet, path, params, nil, target)
}

// Post makes a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, op, path string, body, target any) error {
	return c.doRequest(ctx, op, http.MethodPost, path, nil, body, target)
}

// Delete makes a DELETE request.
func (c *Client) Delete(ctx context.Context, op, path string, target any) error {
	return c.doRequest(ctx, op, http.MethodDelete, path, nil, nil, target)
}

// doRequest sends one request and classifies the outcome. target, when
// non-nil, receives the decoded JSON body of a 2xx response; a body that
// does not decode yields ErrParse.
func (c *Client) doRequest(ctx context.Context, op, method, path string, params url.Values, body, target any) error {
	fullURL := *c.baseURL
	fullURL.Path += path
	if len(params) > 0 {
		fullURL.RawQuery = params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: failed to marshal %s request body: %v", coreerrors.ErrInvalidInput, op, err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("%w: failed to create %s request: %v", coreerrors.ErrInvalidInput, op, err)
	}

	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.log.WithFields(logrus.Fields{"op": op, "method": method, "url": fullURL.String()}).Debug("provider request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TransportError(ctx, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return TransportError(ctx, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Classify(op, resp.StatusCode, data)
	}

	if target != nil {
		if err := json.Unmarshal(data, target); err != nil {
			return coreerrors.New(coreerrors.ErrParse, op, resp.StatusCode, "invalid JSON returned by provider", err)
		}
	}
	return nil
}

// Fetch GETs an absolute URL without any provider headers and returns at
// most limit bytes of the body. Used for pre-signed download links.
func (c *Client) Fetch(ctx context.Context, op, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, coreerrors.New(coreerrors.ErrProvider, op, 0, "invalid download link", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, TransportError(ctx, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, Classify(op, resp.StatusCode, data)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, TransportError(ctx, op, err)
	}
	if int64(len(data)) > limit {
		return nil, coreerrors.New(coreerrors.ErrProvider, op, resp.StatusCode,
			fmt.Sprintf("file exceeds %d bytes", limit), nil)
	}
	return data, nil
}

// TransportError maps a failure to reach the provider. Cancellation by the
// caller is returned as context.Canceled; everything else, timeouts
// included, is ErrServiceUnavailable.
func TransportError(ctx context.Context, op string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%s: %w", op, context.Canceled)
	}
	return coreerrors.New(coreerrors.ErrServiceUnavailable, op, 0, "", err)
}
