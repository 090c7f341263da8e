// Package opensubtitles is the client for the OpenSubtitles REST API. It
// logs in, searches and downloads subtitles, and maps every failure onto
// the error kinds in pkg/core/errors. It never retries or re-authenticates
// on its own; those decisions belong to the caller.
//
// A Client is not safe for concurrent use. Give each goroutine its own.
package opensubtitles

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelospk/subfetch/internal/constants"
	"github.com/angelospk/subfetch/internal/httpclient"
	"github.com/angelospk/subfetch/pkg/core/cache"
	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/fileops"
	"github.com/angelospk/subfetch/pkg/core/request"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultSearchCacheTTL is how long identical searches are served from memory.
	DefaultSearchCacheTTL = 5 * time.Minute
	searchCacheSize       = 64

	// quotaUnknown is reported until the provider tells us the remaining count.
	quotaUnknown = -1
)

// Config carries everything the client needs. Nothing is read from global state.
type Config struct {
	APIKey   string
	Username string
	Password string

	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// HTTPClient overrides the session's http.Client.
	HTTPClient *http.Client

	// Cache is the shared store for the session token. The client scopes its
	// keys under its own namespace and never closes the store. Nil keeps the
	// token in memory for the client's lifetime.
	Cache cache.Cache

	// SearchCacheTTL enables the in-memory search result cache. Zero disables it.
	SearchCacheTTL time.Duration

	Logger *logrus.Logger
}

// Client talks to the provider.
type Client struct {
	username string
	password string

	session *httpclient.Client
	tokens  cache.Cache
	results *lru.LRU[string, []Subtitle]
	log     *logrus.Logger

	// remaining is only meaningful once quotaKnown is set.
	remaining  int
	quotaKnown bool
}

// NewClient validates cfg and creates an unauthenticated client. Missing
// credentials or API key fail with ErrConfiguration before any I/O.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("%w: username and password must be specified", coreerrors.ErrConfiguration)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key must be specified", coreerrors.ErrConfiguration)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	session, err := httpclient.New(httpclient.Options{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
		HTTPClient: cfg.HTTPClient,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	store := cfg.Cache
	if store == nil {
		store, err = cache.New("memory", cache.ProviderConfig{Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", coreerrors.ErrConfiguration, err)
		}
	}

	c := &Client{
		username:  cfg.Username,
		password:  cfg.Password,
		session:   session,
		tokens:    cache.WithNamespace(store, constants.CacheNamespace),
		log:       logger,
		remaining: quotaUnknown,
	}
	if cfg.SearchCacheTTL > 0 {
		c.results = lru.NewLRU[string, []Subtitle](searchCacheSize, nil, cfg.SearchCacheTTL)
	}
	return c, nil
}

// IsAuthenticated reports whether the client holds a session token.
func (c *Client) IsAuthenticated() bool {
	return c.session.AuthToken() != ""
}

// RemainingDownloads returns the last known download quota, -1 if unknown.
func (c *Client) RemainingDownloads() int {
	if !c.quotaKnown {
		return quotaUnknown
	}
	return c.remaining
}

func (c *Client) setRemaining(n int) {
	c.remaining = n
	c.quotaKnown = true
}

// invalidate drops the session token after the provider rejected it, so the
// client is back to unauthenticated and a stale cached token is not reused.
func (c *Client) invalidate(err error) error {
	if errors.Is(err, coreerrors.ErrAuthentication) {
		c.session.SetAuthToken("")
		c.tokens.Delete(constants.TokenCacheKey)
		c.log.Debug("session token invalidated")
	}
	return err
}

// Login exchanges the credentials for a session token, keeping it in the
// session and in the token cache.
func (c *Client) Login(ctx context.Context) (*LoginResponse, error) {
	var resp LoginResponse
	err := c.session.Post(ctx, "login", constants.PathLogin,
		LoginRequest{Username: c.username, Password: c.password}, &resp)
	if err != nil {
		return nil, c.invalidate(err)
	}
	if resp.Token == "" {
		return nil, coreerrors.New(coreerrors.ErrParse, "login", http.StatusOK, "response has no token", nil)
	}

	c.session.SetAuthToken(resp.Token)
	c.tokens.Set(constants.TokenCacheKey, []byte(resp.Token))
	if resp.User.RemainingDownloads != nil {
		c.setRemaining(*resp.User.RemainingDownloads)
	}

	c.log.WithFields(logrus.Fields{"user": resp.User.Username, "level": resp.User.Level}).Info("logged in to OpenSubtitles")
	return &resp, nil
}

// Authenticate makes sure the client holds a token, restoring it from the
// token cache when possible and logging in otherwise. A restored token is
// trusted until the provider rejects it.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.RestoreToken() {
		return nil
	}
	_, err := c.Login(ctx)
	return err
}

// RestoreToken loads a cached token into the session without any network
// call and reports whether the client is now authenticated.
func (c *Client) RestoreToken() bool {
	if c.IsAuthenticated() {
		return true
	}
	token, ok := c.tokens.Get(constants.TokenCacheKey)
	if !ok || len(token) == 0 {
		return false
	}
	c.session.SetAuthToken(string(token))
	c.log.Debug("restored session token from cache")
	return true
}

// Logout ends the session. The local token is dropped whatever the outcome;
// a 401 means the server already forgot it and is not an error.
func (c *Client) Logout(ctx context.Context) error {
	if !c.IsAuthenticated() {
		c.tokens.Delete(constants.TokenCacheKey)
		return nil
	}

	err := c.session.Delete(ctx, "logout", constants.PathLogout, nil)

	c.session.SetAuthToken("")
	c.tokens.Delete(constants.TokenCacheKey)

	if err != nil && !errors.Is(err, coreerrors.ErrAuthentication) {
		return err
	}
	c.log.Info("logged out of OpenSubtitles")
	return nil
}

// UserInfo fetches the account details and refreshes the known quota.
func (c *Client) UserInfo(ctx context.Context) (*User, error) {
	if !c.IsAuthenticated() {
		return nil, coreerrors.ErrNotLoggedIn
	}
	var resp userInfoResponse
	if err := c.session.Get(ctx, "user info", constants.PathUserInfo, nil, &resp); err != nil {
		return nil, c.invalidate(err)
	}
	if resp.Data.RemainingDownloads != nil {
		c.setRemaining(*resp.Data.RemainingDownloads)
	}
	return &resp.Data, nil
}

// SearchSubtitles runs a search. q is either a request.Raw mapping or a
// *request.SearchRequest. An empty or malformed query fails with
// ErrInvalidInput without touching the network. No results is (nil, nil).
func (c *Client) SearchSubtitles(ctx context.Context, q request.Query) ([]Subtitle, error) {
	params, err := request.Build(q)
	if err != nil {
		return nil, err
	}
	key := params.Encode()
	c.log.WithField("params", key).Debug("built search parameters")

	if c.results != nil {
		if cached, ok := c.results.Get(key); ok {
			c.log.WithField("count", len(cached)).Debug("search served from cache")
			return append([]Subtitle(nil), cached...), nil
		}
	}

	var resp searchResponse
	if err := c.session.Get(ctx, "search", constants.PathSubtitles, params, &resp); err != nil {
		if errors.Is(err, coreerrors.ErrParse) {
			return nil, coreerrors.New(coreerrors.ErrProvider, "search", 0, "invalid response shape", err)
		}
		return nil, c.invalidate(err)
	}
	if resp.Data == nil {
		return nil, coreerrors.New(coreerrors.ErrProvider, "search", 0, "invalid response shape: no data field", nil)
	}

	results := *resp.Data
	c.log.WithField("count", len(results)).Debug("search returned subtitles")
	if len(results) == 0 {
		return nil, nil
	}
	if c.results != nil {
		c.results.Add(key, append([]Subtitle(nil), results...))
	}
	return results, nil
}

// ResolvePath computes where a download is written: the output directory,
// or the video's folder, joined with the chosen name (default: the video's
// base name) plus ".<lang>", ".forced" and ".srt".
func ResolvePath(p DownloadParams) (string, error) {
	dir := p.OutputDirectory
	if dir == "" && p.VideoPath != "" {
		dir = filepath.Dir(p.VideoPath)
	}
	name := p.OutputFilename
	if name == "" && p.VideoPath != "" {
		base := filepath.Base(p.VideoPath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if dir == "" || name == "" {
		return "", fmt.Errorf("%w: need a video path or an output directory and file name", coreerrors.ErrInvalidInput)
	}

	if p.Language != "" {
		name += "." + p.Language
	}
	if p.Forced {
		name += ".forced"
	}
	name += constants.SubtitleExtension
	return filepath.Join(dir, name), nil
}

// DownloadSubtitle downloads one subtitle file. If the target exists and
// Overwrite is false nothing is fetched and AlreadyPresent is set. It needs
// a prior Login or Authenticate and refuses to start once the known quota
// is exhausted. The file is written atomically.
func (c *Client) DownloadSubtitle(ctx context.Context, p DownloadParams) (*DownloadResult, error) {
	if p.FileID <= 0 {
		return nil, fmt.Errorf("%w: file id must be positive", coreerrors.ErrInvalidInput)
	}
	path, err := ResolvePath(p)
	if err != nil {
		return nil, err
	}

	exists, err := fileops.Exists(path)
	if err != nil {
		return nil, coreerrors.New(coreerrors.ErrIO, "download", 0, path, err)
	}
	if exists && !p.Overwrite {
		c.log.WithField("path", path).Warn("subtitle already present, skipping download")
		return &DownloadResult{Path: path, AlreadyPresent: true, Remaining: c.RemainingDownloads()}, nil
	}

	if !c.IsAuthenticated() {
		return nil, coreerrors.ErrNotLoggedIn
	}
	if c.quotaKnown && c.remaining <= 0 {
		return nil, coreerrors.New(coreerrors.ErrQuotaExceeded, "download", 0, "no downloads remaining", nil)
	}

	var link DownloadResponse
	err = c.session.Post(ctx, "download", constants.PathDownload, DownloadRequest{FileID: p.FileID}, &link)
	if err != nil {
		var apiErr *coreerrors.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotAcceptable:
			c.setRemaining(0)
			return nil, coreerrors.New(coreerrors.ErrQuotaExceeded, "download", apiErr.StatusCode, apiErr.Message, nil)
		case errors.Is(err, coreerrors.ErrParse):
			return nil, coreerrors.New(coreerrors.ErrProvider, "download", 0, "invalid response shape", err)
		}
		return nil, c.invalidate(err)
	}
	if link.Remaining != nil {
		c.setRemaining(*link.Remaining)
	}
	if link.Link == "" {
		return nil, coreerrors.New(coreerrors.ErrProvider, "download", 0, "response has no link", nil)
	}

	data, err := c.session.Fetch(ctx, "download", link.Link, constants.MaxSubtitleBytes)
	if err != nil {
		return nil, err
	}

	if err := fileops.WriteFileAtomic(path, data, 0o644); err != nil {
		return nil, coreerrors.New(coreerrors.ErrIO, "download", 0, path, err)
	}

	c.log.WithFields(logrus.Fields{"path": path, "bytes": len(data), "remaining": c.RemainingDownloads()}).Info("saved subtitle")
	return &DownloadResult{Path: path, Bytes: len(data), Remaining: c.RemainingDownloads()}, nil
}
