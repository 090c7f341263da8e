package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/angelospk/subfetch/internal/retry"
	"github.com/angelospk/subfetch/pkg/core/cache"
	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/angelospk/subfetch/pkg/core/request"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ProviderClient is the part of the OpenSubtitles client the commands use.
type ProviderClient interface {
	Login(ctx context.Context) (*opensubtitles.LoginResponse, error)
	Authenticate(ctx context.Context) error
	RestoreToken() bool
	Logout(ctx context.Context) error
	UserInfo(ctx context.Context) (*opensubtitles.User, error)
	SearchSubtitles(ctx context.Context, q request.Query) ([]opensubtitles.Subtitle, error)
	DownloadSubtitle(ctx context.Context, p opensubtitles.DownloadParams) (*opensubtitles.DownloadResult, error)
	RemainingDownloads() int
}

var _ ProviderClient = (*opensubtitles.Client)(nil)

// NewOSClientFunc allows overriding the OpenSubtitles client creation for testing.
var NewOSClientFunc = func(cfg opensubtitles.Config) (ProviderClient, error) {
	return opensubtitles.NewClient(cfg)
}

// NewCacheFunc opens the token cache. Tests swap it for a memory store.
var NewCacheFunc = openCache

// session bundles a client with the cache it was built on.
type session struct {
	client ProviderClient
	store  cache.Cache
	log    *logrus.Logger
	policy retry.Policy
}

func (s *session) Close() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.WithError(err).Warn("closing cache")
	}
}

// newSession opens the cache and builds a client from the config.
func newSession(cmd *cobra.Command) (*session, error) {
	logger := newLogger(cmd)

	store, err := NewCacheFunc(logger)
	if err != nil {
		return nil, err
	}

	client, err := NewOSClientFunc(opensubtitles.Config{
		APIKey:         viper.GetString(CfgKeyOSAPIKey),
		Username:       viper.GetString(CfgKeyOSUsername),
		Password:       viper.GetString(CfgKeyOSPassword),
		BaseURL:        viper.GetString(CfgKeyOSBaseURL),
		UserAgent:      viper.GetString(CfgKeyOSUserAgent),
		Cache:          store,
		SearchCacheTTL: viper.GetDuration(CfgKeyCacheSearchTTL),
		Logger:         logger,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}

	policy := retry.DefaultPolicy()
	policy.Attempts = viper.GetInt(CfgKeyRetryAttempts)
	policy.Logger = logger

	return &session{client: client, store: store, log: logger, policy: policy}, nil
}

// openCache builds the configured token cache. The file and sqlite
// providers default to the user cache directory.
func openCache(logger *logrus.Logger) (cache.Cache, error) {
	provider := viper.GetString(CfgKeyCacheProvider)
	cfg := cache.ProviderConfig{
		Size:          viper.GetInt(CfgKeyCacheSize),
		TTL:           viper.GetDuration(CfgKeyCacheTTL),
		Path:          viper.GetString(CfgKeyCachePath),
		RedisAddress:  viper.GetString(CfgKeyCacheRedisAddress),
		RedisPassword: viper.GetString(CfgKeyCacheRedisPassword),
		RedisDB:       viper.GetInt(CfgKeyCacheRedisDB),
		Group:         "cli",
		Logger:        logger,
	}

	if cfg.Path == "" && (provider == "file" || provider == "sqlite") {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("%w: no cache directory: %v", coreerrors.ErrConfiguration, err)
		}
		dir = filepath.Join(dir, "subfetch")
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("%w: %v", coreerrors.ErrIO, err)
		}
		name := "cache.json"
		if provider == "sqlite" {
			name = "cache.db"
		}
		cfg.Path = filepath.Join(dir, name)
	}

	store, err := cache.New(provider, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: cache %q: %v", coreerrors.ErrConfiguration, provider, err)
	}
	return store, nil
}

// withRelogin runs fn and, if the provider rejected the token, logs in
// again and runs it once more.
func withRelogin[T any](ctx context.Context, s *session, fn func(context.Context) (T, error)) (T, error) {
	call := func(ctx context.Context) (T, error) {
		return retry.Get(ctx, s.policy, fn)
	}
	out, err := call(ctx)
	if err == nil || !errors.Is(err, coreerrors.ErrAuthentication) {
		return out, err
	}

	s.log.WithError(err).Info("session token rejected, logging in again")
	if _, lerr := retry.Get(ctx, s.policy, s.client.Login); lerr != nil {
		return out, lerr
	}
	return call(ctx)
}
