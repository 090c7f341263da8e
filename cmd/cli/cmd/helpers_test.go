package cmd_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	clicmd "github.com/angelospk/subfetch/cmd/cli/cmd"
	"github.com/angelospk/subfetch/pkg/core/cache"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/angelospk/subfetch/pkg/core/request"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOSClient is a testify mock of the provider client.
type MockOSClient struct {
	mock.Mock
}

var _ clicmd.ProviderClient = (*MockOSClient)(nil)

func (m *MockOSClient) Login(ctx context.Context) (*opensubtitles.LoginResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*opensubtitles.LoginResponse), args.Error(1)
}

func (m *MockOSClient) Authenticate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOSClient) RestoreToken() bool {
	return m.Called().Bool(0)
}

func (m *MockOSClient) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOSClient) UserInfo(ctx context.Context) (*opensubtitles.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*opensubtitles.User), args.Error(1)
}

func (m *MockOSClient) SearchSubtitles(ctx context.Context, q request.Query) ([]opensubtitles.Subtitle, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]opensubtitles.Subtitle), args.Error(1)
}

func (m *MockOSClient) DownloadSubtitle(ctx context.Context, p opensubtitles.DownloadParams) (*opensubtitles.DownloadResult, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*opensubtitles.DownloadResult), args.Error(1)
}

func (m *MockOSClient) RemainingDownloads() int {
	return m.Called().Int(0)
}

// resetFlags puts every flag back to its default so runs do not leak into
// each other through the package level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the CLI against mockClient with credentials set and a
// memory cache. It returns stdout, stderr and the command error.
func executeCommand(t *testing.T, mockClient *MockOSClient, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var gotCfg opensubtitles.Config
	originalNewClient := clicmd.NewOSClientFunc
	clicmd.NewOSClientFunc = func(cfg opensubtitles.Config) (clicmd.ProviderClient, error) {
		gotCfg = cfg
		return mockClient, nil
	}
	originalNewCache := clicmd.NewCacheFunc
	clicmd.NewCacheFunc = func(logger *logrus.Logger) (cache.Cache, error) {
		return cache.New("memory", cache.ProviderConfig{Logger: logger})
	}

	vip := viper.GetViper()
	for key, value := range map[string]string{
		clicmd.CfgKeyOSAPIKey:   "test-api-key",
		clicmd.CfgKeyOSUsername: "user",
		clicmd.CfgKeyOSPassword: "secret",
	} {
		original := vip.GetString(key)
		vip.Set(key, value)
		t.Cleanup(func() { vip.Set(key, original) })
	}
	vip.Set(clicmd.CfgKeyRetryAttempts, 1)

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	clicmd.RootCmd.SetOut(outBuf)
	clicmd.RootCmd.SetErr(errBuf)
	clicmd.RootCmd.SetIn(strings.NewReader(""))
	clicmd.RootCmd.SetArgs(args)

	t.Cleanup(func() {
		clicmd.NewOSClientFunc = originalNewClient
		clicmd.NewCacheFunc = originalNewCache
		clicmd.RootCmd.SetArgs([]string{})
		resetFlags(clicmd.RootCmd)
	})

	err := clicmd.RootCmd.Execute()
	if err == nil && gotCfg.APIKey != "" {
		assert.Equal(t, "test-api-key", gotCfg.APIKey)
		assert.NotNil(t, gotCfg.Cache)
	}
	return outBuf.String(), errBuf.String(), err
}

func intPtr(i int) *int { return &i }

func subtitle(fileID int, lang, release string, rating float64) opensubtitles.Subtitle {
	return opensubtitles.Subtitle{
		ID:   "sub",
		Type: "subtitle",
		Attributes: opensubtitles.SubtitleAttributes{
			SubtitleID: "s" + release,
			Language:   lang,
			Release:    release,
			Ratings:    rating,
			Files:      []opensubtitles.SubtitleFile{{FileID: fileID, FileName: release + ".srt"}},
		},
	}
}

func rawQuery(t *testing.T, q request.Query) request.Raw {
	t.Helper()
	raw, ok := q.(request.Raw)
	require.True(t, ok, "expected a raw query, got %T", q)
	return raw
}
