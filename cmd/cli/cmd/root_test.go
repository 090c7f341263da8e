package cmd_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	clicmd "github.com/angelospk/subfetch/cmd/cli/cmd"
	"github.com/angelospk/subfetch/pkg/core/cache"
	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{coreerrors.ErrConfiguration, "Configuration error"},
		{coreerrors.New(coreerrors.ErrAuthentication, "login", 401, "", nil), "subfetch login"},
		{coreerrors.ErrTooManyRequests, "rate limiting"},
		{coreerrors.ErrServiceUnavailable, "could not be reached"},
		{coreerrors.ErrQuotaExceeded, "Download limit reached"},
		{fmt.Errorf("wrapped: %w", coreerrors.ErrInvalidInput), "Invalid request"},
		{coreerrors.ErrIO, "Could not save"},
		{coreerrors.ErrParse, "could not be read"},
		{coreerrors.ErrProvider, "returned an error"},
		{assert.AnError, "Error: "},
	}
	for _, tt := range tests {
		assert.Contains(t, clicmd.UserMessage(tt.err), tt.want, tt.err.Error())
	}
}

func TestLanguagesCommand_NeedsNoAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	original := viper.GetString(clicmd.CfgKeyOSAPIKey)
	viper.Set(clicmd.CfgKeyOSAPIKey, "")
	defer viper.Set(clicmd.CfgKeyOSAPIKey, original)

	out := new(bytes.Buffer)
	clicmd.RootCmd.SetOut(out)
	clicmd.RootCmd.SetErr(out)
	clicmd.RootCmd.SetArgs([]string{"languages", "Portuguese (Brazil)", "el", "Klingonese"})
	defer clicmd.RootCmd.SetArgs([]string{})

	require.NoError(t, clicmd.RootCmd.Execute())
	assert.Contains(t, out.String(), "pt-br")
	assert.Contains(t, out.String(), "Greek")
	assert.Contains(t, out.String(), "?")
}

func TestLanguagesCommand_StaticTable(t *testing.T) {
	mockClient := new(MockOSClient)
	output, _, err := executeCommand(t, mockClient, "languages")

	assert.NoError(t, err)
	assert.Contains(t, output, "Chinese bilingual")
	assert.Contains(t, output, "zh-tw")
}

func TestMissingAPIKeyIsPromptedAndSaved(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	original := viper.GetString(clicmd.CfgKeyOSAPIKey)
	viper.Set(clicmd.CfgKeyOSAPIKey, "")
	defer viper.Set(clicmd.CfgKeyOSAPIKey, original)

	mockClient := new(MockOSClient)
	mockClient.On("RestoreToken").Return(false).Once()
	originalNewClient := clicmd.NewOSClientFunc
	defer func() { clicmd.NewOSClientFunc = originalNewClient }()
	clicmd.NewOSClientFunc = func(_ opensubtitles.Config) (clicmd.ProviderClient, error) {
		return mockClient, nil
	}
	originalNewCache := clicmd.NewCacheFunc
	defer func() { clicmd.NewCacheFunc = originalNewCache }()
	clicmd.NewCacheFunc = func(logger *logrus.Logger) (cache.Cache, error) {
		return cache.New("memory", cache.ProviderConfig{Logger: logger})
	}

	out := new(bytes.Buffer)
	clicmd.RootCmd.SetOut(out)
	clicmd.RootCmd.SetErr(out)
	clicmd.RootCmd.SetIn(strings.NewReader("typed-key\n"))
	clicmd.RootCmd.SetArgs([]string{"logout"})
	defer clicmd.RootCmd.SetArgs([]string{})

	require.NoError(t, clicmd.RootCmd.Execute())
	assert.Contains(t, out.String(), "Please enter your API Key")
	assert.Equal(t, "typed-key", viper.GetString(clicmd.CfgKeyOSAPIKey))

	saved, err := os.ReadFile(filepath.Join(home, ".subfetch", "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "typed-key")
	mockClient.AssertExpectations(t)
}

func TestMissingAPIKeyEmptyInput(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	original := viper.GetString(clicmd.CfgKeyOSAPIKey)
	viper.Set(clicmd.CfgKeyOSAPIKey, "")
	defer viper.Set(clicmd.CfgKeyOSAPIKey, original)

	mockClient := new(MockOSClient)
	clicmd.RootCmd.SetIn(strings.NewReader("\n"))
	clicmd.RootCmd.SetOut(new(bytes.Buffer))
	clicmd.RootCmd.SetArgs([]string{"whoami"})
	defer clicmd.RootCmd.SetArgs([]string{})

	err := clicmd.RootCmd.Execute()
	assert.ErrorIs(t, err, coreerrors.ErrConfiguration)
	mockClient.AssertNotCalled(t, "Authenticate", mock.Anything)
}
