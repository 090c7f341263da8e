package cmd_test

import (
	"testing"

	coreerrors "github.com/angelospk/subfetch/pkg/core/errors"
	"github.com/angelospk/subfetch/pkg/core/opensubtitles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLoginCommand(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("Login", mock.Anything).Return(&opensubtitles.LoginResponse{
		User:  opensubtitles.User{Username: "user", Level: "Sub leecher"},
		Token: "tok",
	}, nil).Once()
	mockClient.On("RemainingDownloads").Return(20).Once()

	output, _, err := executeCommand(t, mockClient, "login")

	assert.NoError(t, err)
	assert.Contains(t, output, "Logged in as user (Sub leecher). 20 downloads remaining.")
	mockClient.AssertExpectations(t)
}

func TestLoginCommand_Rejected(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("Login", mock.Anything).
		Return(nil, coreerrors.New(coreerrors.ErrAuthentication, "login", 401, "invalid credentials", nil)).Once()

	_, _, err := executeCommand(t, mockClient, "login")

	assert.ErrorIs(t, err, coreerrors.ErrAuthentication)
	assert.Contains(t, err.Error(), "login failed:")
	mockClient.AssertExpectations(t)
}

func TestLogoutCommand_Success(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("RestoreToken").Return(true).Once()
	mockClient.On("Logout", mock.Anything).Return(nil).Once()

	output, _, err := executeCommand(t, mockClient, "logout")

	assert.NoError(t, err)
	assert.Contains(t, output, "Logging out from OpenSubtitles")
	assert.Contains(t, output, "Logout successful.")
	mockClient.AssertExpectations(t)
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("RestoreToken").Return(false).Once()

	output, _, err := executeCommand(t, mockClient, "logout")

	assert.NoError(t, err)
	assert.Contains(t, output, "Not logged in.")
	mockClient.AssertNotCalled(t, "Logout", mock.Anything)
}

func TestLogoutCommand_Failure(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("RestoreToken").Return(true).Once()
	mockClient.On("Logout", mock.Anything).Return(coreerrors.ErrServiceUnavailable).Once()

	output, _, err := executeCommand(t, mockClient, "logout")

	assert.ErrorIs(t, err, coreerrors.ErrServiceUnavailable)
	assert.Contains(t, err.Error(), "logout failed:")
	assert.NotContains(t, output, "Logout successful.")
}

func TestWhoamiCommand(t *testing.T) {
	mockClient := new(MockOSClient)
	mockClient.On("Authenticate", mock.Anything).Return(nil).Once()
	mockClient.On("UserInfo", mock.Anything).Return(&opensubtitles.User{
		UserID:             66,
		Username:           "user",
		Level:              "Sub leecher",
		AllowedDownloads:   20,
		RemainingDownloads: intPtr(17),
	}, nil).Once()

	output, _, err := executeCommand(t, mockClient, "whoami")

	assert.NoError(t, err)
	assert.Contains(t, output, "user (id 66)")
	assert.Contains(t, output, "Remaining: 17")
	mockClient.AssertExpectations(t)
}

func TestWhoamiCommand_ReloginOnce(t *testing.T) {
	expired := coreerrors.New(coreerrors.ErrAuthentication, "user info", 401, "", nil)

	mockClient := new(MockOSClient)
	mockClient.On("Authenticate", mock.Anything).Return(nil).Once()
	mockClient.On("UserInfo", mock.Anything).Return(nil, expired).Twice()
	mockClient.On("Login", mock.Anything).Return(&opensubtitles.LoginResponse{Token: "tok"}, nil).Once()

	_, _, err := executeCommand(t, mockClient, "whoami")

	assert.ErrorIs(t, err, coreerrors.ErrAuthentication)
	mockClient.AssertNumberOfCalls(t, "Login", 1)
	mockClient.AssertNumberOfCalls(t, "UserInfo", 2)
}
