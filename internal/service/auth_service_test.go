package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

type fakeAuthAPI struct {
	login       *models.LoginResponse
	message     *models.MessageResponse
	status      int
	err         error
	validateErr error
	calls       int
}

func (f *fakeAuthAPI) Login(context.Context, models.LoginRequest) (*models.LoginResponse, int, error) {
	f.calls++
	return f.login, f.status, f.err
}

func (f *fakeAuthAPI) ForgotPassword(context.Context, models.ForgotPasswordRequest) (*models.MessageResponse, int, error) {
	f.calls++
	return f.message, f.status, f.err
}

func (f *fakeAuthAPI) Activate(context.Context, models.ActivateAccountRequest) (*models.MessageResponse, int, error) {
	f.calls++
	return f.message, f.status, f.err
}

func (f *fakeAuthAPI) Validate(context.Context) error {
	f.calls++
	return f.validateErr
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	api := &fakeAuthAPI{status: http.StatusOK, login: &models.LoginResponse{Success: true, Token: "tok", User: models.UserProfile{FirstName: "Ada"}}}
	svc := NewAuthService(api, nil, nil)

	res, err := svc.Login(context.Background(), models.LoginRequest{StudentNumber: " S1 ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, MsgLoginSuccess, res.Message)
}

func TestAuthServiceLoginRejected(t *testing.T) {
	api := &fakeAuthAPI{status: http.StatusUnauthorized, login: &models.LoginResponse{Message: "Account not activated"}}
	_, err := NewAuthService(api, nil, nil).Login(context.Background(), models.LoginRequest{StudentNumber: "S1", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "Account not activated", appErrors.FromError(err).Message)
	assert.False(t, appErrors.IsSessionExpired(err))

	api = &fakeAuthAPI{status: http.StatusOK, login: &models.LoginResponse{}}
	_, err = NewAuthService(api, nil, nil).Login(context.Background(), models.LoginRequest{StudentNumber: "S1", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, MsgLoginFailed, appErrors.FromError(err).Message)
}

func TestAuthServiceLoginTransportFailure(t *testing.T) {
	api := &fakeAuthAPI{err: errors.New("dial tcp: refused")}
	_, err := NewAuthService(api, nil, nil).Login(context.Background(), models.LoginRequest{StudentNumber: "S1", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Server error. Please try again later.", appErrors.FromError(err).Message)
}

func TestAuthServiceValidatesBeforeCalling(t *testing.T) {
	api := &fakeAuthAPI{}
	svc := NewAuthService(api, nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Student number is required", appErrors.FromError(err).Message)

	_, err = svc.ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid email address", appErrors.FromError(err).Message)

	_, err = svc.Activate(context.Background(), models.ActivateAccountRequest{StudentNumber: "S1", Email: "a@b.test", Password: "123"})
	require.Error(t, err)
	assert.Equal(t, "Password must be at least 6 characters", appErrors.FromError(err).Message)

	assert.Zero(t, api.calls)
}

func TestAuthServiceRecoveryMessages(t *testing.T) {
	ok := &fakeAuthAPI{status: http.StatusOK, message: &models.MessageResponse{Success: true}}
	msg, err := NewAuthService(ok, nil, nil).ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "a@b.test"})
	require.NoError(t, err)
	assert.Equal(t, MsgResetSent, msg)

	msg, err = NewAuthService(ok, nil, nil).Activate(context.Background(), models.ActivateAccountRequest{StudentNumber: "S1", Email: "a@b.test", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, MsgActivated, msg)

	failed := &fakeAuthAPI{status: http.StatusBadRequest, message: &models.MessageResponse{}}
	_, err = NewAuthService(failed, nil, nil).ForgotPassword(context.Background(), models.ForgotPasswordRequest{Email: "a@b.test"})
	assert.Equal(t, MsgResetFailed, appErrors.FromError(err).Message)

	failed = &fakeAuthAPI{status: http.StatusConflict, message: &models.MessageResponse{Message: "Already active"}}
	_, err = NewAuthService(failed, nil, nil).Activate(context.Background(), models.ActivateAccountRequest{StudentNumber: "S1", Email: "a@b.test", Password: "secret1"})
	assert.Equal(t, "Already active", appErrors.FromError(err).Message)
}

func TestAuthServiceValidateSession(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{}, nil, nil)
	assert.NoError(t, svc.ValidateSession(context.Background()))

	expired := NewAuthService(&fakeAuthAPI{validateErr: appErrors.ErrSessionExpired}, nil, nil).ValidateSession(context.Background())
	assert.True(t, appErrors.IsSessionExpired(expired))

	other := NewAuthService(&fakeAuthAPI{validateErr: appErrors.Clone(appErrors.ErrUpstream, "API error 500")}, nil, nil).ValidateSession(context.Background())
	require.Error(t, other)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(other).Code)
}
