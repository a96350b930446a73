package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

type authAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, int, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.MessageResponse, int, error)
	Activate(ctx context.Context, req models.ActivateAccountRequest) (*models.MessageResponse, int, error)
	Validate(ctx context.Context) error
}

// Messages shown when the API does not supply its own.
const (
	MsgLoginSuccess     = "Login successful!"
	MsgLoginFailed      = "Invalid login credentials"
	MsgResetSent        = "Reset email sent!"
	MsgResetFailed      = "Request failed"
	MsgActivated        = "Account activated successfully!"
	MsgActivationFailed = "Activation failed"
)

// AuthService runs the login, password reset and activation flows against the API.
type AuthService struct {
	api       authAPI
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(api authAPI, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{api: api, validator: validate, logger: logger}
}

// Login exchanges credentials for a session token and profile snapshot.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	res, status, err := s.api.Login(ctx, req)
	if err != nil {
		s.logger.Warn("login request failed", zap.Error(err))
		return nil, serverError(err)
	}
	if !succeeded(status, res.Success) || res.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, orDefault(res.Message, MsgLoginFailed))
	}
	if res.Message == "" {
		res.Message = MsgLoginSuccess
	}
	s.logger.Info("student logged in", zap.String("student_number", req.StudentNumber))
	return res, nil
}

// ForgotPassword requests a reset email and returns the confirmation message.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err)
	}

	res, status, err := s.api.ForgotPassword(ctx, req)
	if err != nil {
		s.logger.Warn("forgot password request failed", zap.Error(err))
		return "", serverError(err)
	}
	if !succeeded(status, res.Success) {
		return "", appErrors.Clone(appErrors.ErrValidation, orDefault(res.Message, MsgResetFailed))
	}
	return orDefault(res.Message, MsgResetSent), nil
}

// Activate activates an account and returns the confirmation message.
func (s *AuthService) Activate(ctx context.Context, req models.ActivateAccountRequest) (string, error) {
	req.StudentNumber = strings.TrimSpace(req.StudentNumber)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(err)
	}

	res, status, err := s.api.Activate(ctx, req)
	if err != nil {
		s.logger.Warn("activation request failed", zap.Error(err))
		return "", serverError(err)
	}
	if !succeeded(status, res.Success) {
		return "", appErrors.Clone(appErrors.ErrValidation, orDefault(res.Message, MsgActivationFailed))
	}
	return orDefault(res.Message, MsgActivated), nil
}

// ValidateSession confirms the stored token with the API. A rejected token
// surfaces as session expiry; any other failure still ends the session but
// without the expiry notice.
func (s *AuthService) ValidateSession(ctx context.Context) error {
	err := s.api.Validate(ctx)
	if err == nil || appErrors.IsSessionExpired(err) || errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Warn("token validation failed", zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "Please log in to continue.")
}

func succeeded(status int, success bool) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices && success
}

func serverError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
