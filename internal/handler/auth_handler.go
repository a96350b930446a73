package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (string, error)
	Activate(ctx context.Context, req models.ActivateAccountRequest) (string, error)
}

// SessionWriter persists the session cookies after a successful login.
type SessionWriter interface {
	SetToken(w http.ResponseWriter, token string) error
	SetUser(w http.ResponseWriter, user interface{}) error
	Token(r *http.Request) (string, bool)
	Clear(w http.ResponseWriter)
}

// AuthHandler serves the login page and its recovery dialogs.
type AuthHandler struct {
	service  authService
	sessions SessionWriter
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService, sessions SessionWriter, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: svc, sessions: sessions, logger: logger}
}

// Show renders the login page. A browser that still holds a session goes
// straight to the dashboard.
func (h *AuthHandler) Show(c *gin.Context) {
	if _, ok := h.sessions.Token(c.Request); ok {
		response.Redirect(c, DashboardPath)
		return
	}
	view := render.NewLoginView(response.PageData(c, ""), render.NewModals(render.ParseModal(c.Query("modal"))))
	response.HTML(c, http.StatusOK, render.PageLogin, view)
}

// Login exchanges the submitted credentials for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := bindForm(c, &req); err != nil {
		h.loginFailed(c, req, err)
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.loginFailed(c, req, err)
		return
	}

	if err := h.sessions.SetToken(c.Writer, res.Token); err != nil {
		h.logger.Error("failed to store session token", zap.Error(err))
		response.Fail(c, appErrors.ErrInternal)
		return
	}
	if err := h.sessions.SetUser(c.Writer, res.User); err != nil {
		h.logger.Warn("failed to store profile snapshot", zap.Error(err))
	}
	response.Flash(c, "success", res.Message)
	response.Redirect(c, DashboardPath)
}

func (h *AuthHandler) loginFailed(c *gin.Context, req models.LoginRequest, err error) {
	view := render.NewLoginView(response.PageData(c, ""), render.NewModals())
	view.StudentNumber = req.StudentNumber
	view.Login.Error = formError(err)
	response.HTML(c, formStatus(err), render.PageLogin, view)
}

// ForgotPassword requests a reset email and re-renders the dialog with the outcome.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	bindErr := bindForm(c, &req)

	view := render.NewLoginView(response.PageData(c, ""), render.NewModals(render.ModalForgot))
	view.ForgotEmail = req.Email
	if bindErr != nil {
		view.Forgot.Error = formError(bindErr)
		response.HTML(c, formStatus(bindErr), render.PageLogin, view)
		return
	}

	msg, err := h.service.ForgotPassword(c.Request.Context(), req)
	if err != nil {
		view.Forgot.Error = formError(err)
		response.HTML(c, formStatus(err), render.PageLogin, view)
		return
	}
	view.Forgot.Success = msg
	response.HTML(c, http.StatusOK, render.PageLogin, view)
}

// Activate activates a provisioned account and re-renders the dialog with the outcome.
func (h *AuthHandler) Activate(c *gin.Context) {
	var req models.ActivateAccountRequest
	bindErr := bindForm(c, &req)

	view := render.NewLoginView(response.PageData(c, ""), render.NewModals(render.ModalActivate))
	view.ActivateID = req.StudentNumber
	view.ActivateEmail = req.Email
	if bindErr != nil {
		view.Activate.Error = formError(bindErr)
		response.HTML(c, formStatus(bindErr), render.PageLogin, view)
		return
	}

	msg, err := h.service.Activate(c.Request.Context(), req)
	if err != nil {
		view.Activate.Error = formError(err)
		response.HTML(c, formStatus(err), render.PageLogin, view)
		return
	}
	view.Activate.Success = msg
	response.HTML(c, http.StatusOK, render.PageLogin, view)
}

// Logout drops the session cookies.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Clear(c.Writer)
	response.Redirect(c, response.LoginPath)
}

const msgInvalidForm = "The form could not be read. Please try again."

// bindForm decodes the posted form. Field rules are checked by the service;
// only an unreadable body fails here.
func bindForm(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBind(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msgInvalidForm)
	}
	return nil
}

func formError(err error) string {
	return appErrors.FromError(err).Message
}

// formStatus is the status of a re-rendered form, never below 400.
func formStatus(err error) int {
	status := appErrors.FromError(err).Status
	if status < http.StatusBadRequest {
		return http.StatusBadRequest
	}
	return status
}
