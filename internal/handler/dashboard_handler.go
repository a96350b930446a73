package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerconnect-portal/internal/dto"
	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
)

// DashboardPath is the landing page of a signed-in student.
const DashboardPath = "/dashboard"

type dashboardService interface {
	Load(ctx context.Context, snapshot *models.UserProfile) (*dto.StudentDashboard, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

type sessionValidator interface {
	ValidateSession(ctx context.Context) error
}

// DashboardHandler renders the student dashboard.
type DashboardHandler struct {
	service dashboardService
	auth    sessionValidator
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService, auth sessionValidator) *DashboardHandler {
	return &DashboardHandler{service: service, auth: auth}
}

// Show validates the session with the API and renders every widget.
func (h *DashboardHandler) Show(c *gin.Context) {
	ctx := middleware.RequestContext(c)
	if err := h.auth.ValidateSession(ctx); err != nil {
		response.Fail(c, err)
		return
	}

	dash, err := h.service.Load(ctx, middleware.SessionUser(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.HTML(c, http.StatusOK, render.PageDashboard, render.NewDashboardView(response.PageData(c, ""), dash))
}

// MarkRead marks one notification read and returns to the dashboard.
func (h *DashboardHandler) MarkRead(c *gin.Context) {
	if err := h.service.MarkNotificationRead(middleware.RequestContext(c), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.Redirect(c, DashboardPath)
}
