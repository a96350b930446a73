package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
)

// GateStatus is the JSON form of the download gate.
type GateStatus struct {
	CanDownload bool `json:"can_download"`
}

type notificationFeed interface {
	LatestNotifications(ctx context.Context) ([]models.Notification, error)
}

// APIHandler exposes the materials browser and the notification feed as JSON
// for progressive enhancement of the rendered pages.
type APIHandler struct {
	materials     *MaterialsHandler
	notifications notificationFeed
}

// NewAPIHandler reuses the collaborators of the HTML handlers.
func NewAPIHandler(materials *MaterialsHandler, notifications notificationFeed) *APIHandler {
	return &APIHandler{materials: materials, notifications: notifications}
}

// Materials godoc
// @Summary List study materials
// @Description One page of the listing with the download gate applied to every card.
// @Tags Materials
// @Produce json
// @Param search query string false "Free-text search"
// @Param module query string false "Module filter"
// @Param year query string false "Year filter"
// @Param type query string false "Material type filter"
// @Param sort query string false "Sort order" default(recent)
// @Param page query int false "Page number" default(1)
// @Success 200 {object} response.Envelope{data=[]render.MaterialCard}
// @Failure 401 {object} response.Envelope
// @Router /materials [get]
func (h *APIHandler) Materials(c *gin.Context) {
	ctrl := h.materials.materials.Controller(render.QueryStateFrom(c.Request.URL.Query()))
	snap, err := ctrl.Load(middleware.RequestContext(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	if snap.Result.Failed {
		response.Fail(c, appErrors.Clone(appErrors.ErrUpstream, render.FailedListing))
		return
	}
	response.JSON(c, http.StatusOK, render.NewMaterialCards(snap), paginationOf(snap, ctrl.PageSize()), gateMeta(snap, ""))
}

// Gate godoc
// @Summary Download gate
// @Description Whether the current student may open study materials.
// @Tags Materials
// @Produce json
// @Success 200 {object} response.Envelope{data=GateStatus}
// @Failure 401 {object} response.Envelope
// @Router /materials/gate [get]
func (h *APIHandler) Gate(c *gin.Context) {
	ctrl := h.materials.materials.Controller(service.DefaultQueryState())
	if err := ctrl.RefreshGate(middleware.RequestContext(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, GateStatus{CanDownload: ctrl.Snapshot().CanDownload}, nil)
}

// Upload godoc
// @Summary Upload a study material
// @Description Exactly one of file or link must be supplied. Returns the refreshed listing page.
// @Tags Materials
// @Accept mpfd
// @Produce json
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param type formData string false "Material type"
// @Param module formData string false "Module"
// @Param year formData string false "Year"
// @Param link formData string false "External link"
// @Param file formData file false "File"
// @Success 201 {object} response.Envelope{data=[]render.MaterialCard}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /materials/upload [post]
func (h *APIHandler) Upload(c *gin.Context) {
	ctrl := h.materials.materials.Controller(render.QueryStateFrom(c.Request.URL.Query()))

	in, closeFile, err := h.materials.bindUpload(c)
	defer closeFile()
	if err != nil {
		response.Fail(c, err)
		return
	}
	outcome, err := h.materials.uploads.Submit(middleware.RequestContext(c), ctrl, in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	snap := outcome.Snapshot
	response.JSON(c, http.StatusCreated, render.NewMaterialCards(snap), paginationOf(snap, ctrl.PageSize()), gateMeta(snap, outcome.Message))
}

// LatestNotifications godoc
// @Summary Latest notifications
// @Description The newest notifications of the signed-in student.
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope{data=[]models.Notification}
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /notifications/latest [get]
func (h *APIHandler) LatestNotifications(c *gin.Context) {
	items, err := h.notifications.LatestNotifications(middleware.RequestContext(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

func gateMeta(snap service.Snapshot, message string) map[string]interface{} {
	meta := map[string]interface{}{"can_download": snap.CanDownload}
	if message != "" {
		meta["message"] = message
	}
	return meta
}

func paginationOf(snap service.Snapshot, pageSize int) *models.Pagination {
	return &models.Pagination{Page: snap.Result.Page, PageSize: pageSize, TotalPages: snap.Result.TotalPages}
}
