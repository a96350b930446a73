package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/docker/go-units"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/export"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

// multipartOverhead is the allowance for form fields and part headers on top
// of the file size limit.
const multipartOverhead = 1 << 20

type uploadService interface {
	MaxSize() int64
	Submit(ctx context.Context, ctrl *service.Controller, in service.UploadInput) (*service.UploadOutcome, error)
}

type materialDownloader interface {
	DownloadMaterial(ctx context.Context, id string) (*http.Response, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// MaterialsHandlerParams groups the collaborators of MaterialsHandler.
type MaterialsHandlerParams struct {
	Materials  *service.Materials
	Uploads    uploadService
	Downloader materialDownloader
	CSV        csvRenderer
	PDF        pdfRenderer
	Logger     *zap.Logger
}

// MaterialsHandler serves the study-materials browser.
type MaterialsHandler struct {
	materials  *service.Materials
	uploads    uploadService
	downloader materialDownloader
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewMaterialsHandler constructs the handler.
func NewMaterialsHandler(params MaterialsHandlerParams) *MaterialsHandler {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	csv := params.CSV
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	pdf := params.PDF
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &MaterialsHandler{
		materials:  params.Materials,
		uploads:    params.Uploads,
		downloader: params.Downloader,
		csv:        csv,
		pdf:        pdf,
		logger:     logger,
	}
}

// List renders one page of the listing for the query in the URL.
func (h *MaterialsHandler) List(c *gin.Context) {
	ctrl := h.materials.Controller(render.QueryStateFrom(c.Request.URL.Query()))
	snap, err := ctrl.Load(middleware.RequestContext(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	modals := render.NewModals(render.ParseModal(c.Query("modal")))
	h.renderListing(c, http.StatusOK, response.PageData(c, ""), snap, modals, render.UploadForm{})
}

// Upload accepts the upload form. A rejected submission re-renders the
// listing with the upload dialog open and the inputs echoed; a successful one
// renders the refreshed listing.
func (h *MaterialsHandler) Upload(c *gin.Context) {
	ctx := middleware.RequestContext(c)
	ctrl := h.materials.Controller(render.QueryStateFrom(c.Request.URL.Query()))

	in, closeFile, err := h.bindUpload(c)
	defer closeFile()

	var outcome *service.UploadOutcome
	if err == nil {
		outcome, err = h.uploads.Submit(ctx, ctrl, in)
	}
	if err != nil {
		if appErrors.IsSessionExpired(err) {
			response.Fail(c, err)
			return
		}
		snap, loadErr := ctrl.Load(ctx)
		if loadErr != nil {
			response.Fail(c, loadErr)
			return
		}
		form := render.UploadForm{
			Title:       in.Title,
			Description: in.Description,
			Type:        in.Type,
			Module:      in.Module,
			Year:        in.Year,
			Link:        in.Link,
			Error:       appErrors.FromError(err).Message,
		}
		h.renderListing(c, formStatus(err), response.PageData(c, ""), snap, render.NewModals(render.ModalUpload), form)
		return
	}

	page := response.PageData(c, "")
	page.Flash = &session.Flash{Kind: "success", Message: outcome.Message}
	h.renderListing(c, http.StatusOK, page, outcome.Snapshot, render.NewModals(), render.UploadForm{})
}

// Download proxies the gated download. External targets are handed back to
// the browser as a redirect; a refusal opens the access dialog.
func (h *MaterialsHandler) Download(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.Fail(c, appErrors.Clone(appErrors.ErrNotFound, "Material not found"))
		return
	}

	resp, err := h.downloader.DownloadMaterial(middleware.RequestContext(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		// Relative targets are resolved against the API, not the portal.
		location, err := resp.Location()
		if err != nil {
			h.logger.Warn("download redirect without usable location", zap.String("material_id", id), zap.Error(err))
			response.Fail(c, appErrors.ErrUpstream)
			return
		}
		c.Redirect(http.StatusFound, location.String())
	case resp.StatusCode == http.StatusForbidden:
		response.Redirect(c, render.ListingURL(render.QueryStateFrom(c.Request.URL.Query()), render.ModalAccess))
	case resp.StatusCode == http.StatusNotFound:
		response.Fail(c, appErrors.Clone(appErrors.ErrNotFound, "Material not found"))
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		extra := map[string]string{"Cache-Control": "private, no-store"}
		if cd := resp.Header.Get("Content-Disposition"); cd != "" {
			extra["Content-Disposition"] = cd
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, resp.Body, extra)
	default:
		h.logger.Warn("download refused upstream", zap.String("material_id", id), zap.Int("upstream_status", resp.StatusCode))
		response.Fail(c, appErrors.Clone(appErrors.ErrUpstream, fmt.Sprintf("Download failed (%d)", resp.StatusCode)))
	}
}

// ExportCSV sends the metadata of the requested listing page as CSV.
func (h *MaterialsHandler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv; charset=utf-8", func(data export.Dataset) ([]byte, error) {
		return h.csv.Render(data)
	})
}

// ExportPDF sends the metadata of the requested listing page as a PDF table.
func (h *MaterialsHandler) ExportPDF(c *gin.Context) {
	h.export(c, "pdf", "application/pdf", func(data export.Dataset) ([]byte, error) {
		return h.pdf.Render(data, "Study materials")
	})
}

func (h *MaterialsHandler) export(c *gin.Context, ext, contentType string, renderFn func(export.Dataset) ([]byte, error)) {
	ctrl := h.materials.Controller(render.QueryStateFrom(c.Request.URL.Query()))
	snap, err := ctrl.Load(middleware.RequestContext(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	body, err := renderFn(render.MaterialsDataset(snap))
	if err != nil {
		h.logger.Error("failed to render export", zap.String("format", ext), zap.Error(err))
		response.Fail(c, appErrors.ErrInternal)
		return
	}
	filename := fmt.Sprintf("materials-page-%d.%s", snap.Result.Page, ext)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, body)
}

func (h *MaterialsHandler) renderListing(c *gin.Context, status int, page render.Page, snap service.Snapshot, modals render.Modals, form render.UploadForm) {
	view := render.NewMaterialsView(page, snap, modals, form, h.maxUploadLabel())
	response.HTML(c, status, render.PageMaterials, view)
}

func (h *MaterialsHandler) maxUploadLabel() string {
	if h.uploads == nil || h.uploads.MaxSize() <= 0 {
		return ""
	}
	return units.BytesSize(float64(h.uploads.MaxSize()))
}

// bindUpload reads the multipart form. The returned close function is always
// safe to call.
func (h *MaterialsHandler) bindUpload(c *gin.Context) (service.UploadInput, func(), error) {
	noop := func() {}
	var in service.UploadInput

	if h.uploads != nil && h.uploads.MaxSize() > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.uploads.MaxSize()+multipartOverhead)
	}
	if err := c.ShouldBind(&in); err != nil {
		return in, noop, uploadBindError(err, h.maxUploadLabel())
	}

	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, noop, nil
	}
	if err != nil {
		return in, noop, uploadBindError(err, h.maxUploadLabel())
	}
	if header.Size == 0 && header.Filename == "" {
		return in, noop, nil
	}
	file, err := header.Open()
	if err != nil {
		return in, noop, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Could not read the selected file.")
	}
	in.File = file
	in.FileName = header.Filename
	in.FileSize = header.Size
	return in, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func uploadBindError(err error, limit string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, fmt.Sprintf("File is too large (maximum %s).", limit))
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "The upload was interrupted. Please try again.")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid upload form.")
}
