package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/client"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

// Upload form messages.
const (
	MsgUploadBoth    = "Please provide either a file OR a link, not both."
	MsgUploadNeither = "Please upload a file or provide a link."
	MsgUploaded      = "Material uploaded successfully!"
)

const (
	tagFileOrLinkBoth    = "file_or_link_both"
	tagFileOrLinkMissing = "file_or_link_missing"
)

var uploadRuleMessages = map[string]string{
	tagFileOrLinkBoth:    MsgUploadBoth,
	tagFileOrLinkMissing: MsgUploadNeither,
}

type materialUploader interface {
	UploadMaterial(ctx context.Context, form client.UploadForm) (*models.UploadResult, error)
}

// UploadInput is a submitted upload form. File is nil when no file was chosen.
type UploadInput struct {
	Title       string `form:"title" validate:"max=200"`
	Description string `form:"description" validate:"max=2000"`
	Type        string `form:"type" validate:"max=100"`
	Module      string `form:"module" validate:"max=100"`
	Year        string `form:"year" validate:"max=20"`
	Link        string `form:"link" validate:"max=2048"`

	File     io.Reader `form:"-" validate:"-"`
	FileName string    `form:"-" validate:"-"`
	FileSize int64     `form:"-" validate:"-"`
}

// HasFile reports whether a file part was supplied.
func (in UploadInput) HasFile() bool {
	return in.File != nil
}

// HasLink reports whether non-blank link text was supplied.
func (in UploadInput) HasLink() bool {
	return strings.TrimSpace(in.Link) != ""
}

func validateFileOrLink(sl validator.StructLevel) {
	in := sl.Current().Interface().(UploadInput)
	switch {
	case in.HasFile() && in.HasLink():
		sl.ReportError(in.Link, "Link", "link", tagFileOrLinkBoth, "")
	case !in.HasFile() && !in.HasLink():
		sl.ReportError(in.Link, "Link", "link", tagFileOrLinkMissing, "")
	}
}

// UploadOutcome is the result of a successful upload: the confirmation
// message and the refreshed listing.
type UploadOutcome struct {
	Message  string
	Snapshot Snapshot
}

// UploadService validates and submits new study materials.
type UploadService struct {
	api       materialUploader
	validator *validator.Validate
	maxSize   int64
	cache     *CacheService
	logger    *zap.Logger
}

// NewUploadService constructs an UploadService. maxSize <= 0 disables the size check.
func NewUploadService(api materialUploader, validate *validator.Validate, maxSize int64, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterStructValidation(validateFileOrLink, UploadInput{})
	return &UploadService{api: api, validator: validate, maxSize: maxSize, logger: logger}
}

// WithCache lets successful uploads evict the cached recent-resources widget.
func (s *UploadService) WithCache(cache *CacheService) *UploadService {
	s.cache = cache
	return s
}

// MaxSize returns the accepted file size limit in bytes.
func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// Validate checks the form without any network call.
func (s *UploadService) Validate(in UploadInput) error {
	if err := s.validator.Struct(in); err != nil {
		return validationError(err)
	}
	if in.HasFile() && s.maxSize > 0 && in.FileSize > s.maxSize {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("File is too large (maximum %s).", units.BytesSize(float64(s.maxSize))))
	}
	return nil
}

// Submit uploads the material. On success the gate is refreshed and then the
// controller's current page is queried again, in that order.
func (s *UploadService) Submit(ctx context.Context, ctrl *Controller, in UploadInput) (*UploadOutcome, error) {
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	form := client.UploadForm{Fields: map[string]string{
		"title":       strings.TrimSpace(in.Title),
		"description": strings.TrimSpace(in.Description),
		"type":        strings.TrimSpace(in.Type),
		"module":      strings.TrimSpace(in.Module),
		"year":        strings.TrimSpace(in.Year),
	}}
	if in.HasFile() {
		form.File = in.File
		form.FileName = in.FileName
	} else {
		form.Fields["link"] = strings.TrimSpace(in.Link)
	}

	if _, err := s.api.UploadMaterial(ctx, form); err != nil {
		if !appErrors.IsSessionExpired(err) {
			s.logger.Warn("material upload rejected", zap.Int("upstream_status", client.UpstreamStatus(err)), zap.Error(err))
		}
		return nil, err
	}

	// The new material belongs in the recent-resources widget.
	_ = s.cache.Invalidate(ctx, resourcesCachePrefix+"*")

	if err := ctrl.RefreshGate(ctx); err != nil {
		return nil, err
	}
	if _, err := ctrl.Query(ctx, ctrl.Snapshot().State.Page); err != nil {
		return nil, err
	}

	s.logger.Info("material uploaded", zap.Bool("file", in.HasFile()), zap.String("title", form.Fields["title"]))
	return &UploadOutcome{Message: MsgUploaded, Snapshot: ctrl.Snapshot()}, nil
}
