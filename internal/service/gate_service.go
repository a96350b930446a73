package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

type downloadStatusFetcher interface {
	DownloadStatus(ctx context.Context) (*models.DownloadStatus, error)
}

// GateService reads the server-declared download permission. The unlock rule
// itself lives in the API; the portal only reflects the flag.
type GateService struct {
	api    downloadStatusFetcher
	logger *zap.Logger
}

// NewGateService constructs a GateService.
func NewGateService(api downloadStatusFetcher, logger *zap.Logger) *GateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GateService{api: api, logger: logger}
}

// CanDownload fetches the gate flag. Every failure except session expiry
// yields false.
func (s *GateService) CanDownload(ctx context.Context) (bool, error) {
	status, err := s.api.DownloadStatus(ctx)
	if err != nil {
		if appErrors.IsSessionExpired(err) || errors.Is(err, context.Canceled) {
			return false, err
		}
		s.logger.Warn("download status unavailable, gate closed", zap.Error(err))
		return false, nil
	}
	if status == nil {
		return false, nil
	}
	return status.CanDownload, nil
}
