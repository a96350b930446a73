package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/dto"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

// Cache key prefixes of the shared dashboard widgets.
const (
	trendingCachePrefix  = "dash:trending:"
	resourcesCachePrefix = "dash:resources:"
)

type dashboardAPI interface {
	Me(ctx context.Context) (*models.UserProfile, error)
	Notifications(ctx context.Context, limit int) ([]models.Notification, error)
	LatestNotifications(ctx context.Context) ([]models.Notification, error)
	TrendingDiscussions(ctx context.Context, limit int) ([]models.Discussion, error)
	Resources(ctx context.Context, limit int) ([]models.Resource, error)
	Progress(ctx context.Context) (*models.Progress, error)
	UnreadCount(ctx context.Context) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	WidgetLimit int
}

// DashboardService composes the student dashboard from independent widgets.
type DashboardService struct {
	api    dashboardAPI
	cache  *CacheService
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	API    dashboardAPI
	Cache  *CacheService
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.WidgetLimit <= 0 {
		cfg.WidgetLimit = 5
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{api: params.API, cache: params.Cache, logger: logger, cfg: cfg}
}

// Load fetches every widget concurrently. A failing widget degrades to its
// empty state; session expiry from any widget aborts the whole page.
// snapshot is the profile stored at login, shown when /users/me fails.
func (s *DashboardService) Load(ctx context.Context, snapshot *models.UserProfile) (*dto.StudentDashboard, error) {
	var (
		out     dto.StudentDashboard
		wg      sync.WaitGroup
		mu      sync.Mutex
		expired error
	)
	limit := s.cfg.WidgetLimit

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn()
			if err == nil {
				return
			}
			if appErrors.IsSessionExpired(err) {
				mu.Lock()
				if expired == nil {
					expired = err
				}
				mu.Unlock()
				return
			}
			s.logger.Warn("dashboard widget failed", zap.String("widget", name), zap.Error(err))
		}()
	}

	run("profile", func() error {
		profile, err := s.api.Me(ctx)
		if err != nil {
			if snapshot != nil {
				out.Profile.User = *snapshot
			}
			return err
		}
		out.Profile = dto.ProfileWidget{User: *profile, Loaded: true}
		return nil
	})
	run("notifications", func() error {
		items, err := s.api.Notifications(ctx, limit)
		out.Notifications = dto.NotificationWidget{Items: items, Failed: err != nil}
		return err
	})
	run("trending", func() error {
		items, cached, err := s.trending(ctx, limit)
		out.Trending = dto.TrendingWidget{Items: items, Failed: err != nil, Cached: cached}
		return err
	})
	run("resources", func() error {
		items, cached, err := s.resources(ctx, limit)
		out.Resources = dto.ResourceWidget{Items: items, Failed: err != nil, Cached: cached}
		return err
	})
	run("progress", func() error {
		progress, err := s.api.Progress(ctx)
		if err != nil || progress == nil {
			return err
		}
		out.Progress = dto.ProgressWidget{Percent: clampPercent(progress.Percent), Available: true}
		return nil
	})
	run("unread", func() error {
		count, err := s.api.UnreadCount(ctx)
		if err == nil && count > 0 {
			out.UnreadCount = count
		}
		return err
	})

	wg.Wait()
	if expired != nil {
		return nil, expired
	}
	return &out, nil
}

// MarkNotificationRead flags a notification as read upstream.
func (s *DashboardService) MarkNotificationRead(ctx context.Context, id string) error {
	if id == "" {
		return appErrors.Clone(appErrors.ErrValidation, "notification id is required")
	}
	return s.api.MarkNotificationRead(ctx, id)
}

// LatestNotifications returns the newest notifications for the JSON feed.
func (s *DashboardService) LatestNotifications(ctx context.Context) ([]models.Notification, error) {
	items, err := s.api.LatestNotifications(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Notification{}
	}
	return items, nil
}

// Trending discussions and recent resources are the same for every student,
// so they are the only cached widgets.
func (s *DashboardService) trending(ctx context.Context, limit int) ([]models.Discussion, bool, error) {
	key := fmt.Sprintf("%s%d", trendingCachePrefix, limit)
	var cached []models.Discussion
	if s.tryCache(ctx, key, &cached) {
		return cached, true, nil
	}
	items, err := s.api.TrendingDiscussions(ctx, limit)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, key, items)
	return items, false, nil
}

func (s *DashboardService) resources(ctx context.Context, limit int) ([]models.Resource, bool, error) {
	key := fmt.Sprintf("%s%d", resourcesCachePrefix, limit)
	var cached []models.Resource
	if s.tryCache(ctx, key, &cached) {
		return cached, true, nil
	}
	items, err := s.api.Resources(ctx, limit)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, key, items)
	return items, false, nil
}

func (s *DashboardService) tryCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.Get(ctx, key, dest)
	return err == nil && hit
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
