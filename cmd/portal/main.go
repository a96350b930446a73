package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/peerconnect-portal/api/swagger"
	"github.com/noah-isme/peerconnect-portal/internal/client"
	"github.com/noah-isme/peerconnect-portal/internal/handler"
	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	"github.com/noah-isme/peerconnect-portal/internal/repository"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	"github.com/noah-isme/peerconnect-portal/pkg/cache"
	"github.com/noah-isme/peerconnect-portal/pkg/config"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/export"
	"github.com/noah-isme/peerconnect-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/peerconnect-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/peerconnect-portal/pkg/middleware/requestid"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

// @title PeerConnect Portal API
// @version 1.0.0
// @description JSON surface of the study-materials browser.
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tmpl, err := render.LoadTemplates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}
	static, err := render.Static()
	if err != nil {
		logr.Fatal("failed to open static assets", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	apiClient := client.New(cfg.Upstream, metricsSvc, logr)
	store := session.NewStore(cfg.Session)
	validate := validator.New()

	readiness := map[string]handler.ReadinessCheck{
		"upstream": handler.UpstreamCheck(nil, cfg.Upstream.BaseURL),
	}

	var cacheSvc *service.CacheService
	if cfg.Dashboard.CacheEnabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			defer rdb.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(rdb, "peerconnect", logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
			readiness["redis"] = cacheRepo.Ping
		}
	}

	authSvc := service.NewAuthService(apiClient, validate, logr)
	gateSvc := service.NewGateService(apiClient, logr)
	materials := service.NewMaterials(apiClient, gateSvc, cfg.Materials.PageSize, logr)
	uploadSvc := service.NewUploadService(apiClient, validate, cfg.Materials.MaxUploadSize, logr).WithCache(cacheSvc)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		API:    apiClient,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:    cfg.Dashboard.CacheTTL,
			WidgetLimit: cfg.Dashboard.WidgetLimit,
		},
	})

	authHandler := handler.NewAuthHandler(authSvc, store, logr)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, authSvc)
	materialsHandler := handler.NewMaterialsHandler(handler.MaterialsHandlerParams{
		Materials:  materials,
		Uploads:    uploadSvc,
		Downloader: apiClient,
		CSV:        export.NewCSVExporter(),
		PDF:        export.NewPDFExporter(),
		Logger:     logr,
	})
	apiHandler := handler.NewAPIHandler(materialsHandler, dashboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)
	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)

	r := gin.New()
	r.HTMLRender = tmpl
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(response.Session(store, metricsSvc.RecordSessionExpired))

	r.StaticFS("/static", http.FS(static))
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r.GET("/", func(c *gin.Context) { response.Redirect(c, handler.DashboardPath) })
	r.GET("/login", authHandler.Show)
	r.POST("/login", loginLimiter.Middleware(), authHandler.Login)
	r.POST("/forgot-password", loginLimiter.Middleware(), authHandler.ForgotPassword)
	r.POST("/activate", loginLimiter.Middleware(), authHandler.Activate)
	r.POST("/logout", authHandler.Logout)

	guard := middleware.RequireSession(store, logr)
	pages := r.Group("/", guard)
	pages.GET("/dashboard", dashboardHandler.Show)
	pages.POST("/notifications/:id/read", dashboardHandler.MarkRead)
	pages.GET("/materials", materialsHandler.List)
	pages.POST("/materials/upload", materialsHandler.Upload)
	pages.GET("/materials/export.csv", materialsHandler.ExportCSV)
	pages.GET("/materials/export.pdf", materialsHandler.ExportPDF)
	pages.GET("/materials/:id/download", materialsHandler.Download)

	v1 := r.Group(cfg.APIPrefix, guard)
	v1.GET("/materials", apiHandler.Materials)
	v1.GET("/materials/gate", apiHandler.Gate)
	v1.POST("/materials/upload", apiHandler.Upload)
	v1.GET("/notifications/latest", apiHandler.LatestNotifications)

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, appErrors.Clone(appErrors.ErrNotFound, "Page not found"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "upstream", apiClient.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
