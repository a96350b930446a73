package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/peerconnect-portal/internal/service"
)

func healthRouter(h *MetricsHandler) *gin.Engine {
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	return r
}

func TestReadyAllChecksPass(t *testing.T) {
	h := NewMetricsHandler(service.NewMetricsService(), map[string]ReadinessCheck{
		"upstream": func(context.Context) error { return nil },
	})

	rec := serve(healthRouter(h), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","checks":{"upstream":"ok"}}`, rec.Body.String())
}

func TestReadyReportsFailedCheck(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"upstream": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec := serve(healthRouter(h), httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"upstream":"ok","redis":"connection refused"}}`, rec.Body.String())
}

func TestHealthAndMetrics(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveUpstream("users.me", http.StatusOK, 0)
	r := healthRouter(NewMetricsHandler(metrics, nil))

	health := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, health.Code)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_request_duration_seconds")
}

func TestMetricsUnavailableWithoutService(t *testing.T) {
	rec := serve(healthRouter(NewMetricsHandler(nil, nil)), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUpstreamCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	assert.NoError(t, UpstreamCheck(nil, server.URL)(context.Background()))
	assert.Error(t, UpstreamCheck(nil, "http://127.0.0.1:1")(context.Background()))
}
