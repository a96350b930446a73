package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerconnect-portal/internal/client"
	"github.com/noah-isme/peerconnect-portal/internal/dto"
	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

type fakeDashboardSrv struct {
	dash     *dto.StudentDashboard
	err      error
	snapshot *models.UserProfile
	token    string
	marked   []string
	markErr  error
}

func (f *fakeDashboardSrv) Load(ctx context.Context, snapshot *models.UserProfile) (*dto.StudentDashboard, error) {
	f.snapshot = snapshot
	f.token = client.TokenFrom(ctx)
	return f.dash, f.err
}

func (f *fakeDashboardSrv) MarkNotificationRead(_ context.Context, id string) error {
	f.marked = append(f.marked, id)
	return f.markErr
}

type fakeValidator struct {
	err   error
	calls int
}

func (f *fakeValidator) ValidateSession(context.Context) error {
	f.calls++
	return f.err
}

func dashboardRouter(t *testing.T, svc *fakeDashboardSrv, auth *fakeValidator) (*gin.Engine, *session.Store) {
	t.Helper()
	store := newStore()
	r := newEngine(t, store)
	h := NewDashboardHandler(svc, auth)
	guarded := r.Group("/", middleware.RequireSession(store, nil))
	guarded.GET("/dashboard", h.Show)
	guarded.POST("/notifications/:id/read", h.MarkRead)
	return r, store
}

func TestDashboardRendersWidgets(t *testing.T) {
	svc := &fakeDashboardSrv{dash: &dto.StudentDashboard{
		Profile:     dto.ProfileWidget{User: models.UserProfile{FirstName: "Ada", LastName: "Lovelace"}, Loaded: true},
		Progress:    dto.ProgressWidget{Percent: 80, Available: true},
		UnreadCount: 2,
	}}
	auth := &fakeValidator{}
	r, store := dashboardRouter(t, svc, auth)

	rec := serve(r, withSession(t, store, httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ada Lovelace")
	assert.Contains(t, rec.Body.String(), "80% Complete")
	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, "student-token", svc.token)
	require.NotNil(t, svc.snapshot)
	assert.Equal(t, "Ada", svc.snapshot.FirstName)
}

func TestDashboardInvalidTokenEndsSession(t *testing.T) {
	svc := &fakeDashboardSrv{}
	r, store := dashboardRouter(t, svc, &fakeValidator{err: appErrors.ErrSessionExpired})

	rec := serve(r, withSession(t, store, httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	assert.Nil(t, svc.snapshot)
	assert.Equal(t, appErrors.ErrSessionExpired.Message, flashOf(t, store, rec).Message)
}

func TestDashboardValidationOutageEndsSessionQuietly(t *testing.T) {
	auth := &fakeValidator{err: appErrors.Wrap(appErrors.ErrUpstream, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "Please log in to continue.")}
	r, store := dashboardRouter(t, &fakeDashboardSrv{}, auth)

	rec := serve(r, withSession(t, store, httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	token := cookie(rec, session.TokenCookie)
	require.NotNil(t, token)
	assert.True(t, token.MaxAge < 0)
	assert.Nil(t, cookie(rec, session.FlashCookie))
}

func TestDashboardWidgetExpiryRedirectsOnce(t *testing.T) {
	svc := &fakeDashboardSrv{err: appErrors.ErrSessionExpired}
	r, store := dashboardRouter(t, svc, &fakeValidator{})

	rec := serve(r, withSession(t, store, httptest.NewRequest(http.MethodGet, "/dashboard", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Len(t, rec.Header().Values("Location"), 1)
}

func TestDashboardMarkRead(t *testing.T) {
	svc := &fakeDashboardSrv{}
	r, store := dashboardRouter(t, svc, &fakeValidator{})

	rec := serve(r, withSession(t, store, httptest.NewRequest(http.MethodPost, "/notifications/n7/read", nil)))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, DashboardPath, rec.Header().Get("Location"))
	assert.Equal(t, []string{"n7"}, svc.marked)
}
