package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerconnect-portal/internal/client"
	"github.com/noah-isme/peerconnect-portal/internal/middleware"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	"github.com/noah-isme/peerconnect-portal/pkg/config"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore() *session.Store {
	return session.NewStore(config.SessionConfig{Secret: "handler-test"})
}

func newEngine(t *testing.T, store *session.Store) *gin.Engine {
	t.Helper()
	tmpl, err := render.LoadTemplates()
	require.NoError(t, err)
	r := gin.New()
	r.HTMLRender = tmpl
	r.Use(response.Session(store, nil))
	return r
}

// withSession copies the cookies a login would have set onto req.
func withSession(t *testing.T, store *session.Store, req *http.Request) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, store.SetToken(rec, "student-token"))
	require.NoError(t, store.SetUser(rec, models.UserProfile{FirstName: "Ada", LastName: "Lovelace"}))
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func flashOf(t *testing.T, store *session.Store, rec *httptest.ResponseRecorder) session.Flash {
	t.Helper()
	c := cookie(rec, session.FlashCookie)
	require.NotNil(t, c, "flash cookie")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	flash, ok := store.PopFlash(httptest.NewRecorder(), req)
	require.True(t, ok)
	return flash
}

type fakeMaterialsAPI struct {
	mu sync.Mutex

	list    *models.MaterialList
	listErr error
	queries []models.MaterialQuery
	tokens  []string

	canDownload bool
	statusErr   error

	uploadErr     error
	uploads       []client.UploadForm
	uploadedBytes string

	download    *http.Response
	downloadErr error
	downloadIDs []string

	latest    []models.Notification
	latestErr error
}

func (f *fakeMaterialsAPI) LatestNotifications(context.Context) ([]models.Notification, error) {
	return f.latest, f.latestErr
}

func (f *fakeMaterialsAPI) ListMaterials(ctx context.Context, q models.MaterialQuery) (*models.MaterialList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	f.tokens = append(f.tokens, client.TokenFrom(ctx))
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeMaterialsAPI) DownloadStatus(context.Context) (*models.DownloadStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &models.DownloadStatus{CanDownload: f.canDownload}, nil
}

func (f *fakeMaterialsAPI) UploadMaterial(_ context.Context, form client.UploadForm) (*models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if form.File != nil {
		b, _ := io.ReadAll(form.File)
		f.uploadedBytes = string(b)
	}
	f.uploads = append(f.uploads, form)
	f.canDownload = true
	return &models.UploadResult{Success: true}, nil
}

func (f *fakeMaterialsAPI) DownloadMaterial(_ context.Context, id string) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloadIDs = append(f.downloadIDs, id)
	return f.download, f.downloadErr
}

func upstreamResponse(status int, headers map[string]string, body string) *http.Response {
	resp := &http.Response{
		StatusCode:    status,
		Header:        http.Header{},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

// materialsRouter mounts the materials routes behind the session guard.
func materialsRouter(t *testing.T, api *fakeMaterialsAPI, maxUpload int64) (*gin.Engine, *session.Store) {
	t.Helper()
	store := newStore()
	r := newEngine(t, store)

	materials := service.NewMaterials(api, service.NewGateService(api, nil), 10, nil)
	h := NewMaterialsHandler(MaterialsHandlerParams{
		Materials:  materials,
		Uploads:    service.NewUploadService(api, nil, maxUpload, nil),
		Downloader: api,
	})
	apiHandler := NewAPIHandler(h, api)

	guarded := r.Group("/", middleware.RequireSession(store, nil))
	guarded.GET("/materials", h.List)
	guarded.POST("/materials/upload", h.Upload)
	guarded.GET("/materials/export.csv", h.ExportCSV)
	guarded.GET("/materials/export.pdf", h.ExportPDF)
	guarded.GET("/materials/:id/download", h.Download)

	v1 := r.Group("/api/v1", middleware.RequireSession(store, nil))
	v1.GET("/materials", apiHandler.Materials)
	v1.GET("/materials/gate", apiHandler.Gate)
	v1.POST("/materials/upload", apiHandler.Upload)
	v1.GET("/notifications/latest", apiHandler.LatestNotifications)
	return r, store
}
