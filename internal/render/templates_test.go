package render

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerconnect-portal/internal/dto"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

func renderToString(t *testing.T, tmpl *Templates, name string, data interface{}) string {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, tmpl.Instance(name, data).Render(w))
	return w.Body.String()
}

func TestLoadTemplates(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)
	for _, name := range []string{PageLogin, PageDashboard, PageMaterials, PageError} {
		assert.Contains(t, tmpl.pages, name)
	}
}

func TestMaterialsTemplateEscapesUserContent(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	snap := service.Snapshot{
		State:       service.DefaultQueryState(),
		CanDownload: true,
		Result: service.PageResult{Page: 1, TotalPages: 1, Materials: []models.Material{{
			ID:           "1",
			Title:        `<script>alert("x")</script>`,
			Description:  `<img src=x onerror=alert(1)>`,
			UploaderName: `<b>Mallory</b>`,
			FileURL:      "uploads/a.pdf",
		}}},
	}
	body := renderToString(t, tmpl, PageMaterials, NewMaterialsView(Page{}, snap, NewModals(), UploadForm{}, ""))
	assert.NotContains(t, body, `<script>alert`)
	assert.NotContains(t, body, `<img src=x`)
	assert.NotContains(t, body, `<b>Mallory</b>`)
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Contains(t, body, "/materials/1/download")
	assert.NotContains(t, body, GateBanner)
	assert.NotContains(t, body, `id="pagination"`)
}

func TestMaterialsTemplateModals(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)
	snap := service.Snapshot{State: service.DefaultQueryState(), Result: service.PageResult{Page: 1}}

	closed := renderToString(t, tmpl, PageMaterials, NewMaterialsView(Page{}, snap, NewModals(), UploadForm{}, ""))
	assert.NotContains(t, closed, `id="uploadModal"`)
	assert.NotContains(t, closed, `id="accessModal"`)

	form := UploadForm{Title: "Draft", Link: "https://x.test", Error: "Please provide either a file OR a link, not both."}
	upload := renderToString(t, tmpl, PageMaterials, NewMaterialsView(Page{}, snap, NewModals(ModalUpload), form, "25MiB"))
	assert.Contains(t, upload, `id="uploadModal"`)
	assert.Contains(t, upload, `value="Draft"`)
	assert.Contains(t, upload, "Please provide either a file OR a link, not both.")
	assert.Contains(t, upload, "Maximum size 25MiB")

	access := renderToString(t, tmpl, PageMaterials, NewMaterialsView(Page{}, snap, NewModals(ModalAccess), UploadForm{}, ""))
	assert.Contains(t, access, `id="accessModal"`)
	assert.Contains(t, access, AccessPrompt)
	assert.Contains(t, access, `href="/materials?modal=upload"`)
	assert.Contains(t, access, `class="modal-backdrop"`)
}

func TestDashboardTemplate(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	d := &dto.StudentDashboard{
		Profile:       dto.ProfileWidget{User: models.UserProfile{FirstName: "Ada", LastName: "Lovelace"}, Loaded: true},
		Notifications: dto.NotificationWidget{Items: []models.Notification{{ID: "n1", Type: "reply", Text: `<b>Bob</b> replied <script>x()</script>`}}},
		Trending:      dto.TrendingWidget{Failed: true},
		Resources:     dto.ResourceWidget{Items: []models.Resource{{Title: "Sheet", URL: "https://x.test/s"}, {Title: "Local"}}},
		Progress:      dto.ProgressWidget{Percent: 42, Available: true},
		UnreadCount:   3,
	}
	page := Page{Flash: &session.Flash{Kind: "success", Message: "Login successful!"}}
	body := renderToString(t, tmpl, PageDashboard, NewDashboardView(page, d))

	assert.Contains(t, body, "Ada Lovelace")
	assert.Contains(t, body, "<b>Bob</b> replied")
	assert.NotContains(t, body, "<script>x()")
	assert.Contains(t, body, "fas fa-comment-dots")
	assert.Contains(t, body, NoTrending)
	assert.Contains(t, body, `href="https://x.test/s"`)
	assert.Contains(t, body, "42% Complete")
	assert.Contains(t, body, "Login successful!")
	assert.Contains(t, body, `action="/notifications/n1/read"`)
}

func TestDashboardViewWithoutData(t *testing.T) {
	view := NewDashboardView(Page{}, &dto.StudentDashboard{})
	assert.Equal(t, "Student", view.DisplayName)
	assert.Equal(t, NoProgress, view.ProgressLabel)
	assert.Equal(t, NoNotifications, view.NotifEmpty)
	assert.Equal(t, NoResources, view.ResEmpty)
	assert.Empty(t, view.Badge)
}

func TestLoginTemplate(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)

	view := NewLoginView(Page{}, NewModals(ModalForgot))
	view.Forgot.Success = "Reset email sent!"
	view.Login.Error = "Invalid login credentials"
	body := renderToString(t, tmpl, PageLogin, view)
	assert.Contains(t, body, `id="forgotPasswordModal"`)
	assert.NotContains(t, body, `id="activateAccountModal"`)
	assert.Contains(t, body, "Reset email sent!")
	assert.Contains(t, body, "Invalid login credentials")
	assert.NotContains(t, body, "Log out")
}

func TestUnknownPageFallsBackToError(t *testing.T) {
	tmpl, err := LoadTemplates()
	require.NoError(t, err)
	body := renderToString(t, tmpl, "nope", ErrorView{Status: 404, Message: "Page not found"})
	assert.Contains(t, body, "Page not found")
}
