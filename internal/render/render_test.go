package render

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/service"
)

func TestFileTypeLabel(t *testing.T) {
	cases := map[string]string{
		"":                               NoTargetLabel,
		"   ":                            NoTargetLabel,
		"LINK":                           "LINK",
		"https://drive.example/doc":      "LINK",
		"HTTP://example.com/a.pdf":       "LINK",
		"uploads/notes.pdf":              "PDF",
		"uploads/Slides.PPTX":            "PPTX",
		"uploads/sheet.xlsx?v=2":         "XLSX",
		"uploads/archive.zip":            "ZIP",
		"uploads/readme.txt":             "TXT",
		"uploads/report.docx":            "DOCX",
		"uploads/photo.jpeg":             "JPEG",
		"uploads/movie.mp4":              "MP4",
		"ftp://example.com/not-http.pdf": "PDF",
	}
	for target, want := range cases {
		assert.Equal(t, want, FileTypeLabel(target), target)
	}
}

func TestTypeIconCoversKnownTags(t *testing.T) {
	seen := map[string]bool{}
	for _, tag := range MaterialTypes() {
		icon := TypeIcon(tag)
		assert.NotEqual(t, fallbackTypeIcon, icon, tag)
		seen[icon] = true
	}
	assert.Len(t, seen, len(MaterialTypes()))
	assert.Len(t, typeIcons, len(MaterialTypes()))
	assert.Equal(t, fallbackTypeIcon, TypeIcon("Mystery Scroll"))
	assert.Equal(t, fallbackTypeIcon, TypeIcon(""))
}

func TestNotificationIconCoversKnownTags(t *testing.T) {
	for _, tag := range NotificationTypes() {
		assert.NotEqual(t, fallbackNotificationIcon, NotificationIcon(tag), tag)
	}
	assert.Len(t, notificationIcons, len(NotificationTypes()))
	assert.Equal(t, NotificationIcon(NotificationReply), NotificationIcon(" REPLY "))
	assert.Equal(t, fallbackNotificationIcon, NotificationIcon("carrier-pigeon"))
}

func TestMaterialCardActions(t *testing.T) {
	local := models.Material{ID: "7", FileURL: "uploads/a.pdf"}
	external := models.Material{ID: "8", Link: "https://x.test"}
	nothing := models.Material{ID: "9"}
	state := service.DefaultQueryState()
	locked := "/materials?modal=access"

	open := NewMaterialCard(local, true, state)
	assert.True(t, open.Action.Download())
	assert.Equal(t, "/materials/7/download", open.Action.Href)
	assert.Equal(t, "PDF", open.FileType)

	ext := NewMaterialCard(external, true, state)
	assert.True(t, ext.Action.Download())
	assert.Equal(t, "/materials/8/download", ext.Action.Href)
	assert.Equal(t, "LINK", ext.FileType)

	for _, m := range []models.Material{local, external} {
		card := NewMaterialCard(m, false, state)
		assert.True(t, card.Action.Locked())
		assert.Equal(t, locked, card.Action.Href)
		assert.NotContains(t, card.Action.Href, "download")
	}

	for _, gate := range []bool{true, false} {
		card := NewMaterialCard(nothing, gate, state)
		assert.True(t, card.Action.None())
		assert.Equal(t, "No file available", card.Action.Label)
		assert.Empty(t, card.Action.Href)
		assert.Equal(t, NoTargetLabel, card.FileType)
	}
}

func TestMaterialCardLinksKeepListing(t *testing.T) {
	state := service.QueryState{Search: "calculus", Module: "CS101", Sort: service.DefaultSort, Page: 3}
	m := models.Material{ID: "7", FileURL: "uploads/a.pdf"}

	open := NewMaterialCard(m, true, state)
	assert.Equal(t, "/materials/7/download?module=CS101&page=3&search=calculus", open.Action.Href)

	locked := NewMaterialCard(m, false, state)
	assert.Equal(t, "/materials?modal=access&module=CS101&page=3&search=calculus", locked.Action.Href)
}

func TestMaterialCardDefaults(t *testing.T) {
	uploaded := time.Date(2023, 10, 15, 9, 30, 0, 0, time.UTC)
	card := NewMaterialCard(models.Material{ID: "1", UploaderName: "  émile ", UploadedAt: &uploaded, Year: "2023"}, false, service.DefaultQueryState())
	assert.Equal(t, "Untitled", card.Title)
	assert.Equal(t, "émile", card.Uploader)
	assert.Equal(t, "É", card.AvatarInitial)
	assert.Equal(t, "15 Oct 2023", card.Date)
	assert.Equal(t, "2023", card.Year)

	anon := NewMaterialCard(models.Material{ID: "2"}, false, service.DefaultQueryState())
	assert.Equal(t, "Unknown", anon.Uploader)
	assert.Equal(t, "U", anon.AvatarInitial)
	assert.Empty(t, anon.Date)
}

func TestNewPagination(t *testing.T) {
	state := service.QueryState{Search: "calculus", Sort: "recent", Page: 2}

	assert.Nil(t, NewPagination(state, 1, 1))
	assert.Nil(t, NewPagination(state, 1, 0))

	p := NewPagination(state, 2, 5)
	require.NotNil(t, p)
	assert.Equal(t, "Page 2 of 5", p.Label)
	assert.False(t, p.PrevDisabled)
	assert.False(t, p.NextDisabled)
	assert.Equal(t, "/materials?search=calculus", p.PrevURL)
	assert.Equal(t, "/materials?page=3&search=calculus", p.NextURL)

	first := NewPagination(state, 1, 3)
	assert.True(t, first.PrevDisabled)
	assert.Empty(t, first.PrevURL)
	assert.False(t, first.NextDisabled)

	last := NewPagination(state, 3, 3)
	assert.False(t, last.PrevDisabled)
	assert.True(t, last.NextDisabled)
	assert.Empty(t, last.NextURL)
}

func TestModals(t *testing.T) {
	m := NewModals()
	assert.False(t, m.Any())

	m = m.Open(ModalAccess)
	assert.True(t, m.Access())

	m = m.Open(ModalUpload)
	assert.True(t, m.Upload())
	assert.False(t, m.Access(), "opening upload closes access")

	m = m.Open(ModalAccess)
	assert.True(t, m.Upload(), "opening access leaves upload alone")
	assert.True(t, m.Access())

	closed := m.Close(ModalUpload)
	assert.False(t, closed.Upload())
	assert.True(t, m.Upload(), "modals are values")

	assert.Equal(t, ModalForgot, ParseModal(" Forgot "))
	assert.Equal(t, ModalNone, ParseModal("settings"))
	assert.False(t, NewModals(ModalNone).Any())
}

func TestListingURLRoundTrip(t *testing.T) {
	state := service.QueryState{Search: "a b", Module: "Physics", Year: "2022", Type: "Past Papers", Sort: "popular", Page: 4}
	link := ListingURL(state, ModalAccess)
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/materials", u.Path)
	assert.Equal(t, "access", u.Query().Get("modal"))
	assert.Equal(t, state, QueryStateFrom(u.Query()))

	assert.Equal(t, "/materials", ListingURL(service.DefaultQueryState(), ModalNone))
	assert.Equal(t, service.DefaultQueryState(), QueryStateFrom(url.Values{"page": {"-3"}}))
}

func TestInlineHTMLAllowsOnlyEmphasis(t *testing.T) {
	out := string(InlineHTML(`<b>New</b> reply <script>alert(1)</script><a href="javascript:x">link</a> <em class="x">now</em>`))
	assert.Contains(t, out, "<b>New</b>")
	assert.Contains(t, out, "<em>now</em>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<a")
	assert.NotContains(t, out, "class=")
}

func TestNewMaterialsViewEmptyStates(t *testing.T) {
	base := service.Snapshot{State: service.DefaultQueryState(), Result: service.PageResult{Page: 1}}

	view := NewMaterialsView(Page{}, base, NewModals(), UploadForm{}, "")
	assert.Equal(t, EmptyListing, view.EmptyMessage)
	assert.True(t, view.ShowBanner)
	assert.Nil(t, view.Pagination)

	filtered := base
	filtered.State.Search = "nothing"
	assert.Equal(t, EmptyFiltered, NewMaterialsView(Page{}, filtered, NewModals(), UploadForm{}, "").EmptyMessage)

	failed := base
	failed.Result.Failed = true
	assert.Equal(t, FailedListing, NewMaterialsView(Page{}, failed, NewModals(), UploadForm{}, "").EmptyMessage)

	open := base
	open.CanDownload = true
	assert.False(t, NewMaterialsView(Page{}, open, NewModals(), UploadForm{}, "").ShowBanner)
}

func TestMaterialsPageExample(t *testing.T) {
	snap := service.Snapshot{
		State: service.QueryState{Search: "calculus", Sort: "recent", Page: 2},
		Result: service.PageResult{
			Materials:  []models.Material{{ID: "1", FileURL: "a.pdf"}, {ID: "2", Link: "https://x.test"}, {ID: "3"}},
			Page:       2,
			TotalPages: 5,
		},
	}
	view := NewMaterialsView(Page{}, snap, NewModals(), UploadForm{}, "25MiB")
	require.Len(t, view.Cards, 3)
	require.NotNil(t, view.Pagination)
	assert.Equal(t, "Page 2 of 5", view.Pagination.Label)
	assert.False(t, view.Pagination.PrevDisabled)
	assert.False(t, view.Pagination.NextDisabled)

	tmpl, err := LoadTemplates()
	require.NoError(t, err)
	body := renderToString(t, tmpl, PageMaterials, view)
	assert.Equal(t, 3, strings.Count(body, `class="material-card`))
	assert.Contains(t, body, "Page 2 of 5")
	assert.Contains(t, body, GateBanner)
	assert.NotContains(t, body, "/materials/1/download")
	assert.Equal(t, 2, strings.Count(body, "Access Locked"))
	assert.Contains(t, body, "No file available")
}
