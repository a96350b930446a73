package render

import (
	"html/template"
	"strconv"

	"github.com/noah-isme/peerconnect-portal/internal/dto"
	"github.com/noah-isme/peerconnect-portal/internal/service"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

// Page copy.
const (
	GateBanner      = "To view or download study materials (including links), please upload at least one material."
	AccessPrompt    = "To access study materials, please upload at least one item first."
	EmptyListing    = "No study materials yet. Be the first to upload one!"
	EmptyFiltered   = "No materials match your filters."
	FailedListing   = "No materials found"
	NoProgress      = "No progress data."
	NoNotifications = "No new notifications."
	NoTrending      = "No trending discussions."
	NoResources     = "No resources yet."
)

// Page is the data common to every page layout.
type Page struct {
	Title     string
	Flash     *session.Flash
	RequestID string
	Nav       string
}

// UploadForm echoes the upload inputs back after a rejected submission. The
// file itself is never echoed.
type UploadForm struct {
	Title       string
	Description string
	Type        string
	Module      string
	Year        string
	Link        string
	Error       string
}

// FilterForm is the state of the filter controls.
type FilterForm struct {
	Search   string
	Module   string
	Year     string
	Type     string
	Sort     string
	ResetURL string
}

// MaterialsView is the model of the materials page.
type MaterialsView struct {
	Page
	Filters      FilterForm
	Cards        []MaterialCard
	ShowBanner   bool
	Banner       string
	EmptyMessage string
	Failed       bool
	Pagination   *PaginationView
	Modals       Modals
	Upload       UploadForm
	AccessPrompt string
	UploadAction string
	CloseURL     string
	OpenUpload   string
	ExportCSV    string
	ExportPDF    string
	Types        []string
	MaxUpload    string
}

// NewMaterialsView builds the whole page model from a controller snapshot.
func NewMaterialsView(page Page, snap service.Snapshot, modals Modals, form UploadForm, maxUpload string) MaterialsView {
	page.Nav = "materials"
	if page.Title == "" {
		page.Title = "Study Materials"
	}
	state := snap.State
	values := ListingValues(state)
	query := ""
	if len(values) > 0 {
		query = "?" + values.Encode()
	}

	view := MaterialsView{
		Page: page,
		Filters: FilterForm{
			Search:   state.Search,
			Module:   state.Module,
			Year:     state.Year,
			Type:     state.Type,
			Sort:     state.Sort,
			ResetURL: MaterialsPath,
		},
		Cards:        NewMaterialCards(snap),
		ShowBanner:   !snap.CanDownload,
		Banner:       GateBanner,
		Failed:       snap.Result.Failed,
		Pagination:   NewPagination(state, snap.Result.Page, snap.Result.TotalPages),
		Modals:       modals,
		Upload:       form,
		AccessPrompt: AccessPrompt,
		UploadAction: MaterialsPath + "/upload" + query,
		CloseURL:     ListingURL(state, ModalNone),
		OpenUpload:   ListingURL(state, ModalUpload),
		ExportCSV:    MaterialsPath + "/export.csv" + query,
		ExportPDF:    MaterialsPath + "/export.pdf" + query,
		Types:        MaterialTypes(),
		MaxUpload:    maxUpload,
	}
	switch {
	case snap.Result.Failed:
		view.EmptyMessage = FailedListing
	case len(view.Cards) == 0 && state.Filtered():
		view.EmptyMessage = EmptyFiltered
	case len(view.Cards) == 0:
		view.EmptyMessage = EmptyListing
	}
	return view
}

// NotificationItem is one rendered notification.
type NotificationItem struct {
	ID   string
	Icon string
	Text template.HTML
	Read bool
	Date string
}

// DiscussionItem is one trending discussion.
type DiscussionItem struct {
	Title   string
	Replies int
}

// ResourceItem is one dashboard resource.
type ResourceItem struct {
	Title string
	URL   string
}

// DashboardView is the model of the dashboard page.
type DashboardView struct {
	Page
	DisplayName   string
	AvatarURL     string
	Notifications []NotificationItem
	Trending      []DiscussionItem
	Resources     []ResourceItem
	NotifEmpty    string
	TrendingEmpty string
	ResEmpty      string
	Progress      float64
	ProgressLabel string
	HasProgress   bool
	Badge         string
}

// NewDashboardView turns the aggregated dashboard into display items.
func NewDashboardView(page Page, d *dto.StudentDashboard) DashboardView {
	page.Nav = "dashboard"
	if page.Title == "" {
		page.Title = "Dashboard"
	}
	user := d.Profile.User
	view := DashboardView{
		Page:        page,
		DisplayName: user.DisplayName(),
		AvatarURL:   user.AvatarURL(),
		HasProgress: d.Progress.Available,
		Progress:    d.Progress.Percent,
	}

	for _, n := range d.Notifications.Items {
		view.Notifications = append(view.Notifications, NotificationItem{
			ID:   n.ID.String(),
			Icon: NotificationIcon(n.Type),
			Text: InlineHTML(n.Text),
			Read: n.Read,
			Date: FormatDate(n.CreatedAt),
		})
	}
	if len(view.Notifications) == 0 {
		view.NotifEmpty = NoNotifications
	}

	for _, t := range d.Trending.Items {
		view.Trending = append(view.Trending, DiscussionItem{
			Title:   t.Title,
			Replies: t.Replies,
		})
	}
	if len(view.Trending) == 0 {
		view.TrendingEmpty = NoTrending
	}

	for _, r := range d.Resources.Items {
		view.Resources = append(view.Resources, ResourceItem{Title: r.Title, URL: r.URL})
	}
	if len(view.Resources) == 0 {
		view.ResEmpty = NoResources
	}

	if view.HasProgress {
		view.ProgressLabel = strconv.FormatFloat(d.Progress.Percent, 'f', -1, 64) + "% Complete"
	} else {
		view.ProgressLabel = NoProgress
	}
	if d.UnreadCount > 0 {
		view.Badge = strconv.Itoa(d.UnreadCount)
	}
	return view
}

// FormMessage is an inline success or error line under a form.
type FormMessage struct {
	Error   string
	Success string
}

// LoginView is the model of the login page and its recovery dialogs.
type LoginView struct {
	Page
	StudentNumber string
	Login         FormMessage
	Forgot        FormMessage
	Activate      FormMessage
	ForgotEmail   string
	ActivateID    string
	ActivateEmail string
	Modals        Modals
}

// NewLoginView builds the login page model.
func NewLoginView(page Page, modals Modals) LoginView {
	page.Nav = "login"
	if page.Title == "" {
		page.Title = "Log in"
	}
	return LoginView{Page: page, Modals: modals}
}

// ErrorView is the model of the generic error page.
type ErrorView struct {
	Page
	Status  int
	Message string
}
