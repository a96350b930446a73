package dto

import "github.com/noah-isme/peerconnect-portal/internal/models"

// StudentDashboard captures the aggregated student dashboard payload. Each
// widget carries its own failure flag so one broken section never hides the
// others.
type StudentDashboard struct {
	Profile       ProfileWidget      `json:"profile"`
	Notifications NotificationWidget `json:"notifications"`
	Trending      TrendingWidget     `json:"trending"`
	Resources     ResourceWidget     `json:"resources"`
	Progress      ProgressWidget     `json:"progress"`
	UnreadCount   int                `json:"unreadCount"`
}

// ProfileWidget is the greeting header.
type ProfileWidget struct {
	User   models.UserProfile `json:"user"`
	Loaded bool               `json:"loaded"`
}

// NotificationWidget lists the latest notifications.
type NotificationWidget struct {
	Items  []models.Notification `json:"items"`
	Failed bool                  `json:"failed"`
}

// TrendingWidget lists the hottest discussions. Cached marks a cache hit.
type TrendingWidget struct {
	Items  []models.Discussion `json:"items"`
	Failed bool                `json:"failed"`
	Cached bool                `json:"cached"`
}

// ResourceWidget lists recent study resources. Cached marks a cache hit.
type ResourceWidget struct {
	Items  []models.Resource `json:"items"`
	Failed bool              `json:"failed"`
	Cached bool              `json:"cached"`
}

// ProgressWidget shows course completion. Available is false when the API
// had no data.
type ProgressWidget struct {
	Percent   float64 `json:"percent"`
	Available bool    `json:"available"`
}
