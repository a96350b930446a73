package models

import "time"

// Notification is an item of GET /notifications.
type Notification struct {
	ID        FlexString `json:"id"`
	Text      string     `json:"text"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// UnreadCount is the payload of GET /notifications/unread-count.
type UnreadCount struct {
	Count int `json:"count"`
}

// Discussion is an item of GET /discussions/trending.
type Discussion struct {
	ID      FlexString `json:"id"`
	Title   string     `json:"title"`
	Replies int        `json:"replies"`
}

// Resource is a compact material reference shown on the dashboard.
type Resource struct {
	ID    FlexString `json:"id"`
	Title string     `json:"title"`
	URL   string     `json:"url"`
}
