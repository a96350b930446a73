package render

import "strings"

// Material type tags offered by the upload form.
const (
	MaterialLectureNotes = "Lecture Notes"
	MaterialPastPapers   = "Past Papers"
	MaterialSummary      = "Summary"
	MaterialTutorial     = "Tutorial"
	MaterialAssignment   = "Assignment"
	MaterialVideo        = "Video"
	MaterialLink         = "Link"
)

// Notification type tags sent by the API.
const (
	NotificationReply      = "reply"
	NotificationMaterial   = "material"
	NotificationConnection = "connection"
	NotificationMention    = "mention"
	NotificationSystem     = "system"
)

const (
	fallbackTypeIcon         = "fas fa-file"
	fallbackNotificationIcon = "fas fa-bell"
)

var typeIcons = map[string]string{
	MaterialLectureNotes: "fas fa-book-open",
	MaterialPastPapers:   "fas fa-file-alt",
	MaterialSummary:      "fas fa-list-alt",
	MaterialTutorial:     "fas fa-chalkboard-teacher",
	MaterialAssignment:   "fas fa-tasks",
	MaterialVideo:        "fas fa-file-video",
	MaterialLink:         "fas fa-link",
}

var notificationIcons = map[string]string{
	NotificationReply:      "fas fa-comment-dots",
	NotificationMaterial:   "fas fa-book",
	NotificationConnection: "fas fa-user-plus",
	NotificationMention:    "fas fa-at",
	NotificationSystem:     "fas fa-info-circle",
}

// MaterialTypes lists the known material tags in display order.
func MaterialTypes() []string {
	return []string{
		MaterialLectureNotes,
		MaterialPastPapers,
		MaterialSummary,
		MaterialTutorial,
		MaterialAssignment,
		MaterialVideo,
		MaterialLink,
	}
}

// NotificationTypes lists the known notification tags.
func NotificationTypes() []string {
	return []string{
		NotificationReply,
		NotificationMaterial,
		NotificationConnection,
		NotificationMention,
		NotificationSystem,
	}
}

// TypeIcon maps a material type tag to its icon class. Unknown tags get a
// generic file icon.
func TypeIcon(tag string) string {
	if icon, ok := typeIcons[strings.TrimSpace(tag)]; ok {
		return icon
	}
	return fallbackTypeIcon
}

// NotificationIcon maps a notification type tag to its icon class. Unknown
// tags get a bell.
func NotificationIcon(tag string) string {
	if icon, ok := notificationIcons[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return icon
	}
	return fallbackNotificationIcon
}
