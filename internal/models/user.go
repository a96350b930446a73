package models

import (
	"net/url"
	"strings"
)

// UserProfile is the profile snapshot returned by login and GET /users/me.
type UserProfile struct {
	ID            FlexString `json:"id,omitempty"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Email         string     `json:"email,omitempty"`
	StudentNumber string     `json:"studentNumber,omitempty"`
}

// DisplayName joins first and last name, falling back to "Student".
func (u UserProfile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "Student"
	}
	return name
}

// AvatarURL builds the generated avatar image URL for the profile.
func (u UserProfile) AvatarURL() string {
	q := url.Values{}
	q.Set("name", u.FirstName+" "+u.LastName)
	q.Set("background", "3498db")
	q.Set("color", "fff")
	return "https://ui-avatars.com/api/?" + q.Encode()
}

// Progress is the payload of GET /users/me/progress.
type Progress struct {
	Percent float64 `json:"percent"`
}
