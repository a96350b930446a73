package models

import (
	"regexp"
	"strings"
	"time"
)

var externalURL = regexp.MustCompile(`(?i)^https?://`)

// Material is an uploaded study resource: a stored file or an external link.
type Material struct {
	ID           FlexString `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Type         string     `json:"type"`
	Module       string     `json:"module"`
	Year         FlexString `json:"year"`
	UploaderName string     `json:"uploader_name"`
	UploadedAt   *time.Time `json:"uploaded_at,omitempty"`
	Downloads    int        `json:"downloads"`
	FileURL      string     `json:"file_url,omitempty"`
	Link         string     `json:"link,omitempty"`
}

// IsExternalURL reports whether target is an http(s) URL.
func IsExternalURL(target string) bool {
	return externalURL.MatchString(strings.TrimSpace(target))
}

// HasExternal reports whether the material points at an http(s) target.
func (m Material) HasExternal() bool {
	return IsExternalURL(m.Link) || IsExternalURL(m.FileURL)
}

// HasLocalFile reports whether the material references a stored file.
func (m Material) HasLocalFile() bool {
	return strings.TrimSpace(m.FileURL) != "" && !IsExternalURL(m.FileURL)
}

// HasTarget reports whether there is anything to view or download.
func (m Material) HasTarget() bool {
	return m.HasExternal() || m.HasLocalFile()
}

// MaterialList is the paginated payload of GET /study-materials.
type MaterialList struct {
	Materials  []Material `json:"materials"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
}

// MaterialQuery carries the filter parameters sent to the list endpoint.
type MaterialQuery struct {
	Search string
	Module string
	Year   string
	Type   string
	Sort   string
	Page   int
	Limit  int
}

// DownloadStatus is the payload of GET /study-materials/me/status.
type DownloadStatus struct {
	CanDownload bool `json:"can_download"`
}

// UploadResult is the payload of POST /study-materials/upload.
type UploadResult struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Material *Material `json:"material,omitempty"`
}
