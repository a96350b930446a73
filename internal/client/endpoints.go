package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
)

// Login exchanges student credentials for a bearer token. The returned HTTP
// status lets callers distinguish rejected credentials from transport errors.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, int, error) {
	var res models.LoginResponse
	status, err := c.postPublic(ctx, "auth.login", "/auth/login", req, &res)
	if err != nil {
		return nil, status, err
	}
	return &res, status, nil
}

// ForgotPassword starts the password reset flow.
func (c *Client) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) (*models.MessageResponse, int, error) {
	var res models.MessageResponse
	status, err := c.postPublic(ctx, "auth.forgot_password", "/auth/forgot-password", req, &res)
	if err != nil {
		return nil, status, err
	}
	return &res, status, nil
}

// Activate activates a student account.
func (c *Client) Activate(ctx context.Context, req models.ActivateAccountRequest) (*models.MessageResponse, int, error) {
	var res models.MessageResponse
	status, err := c.postPublic(ctx, "auth.activate", "/auth/activate", req, &res)
	if err != nil {
		return nil, status, err
	}
	return &res, status, nil
}

// Validate checks the current bearer credential.
func (c *Client) Validate(ctx context.Context) error {
	return c.Do(ctx, "auth.validate", http.MethodGet, "/auth/validate", nil, nil)
}

// Me returns the profile of the session user.
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.Do(ctx, "users.me", http.MethodGet, "/users/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Progress returns the user's course progress.
func (c *Client) Progress(ctx context.Context) (*models.Progress, error) {
	var progress models.Progress
	if err := c.Do(ctx, "users.progress", http.MethodGet, "/users/me/progress", nil, &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

// Notifications lists the most recent notifications.
func (c *Client) Notifications(ctx context.Context, limit int) ([]models.Notification, error) {
	var items []models.Notification
	path := "/notifications?limit=" + strconv.Itoa(limit)
	if err := c.Do(ctx, "notifications.list", http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// LatestNotifications lists notifications created since the last visit.
func (c *Client) LatestNotifications(ctx context.Context) ([]models.Notification, error) {
	var items []models.Notification
	if err := c.Do(ctx, "notifications.latest", http.MethodGet, "/notifications/latest", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UnreadCount returns the unread notification badge count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res models.UnreadCount
	if err := c.Do(ctx, "notifications.unread_count", http.MethodGet, "/notifications/unread-count", nil, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	path := "/notifications/" + url.PathEscape(id) + "/read"
	return c.Do(ctx, "notifications.mark_read", http.MethodPut, path, nil, nil)
}

// TrendingDiscussions lists the hottest forum threads.
func (c *Client) TrendingDiscussions(ctx context.Context, limit int) ([]models.Discussion, error) {
	var items []models.Discussion
	path := "/discussions/trending?limit=" + strconv.Itoa(limit)
	if err := c.Do(ctx, "discussions.trending", http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Resources lists recent study materials in compact form. The endpoint may
// answer with a bare array or the paginated envelope.
func (c *Client) Resources(ctx context.Context, limit int) ([]models.Resource, error) {
	var raw json.RawMessage
	path := "/study-materials?limit=" + strconv.Itoa(limit)
	if err := c.Do(ctx, "materials.resources", http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var items []models.Resource
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from server")
		}
		return items, nil
	}
	var list models.MaterialList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "invalid response from server")
	}
	items := make([]models.Resource, 0, len(list.Materials))
	for _, m := range list.Materials {
		r := models.Resource{ID: m.ID, Title: m.Title}
		switch {
		case models.IsExternalURL(m.Link):
			r.URL = m.Link
		case models.IsExternalURL(m.FileURL):
			r.URL = m.FileURL
		}
		items = append(items, r)
	}
	return items, nil
}

// ListMaterials fetches one page of the study-materials listing.
func (c *Client) ListMaterials(ctx context.Context, q models.MaterialQuery) (*models.MaterialList, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.Limit))
	setIf(params, "search", q.Search)
	setIf(params, "module", q.Module)
	setIf(params, "year", q.Year)
	setIf(params, "type", q.Type)
	setIf(params, "sort", q.Sort)

	var list models.MaterialList
	if err := c.Do(ctx, "materials.list", http.MethodGet, "/study-materials?"+params.Encode(), nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// DownloadStatus fetches the gate flag for the session user.
func (c *Client) DownloadStatus(ctx context.Context) (*models.DownloadStatus, error) {
	var status models.DownloadStatus
	if err := c.Do(ctx, "materials.status", http.MethodGet, "/study-materials/me/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// UploadForm is the multipart body of a material upload. File is nil for link uploads.
type UploadForm struct {
	Fields   map[string]string
	FileName string
	File     io.Reader
}

// UploadMaterial submits a new material. The server must answer success=true.
func (c *Client) UploadMaterial(ctx context.Context, form UploadForm) (*models.UploadResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range form.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode upload")
		}
	}
	if form.File != nil {
		part, err := writer.CreateFormFile("file", form.FileName)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode upload")
		}
		if _, err := io.Copy(part, form.File); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode upload")
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/study-materials/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("materials.upload", 0, time.Since(start))
		return nil, transportError(err)
	}
	defer resp.Body.Close()
	c.observe("materials.upload", resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, checkStatus(resp)
	}
	var result models.UploadResult
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || decodeErr != nil || !result.Success {
		message := result.Message
		if message == "" {
			message = fmt.Sprintf("Upload failed (%d)", resp.StatusCode)
		}
		return nil, appErrors.Wrap(&APIError{Status: resp.StatusCode, Message: result.Message}, appErrors.ErrUpstream.Code, http.StatusBadGateway, message)
	}
	return &result, nil
}

// DownloadMaterial opens the gated download for a material. Redirects are not
// followed so external links can be handed back to the browser. The caller
// owns the response body.
func (c *Client) DownloadMaterial(ctx context.Context, id string) (*http.Response, error) {
	path := "/study-materials/download/" + url.PathEscape(id) + "?token=" + url.QueryEscape(TokenFrom(ctx))
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	start := time.Now()
	resp, err := c.noRedirect.Do(req)
	if err != nil {
		c.observe("materials.download", 0, time.Since(start))
		return nil, transportError(err)
	}
	c.observe("materials.download", resp.StatusCode, time.Since(start))
	if resp.StatusCode == http.StatusUnauthorized {
		defer resp.Body.Close()
		return nil, checkStatus(resp)
	}
	return resp, nil
}

func setIf(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
