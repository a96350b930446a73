package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/internal/render"
	appErrors "github.com/noah-isme/peerconnect-portal/pkg/errors"
	"github.com/noah-isme/peerconnect-portal/pkg/middleware/requestid"
	"github.com/noah-isme/peerconnect-portal/pkg/session"
)

// LoginPath is where ended sessions are sent.
const LoginPath = "/login"

const sessionKey = "response.session"

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// SessionStore is the part of the cookie store the response layer needs.
type SessionStore interface {
	Clear(w http.ResponseWriter)
	SetFlash(w http.ResponseWriter, flash session.Flash) error
	PopFlash(w http.ResponseWriter, r *http.Request) (session.Flash, bool)
}

type sessionBinding struct {
	store    SessionStore
	onExpire func()
}

// Session makes the cookie store available to Fail and PageData. onExpire,
// when set, is called once per forced logout.
func Session(store SessionStore, onExpire func()) gin.HandlerFunc {
	binding := &sessionBinding{store: store, onExpire: onExpire}
	return func(c *gin.Context) {
		c.Set(sessionKey, binding)
		c.Next()
	}
}

func bindingFrom(c *gin.Context) *sessionBinding {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	b, _ := v.(*sessionBinding)
	return b
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// Error sends a JSON error envelope.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HTML renders a page template.
func HTML(c *gin.Context, status int, page string, data interface{}) {
	noStore(c)
	c.HTML(status, page, data)
}

// PageData returns the layout data for the current request, consuming any
// pending flash message.
func PageData(c *gin.Context, title string) render.Page {
	page := render.Page{Title: title, RequestID: requestid.Value(c)}
	if b := bindingFrom(c); b != nil {
		if flash, ok := b.store.PopFlash(c.Writer, c.Request); ok {
			page.Flash = &flash
		}
	}
	return page
}

// Flash queues a message for the next rendered page.
func Flash(c *gin.Context, kind, message string) {
	if b := bindingFrom(c); b != nil {
		_ = b.store.SetFlash(c.Writer, session.Flash{Kind: kind, Message: message})
	}
}

// Redirect sends a 303 so that the browser follows with GET.
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// Fail is the single place where request errors become responses. Session
// expiry clears both session cookies, queues the expiry notice and sends the
// browser to the login page exactly once. Other errors render the error page
// or a JSON envelope for API requests.
func Fail(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		return
	}
	_ = c.Error(err)
	if c.Writer.Written() || c.IsAborted() {
		return
	}

	switch {
	case appErrors.IsSessionExpired(err):
		EndSession(c, appErr.Message)
		if b := bindingFrom(c); b != nil && b.onExpire != nil {
			b.onExpire()
		}
	case appErr.Code == appErrors.ErrUnauthorized.Code:
		EndSession(c, "")
	case WantsJSON(c):
		Error(c, appErr)
	default:
		HTML(c, appErr.Status, render.PageError, render.ErrorView{
			Page:    PageData(c, "Error"),
			Status:  appErr.Status,
			Message: appErr.Message,
		})
	}
	c.Abort()
}

// EndSession clears the session cookies and leaves the request for the login
// page. notice, when non-empty, is shown there once.
func EndSession(c *gin.Context, notice string) {
	if b := bindingFrom(c); b != nil {
		b.store.Clear(c.Writer)
		if notice != "" {
			_ = b.store.SetFlash(c.Writer, session.Flash{Kind: "error", Message: notice})
		}
	}
	if WantsJSON(c) {
		message := notice
		if message == "" {
			message = appErrors.ErrUnauthorized.Message
		}
		Error(c, appErrors.Clone(appErrors.ErrSessionExpired, message))
	} else {
		Redirect(c, LoginPath)
	}
	c.Abort()
}

// WantsJSON reports whether the request belongs to the JSON API surface.
func WantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
