package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/peerconnect-portal/internal/client"
	"github.com/noah-isme/peerconnect-portal/internal/models"
	"github.com/noah-isme/peerconnect-portal/pkg/response"
)

// Context keys set by RequireSession.
const (
	ContextTokenKey = "sessionToken"
	ContextUserKey  = "sessionUser"
)

// TokenReader is the part of the cookie store the session guard reads.
type TokenReader interface {
	Token(r *http.Request) (string, bool)
	User(r *http.Request, dest interface{}) error
}

// RequireSession blocks the request unless a session token cookie is
// present. A JWT whose exp claim has already passed is treated as absent.
// The signature is not checked here; the API remains the authority.
func RequireSession(store TokenReader, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token, ok := store.Token(c.Request)
		if !ok {
			response.EndSession(c, "")
			return
		}
		if tokenExpired(token, time.Now()) {
			logger.Debug("session token expired before request", zap.String("path", c.Request.URL.Path))
			response.EndSession(c, "Your session expired. Please log in again.")
			return
		}

		c.Set(ContextTokenKey, token)
		var user models.UserProfile
		if err := store.User(c.Request, &user); err == nil {
			c.Set(ContextUserKey, &user)
		}
		c.Next()
	}
}

// tokenExpired reports whether token is a JWT carrying an exp claim in the
// past. Opaque tokens are never considered expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}

// SessionToken returns the token stored by RequireSession.
func SessionToken(c *gin.Context) string {
	return c.GetString(ContextTokenKey)
}

// SessionUser returns the profile snapshot stored alongside the token, or nil.
func SessionUser(c *gin.Context) *models.UserProfile {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.UserProfile)
	return user
}

// RequestContext returns the request context carrying the session token for
// upstream calls.
func RequestContext(c *gin.Context) context.Context {
	return client.WithToken(c.Request.Context(), SessionToken(c))
}
