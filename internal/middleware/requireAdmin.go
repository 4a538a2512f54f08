package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// SessionCookie carries the admin session token issued at login.
	SessionCookie = "journal_session"

	sessionTokenKey = "session_token"
)

type SessionChecker interface {
	IsAuthenticated(ctx context.Context, token string) (bool, error)
}

// SessionToken returns the caller's session token, taken from the session
// cookie or an Authorization bearer header.
func SessionToken(c *gin.Context) string {
	if token := c.GetString(sessionTokenKey); token != "" {
		return token
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAdmin rejects requests that do not present a live admin session.
func RequireAdmin(sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		ok, err := sessions.IsAuthenticated(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("Failed to check admin session")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to check session"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin login required"})
			return
		}
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}
