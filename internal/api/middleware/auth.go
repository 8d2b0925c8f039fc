// Package middleware provides gin middleware for bearer-token authentication
// and role gating.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
)

// Gin context keys for the authenticated user and the session token that
// authenticated them.
const (
	userContextKey  = "auth_user"
	tokenContextKey = "auth_token"
)

// SessionStore resolves bearer tokens to user IDs and revokes them.
type SessionStore interface {
	Lookup(ctx context.Context, token string) (uint, bool, error)
	Revoke(ctx context.Context, token string) error
}

// UserLoader loads users by ID.
type UserLoader interface {
	GetByID(id uint) (*models.User, error)
}

// Auth returns middleware that resolves the Authorization bearer token to a
// user and aborts with 401 when the token is missing, unknown or expired.
// Unauthorized requests are always rejected loudly, never silently dropped.
func Auth(sessions SessionStore, users UserLoader, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		userID, found, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			log.Error().Err(err).Msg("Session lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "failed to resolve session",
				"timestamp": time.Now().UTC(),
			})
			return
		}
		if !found {
			abortUnauthorized(c, "invalid or expired session")
			return
		}

		user, err := users.GetByID(userID)
		if err != nil {
			log.Warn().Err(err).Uint("user_id", userID).Msg("Session points at unknown user")
			abortUnauthorized(c, "invalid or expired session")
			return
		}

		c.Set(userContextKey, user)
		c.Set(tokenContextKey, token)
		c.Next()
	}
}

// Logout returns a handler that revokes the session token the request
// authenticated with. Must be routed behind Auth.
func Logout(sessions SessionStore, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := CurrentToken(c)
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		if err := sessions.Revoke(c.Request.Context(), token); err != nil {
			log.Error().Err(err).Msg("Session revocation failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "failed to revoke session",
				"timestamp": time.Now().UTC(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "session revoked",
			"timestamp": time.Now().UTC(),
		})
	}
}

// RequireAdmin aborts with 403 unless the authenticated user is an admin.
// Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "admin role required",
				"timestamp": time.Now().UTC(),
			})
			return
		}
		c.Next()
	}
}

// SetCurrentUser places a user in the request context the way Auth does.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// CurrentUser returns the authenticated user set by Auth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	val, exists := c.Get(userContextKey)
	if !exists {
		return nil
	}
	user, ok := val.(*models.User)
	if !ok {
		return nil
	}
	return user
}

// CurrentToken returns the session token set by Auth, or empty.
func CurrentToken(c *gin.Context) string {
	val, exists := c.Get(tokenContextKey)
	if !exists {
		return ""
	}
	token, ok := val.(string)
	if !ok {
		return ""
	}
	return token
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
