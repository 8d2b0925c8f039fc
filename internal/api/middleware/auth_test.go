//nolint:noctx // Test file uses http.NewRequest for simplicity
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Howards254/maathai-innovation-catalyst/internal/cache"
	"github.com/Howards254/maathai-innovation-catalyst/internal/models"
	"github.com/Howards254/maathai-innovation-catalyst/pkg/logger"
	"github.com/Howards254/maathai-innovation-catalyst/test/mocks"
)

type mockUserLoader struct {
	users map[uint]*models.User
}

func (m *mockUserLoader) GetByID(id uint) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, fmt.Errorf("user %d not found", id)
}

func setupAuthRouter(t *testing.T) (*gin.Engine, *cache.SessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := cache.NewSessionStore(mocks.NewMockCache())
	users := &mockUserLoader{users: map[uint]*models.User{
		1: {ID: 1, Username: "alice", Role: models.RoleUser},
		2: {ID: 2, Username: "root", Role: models.RoleAdmin},
	}}
	log := logger.New("error", "console", "stderr")

	router := gin.New()
	authed := router.Group("/", Auth(sessions, users, log))
	authed.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": CurrentUser(c).Username})
	})
	authed.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	authed.POST("/logout", Logout(sessions, log))

	return router, sessions
}

func TestAuth_MissingToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req, _ := http.NewRequest("GET", "/whoami", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing bearer token")
}

func TestAuth_MalformedHeader(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req, _ := http.NewRequest("GET", "/whoami", http.NoBody)
	req.Header.Set("Authorization", "Basic abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_UnknownToken(t *testing.T) {
	router, _ := setupAuthRouter(t)

	req, _ := http.NewRequest("GET", "/whoami", http.NoBody)
	req.Header.Set("Authorization", "Bearer nope")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired session")
}

func TestAuth_ValidToken(t *testing.T) {
	router, sessions := setupAuthRouter(t)
	err := sessions.Store(context.Background(), "token-alice", 1)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/whoami", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestAuth_SessionForMissingUser(t *testing.T) {
	router, sessions := setupAuthRouter(t)
	err := sessions.Store(context.Background(), "token-ghost", 99)
	assert.NoError(t, err)

	req, _ := http.NewRequest("GET", "/whoami", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-ghost")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_RevokesSession(t *testing.T) {
	router, sessions := setupAuthRouter(t)
	_ = sessions.Store(context.Background(), "token-alice", 1)

	req, _ := http.NewRequest("POST", "/logout", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The revoked token no longer authenticates.
	req, _ = http.NewRequest("GET", "/whoami", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-alice")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid or expired session")
}

func TestRequireAdmin_ForbidsRegularUser(t *testing.T) {
	router, sessions := setupAuthRouter(t)
	_ = sessions.Store(context.Background(), "token-alice", 1)

	req, _ := http.NewRequest("GET", "/admin", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-alice")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "admin role required")
}

func TestRequireAdmin_AllowsAdmin(t *testing.T) {
	router, sessions := setupAuthRouter(t)
	_ = sessions.Store(context.Background(), "token-root", 2)

	req, _ := http.NewRequest("GET", "/admin", http.NoBody)
	req.Header.Set("Authorization", "Bearer token-root")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
