package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modaline/shop-backend/internal/utils"
)

func authTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/protected", AuthRequired(), func(c *gin.Context) {
		userID, _ := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	r.GET("/optional", OptionalAuth(), func(c *gin.Context) {
		userID, ok := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID, "authenticated": ok})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("rejects missing header", func(t *testing.T) {
		w := doRequest(r, "/protected", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects invalid token", func(t *testing.T) {
		w := doRequest(r, "/protected", "not.a.token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("accepts valid token", func(t *testing.T) {
		userID := uuid.New()
		token, err := utils.GenerateJWT(userID, "jo@example.com", "user", 1)
		require.NoError(t, err)

		w := doRequest(r, "/protected", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestOptionalAuth(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("passes through anonymous requests", func(t *testing.T) {
		w := doRequest(r, "/optional", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("passes through invalid tokens silently", func(t *testing.T) {
		w := doRequest(r, "/optional", "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":false`)
	})

	t.Run("attaches identity for valid tokens", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "jo@example.com", "user", 1)
		require.NoError(t, err)

		w := doRequest(r, "/optional", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"authenticated":true`)
	})
}

func TestAdminRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-test-secret")
	r := authTestRouter()

	t.Run("rejects non-admin role", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "jo@example.com", "user", 1)
		require.NoError(t, err)

		w := doRequest(r, "/admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("accepts admin role", func(t *testing.T) {
		token, err := utils.GenerateJWT(uuid.New(), "admin@example.com", "admin", 1)
		require.NoError(t, err)

		w := doRequest(r, "/admin", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
