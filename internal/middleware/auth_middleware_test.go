package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suitenest/hotel-backend/pkg/jwt"
)

func setupTestJWTService() *jwt.Service {
	return jwt.NewService("test-admin-secret-key-123456789", time.Hour)
}

func setupProtectedRouter(jwtService *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(jwtService), func(c *gin.Context) {
		adminCtx, exists := GetAdminContext(c)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no admin context"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "success",
			"email":   adminCtx.Email,
			"role":    adminCtx.Role,
		})
	})
	return router
}

func TestAuthMiddleware_Success(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupProtectedRouter(jwtService)

	token, err := jwtService.GenerateToken("admin@suitenest.example")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin@suitenest.example", body["email"])
	assert.Equal(t, "admin", body["role"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := setupProtectedRouter(setupTestJWTService())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_AUTH_HEADER")
}

func TestAuthMiddleware_InvalidFormat(t *testing.T) {
	router := setupProtectedRouter(setupTestJWTService())

	cases := []string{
		"NotBearer token",
		"Bearer",
		"Bearer ",
	}

	for _, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.Contains(t, w.Body.String(), "INVALID_AUTH_FORMAT", header)
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := setupProtectedRouter(setupTestJWTService())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	jwtService := setupTestJWTService()
	router := setupProtectedRouter(jwtService)

	expired := jwt.NewService("test-admin-secret-key-123456789", -time.Minute)
	token, err := expired.GenerateToken("admin@suitenest.example")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}
