package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/contexts"
	"github.com/recordhub/recordhub/internal/objects"
	"github.com/recordhub/recordhub/internal/server/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

type capturedIdentity struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	claims   objects.Claims
	called   bool
}

func setupAuthRouter(config middleware.AuthConfig, captured *capturedIdentity) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.WithJWTAuth(config))
	router.GET("/probe", func(c *gin.Context) {
		ctx := c.Request.Context()
		captured.called = true
		captured.tenantID, _ = contexts.GetTenantID(ctx)
		captured.userID, _ = contexts.GetUserID(ctx)
		captured.claims, _ = contexts.GetClaims(ctx)
		c.Status(http.StatusOK)
	})

	return router
}

func TestWithJWTAuth(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("valid token populates identity", func(t *testing.T) {
		captured := &capturedIdentity{}
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret}, captured)

		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":    userID.String(),
			"tenant": tenantID.String(),
			"roles":  []string{"editor", "viewer"},
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, captured.called)
		assert.Equal(t, tenantID, captured.tenantID)
		assert.Equal(t, userID, captured.userID)
		assert.Equal(t, []string{"editor", "viewer"}, captured.claims.Strings("roles"))
	})

	t.Run("custom tenant claim", func(t *testing.T) {
		captured := &capturedIdentity{}
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret, TenantClaim: "org"}, captured)

		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": userID.String(),
			"org": tenantID.String(),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tenantID, captured.tenantID)
	})

	t.Run("missing header", func(t *testing.T) {
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret}, &capturedIdentity{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret}, &capturedIdentity{})

		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub":    userID.String(),
			"tenant": tenantID.String(),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing tenant claim", func(t *testing.T) {
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret}, &capturedIdentity{})

		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": userID.String(),
		})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		router := setupAuthRouter(middleware.AuthConfig{Secret: testSecret}, &capturedIdentity{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
