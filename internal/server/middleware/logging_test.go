package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub/internal/server/middleware"
	"github.com/recordhub/recordhub/internal/tracing"
)

func TestWithLoggingTracing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var (
		traceID   string
		requestID string
	)

	router := gin.New()
	router.Use(middleware.WithLoggingTracing(tracing.Config{}))
	router.GET("/probe", func(c *gin.Context) {
		ctx := c.Request.Context()
		traceID, _ = tracing.GetTraceID(ctx)
		requestID, _ = tracing.GetRequestID(ctx)
		c.Status(http.StatusOK)
	})

	t.Run("incoming trace header wins", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("RH-Trace-Id", "rh-upstream")
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rh-upstream", traceID)
		assert.NotEmpty(t, requestID)
		assert.Equal(t, requestID, rec.Header().Get("RH-Request-Id"))
	})

	t.Run("trace id generated when absent", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, traceID, "rh-")
	})
}
