package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordhub/recordhub/internal/log"
)

// Recovery turns panics into 500 responses with a logged stack trace.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error(c.Request.Context(), "panic recovered",
			log.String("path", c.Request.URL.Path),
			log.Any("panic", recovered),
		)

		AbortWithError(c, http.StatusInternalServerError, fmt.Errorf("internal server error"))
	})
}
