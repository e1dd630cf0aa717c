package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/recordhub/recordhub/internal/authz"
	"github.com/recordhub/recordhub/internal/server/middleware"
)

// respondError maps gate outcomes to HTTP statuses. Unknown tenants and
// entities are not found, a denial is forbidden, anything else is a server
// fault.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authz.ErrTenantNotFound), errors.Is(err, authz.ErrEntityNotFound):
		middleware.AbortWithError(c, http.StatusNotFound, err)
	case errors.Is(err, authz.ErrUnauthorized):
		middleware.AbortWithError(c, http.StatusForbidden, err)
	default:
		middleware.AbortWithError(c, http.StatusInternalServerError, err)
	}
}
