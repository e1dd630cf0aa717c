package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/jobs"
	"github.com/recordhub/recordhub/internal/server/middleware"
)

// JobHandlers exposes read access to background jobs of the caller's tenant.
type JobHandlers struct {
	jobs *jobs.Service
}

type JobHandlersParams struct {
	fx.In

	Jobs *jobs.Service
}

func NewJobHandlers(params JobHandlersParams) *JobHandlers {
	return &JobHandlers{jobs: params.Jobs}
}

func (h *JobHandlers) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/jobs")

	group.GET("/all", h.All)
	group.GET("/byid/:id", h.ByID)
}

func (h *JobHandlers) All(c *gin.Context) {
	tenantID, _, _, ok := identity(c)
	if !ok {
		return
	}

	list, err := h.jobs.ForTenant(c.Request.Context(), tenantID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *JobHandlers) ByID(c *gin.Context) {
	tenantID, _, _, ok := identity(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid job id: %w", err))
		return
	}

	job, found, err := h.jobs.ByID(c.Request.Context(), tenantID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if !found {
		middleware.AbortWithError(c, http.StatusNotFound, fmt.Errorf("job %s not found", id))
		return
	}

	c.JSON(http.StatusOK, job)
}
