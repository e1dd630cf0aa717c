package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/server/middleware"
	"github.com/recordhub/recordhub/internal/tools"
)

// ToolHandlers exposes the frozen entity registry for discovery.
type ToolHandlers struct {
	registry *tools.Registry
}

type ToolHandlersParams struct {
	fx.In

	Registry *tools.Registry
}

func NewToolHandlers(params ToolHandlersParams) *ToolHandlers {
	return &ToolHandlers{registry: params.Registry}
}

func (h *ToolHandlers) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/tools")
	group.GET("/all", h.All)
	group.GET("/byname/:name", h.ByName)
}

type toolInfo struct {
	Name        string `json:"name"`
	Application string `json:"application"`
	Entity      string `json:"entity"`
}

func (h *ToolHandlers) All(c *gin.Context) {
	names := h.registry.Names()

	infos := lo.FilterMap(names, func(name string, _ int) (toolInfo, bool) {
		entry, ok := h.registry.Lookup(name)
		if !ok {
			return toolInfo{}, false
		}

		return toolInfo{
			Name:        name,
			Application: entry.Application,
			Entity:      entry.Entity,
		}, true
	})

	c.JSON(http.StatusOK, gin.H{"tools": infos})
}

func (h *ToolHandlers) ByName(c *gin.Context) {
	name := c.Param("name")

	entry, ok := h.registry.Lookup(name)
	if !ok {
		middleware.AbortWithError(c, http.StatusNotFound, fmt.Errorf("tool not registered: %s", name))
		return
	}

	c.JSON(http.StatusOK, toolInfo{
		Name:        name,
		Application: entry.Application,
		Entity:      entry.Entity,
	})
}
