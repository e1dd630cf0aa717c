package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/recordhub/recordhub/internal/server/api"
	"github.com/recordhub/recordhub/internal/server/middleware"
)

type Handlers struct {
	fx.In

	Entities []api.Registrar
	Jobs     *api.JobHandlers
	Tools    *api.ToolHandlers
}

func SetupRoutes(server *Server, handlers Handlers) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	apiGroup := server.Group(
		server.Config.BasePath+"/api",
		middleware.WithJWTAuth(server.Config.Auth),
	)

	for _, entity := range handlers.Entities {
		entity.RegisterRoutes(apiGroup)
	}

	handlers.Jobs.RegisterRoutes(apiGroup)
	handlers.Tools.RegisterRoutes(apiGroup)
}
