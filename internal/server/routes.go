package server

import (
	"factnet/internal/server/middleware"
	"factnet/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Fact query routes
	apiRoutes.GET("/facts", routes.GetFactsHandler, middleware.RequirePermission("fact.query"))
	apiRoutes.GET("/actors/:name/facts", routes.GetActorFactsHandler, middleware.RequirePermission("fact.query"))

	// Ingest routes
	apiRoutes.POST("/facts", routes.PostFactsHandler, middleware.RequirePermission("fact.ingest"))
	apiRoutes.POST("/ingest", routes.PostIngestHandler, middleware.RequirePermission("fact.ingest"))
	apiRoutes.GET("/schema/fact", routes.GetFactSchemaHandler)

	// Alias routes
	apiRoutes.GET("/aliases", routes.GetAliasesHandler, middleware.RequirePermission("alias.view"))
	apiRoutes.GET("/aliases/:name", routes.GetAliasHandler, middleware.RequirePermission("alias.view"))
	apiRoutes.POST("/aliases", routes.PostAliasesHandler, middleware.RequirePermission("alias.write"))

	// Cluster routes
	apiRoutes.GET("/clusters", routes.GetClustersHandler, middleware.RequirePermission("cluster.view"))
	apiRoutes.POST("/clusters", routes.PostClustersHandler, middleware.RequirePermission("cluster.write"))

	// Snapshot routes
	apiRoutes.GET("/snapshot", routes.GetSnapshotHandler, middleware.RequirePermission("snapshot.view"))
	apiRoutes.POST("/rebuild", routes.PostRebuildHandler, middleware.RequirePermission("snapshot.rebuild"))
}
