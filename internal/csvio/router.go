package csvio

import (
	"tourly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupManifestRoutes configures the CSV manifest routes. Manifests carry
// passport data, so both routes are restricted to back-office roles.
func SetupManifestRoutes(rg *gin.RouterGroup, controller *Controller) {
	m := rg.Group("/manifests")
	m.Use(middleware.JWTAuth())
	m.Use(middleware.RequirePrivileged())
	{
		m.GET("/:tourId", controller.ExportManifest)   // GET  /api/v1/manifests/:tourId?date=...
		m.POST("/parse", controller.ImportManifest)    // POST /api/v1/manifests/parse
	}
}
