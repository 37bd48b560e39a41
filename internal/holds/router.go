package holds

import (
	"tourly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupHoldRoutes configures the lead-passenger hold routes
func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller) {
	h := rg.Group("/holds")
	h.Use(middleware.JWTAuth())
	{
		h.POST("", controller.CreateHold)                // POST /api/v1/holds
		h.GET("/active", controller.GetActiveHold)       // GET  /api/v1/holds/active
		h.POST("/:id/confirm", controller.ConfirmHold)   // POST /api/v1/holds/:id/confirm
		h.POST("/:id/cancel", controller.CancelHold)     // POST /api/v1/holds/:id/cancel
	}
}
