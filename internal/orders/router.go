package orders

import (
	"tourly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupOrderRoutes configures the order commit and lookup routes
func SetupOrderRoutes(rg *gin.RouterGroup, controller *Controller) {
	o := rg.Group("/orders")
	o.Use(middleware.JWTAuth())
	{
		o.POST("/commit", controller.Commit) // POST /api/v1/orders/commit
		o.GET("", controller.GetUserOrders)  // GET  /api/v1/orders
		o.GET("/:id", controller.GetOrder)   // GET  /api/v1/orders/:id
	}
}
