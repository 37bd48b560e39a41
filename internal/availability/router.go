package availability

import (
	"tourly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAvailabilityRoutes configures the seat availability routes
func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller) {
	a := rg.Group("/availability")
	a.Use(middleware.JWTAuth())
	{
		a.GET("/:tourId", controller.CheckSeats)
	}
}
