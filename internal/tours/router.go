package tours

import (
	"github.com/gin-gonic/gin"
)

// SetupTourRoutes configures the public tour catalog routes
func SetupTourRoutes(rg *gin.RouterGroup, controller *Controller) {
	tours := rg.Group("/tours")
	{
		tours.GET("", controller.ListTours)   // GET /api/v1/tours
		tours.GET("/:id", controller.GetTour) // GET /api/v1/tours/:id
	}
}
