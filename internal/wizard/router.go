package wizard

import (
	"tourly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWizardRoutes configures the booking wizard routes
func SetupWizardRoutes(rg *gin.RouterGroup, controller *Controller) {
	w := rg.Group("/wizard")
	w.Use(middleware.JWTAuth())
	{
		w.POST("/session", controller.StartSession)
		w.GET("/session", controller.GetSession)

		w.POST("/select-tour", controller.SelectTour)
		w.POST("/advance", controller.Advance)
		w.POST("/back", controller.Back)
		w.POST("/skip-lead", controller.SkipLead)
		w.POST("/attach-hold", controller.AttachHold)

		w.POST("/passengers", controller.AddPassengers)
		w.PATCH("/passengers", controller.UpdateField)
		w.DELETE("/passengers/:index", controller.RemovePassenger)
		w.POST("/passengers/:index/expansion", controller.SetExpansion)
		w.POST("/clear", controller.ClearRoster)

		w.POST("/payment-method", controller.SetPaymentMethod)
	}
}
