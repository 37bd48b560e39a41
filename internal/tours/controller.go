package tours

import (
	"errors"
	"net/http"

	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// ListTours handles GET /api/v1/tours
func (c *Controller) ListTours(ctx *gin.Context) {
	status := Status(ctx.Query("status"))
	if status != "" && !status.IsValid() {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid tour status filter", nil, nil)
		return
	}

	list, err := c.service.ListTours(ctx.Request.Context(), status)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list tours", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tours retrieved successfully", list, nil)
}

// GetTour handles GET /api/v1/tours/:id
func (c *Controller) GetTour(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid tour ID", nil, nil)
		return
	}

	tour, err := c.service.GetTour(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTourNotFound) {
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Tour not found", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get tour", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tour retrieved successfully", tour, nil)
}
