package availability

import (
	"net/http"

	"tourly/internal/shared/utils/response"
	"tourly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	oracle Oracle
}

func NewController(oracle Oracle) *Controller {
	return &Controller{oracle: oracle}
}

// CheckSeats handles GET /api/v1/availability/:tourId?date=yyyy-mm-dd.
// The verdict is advisory; the commit pipeline re-checks server-side.
func (c *Controller) CheckSeats(ctx *gin.Context) {
	tourID, err := uuid.Parse(ctx.Param("tourId"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid tour ID", nil, nil)
		return
	}

	date := ctx.Query("date")
	if date == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Query parameter 'date' is required", nil, nil)
		return
	}

	role := users.RoleUser
	if rawRole, exists := ctx.Get("user_role"); exists {
		if roleStr, ok := rawRole.(string); ok && users.IsValidRole(roleStr) {
			role = users.Role(roleStr)
		}
	}

	result, err := c.oracle.CheckSeatLimit(ctx.Request.Context(), tourID, date, role)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to check availability", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability checked", result, nil)
}
