package csvio

import (
	"fmt"
	"net/http"

	"tourly/internal/allocation"
	"tourly/internal/passengers"
	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	passengers passengers.Repository
}

func NewController(passengerRepo passengers.Repository) *Controller {
	return &Controller{passengers: passengerRepo}
}

// ExportManifest handles GET /api/v1/manifests/:tourId?date=yyyy-mm-dd
// and streams the booked roster for one departure as a CSV attachment.
func (c *Controller) ExportManifest(ctx *gin.Context) {
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

	roster, err := c.passengers.GetBookedForTourDate(ctx.Request.Context(), tourID, date)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to load roster", nil, nil)
		return
	}

	filename := fmt.Sprintf("manifest-%s-%s.csv", tourID, date)
	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	ctx.Status(http.StatusOK)

	if err := WriteRoster(ctx.Writer, roster); err != nil {
		// Headers are already out; nothing left to do but log via gin.
		_ = ctx.Error(err)
	}
}

// ImportManifest handles POST /api/v1/manifests/parse. It parses an
// uploaded manifest and returns the roster rows without persisting
// anything; the wizard picks them up from there.
func (c *Controller) ImportManifest(ctx *gin.Context) {
	file, _, err := ctx.Request.FormFile("file")
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Multipart field 'file' is required", nil, nil)
		return
	}
	defer file.Close()

	roster, err := ReadRoster(file)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Manifest could not be parsed", nil, err.Error())
		return
	}

	// Imported rows get fresh room codes and group colors so they slot
	// into a draft roster the same way wizard-entered passengers do.
	allocation.ReallocateAll(roster, nil)
	allocation.AssignGroupColors(roster)

	response.RespondJSON(ctx, "success", http.StatusOK, "Manifest parsed", roster, nil)
}
