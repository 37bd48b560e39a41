package holds

import (
	"errors"
	"net/http"

	"tourly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	raw, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	str, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// CreateHold handles POST /api/v1/holds
func (c *Controller) CreateHold(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	hold, err := c.service.CreateHold(ctx.Request.Context(), req, userID)
	if err != nil {
		if errors.Is(err, ErrHoldAlreadyHeld) {
			response.RespondJSON(ctx, "error", http.StatusConflict, "An active lead hold already exists", nil, err.Error())
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to create lead hold", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Lead hold created", hold, nil)
}

// ConfirmHold handles POST /api/v1/holds/:id/confirm
func (c *Controller) ConfirmHold(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	holdID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, nil)
		return
	}

	hold, err := c.service.ConfirmHold(ctx.Request.Context(), userID, holdID)
	if err != nil {
		switch {
		case errors.Is(err, ErrHoldNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Lead hold not found", nil, nil)
		case errors.Is(err, ErrHoldExpired):
			response.RespondJSON(ctx, "error", http.StatusGone, "Lead hold has expired", nil, nil)
		case errors.Is(err, ErrHoldMismatch):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Hold does not belong to this user", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to confirm lead hold", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Lead hold confirmed", hold, nil)
}

// CancelHold handles POST /api/v1/holds/:id/cancel
func (c *Controller) CancelHold(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	holdID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid hold ID", nil, nil)
		return
	}

	if err := c.service.CancelHold(ctx.Request.Context(), userID, holdID); err != nil {
		switch {
		case errors.Is(err, ErrHoldNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Lead hold not found", nil, nil)
		case errors.Is(err, ErrHoldMismatch):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Hold does not belong to this user", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to cancel lead hold", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Lead hold cancelled", nil, nil)
}

// GetActiveHold handles GET /api/v1/holds/active
func (c *Controller) GetActiveHold(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	hold, err := c.service.GetActiveHold(ctx.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, ErrHoldNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "No active lead hold", nil, nil)
		case errors.Is(err, ErrHoldExpired):
			response.RespondJSON(ctx, "error", http.StatusGone, "Lead hold has expired", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch lead hold", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Lead hold retrieved", hold, nil)
}
