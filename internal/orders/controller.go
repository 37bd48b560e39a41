package orders

import (
	"errors"
	"net/http"
	"strconv"

	"tourly/internal/shared/utils/response"
	"tourly/internal/users"
	"tourly/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func currentUser(ctx *gin.Context) (uuid.UUID, users.Role, bool) {
	rawID, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, "", false
	}
	idStr, ok := rawID.(string)
	if !ok {
		return uuid.Nil, "", false
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, "", false
	}

	role := users.RoleUser
	if rawRole, exists := ctx.Get("user_role"); exists {
		if roleStr, ok := rawRole.(string); ok && users.IsValidRole(roleStr) {
			role = users.Role(roleStr)
		}
	}
	return id, role, true
}

// Commit handles POST /api/v1/orders/commit
func (c *Controller) Commit(ctx *gin.Context) {
	userID, role, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	result, err := c.service.Commit(ctx.Request.Context(), userID, role)
	if err != nil {
		switch {
		case errors.Is(err, wizard.ErrSessionNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "No booking session found", nil, nil)
		case errors.Is(err, ErrNotAtReview):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Booking is not at the review step", nil, nil)
		case errors.Is(err, ErrPaymentMethod):
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Select a payment method before committing", nil, nil)
		case errors.Is(err, ErrRosterInvalid):
			response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, "Passenger details are incomplete", nil, err.Error())
		case errors.Is(err, ErrInsufficientSeats):
			response.RespondJSON(ctx, "error", http.StatusConflict, "Not enough seats left", nil, err.Error())
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to commit booking", nil, nil)
		}
		return
	}

	// Partial failures still return 207-style detail: the caller retries
	// only the groups that did not land.
	if !result.AllCommitted {
		response.RespondJSON(ctx, "partial", http.StatusMultiStatus, "Some booking groups failed", result, nil)
		return
	}

	message := "Booking committed"
	if result.RequiresApproval {
		message = "Booking submitted for approval"
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, message, result, nil)
}

// GetOrder handles GET /api/v1/orders/:id
func (c *Controller) GetOrder(ctx *gin.Context) {
	userID, role, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid order ID", nil, nil)
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), orderID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			response.RespondJSON(ctx, "error", http.StatusNotFound, "Order not found", nil, nil)
		case errors.Is(err, ErrNotOrderOwner):
			response.RespondJSON(ctx, "error", http.StatusForbidden, "Order belongs to another user", nil, nil)
		default:
			response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch order", nil, nil)
		}
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Order retrieved", order, nil)
}

// GetUserOrders handles GET /api/v1/orders
func (c *Controller) GetUserOrders(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	list, err := c.service.GetUserOrders(ctx.Request.Context(), userID, limit, offset)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to fetch orders", nil, nil)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Orders retrieved", list, nil)
}
