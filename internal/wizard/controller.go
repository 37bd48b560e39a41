package wizard

import (
	"errors"
	"net/http"
	"strconv"

	"tourly/internal/availability"
	"tourly/internal/holds"
	"tourly/internal/shared/utils/response"
	"tourly/internal/tours"
	"tourly/internal/users"

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

func (c *Controller) respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "No wizard session in progress", nil, nil)
	case errors.Is(err, ErrConcurrentMutation):
		response.RespondJSON(ctx, "error", http.StatusConflict, "Session changed, retry the operation", nil, nil)
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrRosterEmpty),
		errors.Is(err, ErrRosterInvalid),
		errors.Is(err, ErrHoldCapacityExceeded),
		errors.Is(err, ErrLastPassenger),
		errors.Is(err, ErrConfirmationRequired),
		errors.Is(err, ErrSubsNotEnabled),
		errors.Is(err, ErrNotMainPassenger),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrIndexOutOfRange),
		errors.Is(err, ErrTourNotBookable),
		errors.Is(err, ErrDateNotAvailable):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, err.Error(), nil, nil)
	case errors.Is(err, tours.ErrTourNotFound):
		response.RespondJSON(ctx, "error", http.StatusNotFound, "Tour not found", nil, nil)
	case errors.Is(err, holds.ErrHoldNotFound), errors.Is(err, holds.ErrHoldExpired), errors.Is(err, holds.ErrHoldMismatch):
		response.RespondJSON(ctx, "error", http.StatusUnprocessableEntity, err.Error(), nil, nil)
	default:
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Wizard operation failed", nil, nil)
	}
}

// StartSession handles POST /api/v1/wizard/session
func (c *Controller) StartSession(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	session, err := c.service.StartSession(ctx.Request.Context(), userID)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusCreated, "Wizard session ready", session, nil)
}

// GetSession handles GET /api/v1/wizard/session
func (c *Controller) GetSession(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	session, err := c.service.GetSession(ctx.Request.Context(), userID)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Wizard session retrieved", session, nil)
}

// SelectTour handles POST /api/v1/wizard/select-tour
func (c *Controller) SelectTour(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req SelectTourRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	tourID, _ := uuid.Parse(req.TourID)
	session, err := c.service.SelectTour(ctx.Request.Context(), userID, tourID, req.DepartureDate)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Tour selected", session, nil)
}

// Advance handles POST /api/v1/wizard/advance
func (c *Controller) Advance(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	session, err := c.service.Advance(ctx.Request.Context(), userID)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Moved to "+session.Step.String(), session, nil)
}

// Back handles POST /api/v1/wizard/back
func (c *Controller) Back(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req BackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	session, err := c.service.Back(ctx.Request.Context(), userID, Step(req.To))
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Moved to "+session.Step.String(), session, nil)
}

// SkipLead handles POST /api/v1/wizard/skip-lead
func (c *Controller) SkipLead(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	session, err := c.service.SkipLead(ctx.Request.Context(), userID)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Lead registration skipped", session, nil)
}

// AttachHold handles POST /api/v1/wizard/attach-hold
func (c *Controller) AttachHold(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req AttachHoldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	holdID, _ := uuid.Parse(req.HoldID)
	session, err := c.service.AttachHold(ctx.Request.Context(), userID, holdID)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Lead hold attached", session, nil)
}

// AddPassengers handles POST /api/v1/wizard/passengers
func (c *Controller) AddPassengers(ctx *gin.Context) {
	userID, role, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req AddPassengersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	session, verdict, err := c.service.AddPassengers(ctx.Request.Context(), userID, req.Count, role)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Passengers added", gin.H{
		"session":      session,
		"availability": seatWarning(verdict),
	}, nil)
}

// seatWarning converts the advisory oracle result into a response chunk;
// nil when the oracle was unreachable.
func seatWarning(verdict *availability.Result) interface{} {
	if verdict == nil {
		return nil
	}
	return verdict
}

// UpdateField handles PATCH /api/v1/wizard/passengers
func (c *Controller) UpdateField(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req UpdateFieldRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	session, err := c.service.UpdateField(ctx.Request.Context(), userID, req)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger updated", session, nil)
}

// RemovePassenger handles DELETE /api/v1/wizard/passengers/:index
func (c *Controller) RemovePassenger(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid passenger index", nil, nil)
		return
	}

	session, err := c.service.RemovePassenger(ctx.Request.Context(), userID, index)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Passenger removed", session, nil)
}

// SetExpansion handles POST /api/v1/wizard/passengers/:index/expansion
func (c *Controller) SetExpansion(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid passenger index", nil, nil)
		return
	}

	var req ExpansionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	session, err := c.service.SetExpansion(ctx.Request.Context(), userID, index, req.Expanded)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Expansion updated", session, nil)
}

// ClearRoster handles POST /api/v1/wizard/clear
func (c *Controller) ClearRoster(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req ClearRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	session, err := c.service.ClearRoster(ctx.Request.Context(), userID, req.Confirmed)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Roster cleared", session, nil)
}

// SetPaymentMethod handles POST /api/v1/wizard/payment-method
func (c *Controller) SetPaymentMethod(ctx *gin.Context) {
	userID, _, ok := currentUser(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req PaymentMethodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}
	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	session, err := c.service.SetPaymentMethod(ctx.Request.Context(), userID, req.Method)
	if err != nil {
		c.respondServiceError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Payment method set", session, nil)
}
