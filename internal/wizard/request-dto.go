package wizard

// SelectTourRequest binds the step-1 selection.
type SelectTourRequest struct {
	TourID        string `json:"tour_id" validate:"required,uuid"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
}

// BackRequest names the earlier step to return to.
type BackRequest struct {
	To int `json:"to" validate:"required,min=1,max=4"`
}

// AttachHoldRequest links a confirmed lead hold to the session.
type AttachHoldRequest struct {
	HoldID string `json:"hold_id" validate:"required,uuid"`
}

// AddPassengersRequest appends main passengers to the roster.
type AddPassengersRequest struct {
	Count int `json:"count" validate:"required,min=1,max=50"`
}

// ExpansionRequest toggles the sub-passenger expansion of a main.
type ExpansionRequest struct {
	Expanded bool `json:"expanded"`
}

// ClearRequest wipes the roster; Confirmed models the confirmation dialog.
type ClearRequest struct {
	Confirmed bool `json:"confirmed"`
}

// PaymentMethodRequest records the chosen payment method string.
type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required"`
}
