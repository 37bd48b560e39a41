package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a booking lifecycle event on the stream.
type EventType string

const (
	EventOrderCommitted   EventType = "order.committed"
	EventRequestSubmitted EventType = "request.submitted"
	EventHoldExpired      EventType = "hold.expired"
)

// BookingEvent is the wire format for every event the portal emits. The
// consumer side (mailers, back-office dashboards) lives in a separate
// worker and only ever sees this envelope.
type BookingEvent struct {
	ID             uuid.UUID  `json:"id"`
	Type           EventType  `json:"type"`
	UserID         uuid.UUID  `json:"user_id"`
	TourID         uuid.UUID  `json:"tour_id"`
	OrderID        *uuid.UUID `json:"order_id,omitempty"`
	HoldID         *uuid.UUID `json:"hold_id,omitempty"`
	ReferenceNo    string     `json:"reference_no,omitempty"`
	DepartureDate  string     `json:"departure_date,omitempty"`
	PassengerCount int        `json:"passenger_count,omitempty"`
	TotalPrice     float64    `json:"total_price,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// NewBookingEvent stamps a fresh event envelope.
func NewBookingEvent(eventType EventType, userID, tourID uuid.UUID) *BookingEvent {
	return &BookingEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		TourID:     tourID,
		OccurredAt: time.Now(),
	}
}

// ToJSON serializes the event for the Kafka payload.
func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// PartitionKey routes all of one user's events to the same partition so
// consumers see them in order.
func (e *BookingEvent) PartitionKey() string {
	return e.UserID.String()
}
