package wizard

import (
	"time"

	"tourly/internal/passengers"

	"github.com/google/uuid"
)

// Step is the wizard's position. Steps are ordered; forward transitions are
// gated, backward transitions are always allowed.
type Step int

const (
	StepTourSelection Step = iota + 1
	StepLeadPassenger
	StepPassengerManagement
	StepReview
)

func (s Step) IsValid() bool {
	return s >= StepTourSelection && s <= StepReview
}

func (s Step) String() string {
	switch s {
	case StepTourSelection:
		return "tour_selection"
	case StepLeadPassenger:
		return "lead_passenger"
	case StepPassengerManagement:
		return "passenger_management"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// Session is the whole wizard state for one user. It is the single source
// of truth for the in-progress roster: every mutation loads the latest
// snapshot, applies one change, and saves it back under a version check, so
// a handler resuming after a network call never acts on a stale copy.
type Session struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	Step   Step      `json:"step"`

	TourID        *uuid.UUID `json:"tour_id,omitempty"`
	DepartureDate string     `json:"departure_date,omitempty"`

	Roster []passengers.Passenger `json:"roster"`

	HoldID        *uuid.UUID `json:"hold_id,omitempty"`
	HoldSeatCount int        `json:"hold_seat_count,omitempty"`
	LeadSkipped   bool       `json:"lead_skipped,omitempty"`

	PaymentMethod string `json:"payment_method,omitempty"`

	// ActiveExpansion points at the main passenger whose sub rows are
	// expanded in the roster view. Cleared when that passenger is removed.
	ActiveExpansion *uuid.UUID `json:"active_expansion,omitempty"`

	Errors []FieldError `json:"errors,omitempty"`

	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession starts a fresh wizard at step 1.
func NewSession(userID uuid.UUID) *Session {
	return &Session{
		ID:     uuid.New(),
		UserID: userID,
		Step:   StepTourSelection,
		Roster: []passengers.Passenger{},
	}
}

// TourChosen reports whether both a tour and a departure date are selected.
func (s *Session) TourChosen() bool {
	return s.TourID != nil && s.DepartureDate != ""
}

// LeadResolved reports whether step 2 was settled, either by attaching a
// confirmed hold or by explicitly skipping lead registration.
func (s *Session) LeadResolved() bool {
	return s.HoldID != nil || s.LeadSkipped
}

// MainCount counts main passengers in the roster.
func (s *Session) MainCount() int {
	n := 0
	for i := range s.Roster {
		if s.Roster[i].IsMain() {
			n++
		}
	}
	return n
}

// WithinHold reports whether the roster fits the attached hold's seat
// count. Always true when no hold is attached.
func (s *Session) WithinHold() bool {
	if s.HoldID == nil {
		return true
	}
	return len(s.Roster) <= s.HoldSeatCount
}

// indexByID rebuilds the id -> roster index map. Rebuilt on every
// structural change; never cached across mutations.
func (s *Session) indexByID() map[uuid.UUID]int {
	idx := make(map[uuid.UUID]int, len(s.Roster))
	for i := range s.Roster {
		idx[s.Roster[i].ID] = i
	}
	return idx
}

// Reset clears everything back to step 1. Explicit user action, not an
// error path.
func (s *Session) Reset() {
	s.Step = StepTourSelection
	s.TourID = nil
	s.DepartureDate = ""
	s.Roster = []passengers.Passenger{}
	s.HoldID = nil
	s.HoldSeatCount = 0
	s.LeadSkipped = false
	s.PaymentMethod = ""
	s.ActiveExpansion = nil
	s.Errors = nil
}
