package wizard

import (
	"context"
	"fmt"

	"tourly/internal/allocation"
	"tourly/internal/passengers"

	"github.com/google/uuid"
)

// UpdateFieldRequest is one generic field mutation. ReassignSubsequent
// switches Family room assignment into block mode, dragging the following
// passengers into the same room.
type UpdateFieldRequest struct {
	Index              int         `json:"index"`
	Field              string      `json:"field" validate:"required"`
	Value              interface{} `json:"value"`
	ReassignSubsequent bool        `json:"reassign_subsequent,omitempty"`
}

// UpdateField applies one field mutation plus its derived side effects and
// runs the full derive pass before saving.
func (s *service) UpdateField(ctx context.Context, userID uuid.UUID, req UpdateFieldRequest) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Index < 0 || req.Index >= len(session.Roster) {
		return nil, ErrIndexOutOfRange
	}

	tour, booked, err := s.fetchContext(ctx, session)
	if err != nil {
		return nil, err
	}

	// fetchContext suspended; mutate the freshest snapshot.
	session, err = s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Index >= len(session.Roster) {
		return nil, ErrIndexOutOfRange
	}

	familyBlock := false
	p := &session.Roster[req.Index]

	switch req.Field {
	case "first_name":
		p.FirstName = asString(req.Value)
	case "last_name":
		p.LastName = asString(req.Value)
	case "date_of_birth":
		p.DateOfBirth = asString(req.Value)
	case "gender":
		p.Gender = asString(req.Value)
	case "nationality":
		p.Nationality = asString(req.Value)
	case "passport_number":
		p.PassportNumber = asString(req.Value)
	case "passport_expire":
		p.PassportExpire = asString(req.Value)
	case "passport_upload":
		p.PassportImage = asString(req.Value)
	case "email":
		p.Email = asString(req.Value)
	case "phone":
		p.Phone = asString(req.Value)
	case "allergy":
		p.Allergy = asString(req.Value)
	case "emergency_phone":
		p.EmergencyPhone = asString(req.Value)
	case "hotel":
		p.Hotel = asString(req.Value)

	case "additional_services":
		p.AdditionalFood = asStringSlice(req.Value)

	case "roomType":
		roomType := asString(req.Value)
		p.RoomType = roomType
		if p.IsMain() {
			// Subs always share their main's room.
			for i := range session.Roster {
				sub := &session.Roster[i]
				if sub.MainPassengerID != nil && *sub.MainPassengerID == p.ID {
					sub.RoomType = roomType
				}
			}
		}
		familyBlock = req.ReassignSubsequent && roomType == allocation.RoomFamily

	case "has_sub_passengers":
		if !p.IsMain() {
			return nil, ErrNotMainPassenger
		}
		enabled := asBool(req.Value)
		p.HasSubPassengers = enabled
		if !enabled {
			removeSubsOf(session, p.ID)
			session.Roster[req.Index].SubCount = 0
		}

	case "sub_passenger_count":
		if !p.IsMain() {
			return nil, ErrNotMainPassenger
		}
		if !p.HasSubPassengers {
			return nil, ErrSubsNotEnabled
		}
		n := asInt(req.Value)
		if n < 0 {
			return nil, fmt.Errorf("sub passenger count cannot be negative")
		}
		setSubCount(session, req.Index, n)

	case "is_related_to_next":
		if !p.IsMain() {
			return nil, ErrNotMainPassenger
		}
		p.IsRelatedToNext = asBool(req.Value)
		// A broken chain regroups; recompute colors from scratch below.
		clearColors(session)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, req.Field)
	}

	applyDerived(session, tour, booked)
	if familyBlock {
		allocation.AssignFamilyBlock(session.Roster, booked, req.Index)
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// setSubCount replaces the main's subs with exactly n fresh ones directly
// after the main's position, each defaulting to the main's room type.
func setSubCount(session *Session, mainIdx int, n int) {
	mainID := session.Roster[mainIdx].ID
	removeSubsOf(session, mainID)

	// Position may have shifted after removal.
	idx := session.indexByID()[mainID]
	main := &session.Roster[idx]
	main.SubCount = n

	subs := make([]passengers.Passenger, n)
	for i := range subs {
		id := mainID
		subs[i] = passengers.Passenger{
			ID:              uuid.New(),
			TourID:          main.TourID,
			DepartureDate:   main.DepartureDate,
			MainPassengerID: &id,
			RoomType:        main.RoomType,
			Nationality:     main.Nationality,
			Hotel:           main.Hotel,
			EmergencyPhone:  main.EmergencyPhone,
			Status:          passengers.StatusPending,
		}
	}

	rest := make([]passengers.Passenger, len(session.Roster[idx+1:]))
	copy(rest, session.Roster[idx+1:])
	session.Roster = append(session.Roster[:idx+1], append(subs, rest...)...)
}

func removeSubsOf(session *Session, mainID uuid.UUID) {
	kept := session.Roster[:0]
	for i := range session.Roster {
		p := session.Roster[i]
		if p.MainPassengerID != nil && *p.MainPassengerID == mainID {
			continue
		}
		kept = append(kept, p)
	}
	session.Roster = kept
}

func clearColors(session *Session) {
	for i := range session.Roster {
		session.Roster[i].GroupColor = ""
	}
}

// JSON numbers arrive as float64 and lists as []interface{}; these helpers
// coerce the generic update value.

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func asStringSlice(v interface{}) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []interface{}:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
