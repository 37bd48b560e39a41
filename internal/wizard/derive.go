package wizard

import (
	"time"

	"tourly/internal/allocation"
	"tourly/internal/passengers"
	"tourly/internal/tours"

	"github.com/google/uuid"
)

// applyDerived is the single recomputation pass that runs after every
// roster mutation. Ordering is deliberate and fixed: linking integrity and
// serial numbers first, then identity-derived fields, then prices, then
// room allocation, then display colors. One explicit pass keeps the
// cascade deterministic instead of a web of independent watchers.
func applyDerived(session *Session, tour *tours.Tour, booked []passengers.Passenger) {
	dropOrphanSubs(session)
	renumberSerials(session)

	now := time.Now()
	for i := range session.Roster {
		p := &session.Roster[i]
		p.Name = passengers.DisplayName(p.FirstName, p.LastName)
		p.Age = passengers.AgeAt(p.DateOfBirth, now)
		if tour != nil {
			p.Price = tour.PriceForServices(p.AdditionalFood)
		}
	}

	allocation.ReallocateAll(session.Roster, booked)
	allocation.AssignGroupColors(session.Roster)
}

// dropOrphanSubs removes sub passengers whose main no longer exists and
// clears the expansion pointer when it dangles.
func dropOrphanSubs(session *Session) {
	mains := make(map[uuid.UUID]bool)
	for i := range session.Roster {
		if session.Roster[i].IsMain() {
			mains[session.Roster[i].ID] = true
		}
	}

	kept := session.Roster[:0]
	for i := range session.Roster {
		p := session.Roster[i]
		if p.MainPassengerID != nil && !mains[*p.MainPassengerID] {
			continue
		}
		kept = append(kept, p)
	}
	session.Roster = kept

	if session.ActiveExpansion != nil {
		if _, ok := session.indexByID()[*session.ActiveExpansion]; !ok {
			session.ActiveExpansion = nil
		}
	}
}

// renumberSerials keeps main passengers contiguous from 1; subs inherit
// their main's serial number.
func renumberSerials(session *Session) {
	serialByMain := make(map[uuid.UUID]int)
	serial := 0
	for i := range session.Roster {
		p := &session.Roster[i]
		if p.IsMain() {
			serial++
			p.SerialNo = serial
			serialByMain[p.ID] = serial
		}
	}
	for i := range session.Roster {
		p := &session.Roster[i]
		if p.MainPassengerID != nil {
			p.SerialNo = serialByMain[*p.MainPassengerID]
		}
	}
}
