package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tourly/internal/availability"
	"tourly/internal/holds"
	"tourly/internal/passengers"
	"tourly/internal/tours"
	"tourly/internal/users"

	"github.com/google/uuid"
)

// memStore is an in-memory Store with the same copy-on-load semantics as
// the Redis store: callers never share a live pointer with the store.
type memStore struct {
	sessions map[uuid.UUID][]byte
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[uuid.UUID][]byte)}
}

func (m *memStore) Load(ctx context.Context, userID uuid.UUID) (*Session, error) {
	raw, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *memStore) Save(ctx context.Context, session *Session) error {
	if raw, ok := m.sessions[session.UserID]; ok {
		var cur Session
		if err := json.Unmarshal(raw, &cur); err == nil && cur.Version != session.Version {
			return ErrConcurrentMutation
		}
	}
	session.Version++
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	m.sessions[session.UserID] = data
	return nil
}

func (m *memStore) Delete(ctx context.Context, userID uuid.UUID) error {
	delete(m.sessions, userID)
	return nil
}

type fakeCatalog struct {
	tour *tours.Tour
}

func (f *fakeCatalog) GetTour(ctx context.Context, id uuid.UUID) (*tours.Tour, error) {
	if f.tour == nil {
		return nil, tours.ErrTourNotFound
	}
	return f.tour, nil
}

type fakeHolds struct {
	hold *holds.LeadHold
	err  error
}

func (f *fakeHolds) GetActiveHold(ctx context.Context, userID uuid.UUID) (*holds.LeadHold, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.hold, nil
}

type fakeOracle struct {
	result *availability.Result
}

func (f *fakeOracle) CheckSeatLimit(ctx context.Context, tourID uuid.UUID, date string, role users.Role) (*availability.Result, error) {
	if f.result == nil {
		return &availability.Result{Valid: true, Remaining: 99, Message: "ok"}, nil
	}
	return f.result, nil
}

type fakeBooked struct {
	list []passengers.Passenger
}

func (f *fakeBooked) GetBookedForTourDate(ctx context.Context, tourID uuid.UUID, date string) ([]passengers.Passenger, error) {
	return f.list, nil
}

func testTour() *tours.Tour {
	seats := 20
	return &tours.Tour{
		ID:             uuid.New(),
		Title:          "Gobi Explorer",
		SeatCapacity:   20,
		AvailableSeats: &seats,
		BasePrice:      1000,
		Dates:          []string{"2025-06-01", "2025-07-01"},
		Hotels:         []string{"Grand Hotel", "Steppe Lodge"},
		Services: []tours.TourService{
			{Name: "Visa Support", Price: 50},
			{Name: "Insurance", Price: 30},
		},
		Status: tours.StatusActive,
	}
}

type fixture struct {
	svc    Service
	store  *memStore
	tour   *tours.Tour
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tour := testTour()
	store := newMemStore()
	svc := NewService(store, &fakeCatalog{tour: tour}, &fakeHolds{}, &fakeOracle{}, &fakeBooked{})
	return &fixture{svc: svc, store: store, tour: tour, userID: uuid.New()}
}

// atPassengerManagement walks a fresh session to step 3 with a roster of n.
func (f *fixture) atPassengerManagement(t *testing.T, n int) *Session {
	t.Helper()
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.userID); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.svc.SelectTour(ctx, f.userID, f.tour.ID, "2025-06-01"); err != nil {
		t.Fatalf("SelectTour: %v", err)
	}
	if _, err := f.svc.Advance(ctx, f.userID); err != nil {
		t.Fatalf("Advance to lead: %v", err)
	}
	if _, err := f.svc.SkipLead(ctx, f.userID); err != nil {
		t.Fatalf("SkipLead: %v", err)
	}

	session, _, err := f.svc.AddPassengers(ctx, f.userID, n, users.RoleUser)
	if err != nil {
		t.Fatalf("AddPassengers: %v", err)
	}
	return session
}

func TestAdvanceRequiresTourAndDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.StartSession(ctx, f.userID); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if _, err := f.svc.Advance(ctx, f.userID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Advance without selection: err = %v, want ErrInvalidTransition", err)
	}
}

func TestSelectTourRejectsUnknownDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.StartSession(ctx, f.userID)
	if _, err := f.svc.SelectTour(ctx, f.userID, f.tour.ID, "2025-12-24"); !errors.Is(err, ErrDateNotAvailable) {
		t.Errorf("err = %v, want ErrDateNotAvailable", err)
	}
}

func TestAddPassengersInheritsFromPredecessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session := f.atPassengerManagement(t, 1)
	if session.Roster[0].Hotel != "Grand Hotel" {
		t.Errorf("first passenger hotel = %q, want tour default", session.Roster[0].Hotel)
	}

	// Fill inheritance sources, then add two more.
	for field, value := range map[string]interface{}{
		"nationality":     "Mongolian",
		"hotel":           "Steppe Lodge",
		"emergency_phone": "+976-99112233",
	} {
		if _, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: field, Value: value}); err != nil {
			t.Fatalf("UpdateField %s: %v", field, err)
		}
	}

	session, _, err := f.svc.AddPassengers(ctx, f.userID, 2, users.RoleUser)
	if err != nil {
		t.Fatalf("AddPassengers: %v", err)
	}

	for i := 1; i <= 2; i++ {
		p := session.Roster[i]
		if p.Nationality != "Mongolian" || p.Hotel != "Steppe Lodge" || p.EmergencyPhone != "+976-99112233" {
			t.Errorf("passenger %d did not inherit: %+v", i, p)
		}
		if p.Price != f.tour.BasePrice {
			t.Errorf("passenger %d price = %v, want base price", i, p.Price)
		}
	}

	for i, want := range []int{1, 2, 3} {
		if session.Roster[i].SerialNo != want {
			t.Errorf("passenger %d serial = %d, want %d", i, session.Roster[i].SerialNo, want)
		}
	}
}

func TestAddPassengersAllocatesRooms(t *testing.T) {
	f := newFixture(t)
	session := f.atPassengerManagement(t, 3)

	want := []string{"Double-1", "Double-1", "Double-2"}
	for i, w := range want {
		if session.Roster[i].RoomAllocation != w {
			t.Errorf("passenger %d room = %q, want %q", i, session.Roster[i].RoomAllocation, w)
		}
	}
}

func TestUpdateFieldDerivesAgeNamePrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	if _, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "first_name", Value: "Bat"}); err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	session, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "last_name", Value: "Erdene"})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if session.Roster[0].Name != "Bat Erdene" {
		t.Errorf("derived name = %q", session.Roster[0].Name)
	}

	session, err = f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "date_of_birth", Value: "1990-01-15"})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if session.Roster[0].Age <= 0 {
		t.Errorf("derived age = %d, want positive", session.Roster[0].Age)
	}

	session, err = f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{
		Index: 0, Field: "additional_services", Value: []interface{}{"Visa Support", "Insurance"},
	})
	if err != nil {
		t.Fatalf("UpdateField: %v", err)
	}
	if got, want := session.Roster[0].Price, 1080.0; got != want {
		t.Errorf("derived price = %v, want %v", got, want)
	}
}

func TestRoomTypePropagatesToSubs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	if _, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "has_sub_passengers", Value: true}); err != nil {
		t.Fatalf("enable subs: %v", err)
	}
	session, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "sub_passenger_count", Value: float64(2)})
	if err != nil {
		t.Fatalf("set sub count: %v", err)
	}
	if len(session.Roster) != 3 {
		t.Fatalf("roster size = %d, want 3", len(session.Roster))
	}

	session, err = f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "roomType", Value: "Twin"})
	if err != nil {
		t.Fatalf("set room type: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if session.Roster[i].RoomType != "Twin" {
			t.Errorf("sub %d room type = %q, want Twin", i, session.Roster[i].RoomType)
		}
		if session.Roster[i].SerialNo != session.Roster[0].SerialNo {
			t.Errorf("sub %d serial = %d, want main's %d", i, session.Roster[i].SerialNo, session.Roster[0].SerialNo)
		}
	}
}

func TestSubCountRequiresToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	_, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "sub_passenger_count", Value: float64(2)})
	if !errors.Is(err, ErrSubsNotEnabled) {
		t.Errorf("err = %v, want ErrSubsNotEnabled", err)
	}
}

func TestToggleSubsOffRemovesThem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 2)

	f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "has_sub_passengers", Value: true})
	f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "sub_passenger_count", Value: float64(3)})

	session, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "has_sub_passengers", Value: false})
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(session.Roster) != 2 {
		t.Errorf("roster size = %d, want 2 after sub removal", len(session.Roster))
	}
	if session.Roster[0].SubCount != 0 {
		t.Errorf("sub count = %d, want 0", session.Roster[0].SubCount)
	}
}

func TestRemovePassengerCascadesAndRenumbers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 3)

	// Give the second main two subs, then remove it.
	f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 1, Field: "has_sub_passengers", Value: true})
	session, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 1, Field: "sub_passenger_count", Value: float64(2)})
	if err != nil {
		t.Fatalf("set sub count: %v", err)
	}
	if len(session.Roster) != 5 {
		t.Fatalf("roster size = %d, want 5", len(session.Roster))
	}

	session, err = f.svc.RemovePassenger(ctx, f.userID, 1)
	if err != nil {
		t.Fatalf("RemovePassenger: %v", err)
	}
	if len(session.Roster) != 2 {
		t.Fatalf("roster size = %d, want 2 after cascade", len(session.Roster))
	}
	for i, want := range []int{1, 2} {
		if session.Roster[i].SerialNo != want {
			t.Errorf("main %d serial = %d, want %d", i, session.Roster[i].SerialNo, want)
		}
	}
}

func TestRemoveLastPassengerRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	_, err := f.svc.RemovePassenger(ctx, f.userID, 0)
	if !errors.Is(err, ErrLastPassenger) {
		t.Errorf("err = %v, want ErrLastPassenger", err)
	}

	session, _ := f.svc.GetSession(ctx, f.userID)
	if len(session.Roster) != 1 {
		t.Errorf("roster mutated by rejected removal: size %d", len(session.Roster))
	}
}

func TestRemoveOnlyMainWithSubsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	// One main with two subs: removing the main would cascade the subs
	// away and empty the roster, so it must be refused.
	f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "has_sub_passengers", Value: true})
	session, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: "sub_passenger_count", Value: float64(2)})
	if err != nil {
		t.Fatalf("set sub count: %v", err)
	}
	if len(session.Roster) != 3 {
		t.Fatalf("roster size = %d, want 3", len(session.Roster))
	}

	_, err = f.svc.RemovePassenger(ctx, f.userID, 0)
	if !errors.Is(err, ErrLastPassenger) {
		t.Errorf("err = %v, want ErrLastPassenger", err)
	}

	session, _ = f.svc.GetSession(ctx, f.userID)
	if len(session.Roster) != 3 {
		t.Errorf("roster mutated by rejected removal: size %d", len(session.Roster))
	}

	// Removing one of the subs is still fine, the main survives.
	session, err = f.svc.RemovePassenger(ctx, f.userID, 2)
	if err != nil {
		t.Fatalf("remove sub: %v", err)
	}
	if len(session.Roster) != 2 {
		t.Errorf("roster size = %d, want 2 after sub removal", len(session.Roster))
	}
}

func TestClearRosterNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 2)

	if _, err := f.svc.ClearRoster(ctx, f.userID, false); !errors.Is(err, ErrConfirmationRequired) {
		t.Errorf("err = %v, want ErrConfirmationRequired", err)
	}
	session, err := f.svc.ClearRoster(ctx, f.userID, true)
	if err != nil {
		t.Fatalf("confirmed clear: %v", err)
	}
	if len(session.Roster) != 0 {
		t.Errorf("roster not cleared")
	}
}

func TestAdvanceToReviewValidatesRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 1)

	if _, err := f.svc.Advance(ctx, f.userID); !errors.Is(err, ErrRosterInvalid) {
		t.Fatalf("err = %v, want ErrRosterInvalid for blank passenger", err)
	}

	fill := map[string]interface{}{
		"first_name":      "Bat",
		"last_name":       "Erdene",
		"email":           "bat@example.com",
		"phone":           "+976-88112233",
		"nationality":     "Mongolian",
		"gender":          "male",
		"passport_number": "E1234567",
		"passport_expire": "2026-06-01",
	}
	for field, value := range fill {
		if _, err := f.svc.UpdateField(ctx, f.userID, UpdateFieldRequest{Index: 0, Field: field, Value: value}); err != nil {
			t.Fatalf("UpdateField %s: %v", field, err)
		}
	}

	session, err := f.svc.Advance(ctx, f.userID)
	if err != nil {
		t.Fatalf("Advance to review: %v", err)
	}
	if session.Step != StepReview {
		t.Errorf("step = %v, want review", session.Step)
	}
}

func TestAdvanceToReviewEnforcesHoldSeatCount(t *testing.T) {
	tour := testTour()
	store := newMemStore()
	userID := uuid.New()
	hold := &holds.LeadHold{ID: uuid.New(), UserID: userID, SeatCount: 1, Status: holds.StatusConfirmed}
	svc := NewService(store, &fakeCatalog{tour: tour}, &fakeHolds{hold: hold}, &fakeOracle{}, &fakeBooked{})
	ctx := context.Background()

	svc.StartSession(ctx, userID)
	svc.SelectTour(ctx, userID, tour.ID, "2025-06-01")
	svc.Advance(ctx, userID)
	if _, err := svc.AttachHold(ctx, userID, hold.ID); err != nil {
		t.Fatalf("AttachHold: %v", err)
	}

	if _, _, err := svc.AddPassengers(ctx, userID, 2, users.RoleUser); err != nil {
		t.Fatalf("AddPassengers: %v", err)
	}

	// Two passengers against a one-seat hold: both must be valid yet the
	// gate still rejects on capacity.
	fill := map[string]interface{}{
		"first_name": "A", "last_name": "B", "email": "a@b.mn", "phone": "1",
		"nationality": "MN", "gender": "female", "passport_number": "P1",
		"passport_expire": "2026-06-01",
	}
	for idx := 0; idx < 2; idx++ {
		for field, value := range fill {
			if _, err := svc.UpdateField(ctx, userID, UpdateFieldRequest{Index: idx, Field: field, Value: value}); err != nil {
				t.Fatalf("UpdateField: %v", err)
			}
		}
	}

	if _, err := svc.Advance(ctx, userID); !errors.Is(err, ErrHoldCapacityExceeded) {
		t.Errorf("err = %v, want ErrHoldCapacityExceeded", err)
	}
}

func TestBackToStepOneResets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 2)

	session, err := f.svc.Back(ctx, f.userID, StepTourSelection)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if session.Step != StepTourSelection || session.TourID != nil || len(session.Roster) != 0 {
		t.Errorf("session not reset: %+v", session)
	}
}

func TestBackKeepsDataForIntermediateSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.atPassengerManagement(t, 2)

	session, err := f.svc.Back(ctx, f.userID, StepLeadPassenger)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if len(session.Roster) != 2 {
		t.Errorf("roster discarded on backward step: size %d", len(session.Roster))
	}
	if !session.TourChosen() {
		t.Errorf("tour selection discarded on backward step")
	}
}
