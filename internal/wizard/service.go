package wizard

import (
	"context"
	"errors"
	"fmt"

	"tourly/internal/allocation"
	"tourly/internal/availability"
	"tourly/internal/holds"
	"tourly/internal/passengers"
	"tourly/internal/tours"
	"tourly/internal/users"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition    = errors.New("transition not allowed from the current step")
	ErrTourNotBookable      = errors.New("tour is not open for booking")
	ErrDateNotAvailable     = errors.New("departure date is not offered for this tour")
	ErrRosterEmpty          = errors.New("roster has no passengers")
	ErrRosterInvalid        = errors.New("roster has validation errors")
	ErrLastPassenger        = errors.New("the roster must keep at least one passenger")
	ErrIndexOutOfRange      = errors.New("passenger index out of range")
	ErrUnknownField         = errors.New("unknown passenger field")
	ErrConfirmationRequired = errors.New("destructive operation requires confirmation")
	ErrHoldCapacityExceeded = errors.New("roster exceeds the lead hold's seat count")
	ErrNoPaymentMethod      = errors.New("payment method not selected")
	ErrSubsNotEnabled       = errors.New("sub passengers are not enabled for this passenger")
	ErrNotMainPassenger     = errors.New("operation applies to main passengers only")
)

// TourCatalog is the slice of the tour service the wizard needs.
type TourCatalog interface {
	GetTour(ctx context.Context, id uuid.UUID) (*tours.Tour, error)
}

// HoldProvider resolves the user's live lead hold.
type HoldProvider interface {
	GetActiveHold(ctx context.Context, userID uuid.UUID) (*holds.LeadHold, error)
}

// BookedLister fetches the already-persisted passengers the allocation
// engine must pack around.
type BookedLister interface {
	GetBookedForTourDate(ctx context.Context, tourID uuid.UUID, date string) ([]passengers.Passenger, error)
}

// Service drives the four-step booking wizard and owns all roster
// mutations. Every operation is load -> mutate -> derive -> save; the
// store's version check rejects lost updates.
type Service interface {
	StartSession(ctx context.Context, userID uuid.UUID) (*Session, error)
	GetSession(ctx context.Context, userID uuid.UUID) (*Session, error)

	SelectTour(ctx context.Context, userID, tourID uuid.UUID, date string) (*Session, error)
	Advance(ctx context.Context, userID uuid.UUID) (*Session, error)
	Back(ctx context.Context, userID uuid.UUID, to Step) (*Session, error)
	SkipLead(ctx context.Context, userID uuid.UUID) (*Session, error)
	AttachHold(ctx context.Context, userID, holdID uuid.UUID) (*Session, error)

	AddPassengers(ctx context.Context, userID uuid.UUID, count int, role users.Role) (*Session, *availability.Result, error)
	UpdateField(ctx context.Context, userID uuid.UUID, req UpdateFieldRequest) (*Session, error)
	RemovePassenger(ctx context.Context, userID uuid.UUID, index int) (*Session, error)
	SetExpansion(ctx context.Context, userID uuid.UUID, index int, expanded bool) (*Session, error)
	ClearRoster(ctx context.Context, userID uuid.UUID, confirmed bool) (*Session, error)

	SetPaymentMethod(ctx context.Context, userID uuid.UUID, method string) (*Session, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store   Store
	catalog TourCatalog
	holds   HoldProvider
	oracle  availability.Oracle
	booked  BookedLister
}

func NewService(store Store, catalog TourCatalog, holdProvider HoldProvider, oracle availability.Oracle, booked BookedLister) Service {
	return &service{
		store:   store,
		catalog: catalog,
		holds:   holdProvider,
		oracle:  oracle,
		booked:  booked,
	}
}

func (s *service) StartSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	session = NewSession(userID)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) GetSession(ctx context.Context, userID uuid.UUID) (*Session, error) {
	return s.store.Load(ctx, userID)
}

func (s *service) SelectTour(ctx context.Context, userID, tourID uuid.UUID, date string) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepTourSelection {
		return nil, ErrInvalidTransition
	}

	tour, err := s.catalog.GetTour(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if !tour.Status.IsBookable() {
		return nil, ErrTourNotBookable
	}
	if !tour.HasDate(date) {
		return nil, ErrDateNotAvailable
	}

	session.TourID = &tourID
	session.DepartureDate = date
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Advance moves the wizard one step forward, enforcing the per-step gates.
func (s *service) Advance(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch session.Step {
	case StepTourSelection:
		if !session.TourChosen() {
			return nil, fmt.Errorf("%w: tour and departure date must be chosen", ErrInvalidTransition)
		}
		session.Step = StepLeadPassenger

	case StepLeadPassenger:
		if !session.LeadResolved() {
			return nil, fmt.Errorf("%w: confirm a lead hold or skip lead registration", ErrInvalidTransition)
		}
		session.Step = StepPassengerManagement

	case StepPassengerManagement:
		if err := s.checkReviewGate(session); err != nil {
			return nil, err
		}
		session.Step = StepReview

	default:
		return nil, ErrInvalidTransition
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// checkReviewGate is the 3 -> 4 gate, re-checked again at commit time.
func (s *service) checkReviewGate(session *Session) error {
	if len(session.Roster) == 0 {
		return ErrRosterEmpty
	}
	if errs := ValidateRoster(session.Roster, session.DepartureDate); len(errs) > 0 {
		session.Errors = errs
		return fmt.Errorf("%w: %d field error(s)", ErrRosterInvalid, len(errs))
	}
	session.Errors = nil
	if problems := allocation.ValidateRoomAllocations(session.Roster); len(problems) > 0 {
		return fmt.Errorf("%w: %d room allocation problem(s)", ErrRosterInvalid, len(problems))
	}
	if !session.WithinHold() {
		return fmt.Errorf("%w: hold covers %d seat(s), roster has %d", ErrHoldCapacityExceeded, session.HoldSeatCount, len(session.Roster))
	}
	return nil
}

// Back jumps to any earlier step. Data survives except when returning to
// step 1, which is an explicit full reset.
func (s *service) Back(ctx context.Context, userID uuid.UUID, to Step) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !to.IsValid() || to >= session.Step {
		return nil, ErrInvalidTransition
	}

	if to == StepTourSelection {
		session.Reset()
	} else {
		session.Step = to
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) SkipLead(ctx context.Context, userID uuid.UUID) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepLeadPassenger {
		return nil, ErrInvalidTransition
	}

	session.LeadSkipped = true
	session.HoldID = nil
	session.HoldSeatCount = 0
	session.Step = StepPassengerManagement

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) AttachHold(ctx context.Context, userID, holdID uuid.UUID) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepLeadPassenger {
		return nil, ErrInvalidTransition
	}

	hold, err := s.holds.GetActiveHold(ctx, userID)
	if err != nil {
		return nil, err
	}
	if hold.ID != holdID {
		return nil, holds.ErrHoldMismatch
	}

	// The hold lookup awaited the network; re-read the snapshot so a
	// mutation that landed meanwhile is not overwritten.
	session, err = s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	session.HoldID = &hold.ID
	session.HoldSeatCount = hold.SeatCount
	session.LeadSkipped = false
	session.Step = StepPassengerManagement

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddPassengers appends count new main passengers. Each inherits
// nationality, hotel and emergency phone from the passenger before it, and
// room codes are computed against booked passengers plus the roster before
// the insertion completes. The returned availability result is advisory.
func (s *service) AddPassengers(ctx context.Context, userID uuid.UUID, count int, role users.Role) (*Session, *availability.Result, error) {
	if count < 1 {
		return nil, nil, fmt.Errorf("passenger count must be positive")
	}

	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if session.Step != StepPassengerManagement {
		return nil, nil, ErrInvalidTransition
	}
	if !session.TourChosen() {
		return nil, nil, ErrInvalidTransition
	}

	tour, err := s.catalog.GetTour(ctx, *session.TourID)
	if err != nil {
		return nil, nil, err
	}
	booked, err := s.booked.GetBookedForTourDate(ctx, *session.TourID, session.DepartureDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch booked passengers: %w", err)
	}

	// Both fetches above may have suspended; resume on the latest snapshot.
	session, err = s.store.Load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	for i := 0; i < count; i++ {
		p := passengers.Passenger{
			ID:            uuid.New(),
			TourID:        *session.TourID,
			DepartureDate: session.DepartureDate,
			RoomType:      allocation.RoomDouble,
			Price:         tour.BasePrice,
			Status:        passengers.StatusPending,
		}
		if n := len(session.Roster); n > 0 {
			prev := &session.Roster[n-1]
			p.Nationality = prev.Nationality
			p.Hotel = prev.Hotel
			p.EmergencyPhone = prev.EmergencyPhone
		} else if len(tour.Hotels) > 0 {
			p.Hotel = tour.Hotels[0]
		}
		session.Roster = append(session.Roster, p)
	}

	applyDerived(session, tour, booked)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, nil, err
	}

	verdict, err := s.oracle.CheckSeatLimit(ctx, *session.TourID, session.DepartureDate, role)
	if err != nil {
		// Advisory only; the roster mutation already stands.
		verdict = nil
	}
	return session, verdict, nil
}

func (s *service) RemovePassenger(ctx context.Context, userID uuid.UUID, index int) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(session.Roster) {
		return nil, ErrIndexOutOfRange
	}
	if survivorsAfterRemoval(session.Roster, index) == 0 {
		return nil, ErrLastPassenger
	}

	tour, booked, err := s.fetchContext(ctx, session)
	if err != nil {
		return nil, err
	}
	session, err = s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index >= len(session.Roster) {
		return nil, ErrIndexOutOfRange
	}
	if survivorsAfterRemoval(session.Roster, index) == 0 {
		return nil, ErrLastPassenger
	}

	session.Roster = append(session.Roster[:index], session.Roster[index+1:]...)

	// applyDerived cascades removal of the orphaned subs and clears a
	// dangling expansion pointer.
	applyDerived(session, tour, booked)
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// survivorsAfterRemoval counts the roster entries left once the passenger
// at index — and, for a main, the subs that cascade with it — is gone.
// The roster must never drop to zero through removal.
func survivorsAfterRemoval(roster []passengers.Passenger, index int) int {
	removed := &roster[index]
	count := 0
	for i := range roster {
		if i == index {
			continue
		}
		if removed.IsMain() && roster[i].MainPassengerID != nil && *roster[i].MainPassengerID == removed.ID {
			continue
		}
		count++
	}
	return count
}

func (s *service) SetExpansion(ctx context.Context, userID uuid.UUID, index int, expanded bool) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(session.Roster) {
		return nil, ErrIndexOutOfRange
	}
	p := &session.Roster[index]
	if !p.IsMain() {
		return nil, ErrNotMainPassenger
	}

	if expanded {
		id := p.ID
		session.ActiveExpansion = &id
	} else if session.ActiveExpansion != nil && *session.ActiveExpansion == p.ID {
		session.ActiveExpansion = nil
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ClearRoster wipes the roster. The confirmation flag models the explicit
// confirm step the UI must run before destructive bulk operations.
func (s *service) ClearRoster(ctx context.Context, userID uuid.UUID, confirmed bool) (*Session, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	session.Roster = []passengers.Passenger{}
	session.ActiveExpansion = nil
	session.Errors = nil

	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *service) SetPaymentMethod(ctx context.Context, userID uuid.UUID, method string) (*Session, error) {
	session, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != StepReview {
		return nil, ErrInvalidTransition
	}

	session.PaymentMethod = method
	if err := s.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Reset drops the session entirely; used after a fully successful commit.
func (s *service) Reset(ctx context.Context, userID uuid.UUID) error {
	return s.store.Delete(ctx, userID)
}

func (s *service) fetchContext(ctx context.Context, session *Session) (*tours.Tour, []passengers.Passenger, error) {
	if !session.TourChosen() {
		return nil, nil, ErrInvalidTransition
	}
	tour, err := s.catalog.GetTour(ctx, *session.TourID)
	if err != nil {
		return nil, nil, err
	}
	booked, err := s.booked.GetBookedForTourDate(ctx, *session.TourID, session.DepartureDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch booked passengers: %w", err)
	}
	return tour, booked, nil
}
