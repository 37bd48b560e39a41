package orders

import (
	"context"
	"errors"
	"testing"

	"tourly/internal/availability"
	"tourly/internal/holds"
	"tourly/internal/passengers"
	"tourly/internal/tours"
	"tourly/internal/users"
	"tourly/internal/wizard"
	"tourly/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeOrderRepo struct {
	orders    []*Order
	failOrder int // 1-based index of the Create call that should fail, 0 = never
	creates   int
}

func (f *fakeOrderRepo) Create(ctx context.Context, tx *gorm.DB, order *Order) error {
	f.creates++
	if f.failOrder == f.creates {
		return errors.New("insert failed")
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (f *fakeOrderRepo) GetUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Order, error) {
	var out []Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakePassengerRepo struct {
	batches  [][]passengers.Passenger
	requests [][]passengers.PassengerRequest
}

func (f *fakePassengerRepo) GetBookedForTourDate(ctx context.Context, tourID uuid.UUID, date string) ([]passengers.Passenger, error) {
	return nil, nil
}

func (f *fakePassengerRepo) CountByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakePassengerRepo) CreateBatch(ctx context.Context, tx *gorm.DB, batch []passengers.Passenger) error {
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakePassengerRepo) CreateRequestBatch(ctx context.Context, tx *gorm.DB, batch []passengers.PassengerRequest) error {
	f.requests = append(f.requests, batch)
	return nil
}

type fakeCatalog struct {
	released int
}

func (f *fakeCatalog) GetTour(ctx context.Context, id uuid.UUID) (*tours.Tour, error) {
	return &tours.Tour{ID: id}, nil
}

func (f *fakeCatalog) ReleaseSeats(ctx context.Context, id uuid.UUID, count int) error {
	f.released += count
	return nil
}

type fakeSeats struct {
	result availability.Result
}

func (f *fakeSeats) CheckSeatLimit(ctx context.Context, tourID uuid.UUID, date string, role users.Role) (*availability.Result, error) {
	r := f.result
	return &r, nil
}

type fakeWizard struct {
	session *wizard.Session
	resets  int
}

func (f *fakeWizard) GetSession(ctx context.Context, userID uuid.UUID) (*wizard.Session, error) {
	if f.session == nil {
		return nil, wizard.ErrSessionNotFound
	}
	return f.session, nil
}

func (f *fakeWizard) Reset(ctx context.Context, userID uuid.UUID) error {
	f.resets++
	return nil
}

type fakeHoldConfirmer struct {
	confirmed int
}

func (f *fakeHoldConfirmer) ConfirmHold(ctx context.Context, userID, holdID uuid.UUID) (*holds.LeadHold, error) {
	f.confirmed++
	return &holds.LeadHold{ID: holdID, Status: holds.StatusConfirmed}, nil
}

type fakePublisher struct {
	orderEvents   int
	requestEvents int
}

func (f *fakePublisher) PublishOrderCommitted(ctx context.Context, order *Order, passengerCount int) error {
	f.orderEvents++
	return nil
}

func (f *fakePublisher) PublishRequestSubmitted(ctx context.Context, userID, tourID uuid.UUID, passengerCount int) error {
	f.requestEvents++
	return nil
}

func committable(p passengers.Passenger) passengers.Passenger {
	p.FirstName = "Bat"
	p.LastName = "Erdene"
	p.Gender = "male"
	p.Nationality = "Mongolian"
	p.PassportNumber = "E1234567"
	p.PassportExpire = "2026-06-01"
	p.Email = "bat@example.com"
	p.Phone = "+976-88112233"
	p.Hotel = "Grand Hotel"
	p.RoomType = "Double"
	if p.Price == 0 {
		p.Price = 1000
	}
	return p
}

func reviewSession(userID uuid.UUID, roster []passengers.Passenger) *wizard.Session {
	tourID := uuid.New()
	s := wizard.NewSession(userID)
	s.Step = wizard.StepReview
	s.TourID = &tourID
	s.DepartureDate = "2025-06-01"
	s.PaymentMethod = "bank_transfer"
	s.Roster = roster
	return s
}

type pipelineFixture struct {
	svc        Service
	orderRepo  *fakeOrderRepo
	paxRepo    *fakePassengerRepo
	catalog    *fakeCatalog
	wizardGate *fakeWizard
	holdsConf  *fakeHoldConfirmer
	publisher  *fakePublisher
}

func newPipeline(session *wizard.Session) *pipelineFixture {
	f := &pipelineFixture{
		orderRepo:  &fakeOrderRepo{},
		paxRepo:    &fakePassengerRepo{},
		catalog:    &fakeCatalog{},
		wizardGate: &fakeWizard{session: session},
		holdsConf:  &fakeHoldConfirmer{},
		publisher:  &fakePublisher{},
	}
	seats := &fakeSeats{result: availability.Result{Valid: true, Remaining: 50}}
	f.svc = NewService(f.orderRepo, f.paxRepo, f.catalog, seats, f.wizardGate, f.holdsConf, f.publisher, logger.New())
	return f
}

func TestCommitPrivilegedWritesOrdersPerGroup(t *testing.T) {
	userID := uuid.New()
	a := committable(passengers.Passenger{ID: uuid.New(), IsRelatedToNext: true})
	b := committable(passengers.Passenger{ID: uuid.New()})
	c := committable(passengers.Passenger{ID: uuid.New()})
	f := newPipeline(reviewSession(userID, []passengers.Passenger{a, b, c}))

	result, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if !result.AllCommitted || result.RequiresApproval {
		t.Errorf("result = %+v, want fully committed direct orders", result)
	}
	if len(result.Groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(result.Groups))
	}
	if result.Groups[0].SeatCount != 2 || result.Groups[1].SeatCount != 1 {
		t.Errorf("group seat counts = %d, %d, want 2, 1", result.Groups[0].SeatCount, result.Groups[1].SeatCount)
	}
	if len(f.orderRepo.orders) != 2 {
		t.Errorf("persisted %d orders, want 2", len(f.orderRepo.orders))
	}
	if len(f.paxRepo.batches) != 2 || len(f.paxRepo.requests) != 0 {
		t.Errorf("batches=%d requests=%d, want direct writes only", len(f.paxRepo.batches), len(f.paxRepo.requests))
	}
	if f.catalog.released != 3 {
		t.Errorf("seats burned = %d, want 3", f.catalog.released)
	}
	if f.wizardGate.resets != 1 {
		t.Errorf("session resets = %d, want 1", f.wizardGate.resets)
	}
	if f.publisher.orderEvents != 2 {
		t.Errorf("order events = %d, want 2", f.publisher.orderEvents)
	}

	for _, batch := range f.paxRepo.batches {
		for _, p := range batch {
			if p.OrderID == nil {
				t.Errorf("persisted passenger missing order id")
			}
			if p.Status != passengers.StatusActive {
				t.Errorf("persisted passenger status = %s, want active", p.Status)
			}
		}
	}
}

func TestCommitRegularUserGoesToApprovalQueue(t *testing.T) {
	userID := uuid.New()
	a := committable(passengers.Passenger{ID: uuid.New()})
	b := committable(passengers.Passenger{ID: uuid.New()})
	f := newPipeline(reviewSession(userID, []passengers.Passenger{a, b}))

	result, err := f.svc.Commit(context.Background(), userID, users.RoleUser)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if !result.RequiresApproval || !result.AllCommitted {
		t.Errorf("result = %+v, want approval-queue submission", result)
	}
	if len(f.orderRepo.orders) != 2 {
		t.Fatalf("persisted %d orders, want one pending order per group", len(f.orderRepo.orders))
	}
	if len(f.paxRepo.batches) != 0 {
		t.Errorf("regular user wrote %d direct passenger batches", len(f.paxRepo.batches))
	}
	if len(f.paxRepo.requests) != 2 {
		t.Fatalf("request batches = %d, want 2", len(f.paxRepo.requests))
	}
	if f.catalog.released != 0 {
		t.Errorf("seats burned = %d, want 0 before approval", f.catalog.released)
	}

	for i, order := range f.orderRepo.orders {
		if order.Status != StatusPending {
			t.Errorf("order %d status = %s, want pending", i, order.Status)
		}
		if order.PaymentMethod != "bank_transfer" {
			t.Errorf("order %d payment method = %q, want session's", i, order.PaymentMethod)
		}
		if order.ReferenceNo == "" {
			t.Errorf("order %d has no reference number", i)
		}
		if order.SeatCount != 1 || order.TotalPrice != 1000 {
			t.Errorf("order %d totals = %d seats / %v, want 1 / 1000", i, order.SeatCount, order.TotalPrice)
		}

		req := f.paxRepo.requests[i][0]
		if req.OrderID == nil || *req.OrderID != order.ID {
			t.Errorf("request row %d not tagged with its pending order", i)
		}
		if req.RequestedBy != userID {
			t.Errorf("requested_by = %s, want submitting user", req.RequestedBy)
		}
		if req.Status != passengers.StatusPending {
			t.Errorf("request status = %s, want pending", req.Status)
		}
	}
}

func TestCommitRewiresSubLinksToPersistedMain(t *testing.T) {
	userID := uuid.New()
	main := committable(passengers.Passenger{ID: uuid.New(), HasSubPassengers: true, SubCount: 1})
	sub := committable(passengers.Passenger{ID: uuid.New(), MainPassengerID: &main.ID})

	t.Run("direct", func(t *testing.T) {
		f := newPipeline(reviewSession(userID, []passengers.Passenger{main, sub}))

		if _, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if len(f.paxRepo.batches) != 1 || len(f.paxRepo.batches[0]) != 2 {
			t.Fatalf("want one batch of main plus sub, got %+v", f.paxRepo.batches)
		}

		gotMain, gotSub := f.paxRepo.batches[0][0], f.paxRepo.batches[0][1]
		if gotMain.ID == main.ID || gotSub.ID == sub.ID {
			t.Errorf("persisted rows kept their session ids")
		}
		if gotSub.MainPassengerID == nil || *gotSub.MainPassengerID != gotMain.ID {
			t.Errorf("persisted sub links to %v, want persisted main %s", gotSub.MainPassengerID, gotMain.ID)
		}
	})

	t.Run("approval queue", func(t *testing.T) {
		f := newPipeline(reviewSession(userID, []passengers.Passenger{main, sub}))

		if _, err := f.svc.Commit(context.Background(), userID, users.RoleUser); err != nil {
			t.Fatalf("Commit: %v", err)
		}
		if len(f.paxRepo.requests) != 1 || len(f.paxRepo.requests[0]) != 2 {
			t.Fatalf("want one request batch of main plus sub, got %+v", f.paxRepo.requests)
		}

		gotMain, gotSub := f.paxRepo.requests[0][0], f.paxRepo.requests[0][1]
		if gotSub.MainPassengerID == nil || *gotSub.MainPassengerID != gotMain.ID {
			t.Errorf("queued sub links to %v, want queued main %s", gotSub.MainPassengerID, gotMain.ID)
		}
	})
}

func TestCommitContinuesPastFailedGroup(t *testing.T) {
	userID := uuid.New()
	a := committable(passengers.Passenger{ID: uuid.New()})
	b := committable(passengers.Passenger{ID: uuid.New()})
	f := newPipeline(reviewSession(userID, []passengers.Passenger{a, b}))
	f.orderRepo.failOrder = 1

	result, err := f.svc.Commit(context.Background(), userID, users.RoleManager)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if result.AllCommitted {
		t.Errorf("AllCommitted = true despite failed group")
	}
	if len(result.Groups) != 2 {
		t.Fatalf("got %d group results, want 2", len(result.Groups))
	}
	if result.Groups[0].Committed || result.Groups[0].Error == "" {
		t.Errorf("first group = %+v, want failure with message", result.Groups[0])
	}
	if !result.Groups[1].Committed {
		t.Errorf("second group did not commit after first failed")
	}
	if f.wizardGate.resets != 0 {
		t.Errorf("session reset despite partial failure")
	}
}

func TestCommitRejectsWrongStep(t *testing.T) {
	userID := uuid.New()
	session := reviewSession(userID, []passengers.Passenger{committable(passengers.Passenger{ID: uuid.New()})})
	session.Step = wizard.StepPassengerManagement
	f := newPipeline(session)

	if _, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin); !errors.Is(err, ErrNotAtReview) {
		t.Errorf("err = %v, want ErrNotAtReview", err)
	}
}

func TestCommitRejectsMissingPaymentMethod(t *testing.T) {
	userID := uuid.New()
	session := reviewSession(userID, []passengers.Passenger{committable(passengers.Passenger{ID: uuid.New()})})
	session.PaymentMethod = ""
	f := newPipeline(session)

	if _, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin); !errors.Is(err, ErrPaymentMethod) {
		t.Errorf("err = %v, want ErrPaymentMethod", err)
	}
}

func TestCommitRevalidatesRoster(t *testing.T) {
	userID := uuid.New()
	blank := passengers.Passenger{ID: uuid.New()}
	f := newPipeline(reviewSession(userID, []passengers.Passenger{blank}))

	if _, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin); !errors.Is(err, ErrRosterInvalid) {
		t.Errorf("err = %v, want ErrRosterInvalid", err)
	}
}

func TestCommitBlocksOnSeatShortage(t *testing.T) {
	userID := uuid.New()
	a := committable(passengers.Passenger{ID: uuid.New()})
	b := committable(passengers.Passenger{ID: uuid.New()})
	session := reviewSession(userID, []passengers.Passenger{a, b})

	f := &pipelineFixture{
		orderRepo:  &fakeOrderRepo{},
		paxRepo:    &fakePassengerRepo{},
		catalog:    &fakeCatalog{},
		wizardGate: &fakeWizard{session: session},
		holdsConf:  &fakeHoldConfirmer{},
		publisher:  &fakePublisher{},
	}
	seats := &fakeSeats{result: availability.Result{Valid: true, Remaining: 1}}
	f.svc = NewService(f.orderRepo, f.paxRepo, f.catalog, seats, f.wizardGate, f.holdsConf, f.publisher, logger.New())

	if _, err := f.svc.Commit(context.Background(), userID, users.RoleUser); !errors.Is(err, ErrInsufficientSeats) {
		t.Errorf("err = %v, want ErrInsufficientSeats", err)
	}
}

func TestCommitConfirmsHoldOnFullSuccess(t *testing.T) {
	userID := uuid.New()
	holdID := uuid.New()
	session := reviewSession(userID, []passengers.Passenger{committable(passengers.Passenger{ID: uuid.New()})})
	session.HoldID = &holdID
	session.HoldSeatCount = 1
	f := newPipeline(session)

	if _, err := f.svc.Commit(context.Background(), userID, users.RoleAdmin); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if f.holdsConf.confirmed != 1 {
		t.Errorf("hold confirmations = %d, want 1", f.holdsConf.confirmed)
	}
}

func TestGetOrderOwnership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	order := &Order{ID: uuid.New(), UserID: owner, ReferenceNo: "TUR-20250601-ABCDEF"}
	f := newPipeline(nil)
	f.orderRepo.orders = append(f.orderRepo.orders, order)

	if _, err := f.svc.GetOrder(context.Background(), order.ID, stranger, users.RoleUser); !errors.Is(err, ErrNotOrderOwner) {
		t.Errorf("stranger read: err = %v, want ErrNotOrderOwner", err)
	}
	if _, err := f.svc.GetOrder(context.Background(), order.ID, stranger, users.RoleAdmin); err != nil {
		t.Errorf("admin read: err = %v, want nil", err)
	}
	if _, err := f.svc.GetOrder(context.Background(), order.ID, owner, users.RoleUser); err != nil {
		t.Errorf("owner read: err = %v, want nil", err)
	}
}
