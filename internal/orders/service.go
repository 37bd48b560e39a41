package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

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

var (
	ErrNotAtReview       = errors.New("wizard session is not at the review step")
	ErrPaymentMethod     = errors.New("payment method not selected")
	ErrRosterInvalid     = errors.New("roster failed commit-time validation")
	ErrInsufficientSeats = errors.New("not enough seats left for this departure")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
)

// WizardGateway is the slice of the wizard service the pipeline needs
// (to avoid circular dependency).
type WizardGateway interface {
	GetSession(ctx context.Context, userID uuid.UUID) (*wizard.Session, error)
	Reset(ctx context.Context, userID uuid.UUID) error
}

// Catalog resolves tours and burns down their seat counters.
type Catalog interface {
	GetTour(ctx context.Context, id uuid.UUID) (*tours.Tour, error)
	ReleaseSeats(ctx context.Context, id uuid.UUID, count int) error
}

// SeatChecker answers the commit-time seat question.
type SeatChecker interface {
	CheckSeatLimit(ctx context.Context, tourID uuid.UUID, date string, role users.Role) (*availability.Result, error)
}

// HoldConfirmer marks the lead hold consumed once every group lands.
type HoldConfirmer interface {
	ConfirmHold(ctx context.Context, userID, holdID uuid.UUID) (*holds.LeadHold, error)
}

// EventPublisher pushes commit events onto the notification stream.
type EventPublisher interface {
	PublishOrderCommitted(ctx context.Context, order *Order, passengerCount int) error
	PublishRequestSubmitted(ctx context.Context, userID, tourID uuid.UUID, passengerCount int) error
}

// GroupResult reports the outcome of one commit group. Groups are
// independent: an earlier failure never rolls back a later success.
type GroupResult struct {
	GroupIndex  int        `json:"group_index"`
	SeatCount   int        `json:"seat_count"`
	TotalPrice  float64    `json:"total_price"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	ReferenceNo string     `json:"reference_no,omitempty"`
	Committed   bool       `json:"committed"`
	Error       string     `json:"error,omitempty"`
}

// CommitResult is the full pipeline outcome for one checkout.
type CommitResult struct {
	Groups           []GroupResult `json:"groups"`
	AllCommitted     bool          `json:"all_committed"`
	RequiresApproval bool          `json:"requires_approval"`
}

// Service interface defines the contract for the order commit pipeline
type Service interface {
	Commit(ctx context.Context, userID uuid.UUID, role users.Role) (*CommitResult, error)
	GetOrder(ctx context.Context, orderID, userID uuid.UUID, role users.Role) (*Order, error)
	GetUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Order, error)
}

type service struct {
	repo       Repository
	passengers passengers.Repository
	catalog    Catalog
	seats      SeatChecker
	wizard     WizardGateway
	holds      HoldConfirmer
	events     EventPublisher
	log        *logger.Logger
}

func NewService(
	repo Repository,
	passengerRepo passengers.Repository,
	catalog Catalog,
	seats SeatChecker,
	wizardGateway WizardGateway,
	holdConfirmer HoldConfirmer,
	events EventPublisher,
	log *logger.Logger,
) Service {
	return &service{
		repo:       repo,
		passengers: passengerRepo,
		catalog:    catalog,
		seats:      seats,
		wizard:     wizardGateway,
		holds:      holdConfirmer,
		events:     events,
		log:        log,
	}
}

// Commit persists the wizard roster. The roster is partitioned into
// groups along the related-to-next chain; each group commits in its own
// transaction, sequentially and in roster order. A failed group is
// reported and skipped, the remaining groups still run. Privileged roles
// write orders and passengers directly; everyone else lands in the
// approval queue.
func (s *service) Commit(ctx context.Context, userID uuid.UUID, role users.Role) (*CommitResult, error) {
	session, err := s.wizard.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.Step != wizard.StepReview {
		return nil, ErrNotAtReview
	}
	if session.PaymentMethod == "" {
		return nil, ErrPaymentMethod
	}
	if session.TourID == nil {
		return nil, ErrNotAtReview
	}

	// The review gate already ran, but the session may have sat idle; the
	// roster is re-validated at the moment of truth.
	if errs := wizard.ValidateRoster(session.Roster, session.DepartureDate); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %d field error(s)", ErrRosterInvalid, len(errs))
	}

	check, err := s.seats.CheckSeatLimit(ctx, *session.TourID, session.DepartureDate, role)
	if err != nil {
		return nil, fmt.Errorf("seat check failed: %w", err)
	}
	if !check.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInsufficientSeats, check.Message)
	}
	if !check.Unlimited && check.Remaining < len(session.Roster) {
		return nil, fmt.Errorf("%w: %d seat(s) left, roster has %d", ErrInsufficientSeats, check.Remaining, len(session.Roster))
	}

	groups := PartitionGroups(session.Roster)
	direct := role.IsPrivileged()

	result := &CommitResult{
		Groups:           make([]GroupResult, 0, len(groups)),
		AllCommitted:     true,
		RequiresApproval: !direct,
	}

	for i, group := range groups {
		gr := s.commitGroup(ctx, session, userID, i, group, direct)
		if !gr.Committed {
			result.AllCommitted = false
		}
		result.Groups = append(result.Groups, gr)
	}

	if result.AllCommitted {
		s.finish(ctx, session, userID)
	}
	return result, nil
}

// commitGroup persists one group in its own transaction and reports the
// outcome. Seat burn-down and event publishing happen only after the
// transaction commits.
func (s *service) commitGroup(ctx context.Context, session *wizard.Session, userID uuid.UUID, index int, group []passengers.Passenger, direct bool) GroupResult {
	seatCount, total := groupTotals(group)
	gr := GroupResult{GroupIndex: index, SeatCount: seatCount, TotalPrice: total}

	ref, err := s.generateReference()
	if err != nil {
		gr.Error = err.Error()
		return gr
	}

	status := StatusConfirmed
	if !direct {
		status = StatusPending
	}
	order := &Order{
		ID:            uuid.New(),
		ReferenceNo:   ref,
		UserID:        userID,
		TourID:        *session.TourID,
		DepartureDate: session.DepartureDate,
		PaymentMethod: session.PaymentMethod,
		SeatCount:     seatCount,
		TotalPrice:    total,
		Status:        status,
	}

	if !direct {
		// Same order row, but the passengers go to the approval side
		// channel: the approver gets the group's payment method, totals
		// and partition boundary from the pending order.
		err := s.repo.Transaction(ctx, func(tx *gorm.DB) error {
			if err := s.repo.Create(ctx, tx, order); err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
			stamped := restampGroup(group)
			batch := make([]passengers.PassengerRequest, 0, len(stamped))
			for _, p := range stamped {
				p.OrderID = &order.ID
				p.TourID = *session.TourID
				p.DepartureDate = session.DepartureDate
				p.Status = passengers.StatusPending
				batch = append(batch, passengers.PassengerRequest{Passenger: p, RequestedBy: userID})
			}
			return s.passengers.CreateRequestBatch(ctx, tx, batch)
		})
		if err != nil {
			gr.Error = err.Error()
			s.log.Error("commit group failed", "group", index, "user_id", userID, "error", err)
			return gr
		}

		gr.Committed = true
		gr.OrderID = &order.ID
		gr.ReferenceNo = ref
		if s.events != nil {
			if err := s.events.PublishRequestSubmitted(ctx, userID, *session.TourID, seatCount); err != nil {
				s.log.Warn("request event publish failed", "user_id", userID, "error", err)
			}
		}
		return gr
	}

	err = s.repo.Transaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		stamped := restampGroup(group)
		batch := make([]passengers.Passenger, 0, len(stamped))
		for _, p := range stamped {
			p.OrderID = &order.ID
			p.TourID = *session.TourID
			p.DepartureDate = session.DepartureDate
			p.Status = passengers.StatusActive
			batch = append(batch, p)
		}
		return s.passengers.CreateBatch(ctx, tx, batch)
	})
	if err != nil {
		gr.Error = err.Error()
		s.log.Error("commit group failed", "group", index, "reference", ref, "error", err)
		return gr
	}

	gr.Committed = true
	gr.OrderID = &order.ID
	gr.ReferenceNo = ref

	if err := s.catalog.ReleaseSeats(ctx, order.TourID, seatCount); err != nil {
		// The order stands; the counter is reconciled out of band.
		s.log.Warn("seat counter update failed", "tour_id", order.TourID, "reference", ref, "error", err)
	}
	if s.events != nil {
		if err := s.events.PublishOrderCommitted(ctx, order, seatCount); err != nil {
			s.log.Warn("order event publish failed", "reference", ref, "error", err)
		}
	}
	return gr
}

// finish runs once every group has committed: consume the hold, drop the
// session. Both are best effort, the orders are already durable.
func (s *service) finish(ctx context.Context, session *wizard.Session, userID uuid.UUID) {
	if session.HoldID != nil && s.holds != nil {
		if _, err := s.holds.ConfirmHold(ctx, userID, *session.HoldID); err != nil {
			s.log.Warn("hold confirmation failed after commit", "user_id", userID, "hold_id", *session.HoldID, "error", err)
		}
	}
	if err := s.wizard.Reset(ctx, userID); err != nil {
		s.log.Warn("session reset failed after commit", "user_id", userID, "error", err)
	}
}

func (s *service) GetOrder(ctx context.Context, orderID, userID uuid.UUID, role users.Role) (*Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID && !role.IsPrivileged() {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.GetUserOrders(ctx, userID, limit, offset)
}

// generateReference builds a unique order reference, e.g. TUR-20250601-KQZMNP.
func (s *service) generateReference() (string, error) {
	timestamp := time.Now().Format("20060102")

	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomPart := make([]byte, 6)
	for i := range randomPart {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		randomPart[i] = letters[num.Int64()]
	}

	return fmt.Sprintf("TUR-%s-%s", timestamp, string(randomPart)), nil
}
