package holds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHoldAlreadyHeld = errors.New("an earlier lead hold is still active")
	ErrHoldExpired     = errors.New("lead hold has expired")
	ErrHoldMismatch    = errors.New("hold does not belong to this user")
)

// EventPublisher pushes hold lifecycle events to the notification stream
// (interface here to avoid a dependency on the notifications package).
type EventPublisher interface {
	PublishHoldExpired(ctx context.Context, holdID, userID uuid.UUID, seatCount int) error
}

type Service interface {
	CreateHold(ctx context.Context, req CreateHoldRequest, userID uuid.UUID) (*LeadHold, error)
	ConfirmHold(ctx context.Context, userID, holdID uuid.UUID) (*LeadHold, error)
	CancelHold(ctx context.Context, userID, holdID uuid.UUID) error
	GetActiveHold(ctx context.Context, userID uuid.UUID) (*LeadHold, error)
}

// CreateHoldRequest carries the lead passenger's identity and seat count.
type CreateHoldRequest struct {
	TourID        string `json:"tour_id" validate:"required,uuid"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	SeatCount     int    `json:"seat_count" validate:"required,min=1"`
}

type service struct {
	repo      Repository
	atomic    *AtomicRedisOperations
	publisher EventPublisher
	ttl       time.Duration
}

func NewService(repo Repository, atomic *AtomicRedisOperations, publisher EventPublisher, ttl time.Duration) Service {
	return &service{
		repo:      repo,
		atomic:    atomic,
		publisher: publisher,
		ttl:       ttl,
	}
}

func (s *service) CreateHold(ctx context.Context, req CreateHoldRequest, userID uuid.UUID) (*LeadHold, error) {
	tourID, err := uuid.Parse(req.TourID)
	if err != nil {
		return nil, fmt.Errorf("invalid tour ID: %w", err)
	}

	now := time.Now()
	hold := &LeadHold{
		ID:            uuid.New(),
		UserID:        userID,
		TourID:        tourID,
		DepartureDate: req.DepartureDate,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Phone:         req.Phone,
		SeatCount:     req.SeatCount,
		Status:        StatusPending,
		ExpiresAt:     now.Add(s.ttl),
	}

	won, existingID, err := s.atomic.Acquire(ctx, hold, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire hold: %w", err)
	}
	if !won {
		return nil, fmt.Errorf("%w (hold %s)", ErrHoldAlreadyHeld, existingID)
	}

	if err := s.repo.Create(ctx, hold); err != nil {
		// Audit row failed; drop the live entry so the user is not stuck.
		_ = s.atomic.Release(ctx, userID)
		return nil, fmt.Errorf("failed to record hold: %w", err)
	}

	return hold, nil
}

func (s *service) ConfirmHold(ctx context.Context, userID, holdID uuid.UUID) (*LeadHold, error) {
	hold, err := s.repo.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, ErrHoldMismatch
	}

	ok, reason, err := s.atomic.Confirm(ctx, userID, holdID)
	if err != nil {
		return nil, err
	}
	if !ok {
		if reason == "hold_expired" {
			s.markExpired(ctx, hold)
			return nil, ErrHoldExpired
		}
		return nil, ErrHoldMismatch
	}

	if err := s.repo.UpdateStatus(ctx, holdID, StatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to update hold status: %w", err)
	}
	hold.Status = StatusConfirmed
	return hold, nil
}

func (s *service) CancelHold(ctx context.Context, userID, holdID uuid.UUID) error {
	hold, err := s.repo.GetByID(ctx, holdID)
	if err != nil {
		return err
	}
	if hold.UserID != userID {
		return ErrHoldMismatch
	}

	if err := s.atomic.Release(ctx, userID); err != nil {
		return err
	}
	return s.repo.UpdateStatus(ctx, holdID, StatusCancelled)
}

// GetActiveHold returns the user's live hold. A pending hold whose Redis
// entry lapsed is voided on read, which is how expiry surfaces to the
// wizard.
func (s *service) GetActiveHold(ctx context.Context, userID uuid.UUID) (*LeadHold, error) {
	hold, err := s.repo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	live, err := s.atomic.IsLive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !live || hold.IsExpired(time.Now()) {
		s.markExpired(ctx, hold)
		return nil, ErrHoldExpired
	}

	return hold, nil
}

func (s *service) markExpired(ctx context.Context, hold *LeadHold) {
	if err := s.repo.UpdateStatus(ctx, hold.ID, StatusCancelled); err != nil {
		return
	}
	if s.publisher != nil {
		_ = s.publisher.PublishHoldExpired(ctx, hold.ID, hold.UserID, hold.SeatCount)
	}
}
