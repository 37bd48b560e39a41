package availability

import (
	"context"
	"fmt"

	"tourly/internal/users"

	"github.com/google/uuid"
)

// Result is the oracle's advisory verdict. It is never a guarantee: another
// client can consume the remaining seats between this check and commit, so
// callers surface it as a warning and leave enforcement to commit time.
type Result struct {
	Valid     bool   `json:"valid"`
	Unlimited bool   `json:"unlimited"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// Oracle answers "are there seats left for this tour+date".
type Oracle interface {
	CheckSeatLimit(ctx context.Context, tourID uuid.UUID, date string, role users.Role) (*Result, error)
}

type oracle struct {
	repo Repository
}

func NewOracle(repo Repository) Oracle {
	return &oracle{repo: repo}
}

func (o *oracle) CheckSeatLimit(ctx context.Context, tourID uuid.UUID, date string, role users.Role) (*Result, error) {
	if role.IsPrivileged() {
		return &Result{
			Valid:     true,
			Unlimited: true,
			Message:   "seat limit not enforced for privileged roles",
		}, nil
	}

	capacity, err := o.repo.GetTourCapacity(ctx, tourID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour capacity: %w", err)
	}

	booked, err := o.repo.CountBookedPassengers(ctx, tourID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count booked passengers: %w", err)
	}

	remaining := capacity - booked
	if remaining <= 0 {
		return &Result{
			Valid:     false,
			Remaining: 0,
			Message:   "no seats available for this departure",
		}, nil
	}

	return &Result{
		Valid:     true,
		Remaining: remaining,
		Message:   fmt.Sprintf("%d seat(s) remaining for this departure", remaining),
	}, nil
}
