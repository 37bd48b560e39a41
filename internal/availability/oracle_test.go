package availability

import (
	"context"
	"errors"
	"testing"

	"tourly/internal/users"

	"github.com/google/uuid"
)

type fakeRepo struct {
	capacity int
	booked   int
	err      error
}

func (f *fakeRepo) GetTourCapacity(ctx context.Context, tourID uuid.UUID) (int, error) {
	return f.capacity, f.err
}

func (f *fakeRepo) CountBookedPassengers(ctx context.Context, tourID uuid.UUID, date string) (int, error) {
	return f.booked, f.err
}

func TestCheckSeatLimit(t *testing.T) {
	tests := []struct {
		name          string
		capacity      int
		booked        int
		role          users.Role
		wantValid     bool
		wantRemaining int
		wantUnlimited bool
	}{
		{
			name:          "seats remaining",
			capacity:      10,
			booked:        7,
			role:          users.RoleUser,
			wantValid:     true,
			wantRemaining: 3,
		},
		{
			name:      "fully booked",
			capacity:  10,
			booked:    10,
			role:      users.RoleUser,
			wantValid: false,
		},
		{
			name:      "oversubscribed by concurrent clients",
			capacity:  10,
			booked:    12,
			role:      users.RoleUser,
			wantValid: false,
		},
		{
			name:          "manager bypasses the store",
			capacity:      0,
			booked:        0,
			role:          users.RoleManager,
			wantValid:     true,
			wantUnlimited: true,
		},
		{
			name:          "superadmin bypasses the store",
			capacity:      0,
			booked:        0,
			role:          users.RoleSuperAdmin,
			wantValid:     true,
			wantUnlimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := NewOracle(&fakeRepo{capacity: tt.capacity, booked: tt.booked})
			got, err := o.CheckSeatLimit(context.Background(), uuid.New(), "2025-06-01", tt.role)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.wantRemaining)
			}
			if got.Unlimited != tt.wantUnlimited {
				t.Errorf("Unlimited = %v, want %v", got.Unlimited, tt.wantUnlimited)
			}
			if got.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestCheckSeatLimitRepositoryError(t *testing.T) {
	o := NewOracle(&fakeRepo{err: errors.New("connection refused")})
	_, err := o.CheckSeatLimit(context.Background(), uuid.New(), "2025-06-01", users.RoleUser)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
