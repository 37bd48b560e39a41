package holds

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// LeadHold is a time-boxed reservation placeholder for a seat count, taken
// before the full roster is composed. The Redis entry is authoritative for
// liveness; this row is the audit trail.
type LeadHold struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TourID        uuid.UUID `gorm:"type:uuid;index;not null" json:"tour_id"`
	DepartureDate string    `gorm:"type:varchar(10);not null" json:"departure_date"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Phone         string    `json:"phone"`
	SeatCount     int       `gorm:"not null" json:"seat_count"`
	Status        Status    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `gorm:"not null" json:"expires_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (LeadHold) TableName() string {
	return "lead_holds"
}

// IsExpired reports whether the hold's countdown has passed.
func (h *LeadHold) IsExpired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}

// EffectiveStatus treats an expired hold as cancelled regardless of the
// stored status.
func (h *LeadHold) EffectiveStatus(now time.Time) Status {
	if h.IsExpired(now) {
		return StatusCancelled
	}
	return h.Status
}
