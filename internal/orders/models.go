package orders

import (
	"time"

	"github.com/google/uuid"
)

// Order is one committed booking group. A single wizard checkout can
// produce several orders: the roster is cut into groups wherever the
// related-to-next chain breaks, and each group commits on its own.
type Order struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ReferenceNo   string    `gorm:"uniqueIndex;not null" json:"reference_no"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TourID        uuid.UUID `gorm:"type:uuid;index;not null" json:"tour_id"`
	DepartureDate string    `gorm:"type:varchar(10);not null" json:"departure_date"`
	PaymentMethod string    `gorm:"type:varchar(30)" json:"payment_method"`
	SeatCount     int       `gorm:"not null" json:"seat_count"`
	TotalPrice    float64   `gorm:"not null" json:"total_price"`
	Status        Status    `gorm:"type:varchar(20);default:'confirmed'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
