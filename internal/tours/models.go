package tours

import (
	"time"

	"github.com/google/uuid"
)

// Tour defines a bookable group-travel product. Tours are managed by an
// external admin surface; this service reads them and decrements the
// available-seat counter on commit.
type Tour struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title          string        `gorm:"not null" json:"title"`
	Description    string        `json:"description,omitempty"`
	SeatCapacity   int           `gorm:"not null" json:"seat_capacity"`
	AvailableSeats *int          `json:"available_seats"` // nil means unlimited
	BasePrice      float64       `gorm:"not null" json:"base_price"`
	Dates          []string      `gorm:"serializer:json" json:"dates"`
	Hotels         []string      `gorm:"serializer:json" json:"hotels"`
	Services       []TourService `gorm:"serializer:json" json:"services"`
	Status         Status        `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TourService is a named priced extra (visa support, insurance, ...).
type TourService struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (Tour) TableName() string {
	return "tours"
}

// TracksSeats reports whether the tour maintains an available-seat counter.
func (t *Tour) TracksSeats() bool {
	return t.AvailableSeats != nil
}

// HasDate reports whether the given departure date is addressable for this tour.
func (t *Tour) HasDate(date string) bool {
	for _, d := range t.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// HasHotel reports whether the hotel belongs to this tour's hotel list.
func (t *Tour) HasHotel(hotel string) bool {
	for _, h := range t.Hotels {
		if h == hotel {
			return true
		}
	}
	return false
}

// ServicePrice returns the price of a named service, or 0 for unknown names.
func (t *Tour) ServicePrice(name string) float64 {
	for _, s := range t.Services {
		if s.Name == name {
			return s.Price
		}
	}
	return 0
}

// PriceForServices sums the base price with the listed additional services.
func (t *Tour) PriceForServices(services []string) float64 {
	total := t.BasePrice
	for _, name := range services {
		total += t.ServicePrice(name)
	}
	return total
}
