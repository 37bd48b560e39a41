package passengers

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Passenger is a single roster entry. While a booking is being composed the
// rows live only in the wizard session; the commit pipeline persists them
// tagged with their order id.
type Passenger struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index" json:"order_id,omitempty"`
	TourID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"tour_id"`
	DepartureDate string     `gorm:"type:varchar(10);index;not null" json:"departure_date"`
	SerialNo      int        `json:"serial_no"`

	// Identity
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Name           string `json:"name"` // derived from first/last
	DateOfBirth    string `gorm:"type:varchar(10)" json:"date_of_birth"`
	Age            int    `json:"age"` // derived from date_of_birth
	Gender         string `json:"gender"`
	Nationality    string `json:"nationality"`
	PassportNumber string `json:"passport_number"`
	PassportExpire string `gorm:"type:varchar(10)" json:"passport_expire"`
	PassportImage  string `json:"passport_upload,omitempty"` // file-storage path

	// Placement
	RoomType       string  `json:"roomType"`
	RoomAllocation string  `json:"room_allocation"`
	Hotel          string  `json:"hotel"`
	AdditionalFood []string `gorm:"serializer:json" json:"additional_services"`
	Price          float64 `json:"price"`

	// Contact
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Allergy        string `json:"allergy,omitempty"`
	EmergencyPhone string `json:"emergency_phone"`

	// Linking
	MainPassengerID  *uuid.UUID `gorm:"type:uuid;index" json:"main_passenger_id"`
	SubCount         int        `json:"sub_passenger_count"`
	HasSubPassengers bool       `json:"has_sub_passengers"`
	IsRelatedToNext  bool       `json:"is_related_to_next"`
	GroupColor       string     `gorm:"-" json:"group_color,omitempty"` // display-only, never persisted

	Status    Status    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Passenger) TableName() string {
	return "passengers"
}

// PassengerRequest mirrors Passenger for non-privileged submissions, which
// go through an approval side channel instead of the authoritative table.
type PassengerRequest struct {
	Passenger
	RequestedBy uuid.UUID `gorm:"type:uuid;index" json:"requested_by"`
}

func (PassengerRequest) TableName() string {
	return "passenger_requests"
}

// IsMain reports whether this passenger owns its own booking row (no
// back-reference to another passenger in the roster).
func (p *Passenger) IsMain() bool {
	return p.MainPassengerID == nil
}

// DisplayName joins first and last name, trimming when one side is empty.
func DisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// AgeAt computes full years between a yyyy-mm-dd birth date and now.
// Unparseable input yields 0.
func AgeAt(dateOfBirth string, now time.Time) int {
	dob, err := time.Parse("2006-01-02", dateOfBirth)
	if err != nil {
		return 0
	}
	years := now.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
