package database

import (
	"tourly/internal/holds"
	"tourly/internal/orders"
	"tourly/internal/passengers"
	"tourly/internal/tours"
	"tourly/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&tours.Tour{},
		&orders.Order{},
		&passengers.Passenger{},
		&passengers.PassengerRequest{},
		&holds.LeadHold{},
	)
}
