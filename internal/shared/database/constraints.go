package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes and constraints the ORM migration
// does not express. Run after Migrate.
func MigrateConstraints(db *gorm.DB) error {
	// Roster lookups always filter by tour and departure date together.
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_passengers_tour_departure
		ON passengers (tour_id, departure_date);
	`).Error
	if err != nil {
		return err
	}

	// Same access pattern on the approval queue.
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_passenger_requests_tour_departure
		ON passenger_requests (tour_id, departure_date);
	`).Error
	if err != nil {
		return err
	}

	// A passport number may appear once per departure; duplicate rows for
	// the same person on the same trip are a data entry error.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_passport_per_departure
		ON passengers (tour_id, departure_date, passport_number)
		WHERE passport_number <> '' AND status <> 'cancelled';
	`).Error
	if err != nil {
		return err
	}

	return nil
}
