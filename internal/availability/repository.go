package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTourNotFound = errors.New("tour not found")

type Repository interface {
	GetTourCapacity(ctx context.Context, tourID uuid.UUID) (int, error)
	CountBookedPassengers(ctx context.Context, tourID uuid.UUID, date string) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetTourCapacity(ctx context.Context, tourID uuid.UUID) (int, error) {
	var tour struct {
		SeatCapacity int `gorm:"column:seat_capacity"`
	}
	err := r.db.WithContext(ctx).
		Table("tours").
		Select("seat_capacity").
		Where("id = ?", tourID).
		First(&tour).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTourNotFound
		}
		return 0, err
	}
	return tour.SeatCapacity, nil
}

// CountBookedPassengers counts passengers attached to any order of the
// tour+date. Cancelled orders drop out; pending orders still consume seats
// so the advisory number errs toward fewer remaining seats.
func (r *repository) CountBookedPassengers(ctx context.Context, tourID uuid.UUID, date string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("passengers").
		Joins("JOIN orders ON orders.id = passengers.order_id").
		Where("orders.tour_id = ? AND orders.departure_date = ?", tourID, date).
		Where("orders.status <> ?", "cancelled").
		Count(&count).Error
	return int(count), err
}
