package passengers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	// GetBookedForTourDate returns the already-persisted passengers for a
	// tour+date, in insertion order. The allocation engine combines these
	// with the in-progress roster when placing new passengers.
	GetBookedForTourDate(ctx context.Context, tourID uuid.UUID, date string) ([]Passenger, error)

	CountByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (int64, error)
	CreateBatch(ctx context.Context, tx *gorm.DB, batch []Passenger) error
	CreateRequestBatch(ctx context.Context, tx *gorm.DB, batch []PassengerRequest) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetBookedForTourDate(ctx context.Context, tourID uuid.UUID, date string) ([]Passenger, error) {
	var list []Passenger
	err := r.db.WithContext(ctx).
		Where("tour_id = ? AND departure_date = ?", tourID, date).
		Where("status <> ?", StatusCancelled).
		Order("created_at ASC, serial_no ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) CountByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Passenger{}).
		Where("order_id IN ?", orderIDs).
		Where("status <> ?", StatusCancelled).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts roster rows inside the caller's transaction so a
// group's order and its passengers commit together.
func (r *repository) CreateBatch(ctx context.Context, tx *gorm.DB, batch []Passenger) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&batch).Error
}

func (r *repository) CreateRequestBatch(ctx context.Context, tx *gorm.DB, batch []PassengerRequest) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&batch).Error
}
