package tours

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrTourNotFound = errors.New("tour not found")

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tour, error)
	List(ctx context.Context, status Status) ([]Tour, error)
	DecrementAvailableSeats(ctx context.Context, id uuid.UUID, count int) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Tour, error) {
	var tour Tour
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tour).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, err
	}
	return &tour, nil
}

func (r *repository) List(ctx context.Context, status Status) ([]Tour, error) {
	var list []Tour
	query := r.db.WithContext(ctx).Model(&Tour{})
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		// Hidden tours never show up in unfiltered listings.
		query = query.Where("status <> ?", StatusHidden)
	}
	err := query.Order("created_at DESC").Find(&list).Error
	return list, err
}

// DecrementAvailableSeats subtracts count from the tour's available-seat
// counter inside a row-locked transaction. Tours without a counter
// (unlimited seats) are left untouched. The counter never goes below zero;
// reaching zero flips the tour status to full.
func (r *repository) DecrementAvailableSeats(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tour Tour
		err := tx.
			Set("gorm:query_option", "FOR UPDATE").
			Where("id = ?", id).
			First(&tour).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTourNotFound
			}
			return fmt.Errorf("failed to lock tour: %w", err)
		}

		if tour.AvailableSeats == nil {
			return nil
		}

		remaining := *tour.AvailableSeats - count
		if remaining < 0 {
			remaining = 0
		}

		updates := map[string]interface{}{
			"available_seats": remaining,
		}
		if remaining == 0 {
			updates["status"] = StatusFull
		}

		if err := tx.Model(&Tour{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update available seats: %w", err)
		}
		return nil
	})
}
