package holds

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrHoldNotFound = errors.New("lead hold not found")

type Repository interface {
	Create(ctx context.Context, hold *LeadHold) error
	GetByID(ctx context.Context, id uuid.UUID) (*LeadHold, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*LeadHold, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, hold *LeadHold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*LeadHold, error) {
	var hold LeadHold
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*LeadHold, error) {
	var hold LeadHold
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("status = ?", StatusPending).
		Order("created_at DESC").
		First(&hold).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHoldNotFound
		}
		return nil, err
	}
	return &hold, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&LeadHold{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
