package tours

import (
	"context"

	"tourly/internal/shared/constants"
	"tourly/pkg/cache"

	"github.com/google/uuid"
)

// Service interface defines the contract for tour catalog reads
type Service interface {
	GetTour(ctx context.Context, id uuid.UUID) (*Tour, error)
	ListTours(ctx context.Context, status Status) ([]Tour, error)
	ReleaseSeats(ctx context.Context, id uuid.UUID, count int) error
}

type service struct {
	repo  Repository
	cache cache.Service
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{repo: repo, cache: cacheService}
}

func (s *service) GetTour(ctx context.Context, id uuid.UUID) (*Tour, error) {
	if s.cache == nil {
		return s.repo.GetByID(ctx, id)
	}

	var tour Tour
	key := constants.BuildTourDetailKey(id.String())
	err := s.cache.GetOrSet(ctx, key, constants.TTL_TOUR_DETAIL, func() (interface{}, error) {
		return s.repo.GetByID(ctx, id)
	}, &tour)
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (s *service) ListTours(ctx context.Context, status Status) ([]Tour, error) {
	return s.repo.List(ctx, status)
}

// ReleaseSeats decrements the available-seat counter and drops the stale
// cache entry. Called by the commit pipeline after persisting a group.
func (s *service) ReleaseSeats(ctx context.Context, id uuid.UUID, count int) error {
	if err := s.repo.DecrementAvailableSeats(ctx, id, count); err != nil {
		return err
	}
	if s.cache != nil {
		// Best effort; a stale catalog entry is advisory only.
		if err := s.cache.Delete(ctx, constants.BuildTourDetailKey(id.String())); err != nil && err != cache.ErrCacheMiss {
			return nil
		}
	}
	return nil
}
