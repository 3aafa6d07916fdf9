package app

import (
	"context"
	"fmt"
	"time"

	"huski_bookings/internal/domain"
)

const cacheKeyAllBookings = "bookings:all"

func cacheKeyRange(start, end string) string {
	return fmt.Sprintf("bookings:range:%s:%s", start, end)
}

// QueryService is the read side over the booking tables. It never writes;
// rows are eventually consistent with the sync engine.
type QueryService struct {
	repo     domain.BookingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.BookingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// BookingsByDateRange returns headers with startdate >= start and
// enddate <= end, each with its nested elements. A header without elements
// is included with an empty list.
func (s *QueryService) BookingsByDateRange(ctx context.Context, start, end string) ([]domain.BookingView, error) {
	key := cacheKeyRange(start, end)
	var out []domain.BookingView
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.repo.BookingsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// AllBookings returns every header, no elements attached.
func (s *QueryService) AllBookings(ctx context.Context) ([]domain.HeaderView, error) {
	var out []domain.HeaderView
	if ok, _ := s.cache.Get(ctx, cacheKeyAllBookings, &out); ok {
		return out, nil
	}
	out, err := s.repo.AllBookings(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, cacheKeyAllBookings, out, int(s.cacheTTL.Seconds()))
	return out, nil
}
