package services

import (
	"context"
	"time"

	"wey/internal/analytics"
	"wey/internal/cache"
)

// Analytics fronts the aggregator with per-user LRU caches for the two hot
// dashboard reads. Weekly and average figures are parameterized and cheap
// enough to recompute on every call. The external contract is unchanged:
// entries are invalidated on every transaction mutation.
type Analytics struct {
	agg           *analytics.Aggregator
	balanceCache  *cache.LRU[analytics.BalanceSummary]
	categoryCache *cache.LRU[[]analytics.CategorySum]
}

func NewAnalytics(agg *analytics.Aggregator, cacheSize int, ttl time.Duration) *Analytics {
	return &Analytics{
		agg:           agg,
		balanceCache:  cache.NewLRU[analytics.BalanceSummary](cacheSize, ttl),
		categoryCache: cache.NewLRU[[]analytics.CategorySum](cacheSize, ttl),
	}
}

func (s *Analytics) Balance(ctx context.Context, userID string) (analytics.BalanceSummary, error) {
	if v, ok := s.balanceCache.Get(userID); ok {
		return v, nil
	}
	v, err := s.agg.Balance(ctx, userID)
	if err != nil {
		return analytics.BalanceSummary{}, err
	}
	s.balanceCache.Set(userID, v)
	return v, nil
}

func (s *Analytics) CategoryDistribution(ctx context.Context, userID string) ([]analytics.CategorySum, error) {
	if v, ok := s.categoryCache.Get(userID); ok {
		return v, nil
	}
	v, err := s.agg.CategoryDistribution(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.categoryCache.Set(userID, v)
	return v, nil
}

func (s *Analytics) WeeklyStats(ctx context.Context, userID string, weeks int) ([]analytics.WeekBucket, error) {
	return s.agg.WeeklyStats(ctx, userID, weeks)
}

func (s *Analytics) AveragesByCategory(ctx context.Context, userID string, windowDays int) ([]analytics.CategoryAverage, error) {
	return s.agg.AveragesByCategory(ctx, userID, windowDays)
}

// Invalidate implements Invalidator.
func (s *Analytics) Invalidate(userID string) {
	s.balanceCache.Delete(userID)
	s.categoryCache.Delete(userID)
}

// CleanExpired drops expired entries from both caches.
func (s *Analytics) CleanExpired() int {
	return s.balanceCache.CleanExpired() + s.categoryCache.CleanExpired()
}
