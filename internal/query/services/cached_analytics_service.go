package services

import (
	"context"
	"time"

	"github.com/beaesthetic/analytics/internal/adapters/cache"
	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/query/metrics"
)

// Analytics is the read API served by AnalyticsService
type Analytics interface {
	GetTimeseries(ctx context.Context, granularity entities.Granularity, metrics []entities.Metric, start, end time.Time, loc *time.Location) (*entities.TimeSeries, error)
	GetSummary(ctx context.Context, metric entities.Metric, start, end time.Time) (*entities.MetricSummary, error)
	GetServicesBreakdown(ctx context.Context, start, end time.Time) (*entities.ServiceBreakdown, error)
	ComputeMoM(ctx context.Context, year, month int) (*entities.ComparisonResult, error)
	ComputeYoY(ctx context.Context, year int, month *int) (*entities.ComparisonResult, error)
}

// CachedAnalyticsService memoizes Analytics results in a TTL cache. Each
// call passes the end of the period it reads so closed periods are kept
// longer than open ones.
type CachedAnalyticsService struct {
	next  Analytics
	cache *cache.TTLCache
}

// NewCachedAnalyticsService wraps next with c
func NewCachedAnalyticsService(next Analytics, c *cache.TTLCache) *CachedAnalyticsService {
	return &CachedAnalyticsService{next: next, cache: c}
}

// GetTimeseries implements Analytics
func (s *CachedAnalyticsService) GetTimeseries(
	ctx context.Context,
	granularity entities.Granularity,
	requested []entities.Metric,
	start, end time.Time,
	loc *time.Location,
) (*entities.TimeSeries, error) {
	list := metrics.NormalizeMetrics(requested)
	key, err := cache.NewKey("AnalyticsService.GetTimeseries",
		cache.Arg("granularity", granularity),
		cache.Arg("metrics", list),
		cache.Arg("start_date", start),
		cache.Arg("end_date", end),
		cache.Arg("timezone", loc),
	)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, key, end, func(ctx context.Context) (*entities.TimeSeries, error) {
		return s.next.GetTimeseries(ctx, granularity, list, start, end, loc)
	})
}

// GetSummary implements Analytics
func (s *CachedAnalyticsService) GetSummary(ctx context.Context, metric entities.Metric, start, end time.Time) (*entities.MetricSummary, error) {
	key, err := cache.NewKey("AnalyticsService.GetSummary",
		cache.Arg("metric", metric),
		cache.Arg("start_date", start),
		cache.Arg("end_date", end),
	)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, key, end, func(ctx context.Context) (*entities.MetricSummary, error) {
		return s.next.GetSummary(ctx, metric, start, end)
	})
}

// GetServicesBreakdown implements Analytics
func (s *CachedAnalyticsService) GetServicesBreakdown(ctx context.Context, start, end time.Time) (*entities.ServiceBreakdown, error) {
	key, err := cache.NewKey("AnalyticsService.GetServicesBreakdown",
		cache.Arg("start_date", start),
		cache.Arg("end_date", end),
	)
	if err != nil {
		return nil, err
	}
	return cache.Fetch(ctx, s.cache, key, end, func(ctx context.Context) (*entities.ServiceBreakdown, error) {
		return s.next.GetServicesBreakdown(ctx, start, end)
	})
}

// ComputeMoM implements Analytics. The period ends with the requested month.
func (s *CachedAnalyticsService) ComputeMoM(ctx context.Context, year, month int) (*entities.ComparisonResult, error) {
	key, err := cache.NewKey("AnalyticsService.ComputeMoM", year, month)
	if err != nil {
		return nil, err
	}
	_, end := MonthRange(year, time.Month(month))
	return cache.Fetch(ctx, s.cache, key, end, func(ctx context.Context) (*entities.ComparisonResult, error) {
		return s.next.ComputeMoM(ctx, year, month)
	})
}

// ComputeYoY implements Analytics. The period ends with the requested month
// or year.
func (s *CachedAnalyticsService) ComputeYoY(ctx context.Context, year int, month *int) (*entities.ComparisonResult, error) {
	key, err := cache.NewKey("AnalyticsService.ComputeYoY", year, month)
	if err != nil {
		return nil, err
	}
	_, end := YearRange(year)
	if month != nil {
		_, end = MonthRange(year, time.Month(*month))
	}
	return cache.Fetch(ctx, s.cache, key, end, func(ctx context.Context) (*entities.ComparisonResult, error) {
		return s.next.ComputeYoY(ctx, year, month)
	})
}

// Stats exposes the cache diagnostics
func (s *CachedAnalyticsService) Stats() cache.Stats {
	return s.cache.Stats()
}
