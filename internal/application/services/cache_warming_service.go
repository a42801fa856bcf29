package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	queryservices "github.com/beaesthetic/analytics/internal/query/services"
)

// MonthComparer computes month over month comparisons
type MonthComparer interface {
	ComputeMoM(ctx context.Context, year, month int) (*entities.ComparisonResult, error)
}

// CacheWarmingService precomputes comparisons for recent closed months so
// dashboards opening on them hit the cache.
type CacheWarmingService struct {
	analytics MonthComparer
	months    int
	now       func() time.Time
}

// NewCacheWarmingService creates a new cache warming service that warms the
// last months closed months.
func NewCacheWarmingService(analytics MonthComparer, months int) *CacheWarmingService {
	return &CacheWarmingService{
		analytics: analytics,
		months:    months,
		now:       time.Now,
	}
}

// WarmCache computes MoM for each of the last closed months. Failures are
// logged and do not stop the remaining months. It returns how many months
// were warmed.
func (s *CacheWarmingService) WarmCache(ctx context.Context) int {
	now := s.now().UTC()
	year, month := now.Year(), now.Month()

	warmed := 0
	for i := 0; i < s.months; i++ {
		year, month = queryservices.PreviousMonth(year, month)
		if ctx.Err() != nil {
			break
		}
		if _, err := s.analytics.ComputeMoM(ctx, year, int(month)); err != nil {
			log.Warn().Err(err).Int("year", year).Int("month", int(month)).Msg("Failed to warm month over month")
			continue
		}
		warmed++
	}

	log.Info().Int("months", warmed).Msg("Cache warming completed")
	return warmed
}

// StartPeriodicWarming warms once, then again every interval until ctx is done
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	if s.months <= 0 {
		return
	}

	s.WarmCache(ctx)

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				s.WarmCache(ctx)
			}
		}
	}()
	log.Info().Dur("interval", interval).Int("months", s.months).Msg("Started periodic cache warming")
}
