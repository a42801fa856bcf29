package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

// AnalyticsService computes time series, summaries and calendar comparisons
// over appointments fetched from the store.
type AnalyticsService struct {
	appointments repositories.AppointmentRepository
	engine       *metrics.Engine
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(appointments repositories.AppointmentRepository, engine *metrics.Engine) *AnalyticsService {
	return &AnalyticsService{
		appointments: appointments,
		engine:       engine,
	}
}

func (s *AnalyticsService) load(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error) {
	rows, err := s.appointments.FindByCreatedRange(ctx, start, end)
	if err != nil {
		return nil, storeError(err)
	}
	return rows, nil
}

func (s *AnalyticsService) scalar(ctx context.Context, metric entities.Metric, start, end time.Time) (float64, error) {
	rows, err := s.load(ctx, start, end)
	if err != nil {
		return 0, err
	}
	return s.engine.Scalar(metric, rows)
}

// GetTimeseries groups the requested metrics by period of appointment start
// in loc. Duplicate metrics are dropped, keeping request order.
func (s *AnalyticsService) GetTimeseries(
	ctx context.Context,
	granularity entities.Granularity,
	requested []entities.Metric,
	start, end time.Time,
	loc *time.Location,
) (*entities.TimeSeries, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	list := metrics.NormalizeMetrics(requested)
	if len(list) == 0 {
		return nil, apperrors.NewValidationError("at least one metric is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	// Reject unknown metrics before touching the store.
	if _, err := s.engine.Registry().Resolve(list); err != nil {
		return nil, err
	}

	rows, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	series, err := s.engine.Timeseries(list, rows, granularity, loc)
	if err != nil {
		return nil, err
	}

	return &entities.TimeSeries{
		Granularity: granularity,
		Timezone:    loc.String(),
		Metrics:     list,
		StartDate:   start.Format(entities.DateLayout),
		EndDate:     end.Format(entities.DateLayout),
		Series:      series,
	}, nil
}

// GetSummary returns metric over [start, end) alongside the same metric for
// the preceding equal-length period and for the same range one year earlier.
func (s *AnalyticsService) GetSummary(ctx context.Context, metric entities.Metric, start, end time.Time) (*entities.MetricSummary, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}
	if _, err := s.engine.Registry().Lookup(metric); err != nil {
		return nil, err
	}

	current, err := s.scalar(ctx, metric, start, end)
	if err != nil {
		return nil, err
	}

	duration := end.Sub(start)
	prevStart, prevEnd := start.Add(-duration), end.Add(-duration)
	previous, err := s.scalar(ctx, metric, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	yearStart, yearEnd := ShiftYears(start, -1), ShiftYears(end, -1)
	lastYear, err := s.scalar(ctx, metric, yearStart, yearEnd)
	if err != nil {
		return nil, err
	}

	return &entities.MetricSummary{
		Metric: metric,
		Period: entities.NewPeriodRange(start, end),
		Value:  current,
		PreviousPeriod: entities.PeriodComparison{
			Period:        entities.NewPeriodRange(prevStart, prevEnd),
			PreviousValue: previous,
			ChangePercent: ChangePercent(current, previous),
		},
		PreviousYear: entities.PeriodComparison{
			Period:        entities.NewPeriodRange(yearStart, yearEnd),
			PreviousValue: lastYear,
			ChangePercent: ChangePercent(current, lastYear),
		},
	}, nil
}

// GetServicesBreakdown counts appointments and cancellations per service
func (s *AnalyticsService) GetServicesBreakdown(ctx context.Context, start, end time.Time) (*entities.ServiceBreakdown, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	rows, err := s.load(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &entities.ServiceBreakdown{
		Period:            entities.NewPeriodRange(start, end),
		TotalAppointments: len(rows),
		Services:          s.engine.ServiceBreakdown(rows),
	}, nil
}

// ComputeMoM compares a calendar month with the month before it. Both
// months are read in one fetch and split by creation month.
func (s *AnalyticsService) ComputeMoM(ctx context.Context, year, month int) (*entities.ComparisonResult, error) {
	if err := ValidateYearMonth(year, &month); err != nil {
		return nil, err
	}

	curStart, curEnd := MonthRange(year, time.Month(month))
	prevYear, prevMonth := PreviousMonth(year, time.Month(month))
	prevStart, _ := MonthRange(prevYear, prevMonth)

	rows, err := s.load(ctx, prevStart, curEnd)
	if err != nil {
		return nil, err
	}

	var current, previous []entities.AppointmentRecord
	for _, row := range rows {
		created := row.CreatedAt.UTC()
		if created.Before(curStart) {
			previous = append(previous, row)
		} else {
			current = append(current, row)
		}
	}

	log.Debug().
		Int("year", year).
		Int("month", month).
		Int("current", len(current)).
		Int("previous", len(previous)).
		Msg("month over month split")

	result := Compare(
		entities.ComparisonMonthOverMonth,
		Summarize(monthLabel(year, time.Month(month)), current),
		Summarize(monthLabel(prevYear, prevMonth), previous),
	)
	return &result, nil
}

// ComputeYoY compares a month with the same month a year earlier, or a
// whole calendar year with the year before when month is nil.
func (s *AnalyticsService) ComputeYoY(ctx context.Context, year int, month *int) (*entities.ComparisonResult, error) {
	if err := ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	var curStart, curEnd, prevStart, prevEnd time.Time
	var curLabel, prevLabel string
	if month != nil {
		m := time.Month(*month)
		curStart, curEnd = MonthRange(year, m)
		prevStart, prevEnd = MonthRange(year-1, m)
		curLabel, prevLabel = monthLabel(year, m), monthLabel(year-1, m)
	} else {
		curStart, curEnd = YearRange(year)
		prevStart, prevEnd = YearRange(year - 1)
		curLabel, prevLabel = yearLabel(year), yearLabel(year-1)
	}

	current, err := s.load(ctx, curStart, curEnd)
	if err != nil {
		return nil, err
	}
	previous, err := s.load(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, err
	}

	result := Compare(
		entities.ComparisonYearOverYear,
		Summarize(curLabel, current),
		Summarize(prevLabel, previous),
	)
	return &result, nil
}

// storeError marks repository failures as transient unless the repository
// already classified them.
func storeError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewExternalError("failed to load appointments", err)
}
