package services

import (
	"fmt"
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Summarize counts appointments and customer cancellations in rows
func Summarize(label string, rows []entities.AppointmentRecord) entities.PeriodSummary {
	cancelled := 0
	for i := range rows {
		if rows[i].IsCustomerCancellation() {
			cancelled++
		}
	}
	total := len(rows)

	return entities.PeriodSummary{
		Period:           label,
		TotalCount:       total,
		CancelledCount:   cancelled,
		CompletedCount:   total - cancelled,
		CancellationRate: metrics.Percent(float64(cancelled), float64(total)),
	}
}

// Compare builds the change metrics of current against previous
func Compare(kind entities.ComparisonKind, current, previous entities.PeriodSummary) entities.ComparisonResult {
	return entities.ComparisonResult{
		Kind:                   kind,
		Current:                current,
		Previous:               previous,
		CountChange:            current.TotalCount - previous.TotalCount,
		CountChangePercent:     ChangePercent(float64(current.TotalCount), float64(previous.TotalCount)),
		CancellationRateChange: metrics.Round2(current.CancellationRate - previous.CancellationRate),
	}
}

// ChangePercent returns the relative change in percent, or nil when there
// is no baseline to compare against.
func ChangePercent(current, previous float64) *float64 {
	if previous == 0 {
		return nil
	}
	v := metrics.Round2((current - previous) / previous * 100)
	return &v
}

// MonthRange returns [first of month, first of next month) in UTC
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// YearRange returns [Jan 1, Jan 1 of next year) in UTC
func YearRange(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// PreviousMonth returns the calendar month before (year, month)
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// ShiftMonths moves t by months, clamping the day to the last day of the
// target month (Mar 31 minus one month is Feb 28 or 29).
func ShiftMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	total := y*12 + int(m-1) + months
	y, m = total/12, time.Month(total%12+1)
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// ShiftYears moves t by years keeping the month (Feb 29 becomes Feb 28)
func ShiftYears(t time.Time, years int) time.Time {
	return ShiftMonths(t, 12*years)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func monthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

func yearLabel(year int) string {
	return fmt.Sprintf("%04d", year)
}

// ValidateRange rejects ranges whose end is not strictly after start
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return apperrors.NewInvalidDateRangeError("end_date must be after start_date")
	}
	return nil
}

// ValidateYearMonth rejects years outside [2000, 2100] and months outside [1, 12]
func ValidateYearMonth(year int, month *int) error {
	if year < minYear || year > maxYear {
		return apperrors.NewInvalidDateRangeError(fmt.Sprintf("year must be between %d and %d", minYear, maxYear))
	}
	if month != nil && (*month < 1 || *month > 12) {
		return apperrors.NewInvalidDateRangeError("month must be between 1 and 12")
	}
	return nil
}
