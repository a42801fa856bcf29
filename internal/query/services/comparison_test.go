package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

func TestSummarize_TenRecords(t *testing.T) {
	s := Summarize("2024-01", tenJanuaryRecords())

	assert.Equal(t, entities.PeriodSummary{
		Period:           "2024-01",
		TotalCount:       10,
		CancelledCount:   3,
		CompletedCount:   7,
		CancellationRate: 30.0,
	}, s)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize("2024-01", nil)
	assert.Zero(t, s.TotalCount)
	assert.Zero(t, s.CompletedCount)
	assert.Equal(t, 0.0, s.CancellationRate)
}

func TestSummarize_RateIsRounded(t *testing.T) {
	rows := []entities.AppointmentRecord{
		record("a", utc(2024, 1, 1), true, entities.CancelReasonCustomerCancel),
		record("b", utc(2024, 1, 2), false, ""),
		record("c", utc(2024, 1, 3), false, ""),
	}
	s := Summarize("x", rows)
	assert.Equal(t, 33.33, s.CancellationRate)
	assert.Equal(t, s.TotalCount-s.CancelledCount, s.CompletedCount)
}

func TestCompare(t *testing.T) {
	current := entities.PeriodSummary{TotalCount: 12, CancelledCount: 3, CancellationRate: 25}
	previous := entities.PeriodSummary{TotalCount: 8, CancelledCount: 1, CancellationRate: 12.5}

	r := Compare(entities.ComparisonMonthOverMonth, current, previous)

	assert.Equal(t, 4, r.CountChange)
	require.NotNil(t, r.CountChangePercent)
	assert.Equal(t, 50.0, *r.CountChangePercent)
	assert.Equal(t, 12.5, r.CancellationRateChange)

	r = Compare(entities.ComparisonYearOverYear, current, entities.PeriodSummary{})
	assert.Nil(t, r.CountChangePercent)
	assert.Equal(t, 12, r.CountChange)
}

func TestChangePercent(t *testing.T) {
	assert.Nil(t, ChangePercent(5, 0))

	got := ChangePercent(2, 3)
	require.NotNil(t, got)
	assert.Equal(t, -33.33, *got)
}

func TestCalendarArithmetic(t *testing.T) {
	y, m := PreviousMonth(2024, time.January)
	assert.Equal(t, 2023, y)
	assert.Equal(t, time.December, m)

	start, end := MonthRange(2024, time.December)
	assert.Equal(t, utc(2024, 12, 1), start)
	assert.Equal(t, utc(2025, 1, 1), end)

	start, end = YearRange(2023)
	assert.Equal(t, utc(2023, 1, 1), start)
	assert.Equal(t, utc(2024, 1, 1), end)

	assert.Equal(t, utc(2023, 2, 28), ShiftYears(utc(2024, 2, 29), -1))
	assert.Equal(t, utc(2024, 2, 29), ShiftMonths(utc(2024, 3, 31), -1))
	assert.Equal(t, utc(2024, 4, 30), ShiftMonths(utc(2024, 5, 31), -1))
	assert.Equal(t, utc(2024, 1, 15), ShiftMonths(utc(2023, 10, 15), 3))
}

func TestValidation(t *testing.T) {
	assert.NoError(t, ValidateRange(utc(2024, 1, 1), utc(2024, 1, 2)))
	assert.ErrorIs(t, ValidateRange(utc(2024, 1, 1), utc(2024, 1, 1)), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateRange(utc(2024, 1, 2), utc(2024, 1, 1)), apperrors.ErrInvalidDateRange)

	month := 13
	assert.ErrorIs(t, ValidateYearMonth(2024, &month), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateYearMonth(1999, nil), apperrors.ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateYearMonth(2101, nil), apperrors.ErrInvalidDateRange)
	assert.NoError(t, ValidateYearMonth(2100, nil))
}
