package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Sentinels(t *testing.T) {
	err := NewUnknownMetricError("appointments.bogus")

	assert.True(t, stderrors.Is(err, ErrUnknownMetric))
	assert.False(t, stderrors.Is(err, ErrInvalidDateRange))
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Contains(t, err.Error(), "appointments.bogus")
}

func TestAppError_InvalidDateRange(t *testing.T) {
	err := NewInvalidDateRangeError("end_date must be after start_date")

	assert.True(t, stderrors.Is(err, ErrInvalidDateRange))
	assert.Equal(t, "VALIDATION: end_date must be after start_date: invalid date range", err.Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("loading window: %w", NewExternalError("agenda fetch failed", stderrors.New("timeout")))

	assert.Equal(t, ErrorTypeExternal, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeInternal, TypeOf(stderrors.New("plain")))
	assert.Equal(t, ErrorTypeNotFound, TypeOf(NewNotFoundError("missing")))
}
