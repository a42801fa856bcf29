package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

type mockAppointmentRepository struct {
	mock.Mock
}

func (m *mockAppointmentRepository) FindByCreatedRange(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.AppointmentRecord), args.Error(1)
}

type mockCustomerRepository struct {
	mock.Mock
}

func (m *mockCustomerRepository) FindAll(ctx context.Context) ([]entities.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Customer), args.Error(1)
}

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func record(id string, created time.Time, cancelled bool, reason entities.CancelReason) entities.AppointmentRecord {
	return entities.AppointmentRecord{
		ID:           id,
		AttendeeID:   "customer-" + id,
		Start:        created.Add(48 * time.Hour),
		End:          created.Add(49 * time.Hour),
		CreatedAt:    created,
		IsCancelled:  cancelled,
		CancelReason: reason,
		Services:     []string{"laser"},
	}
}

// tenJanuaryRecords has 3 customer cancellations and 1 cancellation for
// another reason.
func tenJanuaryRecords() []entities.AppointmentRecord {
	rows := make([]entities.AppointmentRecord, 0, 10)
	for i := 0; i < 10; i++ {
		created := utc(2024, time.January, 1+i*2)
		switch {
		case i < 3:
			rows = append(rows, record(string(rune('a'+i)), created, true, entities.CancelReasonCustomerCancel))
		case i == 3:
			rows = append(rows, record(string(rune('a'+i)), created, true, entities.CancelReasonNoReason))
		default:
			rows = append(rows, record(string(rune('a'+i)), created, false, entities.CancelReasonNone))
		}
	}
	return rows
}
