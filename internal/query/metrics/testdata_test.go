package metrics

import (
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

func appointment(start time.Time, services []string, cancelled bool, reason entities.CancelReason) entities.AppointmentRecord {
	return entities.AppointmentRecord{
		ID:           start.Format(time.RFC3339Nano),
		AttendeeID:   "customer-1",
		Start:        start,
		End:          start.Add(time.Hour),
		CreatedAt:    start.Add(-24 * time.Hour),
		IsCancelled:  cancelled,
		CancelReason: reason,
		Services:     services,
	}
}

func day(year int, month time.Month, d, hour int) time.Time {
	return time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
}
