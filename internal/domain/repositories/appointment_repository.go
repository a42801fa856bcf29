package repositories

import (
	"context"
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
)

// AppointmentRepository reads appointment-type agenda entries
type AppointmentRepository interface {
	// FindByCreatedRange returns appointments created in [start, end).
	// The returned batch may be empty.
	FindByCreatedRange(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error)
}
