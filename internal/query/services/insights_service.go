package services

import (
	"cmp"
	"context"
	"errors"
	"math"
	"slices"
	"time"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	apperrors "github.com/beaesthetic/analytics/pkg/errors"
)

const inactivityQuantile = 0.25

// InsightsService ranks customers by how rarely they book
type InsightsService struct {
	appointments   repositories.AppointmentRepository
	customers      repositories.CustomerRepository
	inactiveMonths int
	now            func() time.Time
}

// NewInsightsService creates a new insights service. inactiveMonths is the
// length of the rolling window appointments are counted over.
func NewInsightsService(
	appointments repositories.AppointmentRepository,
	customers repositories.CustomerRepository,
	inactiveMonths int,
) *InsightsService {
	return &InsightsService{
		appointments:   appointments,
		customers:      customers,
		inactiveMonths: inactiveMonths,
		now:            time.Now,
	}
}

type activity struct {
	count int
	last  *time.Time
}

// GetInactiveCustomers returns up to limit customers whose appointment
// count in the window is at or below the 25th percentile of all customers,
// least active first. Customers without appointments rank before those
// with an older last appointment.
func (s *InsightsService) GetInactiveCustomers(ctx context.Context, limit int) (*entities.InactiveCustomers, error) {
	if limit < 1 {
		return nil, apperrors.NewValidationError("limit must be at least 1")
	}

	end := s.now().UTC()
	start := ShiftMonths(end, -s.inactiveMonths)

	customers, err := s.customers.FindAll(ctx)
	if err != nil {
		return nil, customerStoreError(err)
	}
	rows, err := s.appointments.FindByCreatedRange(ctx, start, end)
	if err != nil {
		return nil, storeError(err)
	}

	byAttendee := make(map[string]*activity)
	for i := range rows {
		a, ok := byAttendee[rows[i].AttendeeID]
		if !ok {
			a = &activity{}
			byAttendee[rows[i].AttendeeID] = a
		}
		a.count++
		if a.last == nil || rows[i].Start.After(*a.last) {
			started := rows[i].Start
			a.last = &started
		}
	}

	type ranked struct {
		customer entities.Customer
		activity
	}
	all := make([]ranked, len(customers))
	counts := make([]int, len(customers))
	for i, c := range customers {
		all[i].customer = c
		if a, ok := byAttendee[c.ID]; ok {
			all[i].activity = *a
		}
		counts[i] = all[i].count
	}

	threshold := NearestRankPercentile(counts, inactivityQuantile)

	inactive := make([]ranked, 0, len(all))
	for _, r := range all {
		if r.count <= threshold {
			inactive = append(inactive, r)
		}
	}
	slices.SortStableFunc(inactive, func(a, b ranked) int {
		if c := cmp.Compare(a.count, b.count); c != 0 {
			return c
		}
		switch {
		case a.last == nil && b.last == nil:
			return 0
		case a.last == nil:
			return -1
		case b.last == nil:
			return 1
		default:
			return a.last.Compare(*b.last)
		}
	})
	if len(inactive) > limit {
		inactive = inactive[:limit]
	}

	out := make([]entities.InactiveCustomer, len(inactive))
	for i, r := range inactive {
		out[i] = entities.InactiveCustomer{
			ID:                r.customer.ID,
			Name:              r.customer.Name,
			Surname:           r.customer.Surname,
			TotalAppointments: r.count,
		}
		if r.last != nil {
			date := r.last.UTC().Format(entities.DateLayout)
			out[i].LastAppointment = &date
		}
	}

	return &entities.InactiveCustomers{
		Period:         entities.NewPeriodRange(start, end),
		Threshold:      threshold,
		TotalCustomers: len(customers),
		InactiveCount:  len(out),
		Customers:      out,
	}, nil
}

// NearestRankPercentile returns the value at index round(q*(n-1)) of the
// sorted values, or 0 for no values.
func NearestRankPercentile(values []int, q float64) int {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	idx := int(math.Round(q * float64(len(sorted)-1)))
	return sorted[idx]
}

func customerStoreError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.NewExternalError("failed to load customers", err)
}
