package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
)

// InstrumentedAppointmentRepository traces and measures store reads
type InstrumentedAppointmentRepository struct {
	next    repositories.AppointmentRepository
	metrics *observability.Metrics
	driver  string
}

// NewInstrumentedAppointmentRepository wraps next with a span and fetch metrics
func NewInstrumentedAppointmentRepository(next repositories.AppointmentRepository, metrics *observability.Metrics, driver string) *InstrumentedAppointmentRepository {
	return &InstrumentedAppointmentRepository{next: next, metrics: metrics, driver: driver}
}

// FindByCreatedRange delegates to the wrapped repository
func (r *InstrumentedAppointmentRepository) FindByCreatedRange(ctx context.Context, start, end time.Time) ([]entities.AppointmentRecord, error) {
	ctx, span := observability.StartSpan(ctx, "store.FindByCreatedRange")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("db.system", r.driver),
		attribute.String("db.collection", agendaCollection),
		attribute.String("range.start", start.UTC().Format(time.RFC3339)),
		attribute.String("range.end", end.UTC().Format(time.RFC3339)),
	)

	began := time.Now()
	records, err := r.next.FindByCreatedRange(ctx, start, end)
	elapsed := time.Since(began)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordStoreFetch(ctx, r.metrics, agendaCollection, len(records), elapsed)
	observability.SetSpanAttributes(span, attribute.Int("db.rows", len(records)))
	observability.LoggerFromContext(ctx).Debug().
		Str("collection", agendaCollection).
		Int("rows", len(records)).
		Dur("elapsed", elapsed).
		Msg("Fetched agenda window")
	return records, nil
}

// InstrumentedCustomerRepository traces and measures customer reads
type InstrumentedCustomerRepository struct {
	next    repositories.CustomerRepository
	metrics *observability.Metrics
	driver  string
}

// NewInstrumentedCustomerRepository wraps next with a span and fetch metrics
func NewInstrumentedCustomerRepository(next repositories.CustomerRepository, metrics *observability.Metrics, driver string) *InstrumentedCustomerRepository {
	return &InstrumentedCustomerRepository{next: next, metrics: metrics, driver: driver}
}

// FindAll delegates to the wrapped repository
func (r *InstrumentedCustomerRepository) FindAll(ctx context.Context) ([]entities.Customer, error) {
	ctx, span := observability.StartSpan(ctx, "store.FindAllCustomers")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("db.system", r.driver),
		attribute.String("db.collection", customersCollection),
	)

	began := time.Now()
	customers, err := r.next.FindAll(ctx)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.RecordStoreFetch(ctx, r.metrics, customersCollection, len(customers), time.Since(began))
	return customers, nil
}
